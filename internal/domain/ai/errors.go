package ai

import "errors"

// ErrNotConfigured indicates no AI backend is configured (missing API key or
// provider set to "none").
var ErrNotConfigured = errors.New("ai backend not configured")

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")
