package ai

import "context"

// FindingSummary is the slice of a finding the summarizer cares about.
type FindingSummary struct {
	Title    string
	Severity string
}

// Client is the AI collaborator port. Both operations may fail (backend
// unreachable or misconfigured); callers keep a static fallback and never let
// a failure escape the job body.
type Client interface {
	// GenerateCandidates returns short standalone pattern lines
	// (e.g. "header:missing_security_headers"), one candidate per line.
	GenerateCandidates(ctx context.Context, telemetry string) ([]string, error)

	// Summarize returns a 1-3 sentence summary of the findings.
	Summarize(ctx context.Context, findings []FindingSummary) (string, error)
}
