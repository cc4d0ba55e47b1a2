package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

var nameRe = regexp.MustCompile(`^[a-zA-Z0-9 ._-]{1,64}$`)

// ValidateName checks worker/platform names: alphanumeric plus space, dot,
// dash, underscore, max 64 chars.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if !nameRe.MatchString(name) {
		return fmt.Errorf("invalid name format (alphanumeric, space, dot, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidatePattern checks a rule pattern is present and reasonably sized.
func ValidatePattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("pattern cannot be empty")
	}
	if len(pattern) > 512 {
		return fmt.Errorf("pattern too long (max 512 chars)")
	}
	return nil
}

// SanitizeString removes null bytes and control characters from user input.
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}
