package prompt

import (
	"fmt"
	"strings"
)

// CandidateSystemPrompt constrains the model to harmless, line-per-candidate
// output that can be split without further parsing.
func CandidateSystemPrompt() string {
	return "You are a security research assistant. Produce short, harmless detection " +
		"pattern candidates for later human review. No active exploitation, suggestions " +
		"only. One candidate per line in the form category:description, nothing else."
}

// CandidateUserPrompt wraps the telemetry context.
func CandidateUserPrompt(telemetry string) string {
	return fmt.Sprintf("Context:\n%s\n\nReturn 3-8 short pattern candidates, one per line.", telemetry)
}

// SummarySystemPrompt keeps summaries short and neutral.
func SummarySystemPrompt() string {
	return "You are a security research assistant. Summarize scan findings concisely and neutrally in at most 3 sentences."
}

// SummaryUserPrompt renders findings as a bullet list for the model.
func SummaryUserPrompt(items []string) string {
	var b strings.Builder
	b.WriteString("Findings:\n")
	for _, it := range items {
		b.WriteString("- ")
		b.WriteString(it)
		b.WriteString("\n")
	}
	b.WriteString("\nShort summary:")
	return b.String()
}

// CleanLines splits model output into trimmed, non-empty lines.
func CleanLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
