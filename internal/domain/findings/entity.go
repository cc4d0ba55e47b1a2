package findings

import "time"

// Severity enum
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Actionable reports whether a finding of this severity should flip a scan
// outcome to error (medium and above).
func (s Severity) Actionable() bool {
	switch s {
	case SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// Finding is an append-only observational record. Findings are created by job
// bodies and never mutated or deleted afterwards.
type Finding struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Severity  Severity  `json:"severity"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
