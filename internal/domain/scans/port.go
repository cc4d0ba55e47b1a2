package scans

import (
	"context"

	"github.com/bryanwahyu/sentinel-aio/internal/domain/findings"
)

// Finding is one observation produced by a probe.
type Finding struct {
	Title    string            `json:"title"`
	Severity findings.Severity `json:"severity"`
	Details  string            `json:"details,omitempty"`
}

// Scanner port (interface untuk eksekusi probe). A scanner performs a bounded
// external probe of one target and never fails past its own boundary: network
// or protocol errors come back as a low-severity finding, not an error.
type Scanner interface {
	Scan(ctx context.Context, target string) []Finding
}

// ReportStore port for archiving scan reports as objects.
type ReportStore interface {
	PutReport(ctx context.Context, key string, data []byte) (string, error)
}
