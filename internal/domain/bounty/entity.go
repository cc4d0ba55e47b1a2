package bounty

import "time"

// Platform is a bug-bounty platform registration. Upserts are keyed by name.
type Platform struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	BaseURL   string    `json:"base_url,omitempty"`
	APIKey    string    `json:"-"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
}

// TargetStatus state machine: queued -> scanning -> {scanned, error}.
// There is no transition back to queued; an errored target stays terminal
// because enqueue dedups on (platform_id, target) regardless of status.
type TargetStatus string

const (
	StatusQueued   TargetStatus = "queued"
	StatusScanning TargetStatus = "scanning"
	StatusScanned  TargetStatus = "scanned"
	StatusError    TargetStatus = "error"
)

// Target is one scan-queue entry. At most one row exists per
// (platform_id, target) pair.
type Target struct {
	ID            int64        `json:"id"`
	PlatformID    int64        `json:"platform_id"`
	Target        string       `json:"target"`
	Scope         string       `json:"scope,omitempty"`
	Status        TargetStatus `json:"status"`
	LastScannedAt *time.Time   `json:"last_scanned_at,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}
