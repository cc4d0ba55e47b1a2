package rules

import "time"

// Tier enum: shadow rules are staged candidates, live rules are active.
type Tier string

const (
	TierShadow Tier = "shadow"
	TierLive   Tier = "live"
)

// Rule is one detection pattern in either tier. A live rule is always created
// by copying a shadow rule's pattern; the shadow row is retained.
type Rule struct {
	ID        int64     `json:"id"`
	Pattern   string    `json:"pattern"`
	CreatedAt time.Time `json:"created_at"`
}
