package workers

import "time"

// Status enum
type Status string

const (
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// Worker is a registered scan worker. The token is an opaque bearer string
// rotated on every registration and compared by exact match on heartbeat.
type Worker struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Token         string     `json:"-"`
	Status        Status     `json:"status"`
	LastHeartbeat *time.Time `json:"last_heartbeat,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
