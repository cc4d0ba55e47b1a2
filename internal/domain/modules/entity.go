package modules

import "time"

// Status is the latest self-reported state of a named subsystem. One row per
// module name; every write overwrites. Latest-state, not a log.
type Status struct {
	Module    string    `json:"module"`
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}
