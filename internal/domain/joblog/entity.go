package joblog

import "time"

// Level enum
type Level string

const (
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Entry adalah satu baris audit trail untuk eksekusi job. Append-only.
type Entry struct {
	ID        int64     `json:"id"`
	Job       string    `json:"job"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
