package joblogs

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// JobLog is one line a background job wrote while it ran.
type JobLog struct {
	bun.BaseModel `bun:"table:job_logs,alias:jl"`

	ID        int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	JobID     int       `bun:",notnull" json:"job_id"`
	Level     string    `bun:",notnull" json:"level"`
	Message   string    `bun:",notnull" json:"message"`
	Data      *string   `json:"data,omitempty"`
}
