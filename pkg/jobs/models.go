package jobs

import (
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
	"github.com/uptrace/bun"
)

const (
	JobStatusPending    = "pending"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

const (
	JobTypeScan    = "scan"
	JobTypeCleanup = "cleanup"
	JobTypeRepair  = "repair"
)

type Job struct {
	bun.BaseModel `bun:"table:jobs,alias:j"`

	ID         int         `bun:",pk,autoincrement" json:"id"`
	Type       string      `bun:",nullzero" json:"type"`
	Status     string      `bun:",nullzero" json:"status"`
	Data       string      `bun:",nullzero" json:"-"`
	DataParsed interface{} `bun:"-" json:"data"`
	// Result holds the JSON encoded outcome of a completed job.
	Result       string      `json:"-"`
	ResultParsed interface{} `bun:"-" json:"result,omitempty"`
	Error        string      `json:"error,omitempty"`
	Progress     int         `json:"progress"`
	Total        int         `json:"total"`
	ProcessID    *string     `json:"process_id,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (job *Job) UnmarshalData() error {
	switch job.Type {
	case JobTypeScan:
		job.DataParsed = &JobScanData{}
	case JobTypeCleanup:
		job.DataParsed = &JobCleanupData{}
	case JobTypeRepair:
		job.DataParsed = &JobRepairData{}
	default:
		return errors.Errorf("unknown job type %q", job.Type)
	}

	if job.Data != "" {
		err := json.Unmarshal([]byte(job.Data), job.DataParsed)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	if job.Result != "" {
		var result map[string]interface{}
		if err := json.Unmarshal([]byte(job.Result), &result); err != nil {
			return errors.WithStack(err)
		}
		job.ResultParsed = result
	}

	return nil
}

// SetResult stores v as the job's result.
func (job *Job) SetResult(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.WithStack(err)
	}
	job.Result = string(data)
	job.ResultParsed = v
	return nil
}

type JobScanData struct {
	// Path is the tree to scan. Empty means the configured library path.
	Path  string `json:"path,omitempty"`
	Force bool   `json:"force,omitempty"`
}

type JobCleanupData struct{}

type JobRepairData struct {
	MarkMissing bool `json:"mark_missing,omitempty"`
}
