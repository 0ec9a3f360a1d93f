package joblogs

import (
	"context"

	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
)

const maxValueLen = 512

// JobLogger writes to the process log and keeps a copy of each line with the
// job, so a finished scan can still be inspected through the API.
type JobLogger struct {
	ctx     context.Context
	jobID   int
	service *Service
	log     logger.Logger
}

func (svc *Service) NewJobLogger(ctx context.Context, jobID int) *JobLogger {
	return &JobLogger{
		ctx:     ctx,
		jobID:   jobID,
		service: svc,
		log:     logger.FromContext(ctx),
	}
}

func (l *JobLogger) Info(msg string, data logger.Data) {
	l.log.Info(msg, data)
	l.persist(LevelInfo, msg, data)
}

func (l *JobLogger) Warn(msg string, data logger.Data) {
	l.log.Warn(msg, data)
	l.persist(LevelWarn, msg, data)
}

func (l *JobLogger) Error(msg string, err error, data logger.Data) {
	l.log.Err(err).Error(msg, data)
	if data == nil {
		data = logger.Data{}
	}
	if err != nil {
		data["error"] = err.Error()
	}
	l.persist(LevelError, msg, data)
}

func (l *JobLogger) persist(level, msg string, data logger.Data) {
	jobLog := &JobLog{
		JobID:   l.jobID,
		Level:   level,
		Message: msg,
	}

	if len(data) > 0 {
		short := make(logger.Data, len(data))
		for k, v := range data {
			if s, ok := v.(string); ok {
				v = truncateMiddle(s, maxValueLen)
			}
			short[k] = v
		}
		if b, err := json.Marshal(short); err == nil {
			s := string(b)
			jobLog.Data = &s
		}
	}

	// A lost log line must not fail the job.
	if err := l.service.CreateJobLog(l.ctx, jobLog); err != nil {
		l.log.Err(err).Warn("failed to persist job log")
	}
}

func truncateMiddle(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	half := (maxLen - 5) / 2
	return s[:half] + " ... " + s[len(s)-half:]
}
