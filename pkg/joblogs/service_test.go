package joblogs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/bibliothek/bibliothek/internal/testgen"
	"github.com/bibliothek/bibliothek/pkg/binder"
	"github.com/bibliothek/bibliothek/pkg/errcodes"
	"github.com/bibliothek/bibliothek/pkg/jobs"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func createJob(t *testing.T, db *bun.DB) *jobs.Job {
	t.Helper()
	job := &jobs.Job{Type: jobs.JobTypeCleanup, DataParsed: &jobs.JobCleanupData{}}
	require.NoError(t, jobs.NewService(db).CreateJob(context.Background(), job))
	return job
}

func TestJobLogger(t *testing.T) {
	t.Parallel()
	db := testgen.NewDB(t)
	svc := NewService(db)
	job := createJob(t, db)
	ctx := logger.New().WithContext(context.Background())

	jl := svc.NewJobLogger(ctx, job.ID)
	jl.Info("job started", nil)
	jl.Warn("report entry", logger.Data{"path": strings.Repeat("a", 2000)})
	jl.Error("job failed", errors.New("disk full"), nil)

	logs, err := svc.ListJobLogs(ctx, ListJobLogsOptions{JobID: job.ID})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, LevelInfo, logs[0].Level)
	assert.Nil(t, logs[0].Data)

	data := map[string]string{}
	require.NoError(t, json.Unmarshal([]byte(*logs[1].Data), &data))
	assert.Len(t, data["path"], maxValueLen-1)
	assert.Contains(t, data["path"], " ... ")

	assert.Equal(t, LevelError, logs[2].Level)
	assert.Contains(t, *logs[2].Data, "disk full")

	errorsOnly, err := svc.ListJobLogs(ctx, ListJobLogsOptions{JobID: job.ID, Levels: []string{LevelError}})
	require.NoError(t, err)
	assert.Len(t, errorsOnly, 1)

	after, err := svc.ListJobLogs(ctx, ListJobLogsOptions{JobID: job.ID, AfterID: &logs[1].ID})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, logs[2].ID, after[0].ID)
}

func TestHandlerListLogs(t *testing.T) {
	t.Parallel()
	db := testgen.NewDB(t)
	job := createJob(t, db)
	NewService(db).NewJobLogger(logger.New().WithContext(context.Background()), job.ID).Info("job started", nil)

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle
	RegisterRoutes(e.Group("/jobs"), db)

	req := httptest.NewRequest(http.MethodGet, "/jobs/"+strconv.Itoa(job.ID)+"/logs", nil)
	rr := httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	body := struct {
		Logs []*JobLog `json:"logs"`
		Job  struct {
			ID int `json:"id"`
		} `json:"job"`
	}{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, job.ID, body.Job.ID)
	require.Len(t, body.Logs, 1)
	assert.Equal(t, "job started", body.Logs[0].Message)

	req = httptest.NewRequest(http.MethodGet, "/jobs/9999/logs", nil)
	rr = httptest.NewRecorder()
	e.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
