package worker

import (
	"context"
	"testing"
	"time"

	"github.com/bibliothek/bibliothek/internal/testgen"
	"github.com/bibliothek/bibliothek/pkg/config"
	"github.com/bibliothek/bibliothek/pkg/ingest"
	"github.com/bibliothek/bibliothek/pkg/joblogs"
	"github.com/bibliothek/bibliothek/pkg/jobs"
	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func newTestWorker(t *testing.T) (*Worker, *bun.DB, *config.Config) {
	t.Helper()
	db := testgen.NewDB(t)
	cfg := config.NewForTest()
	cfg.WorkerPollInterval = 10 * time.Millisecond
	return New(cfg, db, ingest.New(db, cfg, nil)), db, cfg
}

func createJob(t *testing.T, w *Worker, job *jobs.Job) *jobs.Job {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, w.jobService.CreateJob(ctx, job))
	stored, err := w.jobService.RetrieveJob(ctx, jobs.RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)
	return stored
}

func reload(t *testing.T, w *Worker, id int) *jobs.Job {
	t.Helper()
	job, err := w.jobService.RetrieveJob(context.Background(), jobs.RetrieveJobOptions{ID: &id})
	require.NoError(t, err)
	return job
}

func TestProcess_ScanJob(t *testing.T) {
	t.Parallel()
	w, db, _ := newTestWorker(t)
	root := testgen.TempLibraryDir(t)
	testgen.GenerateEPUB(t, root, "Stephen King — Es.epub", testgen.EPUBOptions{Title: "Es", Authors: []string{"Stephen King"}})
	testgen.GenerateEPUB(t, root, "Stephen King — Carrie.epub", testgen.EPUBOptions{Title: "Carrie", Authors: []string{"Stephen King"}})

	job := createJob(t, w, &jobs.Job{Type: jobs.JobTypeScan, DataParsed: &jobs.JobScanData{Path: root}})
	w.process(job)

	stored := reload(t, w, job.ID)
	assert.Equal(t, jobs.JobStatusCompleted, stored.Status)
	assert.Equal(t, processID, *stored.ProcessID)
	assert.Equal(t, 2, stored.Progress)
	assert.Equal(t, 2, stored.Total)
	result, ok := stored.ResultParsed.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 2.0, result["ingested"])

	n, err := db.NewSelect().Model((*models.Book)(nil)).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestProcess_ScanJobWithoutPathFails(t *testing.T) {
	t.Parallel()
	w, _, _ := newTestWorker(t)

	job := createJob(t, w, &jobs.Job{Type: jobs.JobTypeScan, DataParsed: &jobs.JobScanData{}})
	w.process(job)

	stored := reload(t, w, job.ID)
	assert.Equal(t, jobs.JobStatusFailed, stored.Status)
	assert.Equal(t, "no path to scan", stored.Error)

	logs, err := w.jobLogService.ListJobLogs(context.Background(), joblogs.ListJobLogsOptions{
		JobID:  job.ID,
		Levels: []string{joblogs.LevelError},
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "job failed", logs[0].Message)
}

func TestProcess_CleanupJob(t *testing.T) {
	t.Parallel()
	w, db, _ := newTestWorker(t)
	ctx := context.Background()

	_, err := db.NewInsert().Model(&models.Work{Title: "Orphan", Regions: models.StringSet{}, Keywords: models.StringSet{}}).Exec(ctx)
	require.NoError(t, err)

	job := createJob(t, w, &jobs.Job{Type: jobs.JobTypeCleanup, DataParsed: &jobs.JobCleanupData{}})
	w.process(job)

	stored := reload(t, w, job.ID)
	assert.Equal(t, jobs.JobStatusCompleted, stored.Status)
	assert.Equal(t, map[string]interface{}{"works": 1.0, "series": 0.0, "links": 0.0, "authors": 0.0}, stored.ResultParsed)
}

func TestProcess_RepairJob(t *testing.T) {
	t.Parallel()
	w, db, _ := newTestWorker(t)
	ctx := context.Background()

	_, err := db.NewInsert().Model(&models.Book{Path: "/gone/a.epub", Title: "A", Regions: models.StringSet{}, Keywords: models.StringSet{}}).Exec(ctx)
	require.NoError(t, err)

	job := createJob(t, w, &jobs.Job{Type: jobs.JobTypeRepair, DataParsed: &jobs.JobRepairData{MarkMissing: true}})
	w.process(job)

	stored := reload(t, w, job.ID)
	require.Equal(t, jobs.JobStatusCompleted, stored.Status)
	result := stored.ResultParsed.(map[string]interface{})
	entries := result["entries"].([]interface{})
	require.Len(t, entries, 1)
	assert.Equal(t, "marked-missing", entries[0].(map[string]interface{})["action"])

	logs, err := w.jobLogService.ListJobLogs(ctx, joblogs.ListJobLogsOptions{
		JobID:  job.ID,
		Levels: []string{joblogs.LevelWarn},
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Contains(t, *logs[0].Data, "marked-missing")
}

func TestProcess_QueuedTwiceRunsOnce(t *testing.T) {
	t.Parallel()
	w, _, _ := newTestWorker(t)
	ctx := context.Background()

	job := createJob(t, w, &jobs.Job{Type: jobs.JobTypeCleanup, DataParsed: &jobs.JobCleanupData{}})
	stale := *job

	w.process(job)
	w.process(&stale)

	stored := reload(t, w, job.ID)
	assert.Equal(t, jobs.JobStatusCompleted, stored.Status)

	logs, err := w.jobLogService.ListJobLogs(ctx, joblogs.ListJobLogsOptions{JobID: job.ID})
	require.NoError(t, err)
	started := 0
	for _, l := range logs {
		if l.Message == "job started" {
			started++
		}
	}
	assert.Equal(t, 1, started)
}

func TestStartAndShutdown(t *testing.T) {
	t.Parallel()
	w, _, _ := newTestWorker(t)

	job := createJob(t, w, &jobs.Job{Type: jobs.JobTypeCleanup, DataParsed: &jobs.JobCleanupData{}})

	w.Start()
	assert.Eventually(t, func() bool {
		return reload(t, w, job.ID).Status == jobs.JobStatusCompleted
	}, 5*time.Second, 20*time.Millisecond)
	w.Shutdown()
}
