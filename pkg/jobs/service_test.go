package jobs

import (
	"context"
	"testing"

	"github.com/bibliothek/bibliothek/internal/testgen"
	"github.com/bibliothek/bibliothek/pkg/errcodes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasActiveJobByType_NoJobs(t *testing.T) {
	t.Parallel()
	svc := NewService(testgen.NewDB(t))

	hasActive, err := svc.HasActiveJobByType(context.Background(), JobTypeScan)
	require.NoError(t, err)
	assert.False(t, hasActive)
}

func TestHasActiveJobByType(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		jobType string
		status  string
		want    bool
	}{
		"pending scan":     {JobTypeScan, JobStatusPending, true},
		"in progress scan": {JobTypeScan, JobStatusInProgress, true},
		"completed scan":   {JobTypeScan, JobStatusCompleted, false},
		"failed scan":      {JobTypeScan, JobStatusFailed, false},
		"pending cleanup":  {JobTypeCleanup, JobStatusPending, false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			svc := NewService(testgen.NewDB(t))
			ctx := context.Background()

			job := &Job{Type: tc.jobType, Status: tc.status, DataParsed: &JobScanData{}}
			require.NoError(t, svc.CreateJob(ctx, job))

			hasActive, err := svc.HasActiveJobByType(ctx, JobTypeScan)
			require.NoError(t, err)
			assert.Equal(t, tc.want, hasActive)
		})
	}
}

func TestCreateAndRetrieveJob(t *testing.T) {
	t.Parallel()
	svc := NewService(testgen.NewDB(t))
	ctx := context.Background()

	job := &Job{Type: JobTypeScan, DataParsed: &JobScanData{Path: "/books", Force: true}}
	require.NoError(t, svc.CreateJob(ctx, job))
	require.NotZero(t, job.ID)
	assert.Equal(t, JobStatusPending, job.Status)

	stored, err := svc.RetrieveJob(ctx, RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)
	assert.Equal(t, &JobScanData{Path: "/books", Force: true}, stored.DataParsed)
	assert.Nil(t, stored.ResultParsed)
}

func TestRetrieveJob_NotFound(t *testing.T) {
	t.Parallel()
	svc := NewService(testgen.NewDB(t))

	id := 9
	_, err := svc.RetrieveJob(context.Background(), RetrieveJobOptions{ID: &id})
	assert.ErrorIs(t, err, errcodes.NotFound("Job"))
}

func TestUpdateJob_StoresResult(t *testing.T) {
	t.Parallel()
	svc := NewService(testgen.NewDB(t))
	ctx := context.Background()

	job := &Job{Type: JobTypeCleanup, DataParsed: &JobCleanupData{}}
	require.NoError(t, svc.CreateJob(ctx, job))

	job.Status = JobStatusCompleted
	require.NoError(t, job.SetResult(map[string]int{"works": 2}))
	require.NoError(t, svc.UpdateJob(ctx, job, UpdateJobOptions{Columns: []string{"status", "result"}}))

	stored, err := svc.RetrieveJob(ctx, RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)
	assert.Equal(t, JobStatusCompleted, stored.Status)
	assert.Equal(t, map[string]interface{}{"works": 2.0}, stored.ResultParsed)

	missing := &Job{ID: job.ID + 1}
	err = svc.UpdateJob(ctx, missing, UpdateJobOptions{Columns: []string{"status"}})
	assert.ErrorIs(t, err, errcodes.NotFound("Job"))
}

func TestListJobs_Filters(t *testing.T) {
	t.Parallel()
	svc := NewService(testgen.NewDB(t))
	ctx := context.Background()

	processID := "abc"
	for _, job := range []*Job{
		{Type: JobTypeScan, Status: JobStatusCompleted, DataParsed: &JobScanData{}},
		{Type: JobTypeScan, Status: JobStatusPending, DataParsed: &JobScanData{}},
		{Type: JobTypeRepair, Status: JobStatusInProgress, DataParsed: &JobRepairData{}, ProcessID: &processID},
	} {
		require.NoError(t, svc.CreateJob(ctx, job))
	}

	active, err := svc.ListJobs(ctx, ListJobsOptions{Statuses: []string{JobStatusPending, JobStatusInProgress}})
	require.NoError(t, err)
	assert.Len(t, active, 2)

	unclaimed, err := svc.ListJobs(ctx, ListJobsOptions{
		Statuses:           []string{JobStatusPending, JobStatusInProgress},
		ProcessIDToExclude: &processID,
	})
	require.NoError(t, err)
	require.Len(t, unclaimed, 1)
	assert.Equal(t, JobTypeScan, unclaimed[0].Type)

	scan := JobTypeScan
	limit := 1
	scans, total, err := svc.ListJobsWithTotal(ctx, ListJobsOptions{Type: &scan, Limit: &limit})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, scans, 1)
	assert.Equal(t, JobStatusCompleted, scans[0].Status)
}

func TestClaimJob(t *testing.T) {
	t.Parallel()
	svc := NewService(testgen.NewDB(t))
	ctx := context.Background()

	job := &Job{Type: JobTypeScan, DataParsed: &JobScanData{Path: "/books"}}
	require.NoError(t, svc.CreateJob(ctx, job))
	stale := *job

	claimed, err := svc.ClaimJob(ctx, job, "aaaa")
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Equal(t, JobStatusInProgress, job.Status)

	// A second copy of the same job is not claimed again by the same process.
	claimed, err = svc.ClaimJob(ctx, &stale, "aaaa")
	require.NoError(t, err)
	assert.False(t, claimed)

	// Another process takes over a job left in progress.
	claimed, err = svc.ClaimJob(ctx, &stale, "bbbb")
	require.NoError(t, err)
	assert.True(t, claimed)

	job.Status = JobStatusCompleted
	require.NoError(t, svc.UpdateJob(ctx, job, UpdateJobOptions{Columns: []string{"status"}}))

	claimed, err = svc.ClaimJob(ctx, &stale, "cccc")
	require.NoError(t, err)
	assert.False(t, claimed)

	stored, err := svc.RetrieveJob(ctx, RetrieveJobOptions{ID: &job.ID})
	require.NoError(t, err)
	assert.Equal(t, JobStatusCompleted, stored.Status)
}
