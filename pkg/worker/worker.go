// Package worker runs queued scan, cleanup and repair jobs in the
// background of the API server.
package worker

import (
	"context"
	"math/rand"
	"time"

	"github.com/bibliothek/bibliothek/pkg/config"
	"github.com/bibliothek/bibliothek/pkg/ingest"
	"github.com/bibliothek/bibliothek/pkg/joblogs"
	"github.com/bibliothek/bibliothek/pkg/jobs"
	"github.com/bibliothek/bibliothek/pkg/maintenance"
	"github.com/google/uuid"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/uptrace/bun"
)

var processID = randStringBytes(8)

type processFunc func(ctx context.Context, job *jobs.Job, jobLog *joblogs.JobLogger) error

type Worker struct {
	config *config.Config
	log    logger.Logger

	processFuncs map[string]processFunc

	ingester           *ingest.Ingester
	jobService         *jobs.Service
	jobLogService      *joblogs.Service
	maintenanceService *maintenance.Service

	queue          chan *jobs.Job
	shutdown       chan struct{}
	doneFetching   chan struct{}
	doneProcessing chan struct{}
}

func New(cfg *config.Config, db *bun.DB, ing *ingest.Ingester) *Worker {
	processes := cfg.WorkerProcesses
	if processes < 1 {
		processes = 1
	}

	w := &Worker{
		config: cfg,
		log:    logger.New(),

		ingester:           ing,
		jobService:         jobs.NewService(db),
		jobLogService:      joblogs.NewService(db),
		maintenanceService: maintenance.NewService(db),

		queue:          make(chan *jobs.Job, processes),
		shutdown:       make(chan struct{}),
		doneFetching:   make(chan struct{}),
		doneProcessing: make(chan struct{}, processes),
	}

	w.processFuncs = map[string]processFunc{
		jobs.JobTypeScan:    w.ProcessScanJob,
		jobs.JobTypeCleanup: w.ProcessCleanupJob,
		jobs.JobTypeRepair:  w.ProcessRepairJob,
	}

	return w
}

func (w *Worker) processes() int {
	return cap(w.doneProcessing)
}

func (w *Worker) Start() {
	go w.fetchJobs()
	for i := 0; i < w.processes(); i++ {
		go w.processJobs()
	}
}

func (w *Worker) fetchJobs() {
	duration := w.config.WorkerPollInterval
	if duration <= 0 {
		duration = 5 * time.Second
	}
	timer := time.NewTimer(duration)

	for {
		select {
		case <-w.shutdown:
			// We're shutting down, so stop adding more jobs to the queue.
			w.doneFetching <- struct{}{}
			return
		case <-timer.C:
			j, err := w.jobService.ListJobs(context.Background(), jobs.ListJobsOptions{
				Limit:              pointerutil.Int(1),
				Statuses:           []string{jobs.JobStatusPending, jobs.JobStatusInProgress},
				ProcessIDToExclude: &processID,
			})
			if err != nil {
				w.log.Err(err).Error("list jobs error")
				timer.Reset(duration)
				continue
			}
			for _, job := range j {
				select {
				case w.queue <- job:
				case <-w.shutdown:
					w.doneFetching <- struct{}{}
					return
				}
			}
			timer.Reset(duration)
		}
	}
}

func (w *Worker) processJobs() {
	for {
		select {
		case <-w.shutdown:
			w.doneProcessing <- struct{}{}
			return
		case job := <-w.queue:
			w.process(job)
		}
	}
}

// process claims job, runs it and records how it ended.
func (w *Worker) process(job *jobs.Job) {
	// Prep the context to be passed down to the process function.
	id, err := uuid.NewRandom()
	if err != nil {
		w.log.Err(err).Error("new uuid error")
		return
	}
	log := w.log.ID(id.String()).Root(logger.Data{"job_id": job.ID, "type": job.Type, "process_id": processID})
	ctx := log.WithContext(context.Background())

	// Claim the job for this process. A copy queued by an earlier poll finds
	// it claimed or finished and is dropped.
	claimed, err := w.jobService.ClaimJob(ctx, job, processID)
	if err != nil {
		log.Err(err).Error("claim job error")
		return
	}
	if !claimed {
		log.Debug("job already claimed, skipping")
		return
	}

	jobLog := w.jobLogService.NewJobLogger(ctx, job.ID)

	// Find and invoke the appropriate process function.
	fn, ok := w.processFuncs[job.Type]
	if !ok {
		jobLog.Error("can't find process function for type", nil, nil)
		w.finish(ctx, job, jobs.JobStatusFailed, "unknown job type")
		return
	}
	jobLog.Info("job started", nil)
	err = fn(ctx, job, jobLog)
	if err != nil {
		jobLog.Error("job failed", err, nil)
		w.finish(ctx, job, jobs.JobStatusFailed, err.Error())
		return
	}
	jobLog.Info("job finished", nil)

	// Update job to be completed so that it's not picked up anymore.
	w.finish(ctx, job, jobs.JobStatusCompleted, "")
}

func (w *Worker) finish(ctx context.Context, job *jobs.Job, status, msg string) {
	job.Status = status
	job.Error = msg
	err := w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{
		Columns: []string{"status", "error", "result", "progress", "total"},
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Error("update job error")
	}
}

func (w *Worker) Shutdown() {
	close(w.shutdown)

	<-w.doneFetching
	for i := 0; i < w.processes(); i++ {
		<-w.doneProcessing
	}
}

const letterBytes = "abcdef0123456789"

func randStringBytes(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letterBytes[rand.Intn(len(letterBytes))]
	}
	return string(b)
}
