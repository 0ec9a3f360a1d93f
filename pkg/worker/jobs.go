package worker

import (
	"context"
	"strconv"

	"github.com/bibliothek/bibliothek/pkg/ingest"
	"github.com/bibliothek/bibliothek/pkg/joblogs"
	"github.com/bibliothek/bibliothek/pkg/jobs"
	"github.com/bibliothek/bibliothek/pkg/maintenance"
	"github.com/bibliothek/bibliothek/pkg/report"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// ProcessScanJob scans the job's tree, or the library path, and keeps the
// job's progress current while it runs.
func (w *Worker) ProcessScanJob(ctx context.Context, job *jobs.Job, jobLog *joblogs.JobLogger) error {
	data, _ := job.DataParsed.(*jobs.JobScanData)
	if data == nil {
		data = &jobs.JobScanData{}
	}
	root := data.Path
	if root == "" {
		root = w.config.LibraryPath
	}
	if root == "" {
		return errors.New("no path to scan")
	}

	res, err := w.ingester.Scan(ctx, root, ingest.ScanOptions{
		Options: ingest.Options{Force: data.Force},
		Progress: func(done, total int) {
			job.Progress = done
			job.Total = total
			err := w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{
				Columns: []string{"progress", "total"},
			})
			if err != nil {
				jobLog.Warn("failed to update job progress", logger.Data{"error": err.Error()})
			}
		},
	})
	if err != nil {
		return err
	}
	logEntries(jobLog, res.Entries)
	jobLog.Info("scan finished", logger.Data{
		"root":     res.Root,
		"ingested": res.Ingested,
		"skipped":  res.Skipped,
		"rejected": res.Rejected,
		"failed":   res.Failed,
	})

	return job.SetResult(res)
}

func (w *Worker) ProcessCleanupJob(ctx context.Context, job *jobs.Job, jobLog *joblogs.JobLogger) error {
	res, err := w.maintenanceService.CleanupOrphans(ctx)
	if err != nil {
		return err
	}
	jobLog.Info("orphans removed", logger.Data{
		"works":   res.Works,
		"series":  res.Series,
		"links":   res.Links,
		"authors": res.Authors,
	})
	return job.SetResult(res)
}

// ProcessRepairJob runs the deep repair and appends its report to the
// library path, when one is configured.
func (w *Worker) ProcessRepairJob(ctx context.Context, job *jobs.Job, jobLog *joblogs.JobLogger) error {
	data, _ := job.DataParsed.(*jobs.JobRepairData)
	if data == nil {
		data = &jobs.JobRepairData{}
	}

	rep := report.New("job-" + strconv.Itoa(job.ID))
	res, err := w.maintenanceService.DeepRepair(ctx, maintenance.RepairOptions{MarkMissing: data.MarkMissing}, rep)
	if err != nil {
		return err
	}

	logEntries(jobLog, rep.Entries())

	if w.config.LibraryPath != "" {
		if _, err := w.ingester.WriteReport(w.config.LibraryPath, rep); err != nil {
			jobLog.Warn("failed to write repair report", logger.Data{"error": err.Error()})
		}
	}

	return job.SetResult(map[string]interface{}{
		"repair":  res,
		"entries": rep.Entries(),
	})
}

// logEntries keeps every report line with the job as a warning.
func logEntries(jobLog *joblogs.JobLogger, entries []report.Entry) {
	for _, e := range entries {
		data := logger.Data{"book_id": e.BookID, "path": e.Path}
		if e.Action != report.ActionNone {
			data["action"] = string(e.Action)
		}
		if e.Note != "" {
			data["note"] = e.Note
		}
		for _, m := range e.Mismatches {
			data["mismatch_"+m.Field] = m.String()
		}
		jobLog.Warn("report entry", data)
	}
}
