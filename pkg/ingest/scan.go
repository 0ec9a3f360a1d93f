package ingest

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bibliothek/bibliothek/pkg/report"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
)

// The mime types accepted per extension. A .epub that is really a PDF is
// let through so the extractor can rename it.
var extensionsToScan = map[string]map[string]struct{}{
	".epub": {"application/epub+zip": {}, "application/zip": {}, "application/pdf": {}},
	".pdf":  {"application/pdf": {}},
}

type ScanOptions struct {
	Options
	// Progress, when set, is called after every file with the number of
	// files handled so far and the total.
	Progress func(done, total int)
}

type ScanResult struct {
	RunID    string `json:"run_id"`
	Root     string `json:"root"`
	Seen     int    `json:"seen"`
	Ingested int    `json:"ingested"`
	Skipped  int    `json:"skipped"`
	Rejected int    `json:"rejected"`
	Failed   int    `json:"failed"`
	// ReportPath is where the mismatch report was appended, empty when the
	// run had nothing to report.
	ReportPath string         `json:"report_path,omitempty"`
	Entries    []report.Entry `json:"entries"`
}

// Scan ingests every ebook below root, one file at a time. A cancelled ctx
// stops the scan before the next file; what was done so far is kept and
// reported.
func (i *Ingester) Scan(ctx context.Context, root string, opts ScanOptions) (*ScanResult, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	runID := uuid.NewString()
	log := logger.FromContext(ctx).ID(runID).Root(logger.Data{"root": root})
	ctx = log.WithContext(ctx)

	result := &ScanResult{RunID: runID, Root: root}
	rep := report.New(runID)

	log.Info("scan started")

	filesToScan := []string{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.WithStack(err)
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		expectedMimeTypes, ok := extensionsToScan[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil
		}
		result.Seen++
		mtype, err := mimetype.DetectFile(path)
		if err != nil {
			log.Warn("can't detect the mime type of a file with a valid extension", logger.Data{"path": path, "err": err.Error()})
			result.Rejected++
			return nil
		}
		if _, ok := expectedMimeTypes[mtype.String()]; !ok {
			log.Warn("mime type is not expected for extension", logger.Data{"path": path, "mimetype": mtype.String()})
			result.Rejected++
			return nil
		}
		filesToScan = append(filesToScan, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for n, path := range filesToScan {
		if err := ctx.Err(); err != nil {
			log.Warn("scan cancelled", logger.Data{"remaining": len(filesToScan) - n})
			break
		}

		res, err := i.IngestFile(ctx, path, opts.Options, rep)
		switch {
		case err != nil:
			log.Err(err).Error("ingest failed", logger.Data{"path": path})
			result.Failed++
		case res.Outcome == OutcomeSkipped:
			result.Skipped++
		default:
			result.Ingested++
		}

		if opts.Progress != nil {
			opts.Progress(n+1, len(filesToScan))
		}
	}

	result.Entries = rep.Entries()
	result.ReportPath, err = i.WriteReport(root, rep)
	if err != nil {
		return nil, err
	}

	log.Info("scan finished", logger.Data{
		"seen":     result.Seen,
		"ingested": result.Ingested,
		"skipped":  result.Skipped,
		"rejected": result.Rejected,
		"failed":   result.Failed,
	})

	return result, errors.WithStack(ctx.Err())
}

// WriteReport appends rep to the report file in dir and returns its path.
// Nothing is written, and the path is empty, when rep has no entries or
// reports are turned off.
func (i *Ingester) WriteReport(dir string, rep *report.Report) (string, error) {
	if rep.Len() == 0 || i.cfg.ReportFileName == "" {
		return "", nil
	}
	path := filepath.Join(dir, i.cfg.ReportFileName)
	if err := rep.AppendToFile(path); err != nil {
		return "", err
	}
	return path, nil
}
