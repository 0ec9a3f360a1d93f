// Package ingest runs the metadata ladder for single files and whole
// directory trees: database state, filename, path hints, container, remote
// catalogs and the classifier, followed by the aggregate save.
package ingest

import (
	"context"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bibliothek/bibliothek/pkg/aggregate"
	"github.com/bibliothek/bibliothek/pkg/classify"
	"github.com/bibliothek/bibliothek/pkg/config"
	"github.com/bibliothek/bibliothek/pkg/enrich"
	"github.com/bibliothek/bibliothek/pkg/errcodes"
	"github.com/bibliothek/bibliothek/pkg/extract"
	"github.com/bibliothek/bibliothek/pkg/fileutils"
	"github.com/bibliothek/bibliothek/pkg/library"
	"github.com/bibliothek/bibliothek/pkg/mediafile"
	"github.com/bibliothek/bibliothek/pkg/pathparse"
	"github.com/bibliothek/bibliothek/pkg/pdf"
	"github.com/bibliothek/bibliothek/pkg/report"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// Sources named in mismatch reports.
const (
	SourceFilename  = "filename"
	SourceContainer = "container"
)

type Outcome string

const (
	OutcomeSaved   Outcome = "saved"
	OutcomeSkipped Outcome = "skipped"
)

type Options struct {
	// Force reruns the ladder for Books that are complete and were scanned
	// by the current scanner version.
	Force bool
}

type Result struct {
	Path        string               `json:"path"`
	Outcome     Outcome              `json:"outcome"`
	Save        *library.SaveResult  `json:"save,omitempty"`
	Diagnostics []enrich.Diagnostic  `json:"-"`
	Book        *aggregate.Aggregate `json:"-"`
}

type Ingester struct {
	cfg       *config.Config
	library   *library.Library
	extractor *extract.Extractor
	providers []enrich.Provider
}

// New builds an Ingester. renderer may be nil, in which case PDFs get no
// cover.
func New(db *bun.DB, cfg *config.Config, renderer pdf.Renderer) *Ingester {
	return &Ingester{
		cfg:     cfg,
		library: library.New(db, cfg),
		extractor: extract.New(extract.Options{
			Renderer:        renderer,
			ThumbnailHeight: cfg.ThumbnailHeight,
		}),
		providers: enrich.NewProviders(cfg),
	}
}

// IngestFile runs the ladder for the file at path and saves the result.
// Disagreements and the actions taken end up in rep, which may be nil.
func (i *Ingester) IngestFile(ctx context.Context, path string, opts Options, rep *report.Report) (*Result, error) {
	log := logger.FromContext(ctx).Data(logger.Data{"path": path})
	if rep == nil {
		rep = report.New("")
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if !fileutils.Exists(path) {
		return nil, errcodes.FileMissing(path)
	}

	agg, err := i.library.LoadOrNew(ctx, path)
	if err != nil {
		return nil, err
	}
	result := &Result{Path: path, Book: agg}

	if agg.InDB && agg.Book.IsComplete && agg.Book.ScannerVersion == i.cfg.ScannerVersion && !opts.Force {
		log.Debug("book is up to date, skipping")
		result.Outcome = OutcomeSkipped
		return result, nil
	}

	filename, hints := pathparse.Parse(path)
	agg.Enforce(filename)
	agg.Enforce(hints)

	extracted := i.extractor.Extract(ctx, path)
	defer extracted.Cleanup()

	var actions []report.Entry
	if newPath, ok := extracted.Rescued(); ok {
		agg.Book.Path = newPath
		agg.Book.Ext = "pdf"
		actions = append(actions, report.Entry{
			Action: report.ActionRescueRename,
			Note:   "was " + filepath.Base(path),
		})
	}
	mismatches := compareContainer(filename, extracted.Fields)
	agg.Merge(extracted.Fields.Without(mediafile.KeyRescuedPath))

	result.Diagnostics = enrich.Run(ctx, agg, i.providers...)

	classified := mediafile.Fields{}
	genre, extras := classify.Classify(agg.Book.Keywords, agg.Book.Description)
	if genre != classify.Unknown {
		classified[mediafile.KeyGenre] = genre
	}
	classified[mediafile.KeyKeywords] = extras
	classified[mediafile.KeyRegions] = classify.Regions(agg.Book.Keywords, agg.Book.Description)
	agg.Merge(classified)

	if agg.Book.ImagePath == "" && extracted.CoverPath != "" && i.cfg.CoverDir != "" {
		if p, err := i.keepCover(extracted.CoverPath); err != nil {
			log.Err(err).Warn("failed to keep cover")
		} else {
			agg.Book.ImagePath = p
			extracted.CoverPath = ""
		}
	}

	agg.Book.ScannerVersion = i.cfg.ScannerVersion

	saved, err := i.library.Save(ctx, agg)
	if err != nil {
		return nil, err
	}
	result.Outcome = OutcomeSaved
	result.Save = saved

	if saved.Duplicate {
		actions = append(actions, report.Entry{
			Action: report.ActionDuplicateCopy,
			Note:   "canonical name was taken",
		})
	}
	if len(saved.AmbiguousWorkIDs) > 0 {
		actions = append(actions, report.Entry{
			Action: report.ActionWorkSplit,
			Note:   "authors overlap with works " + joinInts(saved.AmbiguousWorkIDs),
		})
	}

	if len(mismatches) > 0 && len(actions) == 0 {
		actions = append(actions, report.Entry{})
	}
	for n, e := range actions {
		e.BookID = saved.BookID
		e.Path = saved.Path
		if n == 0 {
			e.Mismatches = mismatches
		}
		rep.Add(e)
	}

	return result, nil
}

// keepCover moves an extracted cover into the cover directory under a fresh
// name.
func (i *Ingester) keepCover(tmp string) (string, error) {
	dst := filepath.Join(i.cfg.CoverDir, uuid.NewString()+filepath.Ext(tmp))
	if err := fileutils.MoveFile(tmp, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// compareContainer reports where the container disagrees with the filename.
// The filename stays authoritative either way.
func compareContainer(filename, container mediafile.Fields) []report.Mismatch {
	var out []report.Mismatch

	ft, ct := filename.String(mediafile.KeyTitle), container.String(mediafile.KeyTitle)
	if ft != "" && ct != "" && !strings.EqualFold(ft, ct) {
		out = append(out, report.Mismatch{
			Field: mediafile.KeyTitle,
			Values: []report.SourceValue{
				{Source: SourceFilename, Value: ft},
				{Source: SourceContainer, Value: ct},
			},
		})
	}

	fa, ca := lastnames(filename), lastnames(container)
	if fa != "" && ca != "" && fa != ca {
		out = append(out, report.Mismatch{
			Field: mediafile.KeyAuthors,
			Values: []report.SourceValue{
				{Source: SourceFilename, Value: fa},
				{Source: SourceContainer, Value: ca},
			},
		})
	}

	return out
}

func lastnames(f mediafile.Fields) string {
	var names []string
	for _, n := range f.Authors() {
		if n.Lastname != "" {
			names = append(names, strings.ToLower(n.Lastname))
		}
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func joinInts(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ", ")
}
