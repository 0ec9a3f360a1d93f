// Package maintenance keeps the store consistent with itself and with the
// files on disk: orphan cleanup, deep repair and missing-file handling.
package maintenance

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/bibliothek/bibliothek/pkg/aggregate"
	"github.com/bibliothek/bibliothek/pkg/authors"
	"github.com/bibliothek/bibliothek/pkg/books"
	"github.com/bibliothek/bibliothek/pkg/fileutils"
	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/bibliothek/bibliothek/pkg/pdf"
	"github.com/bibliothek/bibliothek/pkg/report"
	"github.com/bibliothek/bibliothek/pkg/series"
	"github.com/bibliothek/bibliothek/pkg/works"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

type CleanupResult struct {
	Works   int `json:"works"`
	Series  int `json:"series"`
	Links   int `json:"links"`
	Authors int `json:"authors"`
}

// CleanupOrphans deletes Works without Books, Series without Works, author
// links whose Work is gone and Authors without links, in that order, and
// compacts the store afterwards.
func (svc *Service) CleanupOrphans(ctx context.Context) (*CleanupResult, error) {
	log := logger.FromContext(ctx)
	result := &CleanupResult{}

	err := svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if result.Works, err = works.NewService(tx).CleanupOrphanedWorks(ctx); err != nil {
			return err
		}
		if result.Series, err = series.NewService(tx).CleanupOrphanedSeries(ctx); err != nil {
			return err
		}
		if result.Links, err = works.NewService(tx).CleanupDanglingLinks(ctx); err != nil {
			return err
		}
		result.Authors, err = authors.NewService(tx).CleanupOrphanedAuthors(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if _, err := svc.db.ExecContext(ctx, "VACUUM"); err != nil {
		return nil, errors.Wrap(err, "failed to compact store")
	}

	log.Info("orphan cleanup done", logger.Data{
		"works":   result.Works,
		"series":  result.Series,
		"links":   result.Links,
		"authors": result.Authors,
	})
	return result, nil
}

type RepairOptions struct {
	// MarkMissing keeps Books whose file is gone under a placeholder path
	// instead of deleting them.
	MarkMissing bool
}

type RepairResult struct {
	Checked    int   `json:"checked"`
	Removed    []int `json:"removed"`
	Missing    []int `json:"missing"`
	Renamed    []int `json:"renamed"`
	Unreadable []int `json:"unreadable"`
}

// DeepRepair walks every stored Book. Entries whose file is absent are
// deleted (or marked missing); entries pointing at the same file as a lower
// id are deleted; files whose header contradicts their extension are renamed
// and their path updated; PDFs that don't parse are reported. rep may be nil.
func (svc *Service) DeepRepair(ctx context.Context, opts RepairOptions, rep *report.Report) (*RepairResult, error) {
	log := logger.FromContext(ctx)
	bookService := books.NewService(svc.db)
	if rep == nil {
		rep = report.New("")
	}

	list, err := bookService.ListPaths(ctx)
	if err != nil {
		return nil, err
	}

	result := &RepairResult{Removed: []int{}, Missing: []int{}, Renamed: []int{}, Unreadable: []int{}}
	seen := map[string]int{}
	// Paths that differ only in case name one file on case-insensitive file
	// systems and two on the rest; os.SameFile decides.
	folded := map[string]*models.Book{}
	fold := cases.Fold()

	for _, b := range list {
		if b.IsMissing() {
			continue
		}
		result.Checked++

		key := norm.NFC.String(b.Path)
		first, ok := seen[key]
		if !ok {
			if prev, hit := folded[fold.String(key)]; hit && sameFile(prev.Path, b.Path) {
				first, ok = prev.ID, true
			}
		}
		if ok {
			if err := bookService.DeleteBook(ctx, b.ID); err != nil {
				return nil, err
			}
			result.Removed = append(result.Removed, b.ID)
			rep.AddAction(b.ID, b.Path, report.ActionRemoved, "same file as book "+strconv.Itoa(first))
			continue
		}
		seen[key] = b.ID
		if _, hit := folded[fold.String(key)]; !hit {
			folded[fold.String(key)] = b
		}

		if !fileutils.Exists(b.Path) {
			if opts.MarkMissing {
				if err := svc.MarkMissing(ctx, b.ID); err != nil {
					return nil, err
				}
				result.Missing = append(result.Missing, b.ID)
				rep.AddAction(b.ID, b.Path, report.ActionMarkedMissing, "")
				continue
			}
			if err := bookService.DeleteBook(ctx, b.ID); err != nil {
				return nil, err
			}
			result.Removed = append(result.Removed, b.ID)
			rep.AddAction(b.ID, b.Path, report.ActionRemoved, "file is gone")
			continue
		}

		renamed, err := svc.fixExtension(ctx, bookService, b, rep)
		if err != nil {
			log.Err(err).Warn("failed to fix extension", logger.Data{"book_id": b.ID, "path": b.Path})
		} else if renamed {
			result.Renamed = append(result.Renamed, b.ID)
		}

		if b.Ext == "pdf" {
			if _, err := pdf.PageCount(b.Path); err != nil {
				result.Unreadable = append(result.Unreadable, b.ID)
				rep.AddAction(b.ID, b.Path, report.ActionNone, "pdf does not parse")
			}
		}
	}

	log.Info("deep repair done", logger.Data{
		"checked":    result.Checked,
		"removed":    len(result.Removed),
		"missing":    len(result.Missing),
		"renamed":    len(result.Renamed),
		"unreadable": len(result.Unreadable),
	})
	return result, nil
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// fixExtension renames b when its header names another container format.
// b is updated in place.
func (svc *Service) fixExtension(ctx context.Context, bookService *books.Service, b *models.Book, rep *report.Report) (bool, error) {
	kind, err := fileutils.SniffFile(b.Path)
	if err != nil {
		return false, err
	}
	ext := strings.ToLower(b.Ext)
	if kind == fileutils.KindUnknown || kind == fileutils.KindZIP || fileutils.MatchesExtension(kind, ext) {
		return false, nil
	}

	oldPath := b.Path
	newPath, _, err := fileutils.ChangeExtension(b.Path, string(kind))
	if err != nil {
		return false, err
	}

	b.Path = newPath
	b.Ext = string(kind)
	if err := bookService.UpdateBook(ctx, b, books.UpdateBookOptions{Columns: []string{"path", "ext"}}); err != nil {
		if mvErr := fileutils.MoveFile(newPath, oldPath); mvErr != nil {
			logger.FromContext(ctx).Err(mvErr).Error("failed to undo rename")
		}
		b.Path, b.Ext = oldPath, ext
		return false, err
	}

	logger.FromContext(ctx).Info("renamed file to match its header", logger.Data{"book_id": b.ID, "old_path": oldPath, "path": newPath})
	rep.AddAction(b.ID, newPath, report.ActionRescueRename, "was "+oldPath)
	return true, nil
}

// MarkMissing records that a Book's file is gone: the path becomes the
// placeholder missing:<id> and the old path is appended to the notes so the
// Book can be linked again by hand.
func (svc *Service) MarkMissing(ctx context.Context, bookID int) error {
	bookService := books.NewService(svc.db)
	book, err := bookService.RetrieveBook(ctx, books.RetrieveBookOptions{ID: &bookID})
	if err != nil {
		return err
	}
	if book.IsMissing() {
		return nil
	}

	book.Notes = aggregate.AppendNote(book.Notes, "missing file: "+book.Path)
	book.Path = models.MissingPathPrefix + strconv.Itoa(book.ID)
	return bookService.UpdateBook(ctx, book, books.UpdateBookOptions{Columns: []string{"path", "notes"}})
}
