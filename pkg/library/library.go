// Package library loads, saves and deletes Book aggregates. A save runs the
// whole Series, Work, Book and author-link sequence in one transaction and
// keeps the file name on disk in sync with the stored metadata.
package library

import (
	"context"

	"github.com/bibliothek/bibliothek/pkg/aggregate"
	"github.com/bibliothek/bibliothek/pkg/books"
	"github.com/bibliothek/bibliothek/pkg/config"
	"github.com/bibliothek/bibliothek/pkg/errcodes"
	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/bibliothek/bibliothek/pkg/series"
	"github.com/bibliothek/bibliothek/pkg/works"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type LoadOptions struct {
	ID   *int
	Path *string
}

type Library struct {
	db  *bun.DB
	cfg *config.Config
}

func New(db *bun.DB, cfg *config.Config) *Library {
	return &Library{db: db, cfg: cfg}
}

// Load reads a stored Book with its Work, Series and authors and takes the
// snapshot dirty tracking compares against.
func (l *Library) Load(ctx context.Context, opts LoadOptions) (*aggregate.Aggregate, error) {
	return load(ctx, l.db, opts)
}

// LoadOrNew loads the Book stored at path, or starts a fresh aggregate for
// it.
func (l *Library) LoadOrNew(ctx context.Context, path string) (*aggregate.Aggregate, error) {
	agg, err := l.Load(ctx, LoadOptions{Path: &path})
	if err == nil {
		return agg, nil
	}
	if !errors.Is(err, errcodes.NotFound("Book")) {
		return nil, err
	}
	return aggregate.New(path), nil
}

func load(ctx context.Context, db bun.IDB, opts LoadOptions) (*aggregate.Aggregate, error) {
	book, err := books.NewService(db).RetrieveBook(ctx, books.RetrieveBookOptions{
		ID:   opts.ID,
		Path: opts.Path,
	})
	if err != nil {
		return nil, err
	}

	agg := aggregate.New(book.Path)
	agg.Book = book
	agg.InDB = true

	if book.WorkID != nil {
		workService := works.NewService(db)
		work, err := workService.RetrieveWork(ctx, works.RetrieveWorkOptions{ID: book.WorkID})
		if err != nil && !errors.Is(err, errcodes.NotFound("Work")) {
			return nil, err
		}
		if work != nil {
			agg.Work = work
			agg.Authors, err = workService.ListAuthors(ctx, work.ID)
			if err != nil {
				return nil, err
			}
			if work.SeriesID != nil {
				s, err := series.NewService(db).RetrieveSeries(ctx, series.RetrieveSeriesOptions{ID: work.SeriesID})
				if err != nil && !errors.Is(err, errcodes.NotFound("Series")) {
					return nil, err
				}
				agg.Series = s
			}
		}
	}

	if agg.Work.Regions == nil {
		agg.Work.Regions = models.StringSet{}
	}
	if agg.Work.Keywords == nil {
		agg.Work.Keywords = models.StringSet{}
	}

	agg.TakeSnapshot()
	return agg, nil
}

// DeleteBook removes the Book row. Its Work, Series and authors stay until
// orphan cleanup runs.
func (l *Library) DeleteBook(ctx context.Context, bookID int) error {
	return books.NewService(l.db).DeleteBook(ctx, bookID)
}
