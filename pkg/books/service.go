package books

import (
	"context"
	"database/sql"

	"github.com/bibliothek/bibliothek/pkg/database"
	"github.com/bibliothek/bibliothek/pkg/errcodes"
	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveBookOptions struct {
	ID   *int
	Path *string
}

type ListBooksOptions struct {
	Limit    *int
	Offset   *int
	WorkID   *int
	Language *string
	ISBN     *string
	Missing  *bool
	Search   *string

	includeTotal bool
}

type UpdateBookOptions struct {
	// Columns limits the update. Empty means every column.
	Columns []string
}

type Service struct {
	db bun.IDB
}

// NewService accepts either the database handle or a running transaction.
func NewService(db bun.IDB) *Service {
	return &Service{db}
}

func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	normalizeSets(book)
	_, err := svc.db.
		NewInsert().
		Model(book).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errcodes.IntegrityViolation("book path " + book.Path)
		}
		return errors.WithStack(err)
	}
	return nil
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book)

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.Path != nil {
		q = q.Where("b.path = ?", *opts.Path)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	b, _, err := svc.listBooksWithTotal(ctx, opts)
	return b, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&books).
		Order("b.id ASC")

	if opts.WorkID != nil {
		q = q.Where("b.work_id = ?", *opts.WorkID)
	}
	if opts.Language != nil {
		q = q.Where("b.language = ?", *opts.Language)
	}
	if opts.ISBN != nil {
		q = q.Where("b.isbn = ?", *opts.ISBN)
	}
	if opts.Missing != nil {
		if *opts.Missing {
			q = q.Where("b.path LIKE ?", models.MissingPathPrefix+"%")
		} else {
			q = q.Where("b.path NOT LIKE ?", models.MissingPathPrefix+"%")
		}
	}
	if opts.Search != nil && *opts.Search != "" {
		pattern := database.ContainsPattern(*opts.Search)
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.WhereOr("b.title LIKE ? ESCAPE '\\'", pattern).
				WhereOr("b.path LIKE ? ESCAPE '\\'", pattern).
				WhereOr("b.series_name LIKE ? ESCAPE '\\'", pattern)
		})
	}
	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return books, total, nil
}

func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	normalizeSets(book)

	q := svc.db.
		NewUpdate().
		Model(book).
		WherePK()
	if len(opts.Columns) > 0 {
		q = q.Column(opts.Columns...)
	} else {
		q = q.ExcludeColumn("id")
	}

	res, err := q.Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errcodes.IntegrityViolation("book path " + book.Path)
		}
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Book")
	}
	return nil
}

// SaveBook inserts a new Book (id 0) or rewrites a stored one.
func (svc *Service) SaveBook(ctx context.Context, book *models.Book) error {
	if book.ID == 0 {
		return svc.CreateBook(ctx, book)
	}
	return svc.UpdateBook(ctx, book, UpdateBookOptions{})
}

// DeleteBook removes the Book row only. The Work stays until orphan cleanup.
func (svc *Service) DeleteBook(ctx context.Context, bookID int) error {
	res, err := svc.db.
		NewDelete().
		Model((*models.Book)(nil)).
		Where("id = ?", bookID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Book")
	}
	return nil
}

// ListPaths returns id and path of every Book, lowest id first.
func (svc *Service) ListPaths(ctx context.Context) ([]*models.Book, error) {
	var books []*models.Book
	err := svc.db.NewSelect().
		Model(&books).
		Column("b.id", "b.path", "b.ext", "b.work_id").
		Order("b.id ASC").
		Scan(ctx)
	return books, errors.WithStack(err)
}

func normalizeSets(book *models.Book) {
	if book.Regions == nil {
		book.Regions = models.StringSet{}
	}
	if book.Keywords == nil {
		book.Keywords = models.StringSet{}
	}
}
