package works

import (
	"context"
	"database/sql"
	"strings"

	"github.com/bibliothek/bibliothek/pkg/database"
	"github.com/bibliothek/bibliothek/pkg/errcodes"
	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveWorkOptions struct {
	ID *int
}

type ListWorksOptions struct {
	Limit    *int
	Offset   *int
	Title    *string
	SeriesID *int
	AuthorID *int
	Search   *string

	includeTotal bool
}

type UpdateWorkOptions struct {
	Columns []string
}

// FingerprintOptions describes the series edition a Book belongs to.
type FingerprintOptions struct {
	AuthorSlug  string
	SeriesIndex float64
	// SeriesName matches the canonical name or any language alias.
	SeriesName string
	// Language must be one whose title slot is still empty on the Work.
	Language string
}

type Service struct {
	db bun.IDB
}

// NewService accepts either the database handle or a running transaction.
func NewService(db bun.IDB) *Service {
	return &Service{db}
}

func (svc *Service) CreateWork(ctx context.Context, work *models.Work) error {
	if work.Regions == nil {
		work.Regions = models.StringSet{}
	}
	if work.Keywords == nil {
		work.Keywords = models.StringSet{}
	}
	_, err := svc.db.
		NewInsert().
		Model(work).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errcodes.IntegrityViolation("work " + work.Title)
		}
		return errors.WithStack(err)
	}
	return nil
}

func (svc *Service) RetrieveWork(ctx context.Context, opts RetrieveWorkOptions) (*models.Work, error) {
	work := &models.Work{}

	q := svc.db.
		NewSelect().
		Model(work)

	if opts.ID != nil {
		q = q.Where("w.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Work")
		}
		return nil, errors.WithStack(err)
	}

	return work, nil
}

func (svc *Service) ListWorks(ctx context.Context, opts ListWorksOptions) ([]*models.Work, error) {
	w, _, err := svc.listWorksWithTotal(ctx, opts)
	return w, errors.WithStack(err)
}

func (svc *Service) ListWorksWithTotal(ctx context.Context, opts ListWorksOptions) ([]*models.Work, int, error) {
	opts.includeTotal = true
	return svc.listWorksWithTotal(ctx, opts)
}

func (svc *Service) listWorksWithTotal(ctx context.Context, opts ListWorksOptions) ([]*models.Work, int, error) {
	var works []*models.Work
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&works).
		Order("w.id ASC")

	if opts.Title != nil {
		q = q.Where("w.title = ?", *opts.Title)
	}
	if opts.SeriesID != nil {
		q = q.Where("w.series_id = ?", *opts.SeriesID).
			OrderExpr("w.series_index ASC")
	}
	if opts.AuthorID != nil {
		q = q.Where("w.id IN (SELECT work_id FROM work_to_author WHERE author_id = ?)", *opts.AuthorID)
	}
	if opts.Search != nil && *opts.Search != "" {
		pattern := database.ContainsPattern(*opts.Search)
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			for _, col := range []string{"title", "title_de", "title_en", "title_fr", "title_it", "title_es"} {
				q = q.WhereOr("w."+col+" LIKE ? ESCAPE '\\'", pattern)
			}
			return q
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

	return works, total, nil
}

func (svc *Service) UpdateWork(ctx context.Context, work *models.Work, opts UpdateWorkOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	res, err := svc.db.
		NewUpdate().
		Model(work).
		Column(opts.Columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Work")
	}
	return nil
}

// defensiveColumns are only written while the stored value is empty or zero.
var defensiveColumns = []string{
	"series_index", "title", "title_de", "title_en", "title_fr", "title_it", "title_es",
	"slug", "genre", "description", "rating",
}

// UpdateWorkDefensively fills the empty columns of the stored Work from work
// and never replaces a stored value. The aggregated columns (keywords,
// regions, stars, notes) and series_id are written as they are, since work
// already carries the union of everything stored. work is reloaded
// afterwards.
func (svc *Service) UpdateWorkDefensively(ctx context.Context, work *models.Work) error {
	values := map[string]any{
		"series_index": work.SeriesIndex,
		"title":        work.Title,
		"title_de":     work.TitleDE,
		"title_en":     work.TitleEN,
		"title_fr":     work.TitleFR,
		"title_it":     work.TitleIT,
		"title_es":     work.TitleES,
		"slug":         work.Slug,
		"genre":        work.Genre,
		"description":  work.Description,
		"rating":       work.Rating,
	}

	q := svc.db.NewUpdate().
		Model((*models.Work)(nil)).
		Where("id = ?", work.ID)
	for _, col := range defensiveColumns {
		q = q.Set("? = CASE WHEN ? IS NULL OR ? = '' OR ? = 0.0 THEN ? ELSE ? END",
			bun.Ident(col), bun.Ident(col), bun.Ident(col), bun.Ident(col), values[col], bun.Ident(col))
	}
	q = q.Set("series_id = ?", work.SeriesID).
		Set("keywords = ?", work.Keywords).
		Set("regions = ?", work.Regions).
		Set("stars = ?", work.Stars).
		Set("notes = ?", work.Notes)

	res, err := q.Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Work")
	}

	stored, err := svc.RetrieveWork(ctx, RetrieveWorkOptions{ID: &work.ID})
	if err != nil {
		return err
	}
	*work = *stored
	return nil
}

// DeleteWork removes the Work and its author links. Books keep their row
// with work_id cleared.
func (svc *Service) DeleteWork(ctx context.Context, workID int) error {
	_, err := svc.db.NewDelete().
		Model((*models.WorkToAuthor)(nil)).
		Where("work_id = ?", workID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = svc.db.NewUpdate().
		Model((*models.Book)(nil)).
		Set("work_id = NULL").
		Where("work_id = ?", workID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = svc.db.NewDelete().
		Model((*models.Work)(nil)).
		Where("id = ?", workID).
		Exec(ctx)
	return errors.WithStack(err)
}

// ListAuthors returns the authors of a Work in link order.
func (svc *Service) ListAuthors(ctx context.Context, workID int) ([]*models.Author, error) {
	var authors []*models.Author
	err := svc.db.NewSelect().
		Model(&authors).
		Join("JOIN work_to_author AS wta ON wta.author_id = a.id").
		Where("wta.work_id = ?", workID).
		OrderExpr("wta.rowid ASC").
		Scan(ctx)
	return authors, errors.WithStack(err)
}

// ReplaceAuthors rewrites the author links of a Work in the given order.
func (svc *Service) ReplaceAuthors(ctx context.Context, workID int, authorIDs []int) error {
	_, err := svc.db.NewDelete().
		Model((*models.WorkToAuthor)(nil)).
		Where("work_id = ?", workID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	seen := map[int]bool{}
	for _, id := range authorIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		_, err := svc.db.NewInsert().
			Model(&models.WorkToAuthor{WorkID: workID, AuthorID: id}).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// ListBooks returns the Books attached to a Work in id order.
func (svc *Service) ListBooks(ctx context.Context, workID int) ([]*models.Book, error) {
	var books []*models.Book
	err := svc.db.NewSelect().
		Model(&books).
		Where("b.work_id = ?", workID).
		Order("b.id ASC").
		Scan(ctx)
	return books, errors.WithStack(err)
}

// FindByFingerprint looks for a Work of the same author and series position
// that has an edition stored but none in opts.Language yet.
func (svc *Service) FindByFingerprint(ctx context.Context, opts FingerprintOptions) (*models.Work, error) {
	slot := titleColumn(opts.Language)
	if opts.AuthorSlug == "" || opts.SeriesName == "" || opts.SeriesIndex <= 0 || slot == "" {
		return nil, errcodes.NotFound("Work")
	}

	work := &models.Work{}
	err := svc.db.NewSelect().
		Model(work).
		Join("JOIN series AS s ON s.id = w.series_id").
		Where("w.series_index = ?", opts.SeriesIndex).
		Where("w."+slot+" = ''").
		Where("EXISTS (SELECT 1 FROM books WHERE books.work_id = w.id)").
		Where("EXISTS (SELECT 1 FROM work_to_author AS wta JOIN authors ON authors.id = wta.author_id WHERE wta.work_id = w.id AND authors.slug = ?)", opts.AuthorSlug).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			for _, col := range []string{"name", "name_de", "name_en", "name_fr", "name_it", "name_es"} {
				q = q.WhereOr("s."+col+" = ?", opts.SeriesName)
			}
			return q
		}).
		Order("w.id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Work")
		}
		return nil, errors.WithStack(err)
	}
	return work, nil
}

func titleColumn(lang string) string {
	for _, l := range models.Languages {
		if l == lang {
			return "title_" + strings.ToLower(l)
		}
	}
	return ""
}

// CleanupOrphanedWorks deletes Works no Book refers to.
func (svc *Service) CleanupOrphanedWorks(ctx context.Context) (int, error) {
	result, err := svc.db.NewDelete().
		Model((*models.Work)(nil)).
		Where("id NOT IN (SELECT work_id FROM books WHERE work_id IS NOT NULL)").
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}

// CleanupDanglingLinks deletes author links whose Work or Author is gone.
func (svc *Service) CleanupDanglingLinks(ctx context.Context) (int, error) {
	result, err := svc.db.NewDelete().
		Model((*models.WorkToAuthor)(nil)).
		Where("work_id NOT IN (SELECT id FROM works) OR author_id NOT IN (SELECT id FROM authors)").
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}
