package series

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/bibliothek/bibliothek/pkg/database"
	"github.com/bibliothek/bibliothek/pkg/errcodes"
	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/bibliothek/bibliothek/pkg/slugify"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type RetrieveSeriesOptions struct {
	ID   *int
	Name *string
	Slug *string
}

type ListSeriesOptions struct {
	Limit  *int
	Offset *int
	Search *string

	includeTotal bool
}

type UpdateSeriesOptions struct {
	Columns []string
}

type Service struct {
	db bun.IDB
}

// NewService accepts either the database handle or a running transaction.
func NewService(db bun.IDB) *Service {
	return &Service{db}
}

// CreateSeries inserts series, deriving the slug from the name when unset.
// A slug already taken by another series gets a numeric suffix.
func (svc *Service) CreateSeries(ctx context.Context, series *models.Series) error {
	series.Name = strings.TrimSpace(series.Name)
	if series.Name == "" {
		return errcodes.ValidationError("Series name can't be empty.")
	}
	if series.Slug == "" {
		series.Slug = slugify.Make(series.Name)
	}

	slug, err := svc.freeSlug(ctx, series.Slug)
	if err != nil {
		return err
	}
	series.Slug = slug

	_, err = svc.db.
		NewInsert().
		Model(series).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errcodes.IntegrityViolation("series slug " + series.Slug)
		}
		return errors.WithStack(err)
	}
	return nil
}

func (svc *Service) freeSlug(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		exists, err := svc.db.NewSelect().
			Model((*models.Series)(nil)).
			Where("s.slug = ?", candidate).
			Exists(ctx)
		if err != nil {
			return "", errors.WithStack(err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
}

func (svc *Service) RetrieveSeries(ctx context.Context, opts RetrieveSeriesOptions) (*models.Series, error) {
	series := &models.Series{}

	q := svc.db.
		NewSelect().
		Model(series)

	if opts.ID != nil {
		q = q.Where("s.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		// Canonical names are case-sensitive.
		q = q.Where("s.name = ?", *opts.Name)
	}
	if opts.Slug != nil {
		q = q.Where("s.slug = ?", *opts.Slug)
	}

	err := q.Order("s.id ASC").Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Series")
		}
		return nil, errors.WithStack(err)
	}

	return series, nil
}

// RetrieveSeriesByAlias finds a series whose name in any language slot is
// name.
func (svc *Service) RetrieveSeriesByAlias(ctx context.Context, name string) (*models.Series, error) {
	series := &models.Series{}
	err := svc.db.
		NewSelect().
		Model(series).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			for _, col := range []string{"name_de", "name_en", "name_fr", "name_it", "name_es"} {
				q = q.WhereOr("s."+col+" = ?", name)
			}
			return q
		}).
		Order("s.id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Series")
		}
		return nil, errors.WithStack(err)
	}
	return series, nil
}

// FindOrCreateSeries resolves name to a series: by canonical name first,
// then by any language alias, creating a new series when neither matches.
// The alias slot of lang is filled on creation.
func (svc *Service) FindOrCreateSeries(ctx context.Context, name, lang string) (*models.Series, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, errors.New("series name cannot be empty")
	}

	series, err := svc.RetrieveSeries(ctx, RetrieveSeriesOptions{Name: &name})
	if err == nil {
		return series, false, nil
	}
	if !errors.Is(err, errcodes.NotFound("Series")) {
		return nil, false, err
	}

	series, err = svc.RetrieveSeriesByAlias(ctx, name)
	if err == nil {
		return series, false, nil
	}
	if !errors.Is(err, errcodes.NotFound("Series")) {
		return nil, false, err
	}

	series = &models.Series{Name: name}
	*series.NameSlot(lang) = name
	if err := svc.CreateSeries(ctx, series); err != nil {
		return nil, false, err
	}
	return series, true, nil
}

// NameTaken reports whether a series other than id already carries name as
// its canonical name.
func (svc *Service) NameTaken(ctx context.Context, name string, id int) (bool, error) {
	exists, err := svc.db.NewSelect().
		Model((*models.Series)(nil)).
		Where("s.name = ?", name).
		Where("s.id != ?", id).
		Exists(ctx)
	return exists, errors.WithStack(err)
}

func (svc *Service) ListSeries(ctx context.Context, opts ListSeriesOptions) ([]*models.Series, error) {
	s, _, err := svc.listSeriesWithTotal(ctx, opts)
	return s, errors.WithStack(err)
}

func (svc *Service) ListSeriesWithTotal(ctx context.Context, opts ListSeriesOptions) ([]*models.Series, int, error) {
	opts.includeTotal = true
	return svc.listSeriesWithTotal(ctx, opts)
}

func (svc *Service) listSeriesWithTotal(ctx context.Context, opts ListSeriesOptions) ([]*models.Series, int, error) {
	var series []*models.Series
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&series).
		Order("s.name ASC", "s.id ASC")

	if opts.Search != nil && *opts.Search != "" {
		pattern := database.ContainsPattern(*opts.Search)
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			for _, col := range []string{"name", "name_de", "name_en", "name_fr", "name_it", "name_es"} {
				q = q.WhereOr("s."+col+" LIKE ? ESCAPE '\\'", pattern)
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

	return series, total, nil
}

// UpdateSeries writes the given columns. The slug is never rewritten.
func (svc *Service) UpdateSeries(ctx context.Context, series *models.Series, opts UpdateSeriesOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	columns := make([]string, 0, len(opts.Columns))
	for _, col := range opts.Columns {
		if col != "slug" && col != "id" {
			columns = append(columns, col)
		}
	}

	res, err := svc.db.
		NewUpdate().
		Model(series).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Series")
	}
	return nil
}

func (svc *Service) DeleteSeries(ctx context.Context, seriesID int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Series)(nil)).
		Where("id = ?", seriesID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// CleanupOrphanedSeries deletes series no work refers to.
func (svc *Service) CleanupOrphanedSeries(ctx context.Context) (int, error) {
	result, err := svc.db.NewDelete().
		Model((*models.Series)(nil)).
		Where("id NOT IN (SELECT series_id FROM works WHERE series_id IS NOT NULL)").
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}

// GetSeriesWorkCount returns the number of works in a series.
func (svc *Service) GetSeriesWorkCount(ctx context.Context, seriesID int) (int, error) {
	count, err := svc.db.NewSelect().
		Model((*models.Work)(nil)).
		Where("w.series_id = ?", seriesID).
		Count(ctx)
	return count, errors.WithStack(err)
}
