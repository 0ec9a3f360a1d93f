package authors

import (
	"context"
	"database/sql"
	"strings"

	"github.com/bibliothek/bibliothek/pkg/database"
	"github.com/bibliothek/bibliothek/pkg/errcodes"
	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/bibliothek/bibliothek/pkg/personname"
	"github.com/bibliothek/bibliothek/pkg/slugify"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

type RetrieveAuthorOptions struct {
	ID   *int
	Slug *string
}

type ListAuthorsOptions struct {
	Limit  *int
	Offset *int
	WorkID *int
	Search *string

	includeTotal bool
}

type UpdateAuthorOptions struct {
	Columns []string
}

type Service struct {
	db bun.IDB
}

// NewService accepts either the database handle or a running transaction.
func NewService(db bun.IDB) *Service {
	return &Service{db}
}

func (svc *Service) CreateAuthor(ctx context.Context, author *models.Author) error {
	if author.Slug == "" {
		author.Slug = slugify.Author(personname.Name{Firstname: author.Firstname, Lastname: author.Lastname})
	}
	if author.Slug == "" {
		return errcodes.ValidationError("Author name can't be empty.")
	}
	_, err := svc.db.
		NewInsert().
		Model(author).
		Returning("*").
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errcodes.IntegrityViolation("author slug " + author.Slug)
		}
		return errors.WithStack(err)
	}
	return nil
}

func (svc *Service) RetrieveAuthor(ctx context.Context, opts RetrieveAuthorOptions) (*models.Author, error) {
	author := &models.Author{}

	q := svc.db.
		NewSelect().
		Model(author)

	if opts.ID != nil {
		q = q.Where("a.id = ?", *opts.ID)
	}
	if opts.Slug != nil {
		q = q.Where("a.slug = ?", *opts.Slug)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Author")
		}
		return nil, errors.WithStack(err)
	}

	return author, nil
}

// FindOrCreateAuthor resolves author by slug. A stored author is returned
// as stored; an unknown one is inserted with defaultLanguage as its main
// language when it carries none.
func (svc *Service) FindOrCreateAuthor(ctx context.Context, author *models.Author, defaultLanguage string) (*models.Author, error) {
	if author.Slug == "" {
		author.Slug = slugify.Author(personname.Name{Firstname: author.Firstname, Lastname: author.Lastname})
	}

	stored, err := svc.RetrieveAuthor(ctx, RetrieveAuthorOptions{Slug: &author.Slug})
	if err == nil {
		return stored, nil
	}
	if !errors.Is(err, errcodes.NotFound("Author")) {
		return nil, err
	}

	created := *author
	created.ID = 0
	if created.Language == "" {
		created.Language = defaultLanguage
	}
	if err := svc.CreateAuthor(ctx, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (svc *Service) ListAuthors(ctx context.Context, opts ListAuthorsOptions) ([]*models.Author, error) {
	a, _, err := svc.listAuthorsWithTotal(ctx, opts)
	return a, errors.WithStack(err)
}

func (svc *Service) ListAuthorsWithTotal(ctx context.Context, opts ListAuthorsOptions) ([]*models.Author, int, error) {
	opts.includeTotal = true
	return svc.listAuthorsWithTotal(ctx, opts)
}

func (svc *Service) listAuthorsWithTotal(ctx context.Context, opts ListAuthorsOptions) ([]*models.Author, int, error) {
	var authors []*models.Author
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&authors).
		Order("a.lastname ASC", "a.firstname ASC", "a.id ASC")

	if opts.WorkID != nil {
		q = q.Where("a.id IN (SELECT author_id FROM work_to_author WHERE work_id = ?)", *opts.WorkID)
	}
	if opts.Search != nil && *opts.Search != "" {
		pattern := database.ContainsPattern(*opts.Search)
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.WhereOr("a.firstname LIKE ? ESCAPE '\\'", pattern).
				WhereOr("a.lastname LIKE ? ESCAPE '\\'", pattern).
				WhereOr("a.slug LIKE ? ESCAPE '\\'", database.ContainsPattern(slugify.Make(*opts.Search)))
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

	return authors, total, nil
}

// UpdateAuthor writes the given columns. Renaming an author moves its slug
// along; a slug already taken is an integrity violation.
func (svc *Service) UpdateAuthor(ctx context.Context, author *models.Author, opts UpdateAuthorOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	columns := append([]string{}, opts.Columns...)
	for _, col := range opts.Columns {
		if col == "firstname" || col == "lastname" {
			author.Slug = slugify.Author(personname.Name{Firstname: author.Firstname, Lastname: author.Lastname})
			columns = append(columns, "slug")
			break
		}
	}

	res, err := svc.db.
		NewUpdate().
		Model(author).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return errcodes.IntegrityViolation("author slug " + author.Slug)
		}
		return errors.WithStack(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errcodes.NotFound("Author")
	}
	return nil
}

// MergeAuthors moves every work of loser onto winner and deletes loser.
// Links that winner already holds are dropped.
func (svc *Service) MergeAuthors(ctx context.Context, winnerID, loserID int) error {
	if winnerID == loserID {
		return errcodes.ValidationError("Can't merge an author into itself.")
	}

	return svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		txSvc := NewService(tx)
		winner, err := txSvc.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &winnerID})
		if err != nil {
			return err
		}
		loser, err := txSvc.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &loserID})
		if err != nil {
			return err
		}

		_, err = tx.NewRaw("UPDATE OR IGNORE work_to_author SET author_id = ? WHERE author_id = ?", winner.ID, loser.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		_, err = tx.NewDelete().
			Model((*models.WorkToAuthor)(nil)).
			Where("author_id = ?", loser.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		fillEmpty(winner, loser)
		err = txSvc.UpdateAuthor(ctx, winner, UpdateAuthorOptions{Columns: []string{
			"language", "country", "birth_year", "birth_place", "birth_date", "image_path", "vita",
			"link_de", "link_en", "link_fr", "link_it", "link_es",
		}})
		if err != nil {
			return err
		}

		_, err = tx.NewDelete().
			Model((*models.Author)(nil)).
			Where("id = ?", loser.ID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		logger.FromContext(ctx).Info("merged authors", logger.Data{
			"winner_id": winner.ID,
			"loser_id":  loser.ID,
		})
		return nil
	})
}

// fillEmpty copies biography fields from src into the empty fields of dst.
func fillEmpty(dst, src *models.Author) {
	for _, pair := range [][2]*string{
		{&dst.Language, &src.Language},
		{&dst.Country, &src.Country},
		{&dst.BirthPlace, &src.BirthPlace},
		{&dst.BirthDate, &src.BirthDate},
		{&dst.ImagePath, &src.ImagePath},
		{&dst.Vita, &src.Vita},
		{&dst.LinkDE, &src.LinkDE},
		{&dst.LinkEN, &src.LinkEN},
		{&dst.LinkFR, &src.LinkFR},
		{&dst.LinkIT, &src.LinkIT},
		{&dst.LinkES, &src.LinkES},
	} {
		if strings.TrimSpace(*pair[0]) == "" {
			*pair[0] = *pair[1]
		}
	}
	if dst.BirthYear == 0 {
		dst.BirthYear = src.BirthYear
	}
}

// SplitAuthor detaches workIDs from the author and attributes them to a new
// author with the same lastname and firstname. It undoes a homonym collapse
// when firstname disambiguates the two people (for example a middle
// initial).
func (svc *Service) SplitAuthor(ctx context.Context, authorID int, workIDs []int, firstname string) (*models.Author, error) {
	if len(workIDs) == 0 {
		return nil, errcodes.ValidationError("No works given to split off.")
	}

	var created *models.Author
	err := svc.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		txSvc := NewService(tx)
		source, err := txSvc.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &authorID})
		if err != nil {
			return err
		}

		author := &models.Author{
			Firstname: strings.TrimSpace(firstname),
			Lastname:  source.Lastname,
			Language:  source.Language,
		}
		if err := txSvc.CreateAuthor(ctx, author); err != nil {
			return err
		}

		res, err := tx.NewUpdate().
			Model((*models.WorkToAuthor)(nil)).
			Set("author_id = ?", author.ID).
			Where("author_id = ?", source.ID).
			Where("work_id IN (?)", bun.In(workIDs)).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return errcodes.ValidationError("None of the works belong to the author.")
		}

		logger.FromContext(ctx).Info("split author", logger.Data{
			"author_id":     source.ID,
			"new_author_id": author.ID,
			"work_ids":      workIDs,
		})
		created = author
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (svc *Service) DeleteAuthor(ctx context.Context, authorID int) error {
	_, err := svc.db.
		NewDelete().
		Model((*models.Author)(nil)).
		Where("id = ?", authorID).
		Exec(ctx)
	return errors.WithStack(err)
}

// CleanupOrphanedAuthors deletes authors without any work.
func (svc *Service) CleanupOrphanedAuthors(ctx context.Context) (int, error) {
	result, err := svc.db.NewDelete().
		Model((*models.Author)(nil)).
		Where("id NOT IN (SELECT author_id FROM work_to_author)").
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}
