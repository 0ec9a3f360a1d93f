package library

import (
	"context"
	"sort"
	"strings"

	"github.com/bibliothek/bibliothek/pkg/aggregate"
	"github.com/bibliothek/bibliothek/pkg/authors"
	"github.com/bibliothek/bibliothek/pkg/books"
	"github.com/bibliothek/bibliothek/pkg/errcodes"
	"github.com/bibliothek/bibliothek/pkg/fileutils"
	"github.com/bibliothek/bibliothek/pkg/mediafile"
	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/bibliothek/bibliothek/pkg/series"
	"github.com/bibliothek/bibliothek/pkg/works"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// How the funnel resolved the Work of a saved Book.
const (
	WorkResolvedFingerprint = "fingerprint"
	WorkResolvedMatch       = "match"
	WorkResolvedNew         = "new"
)

// SaveResult describes a committed save.
type SaveResult struct {
	BookID   int  `json:"book_id"`
	WorkID   int  `json:"work_id"`
	SeriesID *int `json:"series_id,omitempty"`
	// Path is where the file lives after the save.
	Path    string `json:"path"`
	OldPath string `json:"old_path,omitempty"`
	Renamed bool   `json:"renamed"`
	// Duplicate is set when the canonical name was taken and the file got
	// the -KOPIE suffix.
	Duplicate     bool   `json:"duplicate"`
	WorkResolved  string `json:"work_resolved"`
	SeriesCreated bool   `json:"series_created"`
	// GarbageWorkIDs lists collection-bucket Works the funnel deleted.
	GarbageWorkIDs []int `json:"garbage_work_ids,omitempty"`
	// AmbiguousWorkIDs lists candidates sharing the title and some but not
	// all authors. The Book got a Work of its own.
	AmbiguousWorkIDs []int `json:"ambiguous_work_ids,omitempty"`
}

// Save persists agg in one transaction: Series, then the Work funnel and
// consolidation, then the Book row (after the rename to its canonical
// name), then the author links. On failure nothing is committed, agg keeps
// its unsaved state and a rename already done is undone.
func (l *Library) Save(ctx context.Context, agg *aggregate.Aggregate) (*SaveResult, error) {
	log := logger.FromContext(ctx).Data(logger.Data{"path": agg.Book.Path})

	if strings.TrimSpace(agg.Book.Title) == "" {
		return nil, errcodes.ValidationError("Book title can't be empty.")
	}
	if agg.Book.Path == "" {
		return nil, errcodes.ValidationError("Book path can't be empty.")
	}
	if lang, ok := models.LookupLanguage(agg.Book.Language); ok {
		agg.Book.Language = lang
	} else {
		agg.Book.Language = models.DefaultLanguage
	}

	// Work on copies so a rollback leaves agg untouched.
	work := copyAggregate(agg)
	result := &SaveResult{OldPath: agg.Book.Path}

	err := l.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		s := &saver{
			agg:     work,
			result:  result,
			rename:  l.cfg.RenameOnSave,
			authors: authors.NewService(tx),
			books:   books.NewService(tx),
			series:  series.NewService(tx),
			works:   works.NewService(tx),
		}
		return s.run(ctx)
	})
	if err != nil {
		if result.Renamed {
			if mvErr := fileutils.MoveFile(result.Path, result.OldPath); mvErr != nil {
				log.Err(mvErr).Error("failed to undo rename after failed save")
			}
		}
		log.Err(err).Warn("save failed")
		return nil, err
	}

	*agg = *work
	agg.InDB = true
	agg.TakeSnapshot()

	result.BookID = agg.Book.ID
	result.WorkID = agg.Work.ID
	result.Path = agg.Book.Path
	if agg.Series != nil {
		result.SeriesID = &agg.Series.ID
	}
	if !result.Renamed {
		result.OldPath = ""
	}

	log.Info("saved book", logger.Data{
		"book_id":       result.BookID,
		"work_id":       result.WorkID,
		"work_resolved": result.WorkResolved,
		"renamed":       result.Renamed,
	})
	return result, nil
}

type saver struct {
	agg    *aggregate.Aggregate
	result *SaveResult
	rename bool

	authors *authors.Service
	books   *books.Service
	series  *series.Service
	works   *works.Service
}

func (s *saver) run(ctx context.Context) error {
	if err := s.lookupAuthors(ctx); err != nil {
		return err
	}
	if err := s.saveSeries(ctx); err != nil {
		return err
	}
	if err := s.saveWork(ctx); err != nil {
		return err
	}
	if err := s.renameFile(ctx); err != nil {
		return err
	}
	if err := s.saveBook(ctx); err != nil {
		return err
	}
	return s.saveAuthorLinks(ctx)
}

// lookupAuthors swaps in stored author records so that their main language
// is known. Unknown authors are created with the links at the end.
func (s *saver) lookupAuthors(ctx context.Context) error {
	for i, a := range s.agg.Authors {
		if a.Slug == "" {
			continue
		}
		slug := a.Slug
		stored, err := s.authors.RetrieveAuthor(ctx, authors.RetrieveAuthorOptions{Slug: &slug})
		if err != nil {
			if errors.Is(err, errcodes.NotFound("Author")) {
				a.ID = 0
				continue
			}
			return err
		}
		s.agg.Authors[i] = stored
	}
	return nil
}

func (s *saver) saveSeries(ctx context.Context) error {
	agg := s.agg
	name := strings.TrimSpace(agg.SeriesName())
	if name == "" {
		agg.Series = nil
		agg.Work.SeriesID = nil
		return nil
	}

	if agg.Series == nil || agg.Series.ID == 0 || !hasSeriesName(agg.Series, name) {
		found, created, err := s.series.FindOrCreateSeries(ctx, name, agg.Book.Language)
		if err != nil {
			return err
		}
		agg.Series = found
		s.result.SeriesCreated = created
	}

	canonical := true
	if agg.Series.Name != name {
		taken, err := s.series.NameTaken(ctx, name, agg.Series.ID)
		if err != nil {
			return err
		}
		canonical = !taken
	}
	agg.SyncSeriesName(canonical)

	err := s.series.UpdateSeries(ctx, agg.Series, series.UpdateSeriesOptions{
		Columns: []string{"name", "name_de", "name_en", "name_fr", "name_it", "name_es"},
	})
	if err != nil {
		return err
	}

	agg.Work.SeriesID = &agg.Series.ID
	return nil
}

func hasSeriesName(s *models.Series, name string) bool {
	for _, n := range []string{s.Name, s.NameDE, s.NameEN, s.NameFR, s.NameIT, s.NameES} {
		if n == name {
			return true
		}
	}
	return false
}

// saveWork runs the funnel and consolidates the Book into the Work it
// resolves to.
func (s *saver) saveWork(ctx context.Context) error {
	agg := s.agg
	log := logger.FromContext(ctx)

	if agg.Work.ID == 0 {
		if adopted, err := s.fingerprint(ctx); err != nil {
			return err
		} else if adopted != nil {
			seriesID := agg.Work.SeriesID
			agg.Work = adopted
			agg.Work.SeriesID = seriesID
			s.result.WorkResolved = WorkResolvedFingerprint
		}
	}

	agg.PrepareWork()
	matched, err := s.funnel(ctx)
	if err != nil {
		return err
	}

	if matched == nil {
		fresh := *agg.Work
		fresh.ID = 0
		agg.Work = &fresh
		agg.Consolidate(nil)
		if err := s.works.CreateWork(ctx, agg.Work); err != nil {
			return err
		}
		s.result.WorkResolved = WorkResolvedNew
		log.Info("created work", logger.Data{"work_id": agg.Work.ID, "title": agg.Work.Title})
		return nil
	}

	if matched.ID != agg.Work.ID {
		merged := *matched
		fillWork(&merged, agg.Work)
		agg.Work = &merged
	}
	if s.result.WorkResolved == "" {
		s.result.WorkResolved = WorkResolvedMatch
	}

	stored, err := s.works.ListBooks(ctx, agg.Work.ID)
	if err != nil {
		return err
	}
	agg.Consolidate(stored)
	return s.works.UpdateWorkDefensively(ctx, agg.Work)
}

// fingerprint adopts the Work of another edition of the same series volume
// by the same author that has no title in this Book's language yet.
func (s *saver) fingerprint(ctx context.Context) (*models.Work, error) {
	agg := s.agg
	if agg.Series == nil || agg.Book.SeriesNumber <= 0 {
		return nil, nil
	}
	var first *models.Author
	for _, a := range agg.Authors {
		if !a.IsSentinel() && a.Slug != "" {
			first = a
			break
		}
	}
	if first == nil {
		return nil, nil
	}

	work, err := s.works.FindByFingerprint(ctx, works.FingerprintOptions{
		AuthorSlug:  first.Slug,
		SeriesIndex: agg.Book.SeriesNumber,
		SeriesName:  agg.SeriesName(),
		Language:    agg.Book.Language,
	})
	if err != nil {
		if errors.Is(err, errcodes.NotFound("Work")) {
			return nil, nil
		}
		return nil, err
	}
	return work, nil
}

// funnel walks the Works sharing the canonical title (and the Work already
// attached): an equal author set in the same series is a match; a
// multi-author Work claimed by a single-author Book is a leftover collection
// bucket and is deleted; a partial author overlap is recorded as ambiguous.
func (s *saver) funnel(ctx context.Context) (*models.Work, error) {
	agg := s.agg
	log := logger.FromContext(ctx)

	title := agg.Work.Title
	candidates, err := s.works.ListWorks(ctx, works.ListWorksOptions{Title: &title})
	if err != nil {
		return nil, err
	}
	if agg.Work.ID != 0 && !containsWork(candidates, agg.Work.ID) {
		current, err := s.works.RetrieveWork(ctx, works.RetrieveWorkOptions{ID: &agg.Work.ID})
		if err != nil && !errors.Is(err, errcodes.NotFound("Work")) {
			return nil, err
		}
		if current != nil {
			candidates = append([]*models.Work{current}, candidates...)
		}
	}

	target := realAuthorSlugs(agg.Authors)
	for _, c := range candidates {
		stored, err := s.works.ListAuthors(ctx, c.ID)
		if err != nil {
			return nil, err
		}
		slugs := realAuthorSlugs(stored)

		switch {
		case equalStrings(slugs, target) && sameSeries(c.SeriesID, agg.Work.SeriesID):
			return c, nil
		case len(slugs) > len(target) && len(target) == 1:
			log.Warn("deleting collection bucket work", logger.Data{"work_id": c.ID, "authors": slugs})
			if err := s.works.DeleteWork(ctx, c.ID); err != nil {
				return nil, err
			}
			s.result.GarbageWorkIDs = append(s.result.GarbageWorkIDs, c.ID)
		case overlaps(slugs, target):
			log.Info("ambiguous work identity", logger.Data{"work_id": c.ID, "authors": slugs, "target": target})
			s.result.AmbiguousWorkIDs = append(s.result.AmbiguousWorkIDs, c.ID)
		}
	}
	return nil, nil
}

// fillWork copies the fields of src into the empty fields of dst.
func fillWork(dst, src *models.Work) {
	for _, pair := range [][2]*string{
		{&dst.Title, &src.Title},
		{&dst.TitleDE, &src.TitleDE},
		{&dst.TitleEN, &src.TitleEN},
		{&dst.TitleFR, &src.TitleFR},
		{&dst.TitleIT, &src.TitleIT},
		{&dst.TitleES, &src.TitleES},
		{&dst.Slug, &src.Slug},
		{&dst.Genre, &src.Genre},
		{&dst.Description, &src.Description},
	} {
		if mediafile.IsEmptyValue(*pair[0]) {
			*pair[0] = *pair[1]
		}
	}
	if dst.SeriesIndex == 0 {
		dst.SeriesIndex = src.SeriesIndex
	}
	if dst.Rating == 0 {
		dst.Rating = src.Rating
	}
	dst.Keywords = dst.Keywords.Union(src.Keywords)
	dst.Regions = dst.Regions.Union(src.Regions)
}

// renameFile moves the file to its canonical name. The store is written
// afterwards, so a failing commit can move it back.
func (s *saver) renameFile(ctx context.Context) error {
	b := s.agg.Book
	if !s.rename || b.IsMissing() || !fileutils.Exists(b.Path) {
		return nil
	}
	name, ok := s.agg.CanonicalName()
	if !ok {
		return nil
	}

	newPath, duplicate, err := fileutils.RenameInPlace(b.Path, name)
	if err != nil {
		return errors.Wrapf(err, "failed to rename %s", b.Path)
	}
	if newPath == b.Path {
		return nil
	}

	s.result.Renamed = true
	s.result.Path = newPath
	s.result.Duplicate = duplicate
	if duplicate {
		logger.FromContext(ctx).Warn("canonical name taken, kept a copy", logger.Data{"path": newPath})
	}
	b.Path = newPath
	return nil
}

func (s *saver) saveBook(ctx context.Context) error {
	b := s.agg.Book
	b.WorkID = &s.agg.Work.ID
	b.IsComplete = s.agg.IsComplete()
	return s.books.SaveBook(ctx, b)
}

// saveAuthorLinks rewrites the Work's author links in attribution order,
// creating unknown authors on the way. New authors take the main language of
// the first stored co-author, else the Book's language.
func (s *saver) saveAuthorLinks(ctx context.Context) error {
	agg := s.agg
	lang := agg.Book.Language
	for _, a := range agg.Authors {
		if a.ID != 0 && a.Language != "" {
			lang = a.Language
			break
		}
	}

	ids := []int{}
	for i, a := range agg.Authors {
		if a.IsSentinel() {
			continue
		}
		stored := a
		if a.ID == 0 {
			var err error
			stored, err = s.authors.FindOrCreateAuthor(ctx, a, lang)
			if err != nil {
				return err
			}
			agg.Authors[i] = stored
		}
		ids = append(ids, stored.ID)
	}
	return s.works.ReplaceAuthors(ctx, agg.Work.ID, ids)
}

func copyAggregate(agg *aggregate.Aggregate) *aggregate.Aggregate {
	out := *agg
	book := *agg.Book
	out.Book = &book
	work := *agg.Work
	out.Work = &work
	if agg.Series != nil {
		s := *agg.Series
		out.Series = &s
	}
	out.Authors = make([]*models.Author, len(agg.Authors))
	for i, a := range agg.Authors {
		c := *a
		out.Authors[i] = &c
	}
	return &out
}

func realAuthorSlugs(list []*models.Author) []string {
	slugs := []string{}
	for _, a := range list {
		if !a.IsSentinel() && a.Slug != "" {
			slugs = append(slugs, a.Slug)
		}
	}
	sort.Strings(slugs)
	return slugs
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func overlaps(a, b []string) bool {
	set := map[string]bool{}
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		if set[s] {
			return true
		}
	}
	return false
}

func sameSeries(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func containsWork(list []*models.Work, id int) bool {
	for _, w := range list {
		if w.ID == id {
			return true
		}
	}
	return false
}
