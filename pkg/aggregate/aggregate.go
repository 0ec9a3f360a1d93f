// Package aggregate holds a Book together with its Work, Series and authors
// and owns the rules for merging metadata into them.
package aggregate

import (
	"path/filepath"
	"strings"

	"github.com/bibliothek/bibliothek/pkg/fileutils"
	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/bibliothek/bibliothek/pkg/personname"
	"github.com/bibliothek/bibliothek/pkg/slugify"
)

// Status drives the status bar colour.
type Status string

const (
	// StatusGreen: stored and unchanged since load.
	StatusGreen Status = "green"
	// StatusYellow: stored with unsaved edits.
	StatusYellow Status = "yellow"
	// StatusBlue: not stored yet.
	StatusBlue Status = "blue"
)

// Aggregate is the unit of merging and saving. Series is nil when the Book
// belongs to no series.
type Aggregate struct {
	Book    *models.Book
	Work    *models.Work
	Series  *models.Series
	Authors []*models.Author
	// InDB is true when the Book row was loaded from the store.
	InDB bool

	snapshot *snapshot
}

type snapshot struct {
	bookTitle  string
	workTitle  string
	seriesName string
	authors    []personname.Name
}

// New starts an aggregate for the file at path.
func New(path string) *Aggregate {
	return &Aggregate{
		Book: &models.Book{
			Path:     path,
			Ext:      strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")),
			Regions:  models.StringSet{},
			Keywords: models.StringSet{},
		},
		Work: &models.Work{
			Regions:  models.StringSet{},
			Keywords: models.StringSet{},
		},
	}
}

// TakeSnapshot records the state IsDirty compares against.
func (a *Aggregate) TakeSnapshot() {
	a.snapshot = &snapshot{
		bookTitle:  a.Book.Title,
		workTitle:  a.Work.Title,
		seriesName: a.SeriesName(),
		authors:    a.AuthorNames(),
	}
}

// IsDirty reports whether titles, series name or authors changed since the
// last snapshot. An aggregate without a snapshot is dirty.
func (a *Aggregate) IsDirty() bool {
	s := a.snapshot
	if s == nil {
		return true
	}
	if s.bookTitle != a.Book.Title || s.workTitle != a.Work.Title || s.seriesName != a.SeriesName() {
		return true
	}
	authors := a.AuthorNames()
	if len(authors) != len(s.authors) {
		return true
	}
	for i := range authors {
		if authors[i] != s.authors[i] {
			return true
		}
	}
	return false
}

func (a *Aggregate) Status() Status {
	switch {
	case !a.InDB:
		return StatusBlue
	case a.IsDirty():
		return StatusYellow
	}
	return StatusGreen
}

// IsComplete reports whether the Book carries everything a rescan could add.
func (a *Aggregate) IsComplete() bool {
	return strings.TrimSpace(a.Book.Title) != "" &&
		len(a.realAuthors()) > 0 &&
		a.Book.Language != "" &&
		strings.TrimSpace(a.Book.Description) != ""
}

// SeriesName is the series the Book declares, falling back to the attached
// Series record.
func (a *Aggregate) SeriesName() string {
	if a.Book.SeriesName != "" {
		return a.Book.SeriesName
	}
	if a.Series != nil {
		return a.Series.Name
	}
	return ""
}

// AuthorNames returns the authors in attribution order.
func (a *Aggregate) AuthorNames() []personname.Name {
	names := make([]personname.Name, 0, len(a.Authors))
	for _, author := range a.Authors {
		names = append(names, personname.Name{Firstname: author.Firstname, Lastname: author.Lastname})
	}
	return names
}

// SetAuthors replaces the author list. Authors already attached keep their
// record when the slug matches.
func (a *Aggregate) SetAuthors(names []personname.Name) {
	existing := map[string]*models.Author{}
	for _, author := range a.Authors {
		existing[author.Slug] = author
	}

	seen := map[string]bool{}
	authors := make([]*models.Author, 0, len(names))
	for _, n := range names {
		if n.IsZero() {
			continue
		}
		s := slugify.Author(n)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		if author, ok := existing[s]; ok {
			authors = append(authors, author)
			continue
		}
		authors = append(authors, &models.Author{
			Firstname: n.Firstname,
			Lastname:  n.Lastname,
			Slug:      s,
		})
	}
	a.Authors = authors
}

// realAuthors drops placeholder authors such as "Unknown".
func (a *Aggregate) realAuthors() []*models.Author {
	var out []*models.Author
	for _, author := range a.Authors {
		if !author.IsSentinel() {
			out = append(out, author)
		}
	}
	return out
}

// AuthorLanguage is the main language of the first author, or the Book's
// language when unknown.
func (a *Aggregate) AuthorLanguage() string {
	for _, author := range a.Authors {
		if author.Language != "" {
			return author.Language
		}
	}
	return a.Book.Language
}

// CanonicalName renders the filename the Book should carry on disk.
func (a *Aggregate) CanonicalName() (string, bool) {
	authors := make([]string, 0, len(a.Authors))
	for _, author := range a.realAuthors() {
		authors = append(authors, author.FullName())
	}
	return fileutils.CanonicalName(fileutils.CanonicalNameOptions{
		Authors:     authors,
		SeriesName:  a.SeriesName(),
		SeriesIndex: a.Book.SeriesNumber,
		Title:       a.Book.Title,
		Year:        a.Book.Year,
		Ext:         a.Book.Ext,
	})
}

// PrepareWork fills the Work fields the store needs to resolve its
// identity: canonical title, slug, the title slot of the Book's language and
// the series index.
func (a *Aggregate) PrepareWork() {
	w := a.Work
	if w.Title == "" {
		w.Title = a.Book.Title
	}
	if w.Slug == "" {
		w.Slug = slugify.Make(w.Title)
	}
	if slot := w.TitleSlot(a.Book.Language); slot != nil && *slot == "" {
		*slot = a.Book.Title
	}
	if w.SeriesIndex == 0 && a.Book.SeriesNumber > 0 {
		w.SeriesIndex = a.Book.SeriesNumber
	}
	if w.Regions == nil {
		w.Regions = models.StringSet{}
	}
	if w.Keywords == nil {
		w.Keywords = models.StringSet{}
	}
}
