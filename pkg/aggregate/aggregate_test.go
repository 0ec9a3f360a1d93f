package aggregate

import (
	"testing"

	"github.com/bibliothek/bibliothek/pkg/mediafile"
	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/bibliothek/bibliothek/pkg/personname"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowling() []personname.Name {
	return []personname.Name{{Firstname: "J.K.", Lastname: "Rowling"}}
}

func TestNew(t *testing.T) {
	t.Parallel()
	a := New("/lib/Deutsch/x.EPUB")

	assert.Equal(t, "/lib/Deutsch/x.EPUB", a.Book.Path)
	assert.Equal(t, "epub", a.Book.Ext)
	assert.False(t, a.InDB)
	assert.Equal(t, StatusBlue, a.Status())
}

func TestMerge_FillsOnlyEmpty(t *testing.T) {
	t.Parallel()
	a := New("/lib/x.epub")
	a.Book.Title = "Es"

	a.Merge(mediafile.Fields{
		mediafile.KeyTitle:    "It",
		mediafile.KeyYear:     "1986-09-15",
		mediafile.KeyLanguage: "English",
		mediafile.KeyAuthors:  []personname.Name{{Firstname: "Stephen", Lastname: "King"}},
	})

	assert.Equal(t, "Es", a.Book.Title)
	assert.Equal(t, "1986", a.Book.Year)
	assert.Equal(t, models.LanguageEN, a.Book.Language)
	require.Len(t, a.Authors, 1)
	assert.Equal(t, "stephen-king", a.Authors[0].Slug)
}

func TestMerge_SeriesIndexKeepsOneDecimal(t *testing.T) {
	t.Parallel()
	a := New("/lib/x.epub")

	a.Merge(mediafile.Fields{mediafile.KeySeriesIndex: 12.25})

	assert.Equal(t, 12.3, a.Book.SeriesNumber)
}

func TestMerge_SentinelsCountAsEmpty(t *testing.T) {
	t.Parallel()
	a := New("/lib/x.epub")
	a.Book.Genre = "Unknown"
	a.SetAuthors([]personname.Name{{Lastname: "Unbekannt"}})

	a.Merge(mediafile.Fields{
		mediafile.KeyGenre:   "Krimi",
		mediafile.KeyAuthors: []personname.Name{{Firstname: "Agatha", Lastname: "Christie"}},
	})

	assert.Equal(t, "Krimi", a.Book.Genre)
	require.Len(t, a.Authors, 1)
	assert.Equal(t, "Christie", a.Authors[0].Lastname)
}

func TestMerge_SentinelValuesIgnored(t *testing.T) {
	t.Parallel()
	a := New("/lib/x.epub")

	a.Merge(mediafile.Fields{
		mediafile.KeyAuthors: []personname.Name{{Lastname: "Unknown"}},
		mediafile.KeyTitle:   "Kein Autor",
	})

	assert.Empty(t, a.Authors)
	assert.Empty(t, a.Book.Title)
}

func TestMerge_SetsAreUnioned(t *testing.T) {
	t.Parallel()
	a := New("/lib/x.epub")
	a.Book.Keywords = models.NewStringSet("A")

	a.Merge(mediafile.Fields{
		mediafile.KeyKeywords: "B, C",
		mediafile.KeyRegions:  []string{"Skandinavien"},
	})

	assert.True(t, a.Book.Keywords.Equal(models.NewStringSet("A", "B", "C")))
	assert.True(t, a.Book.Regions.Equal(models.NewStringSet("Skandinavien")))
}

func TestMerge_EmptyMapIsNoop(t *testing.T) {
	t.Parallel()
	a := New("/lib/x.epub")
	a.Book.Title = "Es"
	before := *a.Book

	a.Merge(mediafile.Fields{})
	a.Merge(nil)

	assert.Equal(t, before, *a.Book)
}

func TestMerge_Idempotent(t *testing.T) {
	t.Parallel()
	f := mediafile.Fields{
		mediafile.KeyTitle:        "Es",
		mediafile.KeyKeywords:     models.NewStringSet("Horror"),
		mediafile.KeyNotes:        "[OpenLibrary] Ein Clown.",
		mediafile.KeyRatingG:      4.5,
		mediafile.KeyRatingGCount: 12,
	}

	once := New("/lib/x.epub")
	once.Merge(f)
	twice := New("/lib/x.epub")
	twice.Merge(f)
	twice.Merge(f)

	assert.Equal(t, once.Book, twice.Book)
}

func TestMerge_ManualDescriptionKept(t *testing.T) {
	t.Parallel()
	a := New("/lib/x.epub")
	a.Book.IsManualDescription = true

	a.Merge(mediafile.Fields{mediafile.KeyDescription: "from catalog"})
	assert.Empty(t, a.Book.Description)
}

func TestEnforce_Overwrites(t *testing.T) {
	t.Parallel()
	a := New("/lib/x.epub")
	a.Book.Title = "It"
	a.Book.Language = models.LanguageEN
	a.SetAuthors([]personname.Name{{Firstname: "S.", Lastname: "King"}})

	a.Enforce(mediafile.Fields{
		mediafile.KeyTitle:    "Es",
		mediafile.KeyLanguage: models.LanguageDE,
		mediafile.KeyAuthors:  []personname.Name{{Firstname: "Stephen", Lastname: "King"}},
		mediafile.KeyYear:     "",
	})

	assert.Equal(t, "Es", a.Book.Title)
	assert.Equal(t, models.LanguageDE, a.Book.Language)
	assert.Equal(t, "stephen-king", a.Authors[0].Slug)
}

func TestSetAuthors_KeepsRecordsAndDropsDuplicates(t *testing.T) {
	t.Parallel()
	a := New("/lib/x.epub")
	a.Authors = []*models.Author{{ID: 7, Firstname: "Terry", Lastname: "Pratchett", Slug: "terry-pratchett"}}

	a.SetAuthors([]personname.Name{
		{Firstname: "Terry", Lastname: "Pratchett"},
		{Firstname: "Neil", Lastname: "Gaiman"},
		{Firstname: "Terry", Lastname: "Pratchett"},
	})

	require.Len(t, a.Authors, 2)
	assert.Equal(t, 7, a.Authors[0].ID)
	assert.Equal(t, "neil-gaiman", a.Authors[1].Slug)
}

func TestDirtyAndStatus(t *testing.T) {
	t.Parallel()
	a := New("/lib/x.epub")
	a.Book.Title = "Es"
	a.SetAuthors([]personname.Name{{Firstname: "Stephen", Lastname: "King"}})
	a.InDB = true
	a.TakeSnapshot()

	assert.False(t, a.IsDirty())
	assert.Equal(t, StatusGreen, a.Status())

	a.Book.Description = "descriptions are not tracked"
	assert.False(t, a.IsDirty())

	a.SetAuthors([]personname.Name{{Firstname: "Stephen", Lastname: "King"}, {Firstname: "Peter", Lastname: "Straub"}})
	assert.True(t, a.IsDirty())
	assert.Equal(t, StatusYellow, a.Status())
}

func TestIsDirty_SeriesName(t *testing.T) {
	t.Parallel()
	a := New("/lib/x.epub")
	a.TakeSnapshot()

	a.Book.SeriesName = "Der dunkle Turm"
	assert.True(t, a.IsDirty())
}

func TestIsComplete(t *testing.T) {
	t.Parallel()
	a := New("/lib/x.epub")
	a.Book.Title = "Es"
	a.Book.Language = models.LanguageDE
	a.Book.Description = "Ein Clown."
	assert.False(t, a.IsComplete())

	a.SetAuthors([]personname.Name{{Firstname: "Stephen", Lastname: "King"}})
	assert.True(t, a.IsComplete())
}

func TestCanonicalName(t *testing.T) {
	t.Parallel()
	a := New("/lib/Deutsch/R/whatever.epub")
	a.SetAuthors(rowling())
	a.Book.SeriesName = "Harry Potter"
	a.Book.SeriesNumber = 1.5
	a.Book.Title = "Der Stein der Weisen"
	a.Book.Year = "1997"

	name, ok := a.CanonicalName()
	require.True(t, ok)
	assert.Equal(t, "J.K. Rowling — Harry Potter 001.5-Der Stein der Weisen (1997).epub", name)
}

func TestCanonicalName_NoAuthors(t *testing.T) {
	t.Parallel()
	a := New("/lib/x.epub")
	a.Book.Title = "Es"

	_, ok := a.CanonicalName()
	assert.False(t, ok)
}

func TestPrepareWork(t *testing.T) {
	t.Parallel()
	a := New("/lib/x.epub")
	a.Book.Title = "Der Stein der Weisen"
	a.Book.Language = models.LanguageDE
	a.Book.SeriesNumber = 1

	a.PrepareWork()

	assert.Equal(t, "Der Stein der Weisen", a.Work.Title)
	assert.Equal(t, "der-stein-der-weisen", a.Work.Slug)
	assert.Equal(t, "Der Stein der Weisen", a.Work.TitleDE)
	assert.Empty(t, a.Work.TitleEN)
	assert.Equal(t, 1.0, a.Work.SeriesIndex)
}

func TestAppendNote(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a", AppendNote("", "a"))
	assert.Equal(t, "a | b", AppendNote("a", "b"))
	assert.Equal(t, "a | b", AppendNote("a | b", "b"))
	assert.Equal(t, "a", AppendNote("a", "  "))
}
