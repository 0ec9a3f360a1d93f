package aggregate

import (
	"testing"

	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestConsolidate(t *testing.T) {
	t.Parallel()
	a := New("/lib/English/x.epub")
	a.SetAuthors(rowling())
	a.Authors[0].Language = models.LanguageDE
	a.Book.ID = 2
	a.Book.Title = "Philosophers Stone"
	a.Book.Language = models.LanguageEN
	a.Book.Stars = 9
	a.Book.Description = "english text"
	a.Book.Keywords = models.NewStringSet("Magic")
	a.Book.Notes = "signed copy"
	a.Book.Genre = "Fantasy"
	a.Work.Title = "Der Stein der Weisen"
	a.Work.TitleDE = "Der Stein der Weisen"
	a.Work.Keywords = models.NewStringSet("Internat")

	stored := []*models.Book{
		{ID: 1, Language: models.LanguageDE, Stars: 6, Description: "deutscher Text", Keywords: models.NewStringSet("Zauberei"), Regions: models.NewStringSet("Großbritannien"), Notes: "first edition"},
		{ID: 2, Language: models.LanguageEN, Stars: 1, Description: "stale row"},
		{ID: 3, Language: models.LanguageFR, Notes: "first edition"},
	}

	a.Consolidate(stored)

	w := a.Work
	assert.Equal(t, 7, w.Stars)
	assert.Equal(t, "deutscher Text", w.Description)
	assert.True(t, w.Keywords.Equal(models.NewStringSet("Internat", "Zauberei", "Magic")))
	assert.True(t, w.Regions.Equal(models.NewStringSet("Großbritannien")))
	assert.Equal(t, "Fantasy", w.Genre)
	assert.Equal(t, "first edition | signed copy", w.Notes)
	assert.Equal(t, "Der Stein der Weisen", w.Title)
	assert.Equal(t, "Philosophers Stone", w.TitleEN)
}

func TestConsolidate_ExistingGenreWins(t *testing.T) {
	t.Parallel()
	a := New("/lib/x.epub")
	a.Book.Genre = "Thriller"
	a.Work.Genre = "Krimi"

	a.Consolidate(nil)
	assert.Equal(t, "Krimi", a.Work.Genre)
}

func TestConsolidate_DescriptionFallsBackToLanguageOrder(t *testing.T) {
	t.Parallel()
	a := New("/lib/x.epub")
	a.Book.Language = models.LanguageIT
	a.Book.Description = "testo"

	stored := []*models.Book{
		{ID: 5, Language: models.LanguageFR, Description: "texte"},
		{ID: 6, Language: models.LanguageEN, Description: "text"},
	}
	a.Consolidate(stored)

	// Author language falls back to the Book's language.
	assert.Equal(t, "testo", a.Work.Description)

	b := New("/lib/y.epub")
	b.Consolidate(stored)
	assert.Equal(t, "text", b.Work.Description)
}

func TestConsolidate_ZeroStarsIgnored(t *testing.T) {
	t.Parallel()
	a := New("/lib/x.epub")
	a.Book.Stars = 0

	a.Consolidate([]*models.Book{{ID: 1, Stars: 8}, {ID: 2, Stars: 5}})
	assert.Equal(t, 6, a.Work.Stars)
}

func TestSyncSeriesName(t *testing.T) {
	t.Parallel()
	a := New("/lib/x.epub")
	a.SetAuthors(rowling())
	a.Authors[0].Language = models.LanguageDE
	a.Series = &models.Series{Name: "Harry Potter"}
	a.Book.SeriesName = "Harry Potter (engl.)"
	a.Book.Language = models.LanguageEN

	a.SyncSeriesName(true)
	assert.Equal(t, "Harry Potter", a.Series.Name)
	assert.Equal(t, "Harry Potter (engl.)", a.Series.NameEN)

	a.Book.Language = models.LanguageDE
	a.Book.SeriesName = "Harry Potter Reihe"
	a.SyncSeriesName(true)
	assert.Equal(t, "Harry Potter Reihe", a.Series.Name)
	assert.Equal(t, "Harry Potter Reihe", a.Series.NameDE)
}
