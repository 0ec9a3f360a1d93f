package epub

import (
	"testing"

	"github.com/bibliothek/bibliothek/internal/testgen"
	"github.com/bibliothek/bibliothek/pkg/mediafile"
	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/bibliothek/bibliothek/pkg/personname"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_FullMetadata(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := testgen.GenerateEPUB(t, dir, "book.epub", testgen.EPUBOptions{
		Title:         "Der Stein der Weisen",
		Authors:       []string{"J.K. Rowling"},
		FileAs:        []string{"Rowling, J.K."},
		Language:      "ger",
		Date:          "1998-07-01",
		Description:   "<p>Harry &amp; seine <b>Freunde</b>.</p>",
		Subjects:      []string{"Fantasy", "Internat"},
		ISBN:          "3-551-55167-7",
		HasCover:      true,
		CoverMimeType: "image/jpeg",
	})

	book, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, ".jpg", book.CoverExt)
	assert.NotEmpty(t, book.CoverData)

	fields := book.Fields()
	assert.Equal(t, "Der Stein der Weisen", fields.String(mediafile.KeyTitle))
	assert.Equal(t, []personname.Name{{Firstname: "J.K.", Lastname: "Rowling"}}, fields.Authors())
	assert.Equal(t, models.LanguageDE, fields.String(mediafile.KeyLanguage))
	assert.Equal(t, "1998", fields.String(mediafile.KeyYear))
	assert.Equal(t, "Harry & seine Freunde.", fields.String(mediafile.KeyDescription))
	assert.True(t, fields.Set(mediafile.KeyKeywords).Equal(models.NewStringSet("Fantasy", "Internat")))
	assert.Equal(t, "9783551551672", fields.String(mediafile.KeyISBN))
}

func TestParse_PlaceholderDate(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := testgen.GenerateEPUB(t, dir, "book.epub", testgen.EPUBOptions{
		Title: "Es",
		Date:  "0101-01-01",
	})

	book, err := Parse(path)
	require.NoError(t, err)

	_, ok := book.Fields()[mediafile.KeyYear]
	assert.False(t, ok)
}

func TestParse_UnsupportedLanguageLeftOut(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := testgen.GenerateEPUB(t, dir, "book.epub", testgen.EPUBOptions{
		Title:    "Boken",
		Language: "sv",
	})

	book, err := Parse(path)
	require.NoError(t, err)

	_, ok := book.Fields()[mediafile.KeyLanguage]
	assert.False(t, ok)
}

func TestParse_CoverReferencedByHref(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := testgen.GenerateEPUB(t, dir, "book.epub", testgen.EPUBOptions{
		Title:       "Cover",
		HasCover:    true,
		CoverByHref: true,
	})

	book, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, ".png", book.CoverExt)
	assert.NotEmpty(t, book.CoverData)
}

func TestParse_NoContainerFallsBackToFirstOPF(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := testgen.GenerateEPUB(t, dir, "book.epub", testgen.EPUBOptions{
		Title:       "Ohne Container",
		NoContainer: true,
	})

	book, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "Ohne Container", book.OPF.Title)
}

func TestParse_NotAZip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := testgen.WriteFile(t, dir, "broken.epub", []byte("%PDF-1.4 not really a zip"))

	_, err := Parse(path)
	assert.Error(t, err)
}

func TestFields_NonAuthorCreatorsDropped(t *testing.T) {
	t.Parallel()
	book := &Book{OPF: &OPF{
		Title: "Good Omens",
		Creators: []Creator{
			{Name: "Terry Pratchett", Role: "aut"},
			{Name: "Some Illustrator", Role: "ill"},
		},
	}}

	assert.Equal(t, []personname.Name{{Firstname: "Terry", Lastname: "Pratchett"}}, book.Fields().Authors())
}

func TestFields_CreatorsWithoutRoles(t *testing.T) {
	t.Parallel()
	book := &Book{OPF: &OPF{
		Creators: []Creator{{Name: "Terry Pratchett"}, {Name: "Neil Gaiman"}},
	}}

	assert.Len(t, book.Fields().Authors(), 2)
}
