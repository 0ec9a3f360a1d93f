package books

import (
	"context"
	"testing"

	"github.com/bibliothek/bibliothek/internal/testgen"
	"github.com/bibliothek/bibliothek/pkg/errcodes"
	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveBook_InsertThenUpdate(t *testing.T) {
	t.Parallel()
	svc := NewService(testgen.NewDB(t))
	ctx := context.Background()

	book := &models.Book{Path: "/lib/a.epub", Ext: "epub", Title: "A", Keywords: models.NewStringSet("b", "a")}
	require.NoError(t, svc.SaveBook(ctx, book))
	require.NotZero(t, book.ID)
	assert.NotNil(t, book.Regions)

	book.Title = "A (revised)"
	book.Stars = 8
	require.NoError(t, svc.SaveBook(ctx, book))

	stored, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	require.NoError(t, err)
	assert.Equal(t, "A (revised)", stored.Title)
	assert.Equal(t, 8, stored.Stars)
	assert.Equal(t, []string{"a", "b"}, stored.Keywords.Sorted())
}

func TestCreateBook_DuplicatePath(t *testing.T) {
	t.Parallel()
	svc := NewService(testgen.NewDB(t))
	ctx := context.Background()

	require.NoError(t, svc.CreateBook(ctx, &models.Book{Path: "/lib/a.epub"}))
	err := svc.CreateBook(ctx, &models.Book{Path: "/lib/a.epub"})
	assert.True(t, errcodes.HasCode(err, errcodes.CodeIntegrityViolation))
}

func TestCreateBook_SameISBNDifferentPaths(t *testing.T) {
	t.Parallel()
	svc := NewService(testgen.NewDB(t))
	ctx := context.Background()

	require.NoError(t, svc.CreateBook(ctx, &models.Book{Path: "/lib/a.epub", ISBN: "9783551551672"}))
	require.NoError(t, svc.CreateBook(ctx, &models.Book{Path: "/lib/a.pdf", ISBN: "9783551551672"}))

	isbn := "9783551551672"
	books, err := svc.ListBooks(ctx, ListBooksOptions{ISBN: &isbn})
	require.NoError(t, err)
	assert.Len(t, books, 2)
}

func TestUpdateBook_Columns(t *testing.T) {
	t.Parallel()
	svc := NewService(testgen.NewDB(t))
	ctx := context.Background()

	book := &models.Book{Path: "/lib/a.epub", Title: "A"}
	require.NoError(t, svc.CreateBook(ctx, book))

	book.Title = "ignored"
	book.IsRead = true
	require.NoError(t, svc.UpdateBook(ctx, book, UpdateBookOptions{Columns: []string{"is_read"}}))

	stored, err := svc.RetrieveBook(ctx, RetrieveBookOptions{Path: &book.Path})
	require.NoError(t, err)
	assert.True(t, stored.IsRead)
	assert.Equal(t, "A", stored.Title)
}

func TestUpdateBook_NotFound(t *testing.T) {
	t.Parallel()
	svc := NewService(testgen.NewDB(t))

	err := svc.UpdateBook(context.Background(), &models.Book{ID: 5, Path: "/x"}, UpdateBookOptions{})
	assert.ErrorIs(t, err, errcodes.NotFound("Book"))
}

func TestDeleteBook(t *testing.T) {
	t.Parallel()
	svc := NewService(testgen.NewDB(t))
	ctx := context.Background()

	book := &models.Book{Path: "/lib/a.epub"}
	require.NoError(t, svc.CreateBook(ctx, book))
	require.NoError(t, svc.DeleteBook(ctx, book.ID))

	_, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	assert.ErrorIs(t, err, errcodes.NotFound("Book"))

	assert.ErrorIs(t, svc.DeleteBook(ctx, book.ID), errcodes.NotFound("Book"))
}

func TestListBooksWithTotal_Filters(t *testing.T) {
	t.Parallel()
	svc := NewService(testgen.NewDB(t))
	ctx := context.Background()

	for _, b := range []*models.Book{
		{Path: "/lib/Stephen King — Es.epub", Title: "Es", Language: models.LanguageDE},
		{Path: "/lib/Stephen King — It.epub", Title: "It", Language: models.LanguageEN},
		{Path: models.MissingPathPrefix + "3", Title: "Gone", Language: models.LanguageDE},
	} {
		require.NoError(t, svc.CreateBook(ctx, b))
	}

	missing := true
	books, total, err := svc.ListBooksWithTotal(ctx, ListBooksOptions{Missing: &missing})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Gone", books[0].Title)

	present := false
	lang := models.LanguageDE
	books, err = svc.ListBooks(ctx, ListBooksOptions{Missing: &present, Language: &lang})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Es", books[0].Title)

	search := "king"
	_, total, err = svc.ListBooksWithTotal(ctx, ListBooksOptions{Search: &search})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestListPaths(t *testing.T) {
	t.Parallel()
	svc := NewService(testgen.NewDB(t))
	ctx := context.Background()

	require.NoError(t, svc.CreateBook(ctx, &models.Book{Path: "/lib/b.epub", Title: "B"}))
	require.NoError(t, svc.CreateBook(ctx, &models.Book{Path: "/lib/a.epub", Title: "A"}))

	books, err := svc.ListPaths(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "/lib/b.epub", books[0].Path)
	assert.Empty(t, books[0].Title)
}
