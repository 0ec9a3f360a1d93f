package authors

import (
	"context"
	"testing"

	"github.com/bibliothek/bibliothek/internal/testgen"
	"github.com/bibliothek/bibliothek/pkg/errcodes"
	"github.com/bibliothek/bibliothek/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func createWork(t *testing.T, db bun.IDB, title string, authorIDs ...int) *models.Work {
	t.Helper()
	ctx := context.Background()
	w := &models.Work{Title: title, Regions: models.StringSet{}, Keywords: models.StringSet{}}
	_, err := db.NewInsert().Model(w).Returning("*").Exec(ctx)
	require.NoError(t, err)
	for _, id := range authorIDs {
		_, err := db.NewInsert().Model(&models.WorkToAuthor{WorkID: w.ID, AuthorID: id}).Exec(ctx)
		require.NoError(t, err)
	}
	return w
}

func linkedAuthorIDs(t *testing.T, db bun.IDB, workID int) []int {
	t.Helper()
	var links []*models.WorkToAuthor
	err := db.NewSelect().Model(&links).Where("work_id = ?", workID).OrderExpr("rowid ASC").Scan(context.Background())
	require.NoError(t, err)
	ids := make([]int, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.AuthorID)
	}
	return ids
}

func TestFindOrCreateAuthor(t *testing.T) {
	t.Parallel()
	svc := NewService(testgen.NewDB(t))
	ctx := context.Background()

	created, err := svc.FindOrCreateAuthor(ctx, &models.Author{Firstname: "J.K.", Lastname: "Rowling"}, models.LanguageDE)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "j-k-rowling", created.Slug)
	assert.Equal(t, models.LanguageDE, created.Language)

	again, err := svc.FindOrCreateAuthor(ctx, &models.Author{Firstname: "J. K.", Lastname: "Rowling"}, models.LanguageEN)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Equal(t, "J.K.", again.Firstname)
	assert.Equal(t, models.LanguageDE, again.Language)
}

func TestCreateAuthor_DuplicateSlug(t *testing.T) {
	t.Parallel()
	svc := NewService(testgen.NewDB(t))
	ctx := context.Background()

	require.NoError(t, svc.CreateAuthor(ctx, &models.Author{Firstname: "Stephen", Lastname: "King"}))
	err := svc.CreateAuthor(ctx, &models.Author{Firstname: "Stephen", Lastname: "King"})
	assert.True(t, errcodes.HasCode(err, errcodes.CodeIntegrityViolation))
}

func TestMergeAuthors_MovesLinksAndDropsDuplicates(t *testing.T) {
	t.Parallel()
	db := testgen.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	winner := &models.Author{ID: 7, Firstname: "A", Lastname: "Smith", Slug: "a-smith"}
	loser := &models.Author{ID: 42, Firstname: "A.", Lastname: "Smith", Slug: "a-smith-2", Country: "UK", BirthYear: 1950}
	_, err := db.NewInsert().Model(winner).Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(loser).Exec(ctx)
	require.NoError(t, err)

	shared := createWork(t, db, "Shared", 7, 42)
	onlyLoser := createWork(t, db, "Loser only", 42)
	onlyWinner := createWork(t, db, "Winner only", 7)

	require.NoError(t, svc.MergeAuthors(ctx, 7, 42))

	assert.Equal(t, []int{7}, linkedAuthorIDs(t, db, shared.ID))
	assert.Equal(t, []int{7}, linkedAuthorIDs(t, db, onlyLoser.ID))
	assert.Equal(t, []int{7}, linkedAuthorIDs(t, db, onlyWinner.ID))

	id := 42
	_, err = svc.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &id})
	assert.ErrorIs(t, err, errcodes.NotFound("Author"))

	id = 7
	stored, err := svc.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &id})
	require.NoError(t, err)
	assert.Equal(t, "UK", stored.Country)
	assert.Equal(t, 1950, stored.BirthYear)

	works, err := db.NewSelect().Model((*models.Work)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, works)
}

func TestMergeAuthors_Errors(t *testing.T) {
	t.Parallel()
	db := testgen.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	a := &models.Author{Firstname: "A", Lastname: "B"}
	require.NoError(t, svc.CreateAuthor(ctx, a))

	err := svc.MergeAuthors(ctx, a.ID, a.ID)
	assert.Error(t, err)

	err = svc.MergeAuthors(ctx, a.ID, a.ID+100)
	assert.ErrorIs(t, err, errcodes.NotFound("Author"))

	// Nothing happened to the winner.
	_, err = svc.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &a.ID})
	assert.NoError(t, err)
}

func TestSplitAuthor(t *testing.T) {
	t.Parallel()
	db := testgen.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	smith := &models.Author{Firstname: "John", Lastname: "Smith", Language: models.LanguageEN}
	require.NoError(t, svc.CreateAuthor(ctx, smith))
	novel := createWork(t, db, "Novel", smith.ID)
	cookbook := createWork(t, db, "Cookbook", smith.ID)

	created, err := svc.SplitAuthor(ctx, smith.ID, []int{cookbook.ID}, "John W.")
	require.NoError(t, err)
	assert.Equal(t, "john-w-smith", created.Slug)
	assert.Equal(t, models.LanguageEN, created.Language)

	assert.Equal(t, []int{smith.ID}, linkedAuthorIDs(t, db, novel.ID))
	assert.Equal(t, []int{created.ID}, linkedAuthorIDs(t, db, cookbook.ID))
}

func TestSplitAuthor_SameNameIsIntegrityViolation(t *testing.T) {
	t.Parallel()
	db := testgen.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	smith := &models.Author{Firstname: "John", Lastname: "Smith"}
	require.NoError(t, svc.CreateAuthor(ctx, smith))
	w := createWork(t, db, "Novel", smith.ID)

	_, err := svc.SplitAuthor(ctx, smith.ID, []int{w.ID}, "John")
	assert.True(t, errcodes.HasCode(err, errcodes.CodeIntegrityViolation))
	assert.Equal(t, []int{smith.ID}, linkedAuthorIDs(t, db, w.ID))
}

func TestSplitAuthor_ForeignWorks(t *testing.T) {
	t.Parallel()
	db := testgen.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	smith := &models.Author{Firstname: "John", Lastname: "Smith"}
	other := &models.Author{Firstname: "Jane", Lastname: "Doe"}
	require.NoError(t, svc.CreateAuthor(ctx, smith))
	require.NoError(t, svc.CreateAuthor(ctx, other))
	w := createWork(t, db, "Novel", other.ID)

	_, err := svc.SplitAuthor(ctx, smith.ID, []int{w.ID}, "Johnny")
	assert.Error(t, err)

	// The transaction rolled back the new author.
	slug := "johnny-smith"
	_, err = svc.RetrieveAuthor(ctx, RetrieveAuthorOptions{Slug: &slug})
	assert.ErrorIs(t, err, errcodes.NotFound("Author"))
}

func TestUpdateAuthor_RenameMovesSlug(t *testing.T) {
	t.Parallel()
	svc := NewService(testgen.NewDB(t))
	ctx := context.Background()

	a := &models.Author{Firstname: "Stefen", Lastname: "King"}
	require.NoError(t, svc.CreateAuthor(ctx, a))

	a.Firstname = "Stephen"
	require.NoError(t, svc.UpdateAuthor(ctx, a, UpdateAuthorOptions{Columns: []string{"firstname"}}))

	stored, err := svc.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &a.ID})
	require.NoError(t, err)
	assert.Equal(t, "stephen-king", stored.Slug)
}

func TestCleanupOrphanedAuthors(t *testing.T) {
	t.Parallel()
	db := testgen.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	linked := &models.Author{Firstname: "A", Lastname: "Linked"}
	orphan := &models.Author{Firstname: "B", Lastname: "Orphan"}
	require.NoError(t, svc.CreateAuthor(ctx, linked))
	require.NoError(t, svc.CreateAuthor(ctx, orphan))
	createWork(t, db, "W", linked.ID)

	n, err := svc.CleanupOrphanedAuthors(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	list, err := svc.ListAuthors(ctx, ListAuthorsOptions{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Linked", list[0].Lastname)
}
