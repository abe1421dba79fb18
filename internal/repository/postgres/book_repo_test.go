package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/dom/bookshelf/internal/domain"
	"github.com/dom/bookshelf/internal/repository/postgres"
	"github.com/dom/bookshelf/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestBookRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewBookRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	now := time.Now().UTC().Truncate(time.Microsecond)
	book := &domain.Book{
		ID:          uuid.New(),
		Title:       "Dune",
		Author:      "Herbert",
		Description: "Spice.",
		ISBN:        "978-0441013593",
		OwnerID:     owner.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	book.SetTags([]string{"sci-fi", "classic"})
	require.NoError(t, repo.Create(ctx, book))

	tests := []struct {
		name    string
		ownerID uuid.UUID
		id      uuid.UUID
		wantErr bool
	}{
		{name: "owner reads own book", ownerID: owner.ID, id: book.ID},
		{name: "other user", ownerID: other.ID, id: book.ID, wantErr: true},
		{name: "unknown id", ownerID: owner.ID, id: uuid.New(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.GetByIDForOwner(ctx, tt.ownerID, tt.id)
			if tt.wantErr {
				assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, book.Title, got.Title)
			assert.Equal(t, book.Author, got.Author)
			assert.Equal(t, book.Description, got.Description)
			assert.Equal(t, book.ISBN, got.ISBN)
			assert.Equal(t, []string{"sci-fi", "classic"}, got.TagList())
			assert.True(t, book.CreatedAt.Equal(got.CreatedAt))
		})
	}
}

func TestBookRepository_GetByOwner(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewBookRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	loner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	older := testutil.NewBookBuilder().WithOwner(owner).WithCreatedAt(time.Now().Add(-time.Hour)).Build(t, testDB.DB)
	newer := testutil.NewBookBuilder().WithOwner(owner).Build(t, testDB.DB)
	testutil.NewBookBuilder().WithOwner(other).Build(t, testDB.DB)

	books, err := repo.GetByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, newer.ID, books[0].ID)
	assert.Equal(t, older.ID, books[1].ID)

	none, err := repo.GetByOwner(ctx, loner.ID)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestBookRepository_UpdateForOwner(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewBookRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	book := testutil.NewBookBuilder().WithOwner(owner).WithTitle("Dune").Build(t, testDB.DB)

	t.Run("foreign owner matches nothing", func(t *testing.T) {
		hijack := *book
		hijack.OwnerID = other.ID
		hijack.Title = "Hijacked"

		rows, err := repo.UpdateForOwner(ctx, &hijack)
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)

		got, err := repo.GetByIDForOwner(ctx, owner.ID, book.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dune", got.Title)
	})

	t.Run("owner updates", func(t *testing.T) {
		changed := *book
		changed.Title = "Dune Messiah"
		changed.Description = "Sequel"
		changed.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)

		rows, err := repo.UpdateForOwner(ctx, &changed)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		got, err := repo.GetByIDForOwner(ctx, owner.ID, book.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dune Messiah", got.Title)
		assert.Equal(t, "Sequel", got.Description)
		assert.Equal(t, owner.ID, got.OwnerID)
		assert.True(t, changed.UpdatedAt.Equal(got.UpdatedAt))
	})

	t.Run("unknown id matches nothing", func(t *testing.T) {
		missing := *book
		missing.ID = uuid.New()

		rows, err := repo.UpdateForOwner(ctx, &missing)
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)
	})
}

func TestBookRepository_DeleteForOwner(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewBookRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	book := testutil.NewBookBuilder().WithOwner(owner).Build(t, testDB.DB)

	rows, err := repo.DeleteForOwner(ctx, other.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	rows, err = repo.DeleteForOwner(ctx, owner.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.DeleteForOwner(ctx, owner.ID, book.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	_, err = repo.GetByIDForOwner(ctx, owner.ID, book.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBookRepository_CountByOwner(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewBookRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	now := time.Now()
	testutil.NewBookBuilder().WithOwner(owner).Build(t, testDB.DB)
	testutil.NewBookBuilder().WithOwner(owner).WithCreatedAt(now.Add(-48*time.Hour)).Build(t, testDB.DB)
	testutil.NewBookBuilder().WithOwner(owner).WithCreatedAt(now.Add(-30*24*time.Hour)).Build(t, testDB.DB)
	testutil.NewBookBuilder().Build(t, testDB.DB)

	total, err := repo.CountByOwner(ctx, owner.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	recent, err := repo.CountByOwner(ctx, owner.ID, now.Add(-7*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), recent)
}

func TestBookRepository_OwnerDeletionCascades(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewBookRepository(testDB.DB)
	ctx := context.Background()

	owner, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	testutil.NewBookBuilder().WithOwner(owner).Build(t, testDB.DB)

	require.NoError(t, testDB.DB.Delete(&domain.User{}, "id = ?", owner.ID).Error)

	total, err := repo.CountByOwner(ctx, owner.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}
