package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/require"

	"github.com/poofware/mono-repo/backend/shared/go-models"
)

func TestMemoryBookRepository_UpdateIfVersion(t *testing.T) {
	repo := NewMemoryBookRepository(DefaultMaxRetries)
	ctx := context.Background()
	b := newTestBook(t, repo)
	require.Equal(t, int64(1), b.RowVersion)

	b.Title = "changed"
	tag, err := repo.UpdateIfVersion(ctx, b, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1), tag.RowsAffected())

	tag, err = repo.UpdateIfVersion(ctx, b, 1)
	require.NoError(t, err)
	require.Equal(t, int64(0), tag.RowsAffected())

	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, "changed", got.Title)
	require.Equal(t, int64(2), got.RowVersion)

	// the caller's copy is not the stored one
	got.Title = "local only"
	again, _ := repo.GetByID(ctx, b.ID)
	require.Equal(t, "changed", again.Title)
}

func TestMemoryBookRepository_SoftDelete(t *testing.T) {
	repo := NewMemoryBookRepository(DefaultMaxRetries)
	ctx := context.Background()
	b := newTestBook(t, repo)

	require.NoError(t, repo.SoftDelete(ctx, b.ID))
	got, err := repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.Nil(t, got)

	require.ErrorIs(t, repo.SoftDelete(ctx, b.ID), pgx.ErrNoRows)

	tag, err := repo.UpdateIfVersion(ctx, b, 2)
	require.NoError(t, err)
	require.Equal(t, int64(0), tag.RowsAffected())
}

func TestMemoryBookRepository_List(t *testing.T) {
	repo := NewMemoryBookRepository(DefaultMaxRetries)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	var ids []uuid.UUID
	for _, title := range []string{"one", "two", "three"} {
		b := &models.Book{ID: uuid.New(), Title: title, Author: "a"}
		require.NoError(t, repo.Create(ctx, b))
		ids = append(ids, b.ID)
	}
	require.NoError(t, repo.SoftDelete(ctx, ids[1]))

	all, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "one", all[0].Title)
	require.Equal(t, "three", all[1].Title)

	page, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "three", page[0].Title)

	empty, err := repo.List(ctx, 10, 5)
	require.NoError(t, err)
	require.Empty(t, empty)
}
