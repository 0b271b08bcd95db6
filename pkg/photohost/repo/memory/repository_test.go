package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceephoto/photohost/pkg/photohost"
)

func newPhoto(name string, sortOrder int) *photohost.Photo {
	return &photohost.Photo{
		ID:        uuid.New(),
		Name:      name,
		SortOrder: sortOrder,
		CreatedAt: time.Now().UTC(),
	}
}

func TestCreateAndGetPhoto(t *testing.T) {
	repo := New()
	ctx := context.Background()

	photo := newPhoto("one.jpg", 0)
	require.NoError(t, repo.CreatePhoto(ctx, photo))

	got, err := repo.GetPhoto(ctx, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, photo.Name, got.Name)

	byName, err := repo.GetPhotoByName(ctx, "one.jpg")
	require.NoError(t, err)
	assert.Equal(t, photo.ID, byName.ID)
}

func TestCreatePhotoDuplicateName(t *testing.T) {
	repo := New()
	ctx := context.Background()

	require.NoError(t, repo.CreatePhoto(ctx, newPhoto("same.jpg", 0)))
	err := repo.CreatePhoto(ctx, newPhoto("same.jpg", 0))
	assert.ErrorIs(t, err, photohost.ErrDuplicateName)
}

func TestGetPhotoNotFound(t *testing.T) {
	repo := New()
	_, err := repo.GetPhoto(context.Background(), uuid.New())
	assert.ErrorIs(t, err, photohost.ErrPhotoNotFound)

	_, err = repo.GetPhotoByName(context.Background(), "nope.jpg")
	assert.ErrorIs(t, err, photohost.ErrPhotoNotFound)
}

func TestUpdatePhotoRenameMovesIndex(t *testing.T) {
	repo := New()
	ctx := context.Background()

	photo := newPhoto("old.jpg", 0)
	require.NoError(t, repo.CreatePhoto(ctx, photo))

	photo.Name = "new.jpg"
	require.NoError(t, repo.UpdatePhoto(ctx, photo))

	_, err := repo.GetPhotoByName(ctx, "old.jpg")
	assert.ErrorIs(t, err, photohost.ErrPhotoNotFound)

	got, err := repo.GetPhotoByName(ctx, "new.jpg")
	require.NoError(t, err)
	assert.Equal(t, photo.ID, got.ID)
}

func TestUpdatePhotoNameCollision(t *testing.T) {
	repo := New()
	ctx := context.Background()

	require.NoError(t, repo.CreatePhoto(ctx, newPhoto("taken.jpg", 0)))
	other := newPhoto("mine.jpg", 0)
	require.NoError(t, repo.CreatePhoto(ctx, other))

	other.Name = "taken.jpg"
	assert.ErrorIs(t, repo.UpdatePhoto(ctx, other), photohost.ErrDuplicateName)
}

func TestDeletePhoto(t *testing.T) {
	repo := New()
	ctx := context.Background()

	photo := newPhoto("bye.jpg", 0)
	require.NoError(t, repo.CreatePhoto(ctx, photo))
	require.NoError(t, repo.DeletePhoto(ctx, photo.ID))

	_, err := repo.GetPhoto(ctx, photo.ID)
	assert.ErrorIs(t, err, photohost.ErrPhotoNotFound)

	// Name is free for reuse after deletion.
	require.NoError(t, repo.CreatePhoto(ctx, newPhoto("bye.jpg", 0)))
}

func TestListPhotosOrdering(t *testing.T) {
	repo := New()
	ctx := context.Background()

	older := newPhoto("older.jpg", 1)
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := newPhoto("newer.jpg", 1)
	first := newPhoto("first.jpg", 0)

	require.NoError(t, repo.CreatePhoto(ctx, older))
	require.NoError(t, repo.CreatePhoto(ctx, newer))
	require.NoError(t, repo.CreatePhoto(ctx, first))

	photos, err := repo.ListPhotos(ctx)
	require.NoError(t, err)
	require.Len(t, photos, 3)

	// sort_order ascending, then created_at descending within a group.
	assert.Equal(t, "first.jpg", photos[0].Name)
	assert.Equal(t, "newer.jpg", photos[1].Name)
	assert.Equal(t, "older.jpg", photos[2].Name)
}

func TestListPublishedPhotos(t *testing.T) {
	repo := New()
	ctx := context.Background()

	now := time.Now().UTC()
	earlier := now.Add(-time.Hour)

	published := newPhoto("pub.jpg", 0)
	published.PostedAt = &now
	olderPost := newPhoto("older-pub.jpg", 0)
	olderPost.PostedAt = &earlier
	draft := newPhoto("draft.jpg", 0)

	require.NoError(t, repo.CreatePhoto(ctx, published))
	require.NoError(t, repo.CreatePhoto(ctx, olderPost))
	require.NoError(t, repo.CreatePhoto(ctx, draft))

	photos, err := repo.ListPublishedPhotos(ctx, 0)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, "pub.jpg", photos[0].Name)
	assert.Equal(t, "older-pub.jpg", photos[1].Name)

	limited, err := repo.ListPublishedPhotos(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "pub.jpg", limited[0].Name)
}

func TestCopySemantics(t *testing.T) {
	repo := New()
	ctx := context.Background()

	photo := newPhoto("iso.jpg", 0)
	require.NoError(t, repo.CreatePhoto(ctx, photo))

	got, err := repo.GetPhoto(ctx, photo.ID)
	require.NoError(t, err)
	got.Title = "mutated"

	again, err := repo.GetPhoto(ctx, photo.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Title)
}
