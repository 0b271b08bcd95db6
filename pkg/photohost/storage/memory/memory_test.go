package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetDelete(t *testing.T) {
	b := New()
	ctx := context.Background()

	url, err := b.Put(ctx, "full/a.jpg", strings.NewReader("payload"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "memory://full/a.jpg", url)
	assert.Equal(t, url, b.PublicURL("full/a.jpg"))

	data, contentType, ok := b.Get("full/a.jpg")
	require.True(t, ok)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, "image/jpeg", contentType)

	require.NoError(t, b.Delete(ctx, "full/a.jpg"))
	assert.False(t, b.Has("full/a.jpg"))
}

func TestDeleteMissing(t *testing.T) {
	b := New()
	assert.Error(t, b.Delete(context.Background(), "missing"))
}

func TestCopy(t *testing.T) {
	b := New()
	ctx := context.Background()

	_, err := b.Put(ctx, "full/old.jpg", strings.NewReader("bytes"), "image/jpeg")
	require.NoError(t, err)

	require.NoError(t, b.Copy(ctx, "full/old.jpg", "full/new.jpg"))
	assert.True(t, b.Has("full/old.jpg"))

	data, _, ok := b.Get("full/new.jpg")
	require.True(t, ok)
	assert.Equal(t, "bytes", string(data))

	assert.Error(t, b.Copy(ctx, "full/nope.jpg", "full/x.jpg"))
}
