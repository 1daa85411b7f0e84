package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adforge/adforge/config"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	s, err := New(config.StorageConfig{
		Disk:      "local",
		LocalRoot: t.TempDir(),
		LocalURL:  "http://localhost:8080/storage",
	})
	require.NoError(t, err)
	return s
}

func TestLocalPutGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	url, err := s.Put(ctx, "users/u1/b1/p1/source-1.jpg", "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/storage/users/u1/b1/p1/source-1.jpg", url)

	got, err := s.Get(ctx, "users/u1/b1/p1/source-1.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), got)
	assert.True(t, s.Exists(ctx, "users/u1/b1/p1/source-1.jpg"))
}

func TestLocalDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Put(ctx, "a/b/c.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "a/b/c.png"))
	assert.False(t, s.Exists(ctx, "a/b/c.png"))

	// Deleting a missing key is not an error.
	assert.NoError(t, s.Delete(ctx, "a/b/c.png"))
}

func TestLocalDeletePrefix(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	keys := []string{
		"users/u1/b1/p1/source-1.jpg",
		"users/u1/b1/p1/generated-1.png",
		"users/u1/b1/p2/source-1.jpg",
	}
	for _, k := range keys {
		_, err := s.Put(ctx, k, "image/png", strings.NewReader("x"))
		require.NoError(t, err)
	}

	require.NoError(t, s.DeletePrefix(ctx, "users/u1/b1/p1/"))

	assert.False(t, s.Exists(ctx, keys[0]))
	assert.False(t, s.Exists(ctx, keys[1]))
	assert.True(t, s.Exists(ctx, keys[2]), "sibling product untouched")
}

func TestUnknownDisk(t *testing.T) {
	_, err := New(config.StorageConfig{Disk: "floppy"})
	assert.Error(t, err)
}
