package sqlite

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/recipe-graph-crawler/internal/cache"
)

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(ctx, dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	assert.Equal(t, filepath.Join(dir, FileName), s.Path())

	_, ok, err := s.Get(ctx, "https://x/pie")
	require.NoError(t, err)
	assert.False(t, ok)

	stored := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entry := cache.Entry{
		URL:        "https://x/pie?ref=1",
		StatusCode: http.StatusOK,
		Headers:    http.Header{"Content-Type": {"text/html"}},
		Body:       []byte("<html></html>"),
		StoredAt:   stored,
	}
	require.NoError(t, s.Put(ctx, "https://x/pie", entry))

	got, ok, err := s.Get(ctx, "https://x/pie")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry, got)
}

func TestStorePutReplaces(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := Open(ctx, t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Put(ctx, "u", cache.Entry{URL: "u", StatusCode: 200, Body: []byte("old")}))
	require.NoError(t, s.Put(ctx, "u", cache.Entry{URL: "u", StatusCode: 200, Body: []byte("new")}))

	got, ok, err := s.Get(ctx, "u")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", string(got.Body))
}

func TestStorePersistsAcrossOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	s, err := Open(ctx, dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, "u", cache.Entry{URL: "u", StatusCode: 200, Body: []byte("kept")}))
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })
	got, ok, err := reopened.Get(ctx, "u")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "kept", string(got.Body))
}
