package archive

import (
	"context"
	"testing"
	"time"

	"github.com/sametyasit/cryptobuddy/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFS_ImplementsStorage(t *testing.T) {
	var _ Storage = (*LocalFS)(nil)
	var _ Storage = (*S3Storage)(nil)
}

func TestLocalFS_WriteRead(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	path := "listing/2024-05-02/page-1-50-1714644000.json"
	require.NoError(t, fs.Write(ctx, path, []byte(`{}`)))

	got, err := fs.Read(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got))

	exists, err := fs.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = fs.Exists(ctx, "nope.json")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalFS_List(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, fs.Write(ctx, "listing/2024-05-01/a.json", []byte("a")))
	require.NoError(t, fs.Write(ctx, "listing/2024-05-01/b.json", []byte("b")))
	require.NoError(t, fs.Write(ctx, "listing/2024-05-02/c.json", []byte("c")))

	paths, err := fs.List(ctx, "listing/2024-05-01")
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	empty, err := fs.List(ctx, "listing/2030-01-01")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSnapshotter_SaveAndReadListing(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	require.NoError(t, err)
	s := NewSnapshotter(fs)
	fixed := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	ctx := context.Background()
	assets := []core.Asset{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "btc", Price: 64000, Rank: 1},
	}

	require.NoError(t, s.SaveListing(ctx, "coingecko", 1, 50, assets))

	paths, err := s.ListDay(ctx, fixed)
	require.NoError(t, err)
	require.Len(t, paths, 1)

	snap, err := s.ReadListing(ctx, paths[0])
	require.NoError(t, err)
	assert.Equal(t, "coingecko", snap.Provider)
	assert.Equal(t, 1, snap.Page)
	assert.Equal(t, 50, snap.PerPage)
	require.Len(t, snap.Assets, 1)
	assert.Equal(t, "bitcoin", snap.Assets[0].ID)
}
