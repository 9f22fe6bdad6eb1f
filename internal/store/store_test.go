package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElizabethRoman12/Datax/pkg/types"
)

// setupStore opens a Store on a temp data directory and closes it when
// the test finishes.
func setupStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(types.Config{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestOpen(t *testing.T) {
	t.Run("creates data dir and database file", func(t *testing.T) {
		dataDir := filepath.Join(t.TempDir(), "nested", "warehouse")
		st, err := Open(types.Config{DataDir: dataDir})
		require.NoError(t, err)
		defer st.Close()

		_, err = os.Stat(filepath.Join(dataDir, DBFileName))
		assert.NoError(t, err)
	})

	t.Run("rejects empty data dir", func(t *testing.T) {
		_, err := Open(types.Config{})
		assert.ErrorIs(t, err, types.ErrDataDirEmpty)
	})

	t.Run("reopening existing database is idempotent", func(t *testing.T) {
		dataDir := t.TempDir()
		st, err := Open(types.Config{DataDir: dataDir})
		require.NoError(t, err)
		require.NoError(t, st.UpsertPage(context.Background(), &types.Page{
			Platform: types.PlatformFacebook, PageID: "p1", Name: "First",
		}))
		require.NoError(t, st.Close())

		st, err = Open(types.Config{DataDir: dataDir})
		require.NoError(t, err)
		defer st.Close()

		page, err := st.GetPage(context.Background(), types.PlatformFacebook, "p1")
		require.NoError(t, err)
		assert.Equal(t, "First", page.Name)
	})
}

func TestClose(t *testing.T) {
	t.Run("close is idempotent", func(t *testing.T) {
		st, err := Open(types.Config{DataDir: t.TempDir()})
		require.NoError(t, err)
		require.NoError(t, st.Close())
		assert.NoError(t, st.Close())
	})

	t.Run("operations after close return ErrStoreClosed", func(t *testing.T) {
		st, err := Open(types.Config{DataDir: t.TempDir()})
		require.NoError(t, err)
		require.NoError(t, st.Close())

		ctx := context.Background()
		_, err = st.GetPage(ctx, types.PlatformFacebook, "p1")
		assert.ErrorIs(t, err, types.ErrStoreClosed)

		err = st.UpsertDailyMetrics(ctx, &types.DailyMetrics{
			Platform: types.PlatformFacebook, PageID: "p1", PostID: "x", DownloadDate: "2026-01-01",
		})
		assert.ErrorIs(t, err, types.ErrStoreClosed)
	})
}

func TestPages(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	t.Run("get missing page returns ErrNotFound", func(t *testing.T) {
		_, err := st.GetPage(ctx, types.PlatformFacebook, "nope")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("upsert then get round-trips", func(t *testing.T) {
		page := &types.Page{Platform: types.PlatformInstagram, PageID: "acct1", Name: "Brand"}
		require.NoError(t, st.UpsertPage(ctx, page))

		got, err := st.GetPage(ctx, types.PlatformInstagram, "acct1")
		require.NoError(t, err)
		assert.Equal(t, page, got)
	})

	t.Run("upsert updates the name in place", func(t *testing.T) {
		page := &types.Page{Platform: types.PlatformInstagram, PageID: "acct1", Name: "Renamed"}
		require.NoError(t, st.UpsertPage(ctx, page))

		got, err := st.GetPage(ctx, types.PlatformInstagram, "acct1")
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
	})
}
