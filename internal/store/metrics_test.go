package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElizabethRoman12/Datax/pkg/types"
)

func TestUpsertDailyMetrics(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	key := types.MetricKey{
		Platform:     types.PlatformFacebook,
		PageID:       "page1",
		PostID:       "post1",
		DownloadDate: "2026-01-05",
	}

	t.Run("insert then get round-trips", func(t *testing.T) {
		ctr := 2.5
		m := &types.DailyMetrics{
			Platform: key.Platform, PageID: key.PageID, PostID: key.PostID,
			DownloadDate: key.DownloadDate,
			Views:        100, Reach: 80, Impressions: 120,
			Reactions: 10, Comments: 3, Shares: 2, Saves: 1,
			LinkClicks: 3, CTR: &ctr,
		}
		require.NoError(t, st.UpsertDailyMetrics(ctx, m))

		got, err := st.GetDailyMetrics(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(100), got.Views)
		assert.Equal(t, int64(80), got.Reach)
		assert.Equal(t, int64(120), got.Impressions)
		assert.Equal(t, int64(10), got.Reactions)
		require.NotNil(t, got.CTR)
		assert.InDelta(t, 2.5, *got.CTR, 1e-9)
	})

	t.Run("new rows start with zero deltas", func(t *testing.T) {
		got, err := st.GetDailyMetrics(ctx, key)
		require.NoError(t, err)
		assert.Zero(t, got.DeltaViews)
		assert.Zero(t, got.DeltaReach)
		assert.Zero(t, got.DeltaReactions)
		assert.Zero(t, got.DeltaComments)
		assert.Zero(t, got.DeltaShares)
		assert.Zero(t, got.DeltaSaves)
	})

	t.Run("re-upsert updates absolutes and preserves deltas", func(t *testing.T) {
		// Simulate a previous recompute pass.
		_, err := st.DB().Exec(
			`UPDATE daily_post_metrics SET delta_views = 7
			 WHERE platform = ? AND page_id = ? AND post_id = ? AND download_date = ?`,
			key.Platform, key.PageID, key.PostID, key.DownloadDate,
		)
		require.NoError(t, err)

		m := &types.DailyMetrics{
			Platform: key.Platform, PageID: key.PageID, PostID: key.PostID,
			DownloadDate: key.DownloadDate,
			Views:        150, Reach: 90,
		}
		require.NoError(t, st.UpsertDailyMetrics(ctx, m))

		got, err := st.GetDailyMetrics(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, int64(150), got.Views)
		assert.Equal(t, int64(7), got.DeltaViews)
	})

	t.Run("nil CTR stays nil", func(t *testing.T) {
		m := &types.DailyMetrics{
			Platform: key.Platform, PageID: key.PageID, PostID: "post-noctr",
			DownloadDate: key.DownloadDate,
		}
		require.NoError(t, st.UpsertDailyMetrics(ctx, m))

		got, err := st.GetDailyMetrics(ctx, m.Key())
		require.NoError(t, err)
		assert.Nil(t, got.CTR)
	})

	t.Run("get missing row returns ErrNotFound", func(t *testing.T) {
		_, err := st.GetDailyMetrics(ctx, types.MetricKey{
			Platform: types.PlatformFacebook, PageID: "page1",
			PostID: "post1", DownloadDate: "1999-01-01",
		})
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestSeriesMetrics(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	series := types.SeriesKey{Platform: types.PlatformFacebook, PageID: "p", PostID: "a"}
	// Inserted out of order on purpose.
	for _, date := range []string{"2026-01-03", "2026-01-01", "2026-01-02"} {
		require.NoError(t, st.UpsertDailyMetrics(ctx, &types.DailyMetrics{
			Platform: series.Platform, PageID: series.PageID, PostID: series.PostID,
			DownloadDate: date,
		}))
	}
	// A neighboring series that must not leak in.
	require.NoError(t, st.UpsertDailyMetrics(ctx, &types.DailyMetrics{
		Platform: series.Platform, PageID: series.PageID, PostID: "b",
		DownloadDate: "2026-01-01",
	}))

	rows, err := st.SeriesMetrics(ctx, series)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2026-01-01", rows[0].DownloadDate)
	assert.Equal(t, "2026-01-02", rows[1].DownloadDate)
	assert.Equal(t, "2026-01-03", rows[2].DownloadDate)
}

func TestRecentMetrics(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	for _, date := range []string{"2026-01-01", "2026-01-02", "2026-01-03"} {
		require.NoError(t, st.UpsertDailyMetrics(ctx, &types.DailyMetrics{
			Platform: types.PlatformFacebook, PageID: "p", PostID: "a",
			DownloadDate: date,
		}))
	}

	rows, err := st.RecentMetrics(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-01-03", rows[0].DownloadDate)
	assert.Equal(t, "2026-01-02", rows[1].DownloadDate)
}

func TestPosts(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	published := time.Date(2026, 1, 10, 15, 30, 0, 0, time.UTC)
	post := &types.Post{
		Platform: types.PlatformFacebook, PageID: "p", PostID: "post1",
		URL: "https://example.com/post1", PublishedAt: published,
		Body: "hello", Format: types.FormatVideo,
	}

	t.Run("upsert then get round-trips", func(t *testing.T) {
		require.NoError(t, st.UpsertPost(ctx, post))

		got, err := st.GetPost(ctx, post.Platform, post.PageID, post.PostID)
		require.NoError(t, err)
		assert.Equal(t, post.URL, got.URL)
		assert.Equal(t, post.Body, got.Body)
		assert.Equal(t, types.FormatVideo, got.Format)
		assert.True(t, got.PublishedAt.Equal(published))
	})

	t.Run("upsert refreshes mutable columns", func(t *testing.T) {
		post.Body = "edited"
		post.Format = types.FormatLink
		require.NoError(t, st.UpsertPost(ctx, post))

		got, err := st.GetPost(ctx, post.Platform, post.PageID, post.PostID)
		require.NoError(t, err)
		assert.Equal(t, "edited", got.Body)
		assert.Equal(t, types.FormatLink, got.Format)
	})

	t.Run("get missing post returns ErrNotFound", func(t *testing.T) {
		_, err := st.GetPost(ctx, types.PlatformFacebook, "p", "nope")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}
