package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElizabethRoman12/Datax/pkg/types"
)

func TestWeeklyPageStats(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	stats := &types.WeeklyPageStats{
		Platform: types.PlatformFacebook, PageID: "p", WeekEnding: "2026-01-11",
		Followers: 1000, PageReach: 5000, PageViews: 300,
	}
	require.NoError(t, st.UpsertWeeklyPageStats(ctx, stats))

	t.Run("upsert replaces the snapshot for the same week", func(t *testing.T) {
		stats.Followers = 1010
		require.NoError(t, st.UpsertWeeklyPageStats(ctx, stats))

		var followers int64
		err := st.DB().QueryRow(
			`SELECT followers FROM weekly_page_stats
			 WHERE platform = ? AND page_id = ? AND week_ending = ?`,
			stats.Platform, stats.PageID, stats.WeekEnding,
		).Scan(&followers)
		require.NoError(t, err)
		assert.Equal(t, int64(1010), followers)
	})
}

func TestInsertFollowerSegment(t *testing.T) {
	st := setupStore(t)
	ctx := context.Background()

	seg := &types.FollowerSegment{
		Platform: types.PlatformFacebook, PageID: "p", WeekEnding: "2026-01-11",
		Dimension: types.SegmentCountry, Segment: "MX", Followers: 700,
	}
	require.NoError(t, st.InsertFollowerSegment(ctx, seg))

	t.Run("segments are insert-only", func(t *testing.T) {
		dup := *seg
		dup.Followers = 999
		require.NoError(t, st.InsertFollowerSegment(ctx, &dup))

		var followers int64
		err := st.DB().QueryRow(
			`SELECT followers FROM follower_segments
			 WHERE platform = ? AND page_id = ? AND week_ending = ? AND dimension = ? AND segment = ?`,
			seg.Platform, seg.PageID, seg.WeekEnding, seg.Dimension, seg.Segment,
		).Scan(&followers)
		require.NoError(t, err)
		assert.Equal(t, int64(700), followers, "existing segment should be left untouched")
	})

	t.Run("different segments of one dimension coexist", func(t *testing.T) {
		other := *seg
		other.Segment = "AR"
		other.Followers = 120
		require.NoError(t, st.InsertFollowerSegment(ctx, &other))

		var n int
		err := st.DB().QueryRow(
			`SELECT COUNT(*) FROM follower_segments WHERE dimension = ?`, types.SegmentCountry,
		).Scan(&n)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})
}
