package store

import (
	"context"
	"fmt"

	"github.com/ElizabethRoman12/Datax/pkg/types"
)

// UpsertWeeklyPageStats inserts or updates one weekly page snapshot.
func (s *Store) UpsertWeeklyPageStats(ctx context.Context, w *types.WeeklyPageStats) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO weekly_page_stats
           (platform, page_id, week_ending, followers, page_reach, page_views)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT (platform, page_id, week_ending) DO UPDATE SET
           followers = excluded.followers,
           page_reach = excluded.page_reach,
           page_views = excluded.page_views`,
		w.Platform, w.PageID, w.WeekEnding, w.Followers, w.PageReach, w.PageViews,
	)
	if err != nil {
		return fmt.Errorf("upserting weekly stats %s/%s@%s: %w", w.Platform, w.PageID, w.WeekEnding, err)
	}
	return nil
}

// InsertFollowerSegment records one audience segment for a week.
// Segments are insert-only: a segment already recorded for the same week
// is left untouched.
func (s *Store) InsertFollowerSegment(ctx context.Context, seg *types.FollowerSegment) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO follower_segments
           (platform, page_id, week_ending, dimension, segment, followers)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT DO NOTHING`,
		seg.Platform, seg.PageID, seg.WeekEnding, seg.Dimension, seg.Segment, seg.Followers,
	)
	if err != nil {
		return fmt.Errorf("inserting follower segment %s/%s %s=%s: %w",
			seg.Platform, seg.PageID, seg.Dimension, seg.Segment, err)
	}
	return nil
}
