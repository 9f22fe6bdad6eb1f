package store

import (
	"context"
	"fmt"

	"github.com/ElizabethRoman12/Datax/pkg/types"
)

// UpsertReactionCount inserts or updates one reaction-type count for a
// post on a given day.
func (s *Store) UpsertReactionCount(ctx context.Context, rc *types.ReactionCount) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO post_reactions_daily
           (platform, page_id, post_id, download_date, reaction_type, count)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT (platform, page_id, post_id, download_date, reaction_type)
           DO UPDATE SET count = excluded.count`,
		rc.Platform, rc.PageID, rc.PostID, rc.DownloadDate, rc.ReactionType, rc.Count,
	)
	if err != nil {
		return fmt.Errorf("upserting reaction %s for %s/%s/%s@%s: %w",
			rc.ReactionType, rc.Platform, rc.PageID, rc.PostID, rc.DownloadDate, err)
	}
	return nil
}

// RefreshReactionTotals recomputes daily_post_metrics.reactions from the
// reaction detail rows. Only metric rows that have at least one detail
// row are touched, so platforms that report a plain total (no breakdown)
// keep the value the ingester wrote. Callers invoke this synchronously
// after writing reaction detail rows; there is no database trigger.
// Returns the number of metric rows updated.
func (s *Store) RefreshReactionTotals(ctx context.Context) (int64, error) {
	db, err := s.handle()
	if err != nil {
		return 0, err
	}

	res, err := db.ExecContext(ctx,
		`UPDATE daily_post_metrics AS m SET reactions = (
           SELECT COALESCE(SUM(r.count), 0) FROM post_reactions_daily r
           WHERE r.platform = m.platform AND r.page_id = m.page_id
             AND r.post_id = m.post_id AND r.download_date = m.download_date)
         WHERE EXISTS (
           SELECT 1 FROM post_reactions_daily r
           WHERE r.platform = m.platform AND r.page_id = m.page_id
             AND r.post_id = m.post_id AND r.download_date = m.download_date)`,
	)
	if err != nil {
		return 0, fmt.Errorf("refreshing reaction totals: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("refreshing reaction totals: %w", err)
	}
	return n, nil
}

// ReactionBreakdown returns the per-type reaction counts for one post on
// one day, keyed by reaction type.
func (s *Store) ReactionBreakdown(ctx context.Context, key types.MetricKey) (map[string]int64, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT reaction_type, count FROM post_reactions_daily
         WHERE platform = ? AND page_id = ? AND post_id = ? AND download_date = ?`,
		key.Platform, key.PageID, key.PostID, key.DownloadDate,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching reaction breakdown: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var typ string
		var count int64
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, err
		}
		out[typ] = count
	}
	return out, rows.Err()
}
