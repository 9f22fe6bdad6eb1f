package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ElizabethRoman12/Datax/pkg/types"
)

// metricColumns is the column list shared by all daily metric queries,
// in hydrateMetrics scan order.
const metricColumns = `platform, page_id, post_id, download_date,
    views, reach, impressions, reactions, comments, shares, saves,
    link_clicks, ctr,
    delta_views, delta_reach, delta_reactions, delta_comments, delta_shares, delta_saves`

// UpsertDailyMetrics inserts or updates the absolute-value columns of a
// daily metric row. Delta columns are owned by the delta calculator and
// are never written here: a fresh row starts with zero deltas and an
// updated row keeps whatever the last recompute produced.
func (s *Store) UpsertDailyMetrics(ctx context.Context, m *types.DailyMetrics) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	var ctr any
	if m.CTR != nil {
		ctr = *m.CTR
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO daily_post_metrics
           (platform, page_id, post_id, download_date,
            views, reach, impressions, reactions, comments, shares, saves,
            link_clicks, ctr)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (platform, page_id, post_id, download_date) DO UPDATE SET
           views = excluded.views,
           reach = excluded.reach,
           impressions = excluded.impressions,
           reactions = excluded.reactions,
           comments = excluded.comments,
           shares = excluded.shares,
           saves = excluded.saves,
           link_clicks = excluded.link_clicks,
           ctr = excluded.ctr`,
		m.Platform, m.PageID, m.PostID, m.DownloadDate,
		m.Views, m.Reach, m.Impressions, m.Reactions, m.Comments, m.Shares, m.Saves,
		m.LinkClicks, ctr,
	)
	if err != nil {
		return fmt.Errorf("upserting daily metrics %s/%s/%s@%s: %w",
			m.Platform, m.PageID, m.PostID, m.DownloadDate, err)
	}
	return nil
}

// GetDailyMetrics retrieves one daily metric row by its full key.
func (s *Store) GetDailyMetrics(ctx context.Context, key types.MetricKey) (*types.DailyMetrics, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	row := db.QueryRowContext(ctx,
		`SELECT `+metricColumns+` FROM daily_post_metrics
         WHERE platform = ? AND page_id = ? AND post_id = ? AND download_date = ?`,
		key.Platform, key.PageID, key.PostID, key.DownloadDate,
	)
	m, err := hydrateMetrics(row)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting daily metrics %s/%s/%s@%s: %w",
			key.Platform, key.PageID, key.PostID, key.DownloadDate, err)
	}
	return m, nil
}

// SeriesMetrics returns all rows of one series ordered by download date.
func (s *Store) SeriesMetrics(ctx context.Context, series types.SeriesKey) ([]*types.DailyMetrics, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+metricColumns+` FROM daily_post_metrics
         WHERE platform = ? AND page_id = ? AND post_id = ?
         ORDER BY download_date`,
		series.Platform, series.PageID, series.PostID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching series %s/%s/%s: %w", series.Platform, series.PageID, series.PostID, err)
	}
	defer rows.Close()

	return collectMetrics(rows)
}

// RecentMetrics returns the most recent daily metric rows across all
// series, newest first, up to limit rows.
func (s *Store) RecentMetrics(ctx context.Context, limit int) ([]*types.DailyMetrics, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+metricColumns+` FROM daily_post_metrics
         ORDER BY download_date DESC, platform, page_id, post_id
         LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("fetching recent metrics: %w", err)
	}
	defer rows.Close()

	return collectMetrics(rows)
}

// scanner is the subset of sql.Row/sql.Rows used by hydrateMetrics.
type scanner interface {
	Scan(dest ...any) error
}

// hydrateMetrics scans one daily metric row in metricColumns order.
func hydrateMetrics(row scanner) (*types.DailyMetrics, error) {
	m := &types.DailyMetrics{}
	var ctr sql.NullFloat64
	err := row.Scan(
		&m.Platform, &m.PageID, &m.PostID, &m.DownloadDate,
		&m.Views, &m.Reach, &m.Impressions, &m.Reactions, &m.Comments, &m.Shares, &m.Saves,
		&m.LinkClicks, &ctr,
		&m.DeltaViews, &m.DeltaReach, &m.DeltaReactions, &m.DeltaComments, &m.DeltaShares, &m.DeltaSaves,
	)
	if err != nil {
		return nil, err
	}
	if ctr.Valid {
		v := ctr.Float64
		m.CTR = &v
	}
	return m, nil
}

// collectMetrics drains a result set into a slice.
func collectMetrics(rows *sql.Rows) ([]*types.DailyMetrics, error) {
	var out []*types.DailyMetrics
	for rows.Next() {
		m, err := hydrateMetrics(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
