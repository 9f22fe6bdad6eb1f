// Package deltas implements the day-over-day delta recomputation for the
// daily post metrics table. For every (platform, page_id, post_id)
// series, each row's delta columns are set to the difference between its
// counters and the counters of the chronologically previous row in the
// same series. The first row of a series gets zero deltas (the
// zero-filled policy; there is no null variant).
package deltas

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ElizabethRoman12/Datax/pkg/types"
)

// Calculator recomputes delta columns over the full metrics table.
type Calculator struct {
	db  *sql.DB
	log zerolog.Logger
}

// New creates a Calculator over the given database handle.
func New(db *sql.DB) *Calculator {
	return &Calculator{
		db:  db,
		log: log.With().Str("component", "deltas").Logger(),
	}
}

const selectMetrics = `SELECT platform, page_id, post_id, download_date,
    views, reach, reactions, comments, shares, saves,
    delta_views, delta_reach, delta_reactions, delta_comments, delta_shares, delta_saves
  FROM daily_post_metrics
  ORDER BY platform, page_id, post_id, download_date`

const updateDeltas = `UPDATE daily_post_metrics SET
    delta_views = ?, delta_reach = ?, delta_reactions = ?,
    delta_comments = ?, delta_shares = ?, delta_saves = ?
  WHERE platform = ? AND page_id = ? AND post_id = ? AND download_date = ?`

// Recompute runs one full recomputation pass inside a single
// transaction. It reads every row ordered by series key and download
// date, recomputes all deltas in memory, and writes back only the rows
// whose stored deltas differ. Any validation or storage failure rolls
// the whole transaction back, leaving every delta column as it was.
//
// Recompute is a pure function of the absolute-value columns and the
// series ordering: running it twice over unchanged data is a no-op the
// second time.
func (c *Calculator) Recompute(ctx context.Context) error {
	// Store.DB() hands out a nil handle once the store is closed.
	if c.db == nil {
		return types.ErrStoreClosed
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning recompute transaction: %w", err)
	}
	defer tx.Rollback()

	records, err := scanMetrics(ctx, tx)
	if err != nil {
		return err
	}

	changed, err := computeDeltas(records)
	if err != nil {
		return err
	}

	if len(changed) > 0 {
		stmt, err := tx.PrepareContext(ctx, updateDeltas)
		if err != nil {
			return fmt.Errorf("preparing delta update: %w", err)
		}
		defer stmt.Close()

		for _, m := range changed {
			_, err := stmt.ExecContext(ctx,
				m.DeltaViews, m.DeltaReach, m.DeltaReactions,
				m.DeltaComments, m.DeltaShares, m.DeltaSaves,
				m.Platform, m.PageID, m.PostID, m.DownloadDate,
			)
			if err != nil {
				return fmt.Errorf("updating deltas for %s/%s/%s@%s: %w",
					m.Platform, m.PageID, m.PostID, m.DownloadDate, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing recompute: %w", err)
	}

	c.log.Info().
		Int("rows", len(records)).
		Int("updated", len(changed)).
		Msg("recomputed metric deltas")
	return nil
}

// scanMetrics reads the full metrics table in series order.
func scanMetrics(ctx context.Context, tx *sql.Tx) ([]*types.DailyMetrics, error) {
	rows, err := tx.QueryContext(ctx, selectMetrics)
	if err != nil {
		return nil, fmt.Errorf("scanning metrics: %w", err)
	}
	defer rows.Close()

	var out []*types.DailyMetrics
	for rows.Next() {
		m := &types.DailyMetrics{}
		err := rows.Scan(
			&m.Platform, &m.PageID, &m.PostID, &m.DownloadDate,
			&m.Views, &m.Reach, &m.Reactions, &m.Comments, &m.Shares, &m.Saves,
			&m.DeltaViews, &m.DeltaReach, &m.DeltaReactions,
			&m.DeltaComments, &m.DeltaShares, &m.DeltaSaves,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning metrics: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scanning metrics: %w", err)
	}
	return out, nil
}

// computeDeltas recomputes the delta fields of records, which must be
// sorted by (platform, page_id, post_id, download_date). It mutates the
// delta fields in place and returns the records whose deltas changed.
//
// Validation aborts the whole pass: an empty download date means the
// series order cannot be trusted, and a duplicate full key means the
// "previous row" is ambiguous.
func computeDeltas(records []*types.DailyMetrics) ([]*types.DailyMetrics, error) {
	var changed []*types.DailyMetrics
	var prev *types.DailyMetrics

	for _, m := range records {
		if m.DownloadDate == "" {
			return nil, fmt.Errorf("%w: %s/%s/%s",
				types.ErrMissingDownloadDate, m.Platform, m.PageID, m.PostID)
		}
		if prev != nil && m.Key() == prev.Key() {
			return nil, fmt.Errorf("%w: %s/%s/%s@%s",
				types.ErrDuplicateMetricKey, m.Platform, m.PageID, m.PostID, m.DownloadDate)
		}

		old := [6]int64{m.DeltaViews, m.DeltaReach, m.DeltaReactions, m.DeltaComments, m.DeltaShares, m.DeltaSaves}

		if prev != nil && m.Series() == prev.Series() {
			m.DeltaViews = m.Views - prev.Views
			m.DeltaReach = m.Reach - prev.Reach
			m.DeltaReactions = m.Reactions - prev.Reactions
			m.DeltaComments = m.Comments - prev.Comments
			m.DeltaShares = m.Shares - prev.Shares
			m.DeltaSaves = m.Saves - prev.Saves
		} else {
			// First row of its series: no predecessor, zero deltas.
			m.DeltaViews = 0
			m.DeltaReach = 0
			m.DeltaReactions = 0
			m.DeltaComments = 0
			m.DeltaShares = 0
			m.DeltaSaves = 0
		}

		if old != [6]int64{m.DeltaViews, m.DeltaReach, m.DeltaReactions, m.DeltaComments, m.DeltaShares, m.DeltaSaves} {
			changed = append(changed, m)
		}
		prev = m
	}
	return changed, nil
}
