package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ElizabethRoman12/Datax/pkg/types"
)

// BeginRun records the start of a platform ingestion run and returns it.
func (s *Store) BeginRun(ctx context.Context, platform string) (*types.IngestionRun, error) {
	if !types.ValidPlatform(platform) {
		return nil, fmt.Errorf("%w: %q", types.ErrInvalidPlatform, platform)
	}

	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	run := &types.IngestionRun{
		RunID:     generateRunID(),
		Platform:  platform,
		StartedAt: time.Now().UTC(),
		Status:    types.RunStatusRunning,
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO ingestion_runs (run_id, platform, started_at, status)
         VALUES (?, ?, ?, ?)`,
		run.RunID, run.Platform, run.StartedAt.Format(time.RFC3339), run.Status,
	)
	if err != nil {
		return nil, fmt.Errorf("recording run start: %w", err)
	}
	return run, nil
}

// FinishRun marks a run as finished: status "ok" when runErr is nil,
// "failed" with the error message otherwise.
func (s *Store) FinishRun(ctx context.Context, run *types.IngestionRun, runErr error) error {
	db, err := s.handle()
	if err != nil {
		return err
	}

	run.FinishedAt = time.Now().UTC()
	if runErr != nil {
		run.Status = types.RunStatusFailed
		run.Error = runErr.Error()
	} else {
		run.Status = types.RunStatusOK
	}

	_, err = db.ExecContext(ctx,
		`UPDATE ingestion_runs SET finished_at = ?, status = ?, error = ? WHERE run_id = ?`,
		run.FinishedAt.Format(time.RFC3339), run.Status, run.Error, run.RunID,
	)
	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}
	return nil
}

// GetRun retrieves an ingestion run by ID.
func (s *Store) GetRun(ctx context.Context, runID string) (*types.IngestionRun, error) {
	db, err := s.handle()
	if err != nil {
		return nil, err
	}

	run := &types.IngestionRun{}
	var startedAt string
	var finishedAt, errMsg sql.NullString
	err = db.QueryRowContext(ctx,
		`SELECT run_id, platform, started_at, finished_at, status, error
         FROM ingestion_runs WHERE run_id = ?`, runID,
	).Scan(&run.RunID, &run.Platform, &startedAt, &finishedAt, &run.Status, &errMsg)
	if err == sql.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting run %s: %w", runID, err)
	}

	run.StartedAt, err = time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing started_at for run %s: %w", runID, err)
	}
	if finishedAt.Valid && finishedAt.String != "" {
		run.FinishedAt, err = time.Parse(time.RFC3339, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing finished_at for run %s: %w", runID, err)
		}
	}
	run.Error = errMsg.String
	return run, nil
}

// generateRunID generates a UUID v7 run ID, falling back to v4 if v7
// generation fails.
func generateRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
