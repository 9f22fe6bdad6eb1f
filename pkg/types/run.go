package types

import "time"

// Ingestion run states.
const (
	RunStatusRunning = "running"
	RunStatusOK      = "ok"
	RunStatusFailed  = "failed"
)

// IngestionRun records one execution of a platform ingester.
type IngestionRun struct {
	RunID      string // UUID v7, generated when the run starts.
	Platform   string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is in progress.
	Status     string
	Error      string // failure message when Status is "failed".
}
