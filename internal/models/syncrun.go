package models

import "time"

// SyncRun status values.
const (
	RunInProgress = "in_progress"
	RunSuccess    = "success"
	RunError      = "error"
)

// SyncRun is one row of the append-only sync history. Created when a run
// starts and finalized exactly once when it ends.
type SyncRun struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   *time.Time
	Status       string
	ErrorMessage *string

	RecordsProcessed int
	RecordsCreated   int
	RecordsUpdated   int
	ItemsProcessed   int
	ItemsCreated     int
	ItemsUpdated     int
}
