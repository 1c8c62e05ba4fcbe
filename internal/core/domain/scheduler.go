package domain

import "time"

// TaskIDCatchUp identifies the periodic catch-up pass over a user's sources.
const TaskIDCatchUp = "catch-up"

// ScheduledTask is the state of a recurring background task.
type ScheduledTask struct {
	ID   string
	Name string

	// Interval between two runs. Zero leaves the task disabled.
	Interval time.Duration

	// LastRun and NextRun are zero until the first run.
	LastRun time.Time
	NextRun time.Time

	// LastError is the failure of the latest run, empty after a success.
	LastError string

	// LastSuccess is when a run last finished without error.
	LastSuccess time.Time

	Enabled bool
}

// TaskResult is the outcome of one run.
type TaskResult struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time

	// Success is false when Error is set. A failed run may still have
	// indexed documents from the sources that succeeded.
	Success bool
	Error   string

	// Sources is the number of sources visited.
	Sources int

	// ItemsProcessed is the number of documents indexed.
	ItemsProcessed int
}
