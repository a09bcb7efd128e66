package tuto

import "tuto-go/internal/model"

// RunStore records command invocations so past runs can be listed.
type RunStore interface {
	// CreateRun records the start of a run and returns it with its assigned ID.
	CreateRun(runID, operation, parameters string) (*model.Run, error)

	// FinishRun stamps the finish time and final status of a run.
	FinishRun(id int64, status string) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*model.Run, error)

	Close() error
}
