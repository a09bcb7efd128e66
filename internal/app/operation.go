package app

import (
	"fmt"
	"sort"
	"strings"

	"tuto-go/internal/database"
)

// Operation tracks one CLI invocation. Operations live in memory with ID=0
// until a command that changes files records them in the run history.
type Operation struct {
	ID         int64
	RunID      string
	Name       string
	Parameters string
	Status     string
}

// NewOperation creates an in-memory operation that succeeds unless Fail is called.
func NewOperation(runID, name string) *Operation {
	return &Operation{
		RunID:  runID,
		Name:   name,
		Status: database.StatusSuccess,
	}
}

// Persisted reports whether the operation has been written to the run history.
func (op *Operation) Persisted() bool {
	return op.ID != 0
}

// Fail marks the operation as failed when err is non-nil.
func (op *Operation) Fail(err error) {
	if err != nil {
		op.Status = database.StatusError
	}
}

// formatParameters renders params as space separated key=value pairs,
// sorted by key, skipping empty values.
func formatParameters(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%s", k, params[k])
	}
	return strings.Join(parts, " ")
}
