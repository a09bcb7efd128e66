package model

import (
	"database/sql"
	"time"
)

// Record is one row of the grading table exported by the course platform.
type Record struct {
	ID                   string   // numeric suffix of the participant label, e.g. "1234567"
	Name                 string   // full name
	IDNumber             string   // matriculation number
	Email                string
	Status               string
	Rating               *float64 // nil means ungraded
	BestRating           float64  // maximum possible rating
	RatingChangeable     string
	LastChangeSubmission string
	LastChangeRating     string
	Feedback             string
}

// Graded reports whether the record carries a rating.
func (r *Record) Graded() bool {
	return r.Rating != nil
}

// Run is a recorded invocation of a mutating command.
type Run struct {
	ID         int64
	RunID      string // UUID shared with the log lines of the run
	Operation  string
	Parameters string
	Status     string // "running", "success" or "error"
	StartedAt  time.Time
	FinishedAt sql.NullTime
}
