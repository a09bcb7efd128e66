package tuto

import "tuto-go/internal/model"

// TableStore loads and saves grading tables, picking the format from the
// file extension.
type TableStore interface {
	// Supports reports whether the extension of path is a known table format.
	Supports(path string) bool

	// Read returns every parseable record of the table. Rows that fail to
	// parse are dropped.
	Read(path string) ([]*model.Record, error)

	// Write replaces the table at path with records.
	Write(path string, records []*model.Record) error
}
