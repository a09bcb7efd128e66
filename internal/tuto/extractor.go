package tuto

import "io"

// Extractor pulls the student identifier and display name out of a folder
// name or table cell.
type Extractor interface {
	// ID returns the numeric identifier embedded in s.
	ID(s string) (string, bool)

	// Name returns the display name embedded in s.
	Name(s string) (string, bool)
}

// Scanner totals the point deductions recorded in a text stream.
type Scanner interface {
	Scan(r io.Reader) (float64, error)
}
