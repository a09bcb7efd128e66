// Package ident extracts student identifiers and display names from
// submission folder names and table cells.
package ident

import (
	"fmt"
	"regexp"
	"strings"

	"tuto-go/internal/tuto"
)

// PatternExtractor matches identifiers and names with regular expressions.
// The ID pattern's first capture group (or the whole match when it has none)
// is the identifier; the first match of the name pattern is the name.
type PatternExtractor struct {
	id   *regexp.Regexp
	name *regexp.Regexp
}

var _ tuto.Extractor = (*PatternExtractor)(nil)

// NewPatternExtractor compiles the identifier and name patterns.
func NewPatternExtractor(idPattern, namePattern string) (*PatternExtractor, error) {
	id, err := regexp.Compile(idPattern)
	if err != nil {
		return nil, fmt.Errorf("compiling id pattern: %w", err)
	}
	name, err := regexp.Compile(namePattern)
	if err != nil {
		return nil, fmt.Errorf("compiling name pattern: %w", err)
	}
	return &PatternExtractor{id: id, name: name}, nil
}

// ID returns the first identifier in s, e.g. "1234567" for
// "Jane Doe_1234567_assignsubmission_file_".
func (e *PatternExtractor) ID(s string) (string, bool) {
	m := e.id.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	if len(m) > 1 {
		return m[1], m[1] != ""
	}
	return m[0], m[0] != ""
}

// Name returns the first run of name characters in s with surrounding
// whitespace trimmed, e.g. "Jane" for "1234567_Jane".
func (e *PatternExtractor) Name(s string) (string, bool) {
	for _, m := range e.name.FindAllString(s, -1) {
		if name := strings.TrimSpace(m); name != "" {
			return name, true
		}
	}
	return "", false
}
