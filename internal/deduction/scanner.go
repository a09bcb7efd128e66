// Package deduction totals the point deductions tutors leave as comments in
// student source files, e.g. "// Tutor: -2.5".
package deduction

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"tuto-go/internal/tuto"
)

// Scanner sums deduction markers line by line.
//
// The pattern may name a "points" group holding the magnitude and a "sign"
// group holding an optional minus. Without a "points" group the last group
// is the magnitude. By default every marker counts as a deduction of its
// magnitude, minus or not. In signed mode a marker without a minus is a
// bonus and lowers the total.
type Scanner struct {
	pattern *regexp.Regexp
	points  int
	sign    int
	signed  bool
}

var _ tuto.Scanner = (*Scanner)(nil)

// NewScanner compiles pattern into a Scanner.
func NewScanner(pattern string, signed bool) (*Scanner, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling deduction pattern: %w", err)
	}
	if re.NumSubexp() == 0 {
		return nil, fmt.Errorf("deduction pattern needs a capture group: %s", pattern)
	}

	points := re.SubexpIndex("points")
	if points < 0 {
		points = re.NumSubexp()
	}
	return &Scanner{
		pattern: re,
		points:  points,
		sign:    re.SubexpIndex("sign"),
		signed:  signed,
	}, nil
}

// Scan reads r to the end and returns the deduction total. Markers whose
// number does not parse contribute zero. Lines have no length limit, so
// minified sources scan like any other file.
func (s *Scanner) Scan(r io.Reader) (float64, error) {
	br := bufio.NewReader(r)

	var total float64
	for {
		line, err := br.ReadString('\n')
		for _, m := range s.pattern.FindAllStringSubmatch(line, -1) {
			total += s.value(m)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return 0, fmt.Errorf("reading source: %w", err)
		}
	}
}

// value converts one match into its contribution to the total.
func (s *Scanner) value(m []string) float64 {
	raw := strings.Replace(m[s.points], ",", ".", 1)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	if v < 0 {
		v = -v
	}
	if s.signed && (s.sign < 0 || m[s.sign] == "") {
		return -v
	}
	return v
}
