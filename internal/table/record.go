// Package table reads and writes the grading table exported by the course
// platform, in CSV and XLSX form.
package table

import (
	"fmt"
	"strconv"
	"strings"

	"tuto-go/internal/model"
	"tuto-go/internal/tuto"
)

// Column labels of the grading table, in file order.
const (
	ColID                   = "ID"
	ColName                 = "Vollständiger Name"
	ColIDNumber             = "ID-Nummer"
	ColEmail                = "E-Mail-Adresse"
	ColStatus               = "Status"
	ColRating               = "Bewertung"
	ColBestRating           = "Bestwertung"
	ColRatingChangeable     = "Bewertung kann geändert werden"
	ColLastChangeSubmission = "Zuletzt geändert (Abgabe)"
	ColLastChangeRating     = "Zuletzt geändert (Bewertung)"
	ColFeedback             = "Feedback als Kommentar"
)

// Header is the column layout written for every table.
var Header = []string{
	ColID, ColName, ColIDNumber, ColEmail, ColStatus, ColRating, ColBestRating,
	ColRatingChangeable, ColLastChangeSubmission, ColLastChangeRating, ColFeedback,
}

// requiredColumns must be present in the header of an input table.
var requiredColumns = []string{ColID, ColBestRating}

const bom = "\ufeff"

// rowCodec converts between table rows and records. The ID cell carries a
// textual prefix ("Teilnehmer/in1234567") of which only the number is kept.
type rowCodec struct {
	prefix string
	ids    tuto.Extractor
}

// columnMap indexes header labels. A UTF-8 BOM on the first label is dropped.
func columnMap(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, col := range header {
		if i == 0 {
			col = strings.TrimPrefix(col, bom)
		}
		columns[strings.TrimSpace(col)] = i
	}

	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			return nil, fmt.Errorf("missing required column: %s", col)
		}
	}
	return columns, nil
}

// parseRow builds a record from row. Rows without an ID or with an
// unparseable rating are rejected.
func (c *rowCodec) parseRow(row []string, columns map[string]int) (*model.Record, error) {
	get := func(col string) string {
		if idx, ok := columns[col]; ok && idx < len(row) {
			return row[idx]
		}
		return ""
	}

	id, ok := c.ids.ID(get(ColID))
	if !ok {
		return nil, fmt.Errorf("invalid ID: %q", get(ColID))
	}

	best, err := ParseRating(get(ColBestRating))
	if err != nil {
		return nil, fmt.Errorf("invalid best rating: %w", err)
	}

	var rating *float64
	if raw := get(ColRating); raw != "" {
		v, err := ParseRating(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid rating: %w", err)
		}
		rating = &v
	}

	return &model.Record{
		ID:                   id,
		Name:                 get(ColName),
		IDNumber:             get(ColIDNumber),
		Email:                get(ColEmail),
		Status:               get(ColStatus),
		Rating:               rating,
		BestRating:           best,
		RatingChangeable:     get(ColRatingChangeable),
		LastChangeSubmission: get(ColLastChangeSubmission),
		LastChangeRating:     get(ColLastChangeRating),
		Feedback:             get(ColFeedback),
	}, nil
}

// formatRow lays out rec in Header order.
func (c *rowCodec) formatRow(rec *model.Record) []string {
	rating := ""
	if rec.Graded() {
		rating = FormatRating(*rec.Rating)
	}
	return []string{
		c.prefix + rec.ID,
		rec.Name,
		rec.IDNumber,
		rec.Email,
		rec.Status,
		rating,
		FormatRating(rec.BestRating),
		rec.RatingChangeable,
		rec.LastChangeSubmission,
		rec.LastChangeRating,
		rec.Feedback,
	}
}

// ParseRating parses a rating written with a decimal comma, e.g. "13,50".
func ParseRating(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.Replace(strings.TrimSpace(s), ",", ".", 1), 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// FormatRating writes a rating with two decimals and a decimal comma.
func FormatRating(v float64) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', 2, 64), ".", ",", 1)
}
