package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"tuto-go/internal/model"
	"tuto-go/internal/tuto"
)

// CSVCodec reads and writes comma-delimited grading tables with a header row.
type CSVCodec struct {
	rows rowCodec
}

// NewCSVCodec creates a CSV codec writing IDs as prefix+number and reading
// them back through ids.
func NewCSVCodec(prefix string, ids tuto.Extractor) *CSVCodec {
	return &CSVCodec{rows: rowCodec{prefix: prefix, ids: ids}}
}

// Read returns every parseable record in r. Malformed rows are skipped.
func (c *CSVCodec) Read(r io.Reader) ([]*model.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	columns, err := columnMap(header)
	if err != nil {
		return nil, err
	}

	var records []*model.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading row: %w", err)
		}

		rec, err := c.rows.parseRow(row, columns)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Write writes the header followed by one row per record.
func (c *CSVCodec) Write(w io.Writer, records []*model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(c.rows.formatRow(rec)); err != nil {
			return fmt.Errorf("writing record %s: %w", rec.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}
