package table

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"tuto-go/internal/model"
	"tuto-go/internal/tuto"
)

// sheetName is the sheet written by XLSXCodec.Write.
const sheetName = "Sheet1"

// XLSXCodec reads the first sheet of a workbook and writes a single-sheet
// workbook. Cells hold the same text as the CSV form.
type XLSXCodec struct {
	rows rowCodec
}

// NewXLSXCodec creates an XLSX codec. See NewCSVCodec.
func NewXLSXCodec(prefix string, ids tuto.Extractor) *XLSXCodec {
	return &XLSXCodec{rows: rowCodec{prefix: prefix, ids: ids}}
}

// Read returns every parseable record on the first sheet.
func (c *XLSXCodec) Read(r io.Reader) ([]*model.Record, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("reading header: sheet %s is empty", sheets[0])
	}

	columns, err := columnMap(rows[0])
	if err != nil {
		return nil, err
	}

	var records []*model.Record
	for _, row := range rows[1:] {
		rec, err := c.rows.parseRow(row, columns)
		if err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Write writes the header followed by one row per record.
func (c *XLSXCodec) Write(w io.Writer, records []*model.Record) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := c.writeRow(file, 1, Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, rec := range records {
		if err := c.writeRow(file, i+2, c.rows.formatRow(rec)); err != nil {
			return fmt.Errorf("writing record %s: %w", rec.ID, err)
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func (c *XLSXCodec) writeRow(file *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return file.SetSheetRow(sheetName, cell, &row)
}
