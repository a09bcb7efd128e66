package table

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tuto-go/internal/model"
	"tuto-go/internal/tuto"
)

// Codec converts a whole table between its file form and records.
type Codec interface {
	Read(r io.Reader) ([]*model.Record, error)
	Write(w io.Writer, records []*model.Record) error
}

// Store dispatches table files to a codec by extension.
type Store struct {
	codecs map[string]Codec
}

var _ tuto.TableStore = (*Store)(nil)

// NewStore creates a Store handling .csv and .xlsx tables.
func NewStore(prefix string, ids tuto.Extractor) *Store {
	return &Store{codecs: map[string]Codec{
		".csv":  NewCSVCodec(prefix, ids),
		".xlsx": NewXLSXCodec(prefix, ids),
	}}
}

func (s *Store) codec(path string) (Codec, bool) {
	c, ok := s.codecs[strings.ToLower(filepath.Ext(path))]
	return c, ok
}

// Supports reports whether path has a known table extension.
func (s *Store) Supports(path string) bool {
	_, ok := s.codec(path)
	return ok
}

// Read loads the table at path.
func (s *Store) Read(path string) ([]*model.Record, error) {
	c, ok := s.codec(path)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported extension %q", tuto.ErrInvalidTable, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening table: %w", err)
	}
	defer f.Close()

	records, err := c.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", path, err)
	}
	return records, nil
}

// Write replaces the table at path with records.
func (s *Store) Write(path string, records []*model.Record) error {
	c, ok := s.codec(path)
	if !ok {
		return fmt.Errorf("%w: unsupported extension %q", tuto.ErrInvalidTable, filepath.Ext(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating table: %w", err)
	}

	if err := c.Write(f, records); err != nil {
		f.Close()
		return fmt.Errorf("writing table %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing table: %w", err)
	}
	return nil
}
