package tuto

import (
	"fmt"
	"path/filepath"
	"strings"

	"tuto-go/internal/config"
)

// TutoService is the orchestration layer behind the grading commands:
// unpacking submissions, tallying deductions, filling the grading table
// and packaging feedback.
type TutoService struct {
	cfg        *config.Config
	fsmgr      FilesystemManager
	normalizer Normalizer
	archiver   Archiver
	tables     TableStore
	scanner    Scanner
	extractor  Extractor
	logger     Logger
	sourceExts map[string]bool
}

// NewTutoService creates a new TutoService with the provided dependencies.
// cfg is shared read-only by every operation.
func NewTutoService(cfg *config.Config, fsmgr FilesystemManager, normalizer Normalizer, archiver Archiver, tables TableStore, scanner Scanner, extractor Extractor, logger Logger) *TutoService {
	exts := make(map[string]bool, len(cfg.Grading.SourceExtensions))
	for _, ext := range cfg.Grading.SourceExtensions {
		exts[strings.ToLower(ext)] = true
	}
	if logger == nil {
		logger = NewNopLogger()
	}

	return &TutoService{
		cfg:        cfg,
		fsmgr:      fsmgr,
		normalizer: normalizer,
		archiver:   archiver,
		tables:     tables,
		scanner:    scanner,
		extractor:  extractor,
		logger:     logger,
		sourceExts: exts,
	}
}

// isSource reports whether path is a source file scanned for deductions.
func (s *TutoService) isSource(path string) bool {
	return s.sourceExts[strings.ToLower(filepath.Ext(path))]
}

// resolveDir resolves rawPath and checks that it is a directory.
func (s *TutoService) resolveDir(rawPath string) (*Path, error) {
	p, err := s.fsmgr.Resolve(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", rawPath, err)
	}
	if !p.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, p.String())
	}
	return p, nil
}

// deductions sums the scanner totals of every source file below dir. The
// total never drops below zero.
func (s *TutoService) deductions(dir *Path) (float64, error) {
	files, err := s.fsmgr.FindFiles(dir, true)
	if err != nil {
		return 0, fmt.Errorf("finding files: %w", err)
	}

	var total float64
	for _, f := range files {
		if !s.isSource(f.String()) {
			continue
		}
		d, err := s.scanFile(f)
		if err != nil {
			return 0, err
		}
		if d != 0 {
			s.logger.Debug("deductions found", "path", f.String(), "points", d)
		}
		total += d
	}
	// Bonus markers in signed mode can outweigh the deductions.
	if total < 0 {
		total = 0
	}
	return total, nil
}

func (s *TutoService) scanFile(f *Path) (float64, error) {
	rc, err := s.fsmgr.Open(f)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", f.String(), err)
	}
	defer rc.Close()

	d, err := s.scanner.Scan(rc)
	if err != nil {
		return 0, fmt.Errorf("scanning %s: %w", f.String(), err)
	}
	return d, nil
}

// awarded returns max minus deductions, floored at zero.
func awarded(max, deductions float64) float64 {
	points := max - deductions
	if points < 0 {
		return 0
	}
	return points
}
