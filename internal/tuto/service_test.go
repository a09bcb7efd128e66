package tuto_test

import (
	"testing"

	"tuto-go/internal/archive"
	"tuto-go/internal/config"
	"tuto-go/internal/deduction"
	"tuto-go/internal/fs"
	"tuto-go/internal/ident"
	"tuto-go/internal/table"
	"tuto-go/internal/tuto"
)

// newTestService wires a TutoService with the real components and the
// given config.
func newTestService(t *testing.T, cfg *config.Config) *tuto.TutoService {
	t.Helper()

	logger := tuto.NewNopLogger()
	matcher := fs.NewIgnoreMatcher(cfg.Filesystem.Ignore)

	scanner, err := deduction.NewScanner(cfg.Grading.DeductionPattern, cfg.Grading.SignedDeductions)
	if err != nil {
		t.Fatalf("NewScanner() error = %v", err)
	}
	extractor, err := ident.NewPatternExtractor(cfg.Grading.IDPattern, cfg.Grading.NamePattern)
	if err != nil {
		t.Fatalf("NewPatternExtractor() error = %v", err)
	}

	return tuto.NewTutoService(
		cfg,
		fs.NewOSFilesystemManager(matcher),
		fs.NewNormalizer(matcher, logger),
		archive.NewZipArchiver(cfg.Filesystem.ArchiveExtension, logger),
		table.NewStore(cfg.Table.IDPrefix, extractor),
		scanner,
		extractor,
		logger,
	)
}

func defaultService(t *testing.T) *tuto.TutoService {
	t.Helper()
	return newTestService(t, config.Default(t.TempDir()))
}
