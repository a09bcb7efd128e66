package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"tuto-go/internal/archive"
	"tuto-go/internal/config"
	"tuto-go/internal/database"
	"tuto-go/internal/deduction"
	"tuto-go/internal/encryption"
	"tuto-go/internal/fs"
	"tuto-go/internal/ident"
	"tuto-go/internal/model"
	"tuto-go/internal/publish"
	"tuto-go/internal/table"
	"tuto-go/internal/tuto"
)

// Options tune how a TutoApp reports progress.
type Options struct {
	// Debug mirrors every log record, down to Debug, to Console.
	Debug bool
	// Console receives debug output. Defaults to os.Stdout.
	Console io.Writer
	// IDs generates run IDs. Defaults to random UUIDs.
	IDs tuto.IDGenerator
}

// TutoApp is the application layer between the CLI and TutoService.
// It constructs all dependencies from config, records mutating commands in
// the run history and closes everything on Close.
type TutoApp struct {
	cfg     *config.Config
	runs    tuto.RunStore
	service *tuto.TutoService
	op      *Operation
	logger  tuto.Logger
	logFile *os.File
}

// NewTutoApp creates a fully wired TutoApp from the given config.
// operation names the CLI command being run (e.g. "unzip", "fill").
// The caller must call Close when done.
func NewTutoApp(cfg *config.Config, operation string, opts Options) (*TutoApp, error) {
	if opts.Console == nil {
		opts.Console = os.Stdout
	}
	if opts.IDs == nil {
		opts.IDs = tuto.UUIDGenerator{}
	}

	scanner, err := deduction.NewScanner(cfg.Grading.DeductionPattern, cfg.Grading.SignedDeductions)
	if err != nil {
		return nil, fmt.Errorf("creating scanner: %w", err)
	}
	extractor, err := ident.NewPatternExtractor(cfg.Grading.IDPattern, cfg.Grading.NamePattern)
	if err != nil {
		return nil, fmt.Errorf("creating extractor: %w", err)
	}

	runs, err := database.NewRunStoreFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating run history: %w", err)
	}

	runID := opts.IDs.New()
	l, logFile, err := newLogger(cfg.LogDir, runID, opts.Debug, opts.Console)
	if err != nil {
		runs.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: l}

	matcher := fs.NewIgnoreMatcher(cfg.Filesystem.Ignore)
	svc := tuto.NewTutoService(
		cfg,
		fs.NewOSFilesystemManager(matcher),
		fs.NewNormalizer(matcher, logger),
		archive.NewZipArchiver(cfg.Filesystem.ArchiveExtension, logger),
		table.NewStore(cfg.Table.IDPrefix, extractor),
		scanner,
		extractor,
		logger,
	)

	return &TutoApp{
		cfg:     cfg,
		runs:    runs,
		service: svc,
		op:      NewOperation(runID, operation),
		logger:  logger,
		logFile: logFile,
	}, nil
}

// persistOperation records the operation in the run history, giving it an ID.
// Only commands that change files call it.
func (a *TutoApp) persistOperation(params map[string]string) error {
	if a.op.Persisted() {
		return nil
	}
	a.op.Parameters = formatParameters(params)

	run, err := a.runs.CreateRun(a.op.RunID, a.op.Name, a.op.Parameters)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	a.op.ID = run.ID

	a.logger.Info("run started", "operation", a.op.Name, "parameters", a.op.Parameters)
	return nil
}

// Unzip extracts a submission archive and every archive nested in it.
// Returns the extraction directory.
func (a *TutoApp) Unzip(archivePath string, opts tuto.UnzipOptions) (string, error) {
	err := a.persistOperation(map[string]string{
		"archive": archivePath,
		"target":  opts.Target,
		"single":  strconv.FormatBool(opts.Single),
		"flatten": strconv.FormatBool(opts.Flatten),
	})
	if err != nil {
		return "", err
	}

	target, err := a.service.Unzip(archivePath, opts)
	a.op.Fail(err)
	return target, err
}

// Count tallies the points of every submission folder and writes result.csv.
func (a *TutoApp) Count(opts tuto.CountOptions) ([]tuto.Tally, string, error) {
	params := map[string]string{
		"path":       opts.Root,
		"target_dir": opts.TargetDir,
	}
	if opts.MaxPoints != nil {
		params["max_points"] = strconv.FormatFloat(*opts.MaxPoints, 'f', -1, 64)
	}
	if err := a.persistOperation(params); err != nil {
		return nil, "", err
	}

	tallies, resultPath, err := a.service.Count(opts)
	a.op.Fail(err)
	return tallies, resultPath, err
}

// Fill grades the table records that have a submission folder.
// Returns the result path and the number of records written.
func (a *TutoApp) Fill(opts tuto.FillOptions) (string, int, error) {
	err := a.persistOperation(map[string]string{
		"table":  opts.TablePath,
		"dir":    opts.Root,
		"result": opts.ResultPath,
	})
	if err != nil {
		return "", 0, err
	}

	resultPath, n, err := a.service.Fill(opts)
	a.op.Fail(err)
	return resultPath, n, err
}

// ZipRequest selects the submission roots to package and what happens to
// the resulting bundles.
type ZipRequest struct {
	Paths   []string
	Name    string
	OutDir  string
	Encrypt bool
	Publish bool
	// Passphrase is asked when Encrypt is set and no recipients are configured.
	Passphrase encryption.PassphraseFunc
}

// Zip packages the feedback of every root in req.Paths, then seals and
// publishes the bundles as requested. Returns the final bundle paths.
func (a *TutoApp) Zip(req ZipRequest) ([]string, error) {
	paths := req.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	err := a.persistOperation(map[string]string{
		"paths":   strings.Join(paths, ","),
		"name":    req.Name,
		"out_dir": req.OutDir,
		"encrypt": strconv.FormatBool(req.Encrypt),
		"publish": strconv.FormatBool(req.Publish),
	})
	if err != nil {
		return nil, err
	}

	bundles, err := a.zip(paths, req)
	a.op.Fail(err)
	return bundles, err
}

func (a *TutoApp) zip(paths []string, req ZipRequest) ([]string, error) {
	if req.OutDir != "" && len(paths) > 1 {
		return nil, fmt.Errorf("an output directory can only be used with a single path")
	}

	// Both are set up before any submission folder is touched.
	var enc tuto.Encryptor
	if req.Encrypt {
		e, err := encryption.NewEncryptorFromConfig(a.cfg.Encryption, req.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("creating encryptor: %w", err)
		}
		enc = e
	}
	var pub tuto.Publisher
	if req.Publish {
		p, err := publish.NewPublisherFromConfig(context.Background(), a.cfg.Publish)
		if err != nil {
			return nil, fmt.Errorf("creating publisher: %w", err)
		}
		pub = p
	}

	var bundles []string
	for _, root := range paths {
		result, err := a.service.Pack(tuto.ZipOptions{Root: root, Name: req.Name, OutDir: req.OutDir})
		if err != nil {
			return bundles, err
		}

		bundle := result.BundlePath
		if enc != nil {
			if bundle, err = a.service.SealBundle(bundle, enc); err != nil {
				return bundles, err
			}
		}
		if pub != nil {
			if err := a.service.PublishBundle(bundle, pub); err != nil {
				return bundles, err
			}
		}
		bundles = append(bundles, bundle)
	}
	return bundles, nil
}

// Stats is reserved for grading statistics and always fails.
func (a *TutoApp) Stats() error {
	return a.service.Stats()
}

// History returns the most recent runs, newest first.
func (a *TutoApp) History(limit int) ([]*model.Run, error) {
	return a.runs.ListRuns(limit)
}

// Close finishes the run record of a persisted operation and releases the
// run history and the log file.
func (a *TutoApp) Close() error {
	var firstErr error

	if a.op.Persisted() {
		if err := a.runs.FinishRun(a.op.ID, a.op.Status); err != nil {
			firstErr = fmt.Errorf("finishing run: %w", err)
		}
		a.logger.Info("run finished", "operation", a.op.Name, "status", a.op.Status)
	}

	if err := a.runs.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing run history: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
