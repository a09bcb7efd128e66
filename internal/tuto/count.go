package tuto

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ResultFileName is the file Count writes into its target directory.
const ResultFileName = "result.csv"

// Tally is the point total of one submission folder.
type Tally struct {
	Name   string
	Points float64
}

// CountOptions selects the submission root, the output directory and the
// maximum points. A nil MaxPoints uses the configured maximum.
type CountOptions struct {
	Root      string
	TargetDir string
	MaxPoints *float64
}

// Count tallies the points of every submission folder under opts.Root and
// writes one "name,points" line per folder to result.csv in opts.TargetDir.
// Folders without a name are skipped; folders that cannot be scanned are
// logged and skipped. Returns the tallies and the result file path.
func (s *TutoService) Count(opts CountOptions) ([]Tally, string, error) {
	root, err := s.resolveDir(opts.Root)
	if err != nil {
		return nil, "", err
	}

	max := s.cfg.Grading.MaxPoints
	if opts.MaxPoints != nil {
		max = *opts.MaxPoints
	}

	dirs, err := s.fsmgr.Subdirectories(root)
	if err != nil {
		return nil, "", fmt.Errorf("listing submissions: %w", err)
	}

	var tallies []Tally
	for _, dir := range dirs {
		name, ok := s.extractor.Name(dir.Base())
		if !ok {
			s.logger.Debug("skipping folder without name", "path", dir.String())
			continue
		}

		d, err := s.deductions(dir)
		if err != nil {
			s.logger.Warn("skipping submission", "path", dir.String(), "error", err)
			continue
		}
		tallies = append(tallies, Tally{Name: name, Points: awarded(max, d)})
	}

	if err := os.MkdirAll(opts.TargetDir, 0755); err != nil {
		return nil, "", fmt.Errorf("creating target directory: %w", err)
	}
	resultPath := filepath.Join(opts.TargetDir, ResultFileName)
	if err := writeTallies(resultPath, tallies); err != nil {
		return nil, "", err
	}

	s.logger.Info("points counted", "submissions", len(tallies), "result", resultPath)
	return tallies, resultPath, nil
}

// writeTallies writes tallies as header-less name,points rows.
func writeTallies(path string, tallies []Tally) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating result file: %w", err)
	}

	w := csv.NewWriter(f)
	for _, t := range tallies {
		if err := w.Write([]string{t.Name, strconv.FormatFloat(t.Points, 'f', -1, 64)}); err != nil {
			f.Close()
			return fmt.Errorf("writing result: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("writing result: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing result file: %w", err)
	}
	return nil
}
