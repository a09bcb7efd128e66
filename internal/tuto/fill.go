package tuto

import (
	"fmt"
	"path/filepath"
	"strings"

	"tuto-go/internal/model"
)

// FillOptions selects the input table, the submission root and the output
// table. An empty ResultPath writes <stem>_filled<ext> next to the input.
type FillOptions struct {
	TablePath  string
	Root       string
	ResultPath string
}

// Fill grades every table record that has a submission folder under
// opts.Root: the rating becomes the record's best rating minus the folder's
// deductions, floored at zero, and the feedback cell gets the configured
// message. Records without a folder are left out of the output. Returns the
// result path and the number of records written.
func (s *TutoService) Fill(opts FillOptions) (string, int, error) {
	if err := s.checkTable(opts.TablePath); err != nil {
		return "", 0, err
	}

	resultPath := opts.ResultPath
	if resultPath == "" {
		ext := filepath.Ext(opts.TablePath)
		resultPath = strings.TrimSuffix(opts.TablePath, ext) + "_filled" + ext
	}
	if !s.tables.Supports(resultPath) {
		return "", 0, fmt.Errorf("%w: unsupported result extension %q", ErrInvalidTable, filepath.Ext(resultPath))
	}

	root, err := s.resolveDir(opts.Root)
	if err != nil {
		return "", 0, err
	}

	records, err := s.tables.Read(opts.TablePath)
	if err != nil {
		return "", 0, err
	}

	submissions, err := s.submissionsByID(root)
	if err != nil {
		return "", 0, err
	}

	var graded []*model.Record
	regraded := 0
	for _, rec := range records {
		dir, ok := submissions[rec.ID]
		if !ok {
			continue
		}

		d, err := s.deductions(dir)
		if err != nil {
			s.logger.Warn("skipping submission", "path", dir.String(), "error", err)
			continue
		}

		if rec.Graded() {
			regraded++
		}
		rating := awarded(rec.BestRating, d)
		rec.Rating = &rating
		rec.Feedback = s.cfg.Grading.FeedbackMessage
		graded = append(graded, rec)
		s.logger.Debug("record graded", "id", rec.ID, "rating", rating)
	}

	if err := s.tables.Write(resultPath, graded); err != nil {
		return "", 0, err
	}

	s.logger.Info("table filled", "records", len(graded), "regraded", regraded, "skipped", len(records)-len(graded), "result", resultPath)
	return resultPath, len(graded), nil
}

// checkTable rejects table paths that are missing, not regular files or
// of an unknown format.
func (s *TutoService) checkTable(path string) error {
	p, err := s.fsmgr.Resolve(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}
	if !p.Info().Mode().IsRegular() {
		return fmt.Errorf("%w: not a regular file: %s", ErrInvalidTable, path)
	}
	if !s.tables.Supports(path) {
		return fmt.Errorf("%w: unsupported extension %q", ErrInvalidTable, filepath.Ext(path))
	}
	return nil
}

// submissionsByID maps the identifier in each submission folder name to the
// folder. Folders without an identifier are dropped; on duplicates the last
// folder wins.
func (s *TutoService) submissionsByID(root *Path) (map[string]*Path, error) {
	dirs, err := s.fsmgr.Subdirectories(root)
	if err != nil {
		return nil, fmt.Errorf("listing submissions: %w", err)
	}

	byID := make(map[string]*Path, len(dirs))
	for _, dir := range dirs {
		id, ok := s.extractor.ID(dir.Base())
		if !ok {
			continue
		}
		byID[id] = dir
	}
	return byID, nil
}
