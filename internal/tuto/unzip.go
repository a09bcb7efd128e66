package tuto

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UnzipOptions controls how Unzip resolves nested archives.
type UnzipOptions struct {
	// Single stops after extracting the outermost archive.
	Single bool
	// Flatten collapses the folders of every directory a nested archive was
	// extracted into.
	Flatten bool
	// Target is the extraction directory. Empty means a directory named
	// after the archive, next to it.
	Target string
}

// Unzip extracts archivePath and, unless opts.Single is set, every archive
// nested inside it, at any depth. Each nested archive is extracted into the
// directory that contained it and then deleted; that directory is pruned and,
// with opts.Flatten, flattened. Returns the extraction directory.
//
// Any failure aborts the run as is; nothing extracted so far is rolled back.
func (s *TutoService) Unzip(archivePath string, opts UnzipOptions) (string, error) {
	p, err := s.fsmgr.Resolve(archivePath)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", archivePath, err)
	}
	if p.IsDir() || !s.archiver.IsArchive(p.Base()) {
		return "", fmt.Errorf("%w: %s", ErrNotArchive, p.String())
	}

	target := opts.Target
	if target == "" {
		target = filepath.Join(filepath.Dir(p.String()), strings.TrimSuffix(p.Base(), filepath.Ext(p.Base())))
	}

	if err := s.archiver.Extract(p.String(), target); err != nil {
		return "", fmt.Errorf("extracting %s: %w", p.String(), err)
	}
	s.logger.Info("archive extracted", "archive", p.String(), "target", target)

	if s.cfg.Filesystem.DeleteSource {
		if err := os.Remove(p.String()); err != nil {
			return "", fmt.Errorf("removing source archive: %w", err)
		}
		s.logger.Debug("removed", "path", p.String())
	}

	if opts.Single {
		return target, nil
	}

	if err := s.unzipNested(target, opts.Flatten); err != nil {
		return "", err
	}
	return target, nil
}

// unzipNested resolves nested archives below root with a worklist of
// directories. A directory in which archives were extracted is cleaned up
// and queued again, since the new content may hold further archives; other
// directories queue their subdirectories.
func (s *TutoService) unzipNested(root string, flatten bool) error {
	stack := []string{root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("reading directory: %w", err)
		}

		extracted := 0
		for _, entry := range entries {
			if entry.IsDir() || !s.archiver.IsArchive(entry.Name()) {
				continue
			}
			nested := filepath.Join(dir, entry.Name())
			if err := s.archiver.Extract(nested, dir); err != nil {
				return fmt.Errorf("extracting %s: %w", nested, err)
			}
			if err := os.Remove(nested); err != nil {
				return fmt.Errorf("removing nested archive: %w", err)
			}
			s.logger.Debug("removed", "path", nested)
			extracted++
		}

		if extracted > 0 {
			if err := s.normalizer.Prune(dir); err != nil {
				return fmt.Errorf("pruning %s: %w", dir, err)
			}
			if flatten {
				if err := s.normalizer.Flatten(dir); err != nil {
					return fmt.Errorf("flattening %s: %w", dir, err)
				}
			}
			stack = append(stack, dir)
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				stack = append(stack, filepath.Join(dir, entry.Name()))
			}
		}
	}
	return nil
}
