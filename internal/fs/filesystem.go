package fs

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"tuto-go/internal/tuto"
)

// OSFilesystemManager is the real filesystem implementation of FilesystemManager.
type OSFilesystemManager struct {
	matcher *IgnoreMatcher
}

// NewOSFilesystemManager creates a filesystem manager that skips entries
// matched by matcher while listing. A nil matcher skips nothing.
func NewOSFilesystemManager(matcher *IgnoreMatcher) *OSFilesystemManager {
	if matcher == nil {
		matcher = NewIgnoreMatcher(nil)
	}
	return &OSFilesystemManager{matcher: matcher}
}

// Resolve validates a raw path and returns a Path object.
func (m *OSFilesystemManager) Resolve(rawPath string) (*tuto.Path, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	if mode&os.ModeDevice != 0 {
		return nil, fmt.Errorf("device files not supported: %s", absPath)
	}
	if mode&os.ModeNamedPipe != 0 {
		return nil, fmt.Errorf("named pipes not supported: %s", absPath)
	}
	if mode&os.ModeSocket != 0 {
		return nil, fmt.Errorf("sockets not supported: %s", absPath)
	}

	return tuto.NewPath(absPath, info.IsDir(), info), nil
}

// Subdirectories returns the immediate, non-ignored subdirectories of dir.
func (m *OSFilesystemManager) Subdirectories(dir *tuto.Path) ([]*tuto.Path, error) {
	if !dir.IsDir() {
		return nil, fmt.Errorf("%w: %s", tuto.ErrNotDirectory, dir.String())
	}

	entries, err := os.ReadDir(dir.String())
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}

	var dirs []*tuto.Path
	for _, entry := range entries {
		if !entry.IsDir() || m.matcher.Match(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		dirs = append(dirs, tuto.NewPath(filepath.Join(dir.String(), entry.Name()), true, info))
	}
	return dirs, nil
}

// Open opens a file for reading.
func (m *OSFilesystemManager) Open(path *tuto.Path) (io.ReadCloser, error) {
	if path.IsDir() {
		return nil, fmt.Errorf("cannot open directory as file: %s", path.String())
	}
	return os.Open(path.String())
}

// FindFiles discovers regular files under the given directory path.
// Ignored directories are not descended into.
func (m *OSFilesystemManager) FindFiles(path *tuto.Path, recursive bool) ([]*tuto.Path, error) {
	if !path.IsDir() {
		return nil, fmt.Errorf("%w: %s", tuto.ErrNotDirectory, path.String())
	}

	var paths []*tuto.Path

	if recursive {
		err := filepath.WalkDir(path.String(), func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if p != path.String() && m.matcher.Match(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return fmt.Errorf("stat %s: %w", p, err)
			}
			paths = append(paths, tuto.NewPath(p, false, info))
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking directory: %w", err)
		}
	} else {
		entries, err := os.ReadDir(path.String())
		if err != nil {
			return nil, fmt.Errorf("reading directory: %w", err)
		}
		for _, entry := range entries {
			if !entry.Type().IsRegular() || m.matcher.Match(entry.Name()) {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
			}
			fullPath := filepath.Join(path.String(), entry.Name())
			paths = append(paths, tuto.NewPath(fullPath, false, info))
		}
	}

	return paths, nil
}

// Compile-time check that OSFilesystemManager implements tuto.FilesystemManager interface
var _ tuto.FilesystemManager = (*OSFilesystemManager)(nil)
