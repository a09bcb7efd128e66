// Package archive reads and writes ZIP containers for submissions and
// feedback bundles.
package archive

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"tuto-go/internal/tuto"
)

// entryMode is the Unix permission written for every archived file.
const entryMode fs.FileMode = 0644

// ZipArchiver extracts and creates deflate-compressed ZIP archives.
type ZipArchiver struct {
	ext    string
	logger tuto.Logger
}

var _ tuto.Archiver = (*ZipArchiver)(nil)

// NewZipArchiver creates an archiver treating names ending in ext
// (case-insensitive, e.g. ".zip") as archives.
func NewZipArchiver(ext string, logger tuto.Logger) *ZipArchiver {
	if logger == nil {
		logger = tuto.NewNopLogger()
	}
	return &ZipArchiver{ext: strings.ToLower(ext), logger: logger}
}

// IsArchive reports whether name carries the archive extension.
func (a *ZipArchiver) IsArchive(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), a.ext)
}

// Extract unpacks archivePath into target. Entries that would land outside
// target are rejected.
func (a *ZipArchiver) Extract(archivePath, target string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer r.Close()

	if err := os.MkdirAll(target, 0755); err != nil {
		return fmt.Errorf("creating target directory: %w", err)
	}
	root := filepath.Clean(target)

	for _, f := range r.File {
		dest := filepath.Join(root, filepath.FromSlash(f.Name))
		if dest != root && !strings.HasPrefix(dest, root+string(filepath.Separator)) {
			return fmt.Errorf("illegal entry path in %s: %s", archivePath, f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0755); err != nil {
				return fmt.Errorf("creating directory %s: %w", dest, err)
			}
			continue
		}
		if err := extractFile(f, dest); err != nil {
			return err
		}
	}

	a.logger.Debug("unzipped", "archive", archivePath, "target", target, "entries", len(r.File))
	return nil
}

// extractFile writes a single archive entry to dest.
func extractFile(f *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dest, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = entryMode
	}
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("extracting %s: %w", f.Name, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dest, err)
	}
	return nil
}

// Create writes every regular file found under paths into a new archive at
// dest. Directories are walked recursively. Entry names are relative to
// root with forward slashes; dest itself is never added. On failure the
// partial archive is removed.
func (a *ZipArchiver) Create(dest, root string, paths []string) (int, error) {
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return 0, fmt.Errorf("resolving archive path: %w", err)
	}

	f, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("creating archive: %w", err)
	}

	success := false
	defer func() {
		if !success {
			os.Remove(dest)
		}
	}()

	zw := zip.NewWriter(f)
	count := 0
	for _, p := range paths {
		err := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}
			if abs, err := filepath.Abs(path); err == nil && abs == absDest {
				return nil
			}
			if err := a.addFile(zw, root, path); err != nil {
				return err
			}
			count++
			return nil
		})
		if err != nil {
			zw.Close()
			f.Close()
			return 0, fmt.Errorf("archiving %s: %w", p, err)
		}
	}

	if err := zw.Close(); err != nil {
		f.Close()
		return 0, fmt.Errorf("finalizing archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("closing archive: %w", err)
	}

	success = true
	a.logger.Debug("zipped", "archive", dest, "files", count)
	return count, nil
}

// addFile copies the file at path into zw as a deflated entry.
func (a *ZipArchiver) addFile(zw *zip.Writer, root, path string) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return fmt.Errorf("calculating relative path: %w", err)
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	hdr := &zip.FileHeader{
		Name:     filepath.ToSlash(rel),
		Method:   zip.Deflate,
		Modified: info.ModTime(),
	}
	hdr.SetMode(entryMode)

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("adding %s: %w", hdr.Name, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("writing %s: %w", hdr.Name, err)
	}
	return nil
}
