// Package publish delivers finished feedback bundles to where tutors hand
// them out: a shared directory, an S3 bucket, or memory for tests.
package publish

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"tuto-go/internal/tuto"
)

// FileSystemPublisher copies bundles into a directory, typically a synced
// or network share.
type FileSystemPublisher struct {
	root string
}

var _ tuto.Publisher = (*FileSystemPublisher)(nil)

// NewFileSystemPublisher creates a publisher writing into root, creating it
// if needed.
func NewFileSystemPublisher(root string) (*FileSystemPublisher, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create publish directory: %w", err)
	}
	return &FileSystemPublisher{root: root}, nil
}

// Put stores the bundle as root/name, replacing an earlier bundle of the
// same name. Readers never see a partially written file.
func (p *FileSystemPublisher) Put(name string, r io.Reader, size int64) error {
	if name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("invalid bundle name: %q", name)
	}
	return writeFile(filepath.Join(p.root, name), r, size)
}

// ValidateSetup verifies that root is an existing directory.
func (p *FileSystemPublisher) ValidateSetup() error {
	info, err := os.Stat(p.root)
	if err != nil {
		return fmt.Errorf("publish root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("publish root is not a directory: %s", p.root)
	}
	return nil
}

// writeFile writes r to destPath through a temp file in the same directory
// and a rename.
func writeFile(destPath string, r io.Reader, expectedSize int64) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	success = true
	return nil
}
