package tuto

import (
	"io/fs"
	"path/filepath"
)

// Path is a validated filesystem path with cached metadata.
// Paths are created by FilesystemManager.Resolve, which makes them absolute
// and rejects symlinks, devices, pipes and sockets.
type Path struct {
	absPath string
	isDir   bool
	info    fs.FileInfo
}

// NewPath creates a Path from its components.
// This is primarily for use by FilesystemManager implementations.
func NewPath(absPath string, isDir bool, info fs.FileInfo) *Path {
	return &Path{
		absPath: absPath,
		isDir:   isDir,
		info:    info,
	}
}

// String returns the absolute path.
func (p *Path) String() string {
	return p.absPath
}

// Base returns the last element of the path, e.g. the folder name of a submission.
func (p *Path) Base() string {
	return filepath.Base(p.absPath)
}

func (p *Path) IsDir() bool {
	return p.isDir
}

// Info returns the file info cached when the path was resolved.
func (p *Path) Info() fs.FileInfo {
	return p.info
}
