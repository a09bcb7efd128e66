package tuto

import "io"

// FilesystemManager abstracts the read side of the submission tree.
type FilesystemManager interface {
	// Resolve makes rawPath absolute, stats it and rejects special files.
	Resolve(rawPath string) (*Path, error)

	// Subdirectories returns the immediate subdirectories of dir, sorted by name.
	Subdirectories(dir *Path) ([]*Path, error)

	// FindFiles returns the regular files under dir. When recursive is false
	// only direct children are returned.
	FindFiles(dir *Path, recursive bool) ([]*Path, error)

	// Open opens a regular file for reading.
	Open(path *Path) (io.ReadCloser, error)
}

// Normalizer cleans up extracted submission trees in place.
type Normalizer interface {
	// Prune removes every entry below root whose name matches the ignore list.
	Prune(root string) error

	// Flatten hoists every file nested below root into root and removes the
	// emptied subdirectories. Deeper files overwrite shallower ones on name clashes.
	Flatten(root string) error
}
