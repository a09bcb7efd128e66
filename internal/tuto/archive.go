package tuto

// Archiver reads and writes archive containers.
type Archiver interface {
	// Extract unpacks archivePath into target, creating target if needed.
	Extract(archivePath, target string) error

	// Create writes a new archive at dest holding every regular file found
	// under paths. Entry names are relative to root and slash-separated.
	// Returns the number of files written.
	Create(dest, root string, paths []string) (int, error)

	// IsArchive reports whether a file name carries the archive extension.
	IsArchive(name string) bool
}
