package tuto

import "errors"

var (
	// ErrNotImplemented is returned by commands that are reserved but not built yet.
	ErrNotImplemented = errors.New("not implemented")

	// ErrInvalidTable is returned when a table path is missing, not a regular
	// file, or has an extension no codec handles.
	ErrInvalidTable = errors.New("invalid table path")

	// ErrNotDirectory is returned when a submission root is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrFeedbackExists is returned by Pack when a submission folder already
	// holds a file with the feedback archive's name.
	ErrFeedbackExists = errors.New("feedback archive already exists")

	// ErrNotArchive is returned when the path handed to Unzip is not an archive file.
	ErrNotArchive = errors.New("not an archive")
)
