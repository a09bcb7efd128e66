package tuto

import "io"

// Publisher stores finished feedback bundles somewhere tutors can hand them out from.
type Publisher interface {
	// Put stores the bundle under name. size is the number of bytes that
	// will be read from r.
	Put(name string, r io.Reader, size int64) error

	// ValidateSetup verifies that the destination is reachable and writable.
	ValidateSetup() error
}

// Encryptor seals a feedback bundle before it leaves the machine.
type Encryptor interface {
	Encrypt(r io.Reader, w io.Writer) error
}
