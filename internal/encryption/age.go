// Package encryption seals feedback bundles with age.
package encryption

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"

	"tuto-go/internal/tuto"
)

// ErrEmptyPassphrase is returned when a passphrase prompt yields nothing.
var ErrEmptyPassphrase = errors.New("empty passphrase")

// AgeEncryptor implements tuto.Encryptor with filippo.io/age. Bundles are
// sealed either to X25519 public keys or to a passphrase (scrypt).
type AgeEncryptor struct {
	recipients []age.Recipient
}

var _ tuto.Encryptor = (*AgeEncryptor)(nil)

// NewRecipientEncryptor seals to every key in keys ("age1..." strings).
func NewRecipientEncryptor(keys []string) (*AgeEncryptor, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("no recipients given")
	}

	recipients := make([]age.Recipient, 0, len(keys))
	for _, key := range keys {
		r, err := age.ParseX25519Recipient(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("parsing recipient %q: %w", key, err)
		}
		recipients = append(recipients, r)
	}
	return &AgeEncryptor{recipients: recipients}, nil
}

// NewPassphraseEncryptor seals with a key derived from passphrase.
func NewPassphraseEncryptor(passphrase string) (*AgeEncryptor, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	r, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating scrypt recipient: %w", err)
	}
	return &AgeEncryptor{recipients: []age.Recipient{r}}, nil
}

// Encrypt reads plaintext from r and writes age ciphertext to w.
func (e *AgeEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	encWriter, err := age.Encrypt(w, e.recipients...)
	if err != nil {
		return fmt.Errorf("creating encrypted writer: %w", err)
	}

	if _, err := io.Copy(encWriter, r); err != nil {
		return fmt.Errorf("encrypting data: %w", err)
	}

	if err := encWriter.Close(); err != nil {
		return fmt.Errorf("finalizing encryption: %w", err)
	}
	return nil
}

// GenerateIdentity creates a new X25519 key pair, writes the private
// identity to path (mode 0600, never overwriting) and returns the public
// recipient to put into encryption.recipients.
func GenerateIdentity(path string) (string, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return "", fmt.Errorf("generating key pair: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", fmt.Errorf("creating identity directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return "", fmt.Errorf("creating identity file: %w", err)
	}

	recipient := identity.Recipient().String()
	content := fmt.Sprintf("# public key: %s\n%s\n", recipient, identity.String())
	if _, err := io.WriteString(f, content); err != nil {
		f.Close()
		return "", fmt.Errorf("writing identity: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing identity file: %w", err)
	}
	return recipient, nil
}
