package encryption

import (
	"fmt"

	"tuto-go/internal/config"
	"tuto-go/internal/tuto"
)

// PassphraseFunc supplies a passphrase, typically by prompting the user.
type PassphraseFunc func() (string, error)

// NewEncryptorFromConfig seals to the configured recipients. Without
// recipients it asks prompt for a passphrase.
func NewEncryptorFromConfig(cfg config.EncryptionConfig, prompt PassphraseFunc) (tuto.Encryptor, error) {
	if len(cfg.Recipients) > 0 {
		e, err := NewRecipientEncryptor(cfg.Recipients)
		if err != nil {
			return nil, err
		}
		return e, nil
	}

	if prompt == nil {
		return nil, fmt.Errorf("no recipients configured and no passphrase prompt available")
	}
	passphrase, err := prompt()
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}
	e, err := NewPassphraseEncryptor(passphrase)
	if err != nil {
		return nil, err
	}
	return e, nil
}
