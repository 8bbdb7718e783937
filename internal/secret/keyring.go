package secret

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// service is the keyring service name all keys are filed under.
const service = "skiff"

// Keyring stores secrets in the operating system credential service
// (Keychain on macOS, Secret Service on Linux, Credential Manager on
// Windows).
type Keyring struct{}

// NewKeyring creates a keyring-backed store.
func NewKeyring() *Keyring {
	return &Keyring{}
}

// Get looks up a secret. A missing key is not an error.
func (k *Keyring) Get(key string) (string, bool, error) {
	value, err := keyring.Get(service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("keyring read failed for %s: %w", key, err)
	}
	return value, true, nil
}

// Set writes a secret, replacing any previous value.
func (k *Keyring) Set(key, value string) error {
	if err := keyring.Set(service, key, value); err != nil {
		return fmt.Errorf("keyring write failed for %s: %w", key, err)
	}
	return nil
}

// Delete removes a secret if present.
func (k *Keyring) Delete(key string) error {
	err := keyring.Delete(service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete failed for %s: %w", key, err)
	}
	return nil
}

// Ensure Keyring implements the Store interface.
var _ Store = (*Keyring)(nil)
