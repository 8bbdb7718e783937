// Package secret abstracts the host credential store used for profile
// passwords and key passphrases.
package secret

// Key prefixes shared with the editor extension this tool interoperates
// with; profile names namespace the keys.
const (
	passwordPrefix   = "sftp-password-"
	passphrasePrefix = "sftp-passphrase-"
)

// PasswordKey returns the store key for a profile's password.
func PasswordKey(profileName string) string {
	return passwordPrefix + profileName
}

// PassphraseKey returns the store key for a profile's key passphrase.
func PassphraseKey(profileName string) string {
	return passphrasePrefix + profileName
}

// Store is the capability interface over the host secret vault.
//
// Get reports (value, true, nil) when the key exists and ("", false, nil)
// when it does not; the error return is reserved for store failures.
// Delete is delete-if-exists and does not fail on a missing key.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// DeleteProfileSecrets removes both secrets associated with a profile
// name. Keys that were never set are not an error.
func DeleteProfileSecrets(store Store, profileName string) error {
	if err := store.Delete(PasswordKey(profileName)); err != nil {
		return err
	}
	return store.Delete(PassphraseKey(profileName))
}
