// Package credential turns a deployment profile into a fully resolved
// connection configuration, joining plaintext profile fields with
// secret-store credentials.
package credential

import (
	"fmt"
	"os"

	"github.com/skiff-dev/skiff/internal/profile"
	"github.com/skiff-dev/skiff/internal/secret"
)

// Config is a parameter bundle ready to hand to the transport's dial
// operation. Exactly one of Agent, PrivateKey, or Password is populated;
// a password profile whose secret was never stored carries none of them
// and lets the transport report the authentication failure.
type Config struct {
	// Host is the remote hostname or IP address.
	Host string

	// Port is the SSH port.
	Port int

	// Username is the login user.
	Username string

	// Agent indicates authentication through the ambient SSH agent
	// (SSH_AUTH_SOCK); no explicit key material is carried.
	Agent bool

	// PrivateKey holds PEM-encoded key material read from the profile's
	// key file, with Passphrase set if one is stored for the profile.
	PrivateKey []byte

	// Passphrase decrypts PrivateKey when the key file is encrypted.
	Passphrase string

	// Password is the profile's stored password, if any.
	Password string
}

// Addr returns the host:port dial address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// KeyReadError indicates the profile's private key file could not be read.
type KeyReadError struct {
	Path string
	Err  error
}

// Error returns the error message.
func (e *KeyReadError) Error() string {
	return fmt.Sprintf("cannot read private key %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying file error.
func (e *KeyReadError) Unwrap() error {
	return e.Err
}

// Resolve builds a connection config for the profile. Key material is read
// fresh from disk on every call and secrets are re-fetched from the store;
// nothing is cached, logged, or persisted.
//
// An absent secret resolves to "no credential attached", not an error —
// failure is deferred to the transport. A store read failure and an
// unreadable key file are errors; the latter is a *KeyReadError.
func Resolve(p *profile.Profile, store secret.Store) (*Config, error) {
	cfg := &Config{
		Host:     p.Host,
		Port:     p.GetPort(),
		Username: p.Username,
	}

	switch {
	case p.AuthMethod == profile.AuthSSHKey && p.PrivateKeyPath != "":
		key, err := os.ReadFile(p.PrivateKeyPath)
		if err != nil {
			return nil, &KeyReadError{Path: p.PrivateKeyPath, Err: err}
		}
		cfg.PrivateKey = key

		passphrase, ok, err := store.Get(secret.PassphraseKey(p.Name))
		if err != nil {
			return nil, err
		}
		if ok {
			cfg.Passphrase = passphrase
		}

	case p.AuthMethod == profile.AuthSSHKey:
		cfg.Agent = true

	case p.AuthMethod == profile.AuthPassword:
		password, ok, err := store.Get(secret.PasswordKey(p.Name))
		if err != nil {
			return nil, err
		}
		if ok {
			cfg.Password = password
		}

	default:
		return nil, fmt.Errorf("profile %q has unknown auth method: %s", p.Name, p.AuthMethod)
	}

	return cfg, nil
}
