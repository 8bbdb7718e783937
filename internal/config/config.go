// Package config loads the tool-level configuration. This is ambient
// tooling config (secret backend, host-key policy), distinct from the
// per-project profile file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Secret store backends.
const (
	BackendKeyring = "keyring"
	BackendMemory  = "memory"
)

// Host key policies.
const (
	HostKeysKnownHosts = "known_hosts"
	HostKeysInsecure   = "insecure"
)

// Config is the tool-level configuration, loaded from
// ~/.config/skiff/config.yaml. A missing file yields the defaults.
type Config struct {
	// SecretBackend selects where secrets live (keyring or memory).
	SecretBackend string `yaml:"secret_backend"`

	// HostKeys selects host key verification (known_hosts or insecure).
	HostKeys string `yaml:"host_keys"`

	// KnownHostsPath overrides the known_hosts file location.
	KnownHostsPath string `yaml:"known_hosts_path"`

	// ConnectTimeoutSeconds bounds the SSH TCP connect.
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds"`

	// WatchDebounceMillis is the per-file quiet period before a
	// save-triggered upload fires.
	WatchDebounceMillis int `yaml:"watch_debounce_ms"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SecretBackend:         BackendKeyring,
		HostKeys:              HostKeysInsecure,
		ConnectTimeoutSeconds: 10,
		WatchDebounceMillis:   300,
	}
}

// Path returns the config file location under the user config dir.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "skiff", "config.yaml"), nil
}

// Load reads the config file, falling back to defaults when it does not
// exist. Set fields override defaults; unset fields keep them.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads a config file from an explicit path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the config for common errors.
func (c *Config) Validate() error {
	switch c.SecretBackend {
	case BackendKeyring, BackendMemory:
		// Valid
	default:
		return fmt.Errorf("invalid secret_backend: %s (must be %s or %s)",
			c.SecretBackend, BackendKeyring, BackendMemory)
	}

	switch c.HostKeys {
	case HostKeysKnownHosts, HostKeysInsecure:
		// Valid
	default:
		return fmt.Errorf("invalid host_keys: %s (must be %s or %s)",
			c.HostKeys, HostKeysKnownHosts, HostKeysInsecure)
	}

	if c.ConnectTimeoutSeconds <= 0 {
		return fmt.Errorf("connect_timeout_seconds must be positive")
	}
	if c.WatchDebounceMillis < 0 {
		return fmt.Errorf("watch_debounce_ms cannot be negative")
	}
	return nil
}

// ResolveKnownHosts returns the known_hosts path, defaulting to
// ~/.ssh/known_hosts.
func (c *Config) ResolveKnownHosts() (string, error) {
	if c.KnownHostsPath != "" {
		return c.KnownHostsPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ssh", "known_hosts"), nil
}
