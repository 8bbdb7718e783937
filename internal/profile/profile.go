// Package profile defines deployment profiles and their on-disk repository.
package profile

import (
	"fmt"
	"strings"
)

// Auth methods supported by a profile.
const (
	// AuthSSHKey authenticates with a private key file, or with the
	// ambient SSH agent when no key path is configured.
	AuthSSHKey = "ssh-key"

	// AuthPassword authenticates with a password held in the secret store.
	AuthPassword = "password"
)

// DefaultPort is used when a profile does not specify a port.
const DefaultPort = 22

// Profile is a named set of connection parameters for one remote
// deployment target. Secrets are never part of this structure; they live
// in the secret store under keys derived from Name.
type Profile struct {
	// Name uniquely identifies the profile within the list and is used
	// as the namespace for its secret-store keys.
	Name string `json:"name"`

	// Host is the remote hostname or IP address.
	Host string `json:"host"`

	// Port is the SSH port (default: 22).
	Port int `json:"port"`

	// Username is the login user on the remote.
	Username string `json:"username"`

	// RemotePath is the remote directory files are deployed into.
	RemotePath string `json:"remotePath"`

	// AuthMethod selects how credentials are resolved (ssh-key or password).
	AuthMethod string `json:"authMethod"`

	// PrivateKeyPath is the local path to a private key. Only meaningful
	// with ssh-key auth; empty means the SSH agent is used instead.
	PrivateKeyPath string `json:"privateKeyPath,omitempty"`

	// DeployOnSave uploads files automatically when they change under watch.
	DeployOnSave bool `json:"deployOnSave,omitempty"`
}

// GetPort returns the port, defaulting to 22.
func (p *Profile) GetPort() int {
	if p.Port > 0 {
		return p.Port
	}
	return DefaultPort
}

// RemoteDir returns the remote path normalized to end with a "/".
func (p *Profile) RemoteDir() string {
	if p.RemotePath == "" {
		return "/"
	}
	if strings.HasSuffix(p.RemotePath, "/") {
		return p.RemotePath
	}
	return p.RemotePath + "/"
}

// UsesAgent reports whether the profile relies on the ambient SSH agent.
func (p *Profile) UsesAgent() bool {
	return p.AuthMethod == AuthSSHKey && p.PrivateKeyPath == ""
}

// Validate checks the profile for common errors.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile is missing required 'name' field")
	}
	if p.Host == "" {
		return fmt.Errorf("profile %q is missing required 'host' field", p.Name)
	}
	if p.Username == "" {
		return fmt.Errorf("profile %q is missing required 'username' field", p.Name)
	}
	if p.Port < 0 || p.Port > 65535 {
		return fmt.Errorf("profile %q has invalid port %d (must be 1-65535)", p.Name, p.Port)
	}

	switch p.AuthMethod {
	case AuthSSHKey, AuthPassword:
		// Valid
	default:
		return fmt.Errorf("profile %q has invalid auth method: %s (must be %s or %s)",
			p.Name, p.AuthMethod, AuthSSHKey, AuthPassword)
	}

	if p.AuthMethod == AuthPassword && p.PrivateKeyPath != "" {
		return fmt.Errorf("profile %q sets a private key path with password auth", p.Name)
	}

	return nil
}

// String returns a human-readable description of the target.
func (p *Profile) String() string {
	return fmt.Sprintf("%s (%s@%s:%d%s)", p.Name, p.Username, p.Host, p.GetPort(), p.RemoteDir())
}
