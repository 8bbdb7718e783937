// Package sftpclient implements the transport session over SSH and SFTP.
package sftpclient

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/skiff-dev/skiff/internal/credential"
	"github.com/skiff-dev/skiff/internal/transport"
)

// Dialer opens SFTP sessions over SSH.
type Dialer struct {
	hostKeys ssh.HostKeyCallback
	timeout  time.Duration
}

// Option configures the dialer.
type Option func(*Dialer)

// WithKnownHosts verifies host keys against the given known_hosts file.
func WithKnownHosts(path string) (Option, error) {
	callback, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load known_hosts %s: %w", path, err)
	}
	return func(d *Dialer) {
		d.hostKeys = callback
	}, nil
}

// WithTimeout sets the TCP connect timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dialer) {
		d.timeout = timeout
	}
}

// NewDialer creates an SFTP dialer. Without a WithKnownHosts option, host
// keys are not verified.
func NewDialer(opts ...Option) *Dialer {
	d := &Dialer{
		hostKeys: ssh.InsecureIgnoreHostKey(),
		timeout:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dial connects and authenticates, then starts an SFTP subsystem over the
// SSH connection. Both the SSH and SFTP layers are torn down by Close.
func (d *Dialer) Dial(ctx context.Context, cfg *credential.Config) (transport.Session, error) {
	auth, err := authMethods(cfg)
	if err != nil {
		return nil, transport.ConnectError(err)
	}

	sshCfg := &ssh.ClientConfig{
		User:            cfg.Username,
		Auth:            auth,
		HostKeyCallback: d.hostKeys,
		Timeout:         d.timeout,
	}

	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < sshCfg.Timeout {
			sshCfg.Timeout = remaining
		}
	}

	client, err := ssh.Dial("tcp", cfg.Addr(), sshCfg)
	if err != nil {
		return nil, transport.ConnectError(fmt.Errorf("ssh dial %s: %w", cfg.Addr(), err))
	}

	ftp, err := sftp.NewClient(client)
	if err != nil {
		client.Close()
		return nil, transport.ConnectError(fmt.Errorf("sftp subsystem: %w", err))
	}

	return &session{ssh: client, ftp: ftp, addr: cfg.Addr(), user: cfg.Username}, nil
}

// authMethods assembles SSH auth from a resolved config. The resolver
// guarantees at most one credential path is populated.
func authMethods(cfg *credential.Config) ([]ssh.AuthMethod, error) {
	switch {
	case cfg.Agent:
		sock := os.Getenv("SSH_AUTH_SOCK")
		if sock == "" {
			return nil, fmt.Errorf("no SSH agent available (SSH_AUTH_SOCK is not set)")
		}
		conn, err := net.Dial("unix", sock)
		if err != nil {
			return nil, fmt.Errorf("cannot reach SSH agent: %w", err)
		}
		ag := agent.NewClient(conn)
		return []ssh.AuthMethod{ssh.PublicKeysCallback(ag.Signers)}, nil

	case len(cfg.PrivateKey) > 0:
		var signer ssh.Signer
		var err error
		if cfg.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(cfg.PrivateKey, []byte(cfg.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(cfg.PrivateKey)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil

	default:
		// Covers both a stored password and "no credential supplied";
		// an empty password lets the server reject the attempt.
		return []ssh.AuthMethod{ssh.Password(cfg.Password)}, nil
	}
}

// session is one authenticated SFTP connection.
type session struct {
	ssh  *ssh.Client
	ftp  *sftp.Client
	addr string
	user string
}

// Put streams src to the remote file at path.
func (s *session) Put(ctx context.Context, src io.Reader, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := s.ftp.Create(path)
	if err != nil {
		return transport.OpError("put", path, err)
	}

	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return transport.OpError("put", path, err)
	}
	if err := f.Close(); err != nil {
		return transport.OpError("put", path, err)
	}
	return nil
}

// Get streams the remote file at path to dst.
func (s *session) Get(ctx context.Context, path string, dst io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := s.ftp.Open(path)
	if err != nil {
		return transport.OpError("get", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(dst, f); err != nil {
		return transport.OpError("get", path, err)
	}
	return nil
}

// Remove deletes the remote file at path.
func (s *session) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ftp.Remove(path); err != nil {
		return transport.OpError("remove", path, err)
	}
	return nil
}

// Mkdir creates the remote directory at path. Creation failures are
// treated as "already exists" when a stat confirms a directory is there;
// anything else is a real error.
func (s *session) Mkdir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.ftp.Mkdir(path); err != nil {
		if info, statErr := s.ftp.Stat(path); statErr == nil && info.IsDir() {
			return nil
		}
		return transport.OpError("mkdir", path, err)
	}
	return nil
}

// List returns the entries of the remote directory at path.
func (s *session) List(ctx context.Context, path string) ([]transport.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := s.ftp.ReadDir(path)
	if err != nil {
		return nil, transport.OpError("list", path, err)
	}

	infos := make([]transport.FileInfo, 0, len(entries))
	for _, entry := range entries {
		infos = append(infos, transport.FileInfo{
			Name:  entry.Name(),
			Size:  entry.Size(),
			IsDir: entry.IsDir(),
		})
	}
	return infos, nil
}

// Close tears down the SFTP and SSH layers.
func (s *session) Close() error {
	ftpErr := s.ftp.Close()
	sshErr := s.ssh.Close()
	if ftpErr != nil {
		return ftpErr
	}
	return sshErr
}

// String returns a description of the connection.
func (s *session) String() string {
	return fmt.Sprintf("sftp://%s@%s", s.user, s.addr)
}

// Ensure session implements the transport.Session interface.
var _ transport.Session = (*session)(nil)
