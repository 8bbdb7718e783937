// Package localclient implements the transport session over the local
// filesystem. It backs "local" deployment targets and lets the transfer
// layer be exercised without a network.
package localclient

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"

	"github.com/skiff-dev/skiff/internal/credential"
	"github.com/skiff-dev/skiff/internal/transport"
)

// Dialer opens filesystem-backed sessions. The connection config is
// ignored apart from being non-nil; every dial succeeds.
type Dialer struct {
	// Root is prepended to all session paths. Empty means paths are
	// used as-is.
	Root string
}

// Dial returns a session rooted at d.Root.
func (d *Dialer) Dial(ctx context.Context, cfg *credential.Config) (transport.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, transport.ConnectError(err)
	}
	return &session{root: d.Root}, nil
}

type session struct {
	root string
}

func (s *session) resolve(path string) string {
	if s.root == "" {
		return path
	}
	return filepath.Join(s.root, filepath.FromSlash(path))
}

// Put writes src to the file at path, creating or truncating it.
func (s *session) Put(ctx context.Context, src io.Reader, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.resolve(path), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
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

// Get reads the file at path into dst.
func (s *session) Get(ctx context.Context, path string, dst io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(s.resolve(path))
	if err != nil {
		return transport.OpError("get", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(dst, f); err != nil {
		return transport.OpError("get", path, err)
	}
	return nil
}

// Remove deletes the file at path.
func (s *session) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.resolve(path)); err != nil {
		return transport.OpError("remove", path, err)
	}
	return nil
}

// Mkdir creates the directory at path; an existing directory is success.
func (s *session) Mkdir(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Mkdir(s.resolve(path), 0o755); err != nil {
		if info, statErr := os.Stat(s.resolve(path)); statErr == nil && info.IsDir() {
			return nil
		}
		return transport.OpError("mkdir", path, err)
	}
	return nil
}

// List returns the entries of the directory at path.
func (s *session) List(ctx context.Context, path string) ([]transport.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.resolve(path))
	if err != nil {
		return nil, transport.OpError("list", path, err)
	}

	infos := make([]transport.FileInfo, 0, len(entries))
	for _, entry := range entries {
		info := transport.FileInfo{Name: entry.Name(), IsDir: entry.IsDir()}
		if fi, err := entry.Info(); err == nil && !entry.IsDir() {
			info.Size = fi.Size()
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Close is a no-op for filesystem sessions.
func (s *session) Close() error {
	return nil
}

// String returns a description of the connection.
func (s *session) String() string {
	u, err := user.Current()
	if err != nil {
		return "local"
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	return fmt.Sprintf("local://%s@%s", u.Username, hostname)
}

// Ensure the implementations satisfy the transport interfaces.
var (
	_ transport.Dialer  = (*Dialer)(nil)
	_ transport.Session = (*session)(nil)
)
