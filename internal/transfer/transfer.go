// Package transfer wraps transport sessions with the file operations the
// CLI exposes: single-file upload, download, remove, diff, and recursive
// directory upload.
package transfer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skiff-dev/skiff/internal/credential"
	"github.com/skiff-dev/skiff/internal/transport"
)

// Facade performs remote file operations. Single-file operations open one
// connection, perform exactly one operation, and close the connection on
// both success and failure. Directory upload instead holds one connection
// open across the whole walk to avoid a handshake per file; the two
// policies are deliberate and must not be unified casually.
type Facade struct {
	dialer transport.Dialer

	// Progress, if set, is called before each file upload in a
	// directory walk and for each single-file operation.
	Progress func(local, remote string)
}

// New creates a facade over the given dialer.
func New(dialer transport.Dialer) *Facade {
	return &Facade{dialer: dialer}
}

func (f *Facade) report(local, remote string) {
	if f.Progress != nil {
		f.Progress(local, remote)
	}
}

// Upload copies one local file to the remote path.
func (f *Facade) Upload(ctx context.Context, cfg *credential.Config, localPath, remotePath string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", localPath, err)
	}
	defer src.Close()

	sess, err := f.dialer.Dial(ctx, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	f.report(localPath, remotePath)
	return sess.Put(ctx, src, remotePath)
}

// Download copies one remote file to the local path, creating parent
// directories as needed.
func (f *Facade) Download(ctx context.Context, cfg *credential.Config, remotePath, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", filepath.Dir(localPath), err)
	}
	dst, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", localPath, err)
	}
	defer dst.Close()

	sess, err := f.dialer.Dial(ctx, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	f.report(localPath, remotePath)
	return sess.Get(ctx, remotePath, dst)
}

// Remove deletes one remote file.
func (f *Facade) Remove(ctx context.Context, cfg *credential.Config, remotePath string) error {
	sess, err := f.dialer.Dial(ctx, cfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	return sess.Remove(ctx, remotePath)
}

// DiffResult reports how a local file compares to its remote counterpart.
type DiffResult struct {
	// Equal is true when both files have identical content.
	Equal bool

	// LocalSize and RemoteSize are the respective content lengths.
	LocalSize  int64
	RemoteSize int64
}

// Diff downloads the remote counterpart into memory and compares it with
// the local file.
func (f *Facade) Diff(ctx context.Context, cfg *credential.Config, localPath, remotePath string) (*DiffResult, error) {
	local, err := os.ReadFile(localPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", localPath, err)
	}

	sess, err := f.dialer.Dial(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	var remote bytes.Buffer
	if err := sess.Get(ctx, remotePath, &remote); err != nil {
		return nil, err
	}

	return &DiffResult{
		Equal:      bytes.Equal(local, remote.Bytes()),
		LocalSize:  int64(len(local)),
		RemoteSize: int64(remote.Len()),
	}, nil
}

// UploadDir uploads a local directory tree to the remote directory,
// reusing a single connection for the whole walk. remoteDir must end with
// a "/". It returns the number of files uploaded; the first failure
// aborts the remaining siblings at that level and propagates, leaving
// already uploaded files in place.
func (f *Facade) UploadDir(ctx context.Context, cfg *credential.Config, localDir, remoteDir string) (int, error) {
	sess, err := f.dialer.Dial(ctx, cfg)
	if err != nil {
		return 0, err
	}
	defer sess.Close()

	return f.WalkUpload(ctx, sess, localDir, remoteDir)
}

// WalkUpload recursively uploads localDir into remoteDir over an already
// open session. Entries are visited in whatever order the local listing
// yields; a parent directory is always created before its contents.
func (f *Facade) WalkUpload(ctx context.Context, sess transport.Session, localDir, remoteDir string) (int, error) {
	entries, err := os.ReadDir(localDir)
	if err != nil {
		return 0, fmt.Errorf("cannot list %s: %w", localDir, err)
	}

	uploaded := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return uploaded, err
		}

		localPath := filepath.Join(localDir, entry.Name())
		remotePath := remoteDir + entry.Name()

		if entry.IsDir() {
			if err := sess.Mkdir(ctx, remotePath); err != nil {
				return uploaded, err
			}
			n, err := f.WalkUpload(ctx, sess, localPath, remotePath+"/")
			uploaded += n
			if err != nil {
				return uploaded, err
			}
			continue
		}

		if !entry.Type().IsRegular() {
			continue
		}

		src, err := os.Open(localPath)
		if err != nil {
			return uploaded, fmt.Errorf("cannot open %s: %w", localPath, err)
		}

		f.report(localPath, remotePath)
		err = sess.Put(ctx, src, remotePath)
		src.Close()
		if err != nil {
			return uploaded, err
		}
		uploaded++
	}

	return uploaded, nil
}
