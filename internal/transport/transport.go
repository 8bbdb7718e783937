// Package transport defines the capability interface for remote file
// transfer sessions.
package transport

import (
	"context"
	"fmt"
	"io"

	"github.com/skiff-dev/skiff/internal/credential"
)

// FileInfo describes one remote directory entry.
type FileInfo struct {
	// Name is the base name of the entry.
	Name string

	// Size is the file size in bytes (0 for directories).
	Size int64

	// IsDir reports whether the entry is a directory.
	IsDir bool
}

// Session is one open connection to a remote target. All paths are
// remote-absolute. Implementations are not required to be safe for
// concurrent use.
type Session interface {
	// Put streams src to the remote file at path, creating or truncating it.
	Put(ctx context.Context, src io.Reader, path string) error

	// Get streams the remote file at path to dst.
	Get(ctx context.Context, path string, dst io.Writer) error

	// Remove deletes the remote file at path.
	Remove(ctx context.Context, path string) error

	// Mkdir creates the remote directory at path. Implementations treat
	// an already existing directory as success.
	Mkdir(ctx context.Context, path string) error

	// List returns the entries of the remote directory at path.
	List(ctx context.Context, path string) ([]FileInfo, error)

	// Close terminates the connection.
	Close() error

	// String returns a human-readable description of the connection.
	String() string
}

// Dialer opens sessions from resolved connection configs.
type Dialer interface {
	Dial(ctx context.Context, cfg *credential.Config) (Session, error)
}

// Phases of a transfer in which a failure can occur.
const (
	PhaseConnect   = "connect"
	PhaseOperation = "operation"
)

// TransferError wraps a connection or operation failure. The two are
// distinguished only by the phase that produced them; neither is retried.
type TransferError struct {
	Phase string
	Op    string
	Path  string
	Err   error
}

// Error returns the error message.
func (e *TransferError) Error() string {
	if e.Phase == PhaseConnect {
		return fmt.Sprintf("connect failed: %v", e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransferError) Unwrap() error {
	return e.Err
}

// ConnectError wraps err as a connect-phase failure.
func ConnectError(err error) *TransferError {
	return &TransferError{Phase: PhaseConnect, Err: err}
}

// OpError wraps err as an operation-phase failure.
func OpError(op, path string, err error) *TransferError {
	return &TransferError{Phase: PhaseOperation, Op: op, Path: path, Err: err}
}
