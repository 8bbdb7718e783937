package integration

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/docker/docker/pkg/stdcopy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

// execInContainer runs a command in the container and returns stdout
func execInContainer(ctx context.Context, container testcontainers.Container, cmd []string) (int, string, error) {
	exitCode, reader, err := container.Exec(ctx, cmd)
	if err != nil {
		return exitCode, "", err
	}

	// Demux the Docker stream (stdout/stderr are multiplexed)
	var stdout, stderr bytes.Buffer
	_, _ = stdcopy.StdCopy(&stdout, &stderr, reader)

	return exitCode, stdout.String(), nil
}

// assertRemoteFileExists checks that a file exists in the container
func assertRemoteFileExists(t *testing.T, ctx context.Context, container testcontainers.Container, path string) {
	t.Helper()
	exitCode, _, err := execInContainer(ctx, container, []string{"test", "-e", path})
	require.NoError(t, err)
	assert.Equal(t, 0, exitCode, "file %s should exist", path)
}

// assertRemoteFileMissing checks that a file does not exist in the container
func assertRemoteFileMissing(t *testing.T, ctx context.Context, container testcontainers.Container, path string) {
	t.Helper()
	exitCode, _, err := execInContainer(ctx, container, []string{"test", "-e", path})
	require.NoError(t, err)
	assert.NotEqual(t, 0, exitCode, "file %s should not exist", path)
}

// assertRemoteFileContains checks that a file contains all expected substrings
func assertRemoteFileContains(t *testing.T, ctx context.Context, container testcontainers.Container, path string, expected []string) {
	t.Helper()
	exitCode, content, err := execInContainer(ctx, container, []string{"cat", path})
	require.NoError(t, err)
	require.Equal(t, 0, exitCode, "failed to read file %s", path)

	for _, substr := range expected {
		assert.Contains(t, content, substr, "file %s should contain %q", path, substr)
	}
}

// assertRemoteIsDirectory checks that a path is a directory
func assertRemoteIsDirectory(t *testing.T, ctx context.Context, container testcontainers.Container, path string) {
	t.Helper()
	exitCode, _, err := execInContainer(ctx, container, []string{"test", "-d", path})
	require.NoError(t, err)
	assert.Equal(t, 0, exitCode, "%s should be a directory", path)
}

// remoteFileContent returns the content of a file in the container
func remoteFileContent(t *testing.T, ctx context.Context, container testcontainers.Container, path string) string {
	t.Helper()
	exitCode, content, err := execInContainer(ctx, container, []string{"cat", path})
	require.NoError(t, err)
	require.Equal(t, 0, exitCode, "failed to read file %s", path)
	return strings.TrimRight(content, "\n")
}
