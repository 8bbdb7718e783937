package deploy

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skiff-dev/skiff/internal/output"
	"github.com/skiff-dev/skiff/internal/profile"
	"github.com/skiff-dev/skiff/internal/secret"
	"github.com/skiff-dev/skiff/internal/transport/localclient"
)

// newTestDeployer wires a deployer against a filesystem-backed target
// and returns the target root alongside it.
func newTestDeployer(t *testing.T) (*Deployer, string, *bytes.Buffer) {
	t.Helper()
	target := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(target, "www"), 0o755))

	var buf bytes.Buffer
	out := output.New(&buf)
	out.SetColor(false)

	d := New(&localclient.Dialer{Root: target}, secret.NewMemory(), out)
	return d, target, &buf
}

func testTargetProfile() *profile.Profile {
	return &profile.Profile{
		Name: "local", Host: "localhost", Username: "me",
		RemotePath: "/www", AuthMethod: profile.AuthPassword,
	}
}

func TestRunSingleFile(t *testing.T) {
	d, target, buf := newTestDeployer(t)

	src := t.TempDir()
	localFile := filepath.Join(src, "index.html")
	require.NoError(t, os.WriteFile(localFile, []byte("<html/>"), 0o644))

	result, err := d.Run(context.Background(), testTargetProfile(), localFile)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Stats.Uploaded)
	assert.Equal(t, 0, result.Stats.Failed)

	data, err := os.ReadFile(filepath.Join(target, "www", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html/>", string(data))

	assert.Contains(t, buf.String(), "DEPLOY")
	assert.Contains(t, buf.String(), "uploaded=1")
}

func TestRunDirectory(t *testing.T) {
	d, target, _ := newTestDeployer(t)

	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.html"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "assets", "app.js"), []byte("b"), 0o644))

	result, err := d.Run(context.Background(), testTargetProfile(), src)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Stats.Uploaded)

	assert.FileExists(t, filepath.Join(target, "www", "index.html"))
	assert.FileExists(t, filepath.Join(target, "www", "assets", "app.js"))
}

func TestRunMissingLocalPath(t *testing.T) {
	d, _, _ := newTestDeployer(t)

	_, err := d.Run(context.Background(), testTargetProfile(), "/does/not/exist")
	assert.Error(t, err)
}

func TestRunKeyReadFailure(t *testing.T) {
	d, _, _ := newTestDeployer(t)

	p := testTargetProfile()
	p.AuthMethod = profile.AuthSSHKey
	p.PrivateKeyPath = filepath.Join(t.TempDir(), "missing-key")

	src := filepath.Join(t.TempDir(), "f.txt")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	_, err := d.Run(context.Background(), p, src)
	assert.Error(t, err, "an unreadable key aborts before any transfer")
}

func TestDeployFile(t *testing.T) {
	d, target, _ := newTestDeployer(t)
	require.NoError(t, os.Mkdir(filepath.Join(target, "www", "sub"), 0o755))

	src := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(src, []byte("saved"), 0o644))

	require.NoError(t, d.DeployFile(context.Background(), testTargetProfile(), src, "sub/page.html"))

	data, err := os.ReadFile(filepath.Join(target, "www", "sub", "page.html"))
	require.NoError(t, err)
	assert.Equal(t, "saved", string(data))
}
