package projectdir

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindVscodeMarker(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".vscode"), 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Find(nested)
	if err != nil {
		t.Fatal(err)
	}
	if got != root {
		t.Errorf("Find = %q, want %q", got, root)
	}
}

func TestFindGitMarker(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Find(filepath.Join(root))
	if err != nil {
		t.Fatal(err)
	}
	if got != root {
		t.Errorf("Find = %q, want %q", got, root)
	}
}

func TestFindNoMarkerFallsBackToStart(t *testing.T) {
	dir := t.TempDir()

	got, err := Find(dir)
	if err != nil {
		t.Fatal(err)
	}

	abs, _ := filepath.Abs(dir)
	if got != abs {
		t.Errorf("Find = %q, want start dir %q", got, abs)
	}
}
