// Package projectdir locates the project root for per-project
// configuration files.
package projectdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// markers identify a directory as a project root, checked in order.
var markers = []string{".vscode", ".git"}

// Find walks up from start looking for a project marker. Without one, it
// falls back to start itself: a project that has neither marker yet gets
// its .vscode directory created on the first profile save.
func Find(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("cannot resolve %s: %w", start, err)
	}

	dir := abs
	for {
		for _, marker := range markers {
			if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && info.IsDir() {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		dir = parent
	}
}

// FindFromCwd locates the project root from the working directory.
func FindFromCwd() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return Find(cwd)
}
