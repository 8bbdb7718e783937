package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"src/main.go", false},
		{"index.html", false},
		{".git/HEAD", true},
		{".vscode/deployments.sftp.json", true},
		{"web/node_modules/pkg/index.js", true},
		{"gitignore", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := ShouldIgnore(tt.path); got != tt.want {
				t.Errorf("ShouldIgnore(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// uploadRecorder collects uploads delivered by the watcher.
type uploadRecorder struct {
	mu      sync.Mutex
	uploads []string
}

func (r *uploadRecorder) record(ctx context.Context, localPath, relPath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploads = append(r.uploads, relPath)
	return nil
}

func (r *uploadRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.uploads...)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestWatcherUploadsSavedFile(t *testing.T) {
	root := t.TempDir()
	rec := &uploadRecorder{}

	w := New(root, 50*time.Millisecond, rec.record)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	// Give the watcher a moment to establish its watches.
	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(root, "main.go"), []byte("package main"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, 5*time.Second, func() bool { return len(rec.snapshot()) == 1 }) {
		t.Fatalf("expected 1 upload, got %v", rec.snapshot())
	}
	if got := rec.snapshot()[0]; got != "main.go" {
		t.Errorf("uploaded %q, want main.go", got)
	}

	cancel()
	<-done
}

func TestWatcherDebouncesBursts(t *testing.T) {
	root := t.TempDir()
	rec := &uploadRecorder{}

	w := New(root, 150*time.Millisecond, rec.record)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	time.Sleep(200 * time.Millisecond)

	// Editors write a file several times per save; only one upload
	// should fire once the burst settles.
	path := filepath.Join(root, "burst.txt")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("rev"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if !waitFor(t, 5*time.Second, func() bool { return len(rec.snapshot()) >= 1 }) {
		t.Fatal("no upload fired")
	}

	// Allow any extra debounce windows to drain, then check the count.
	time.Sleep(500 * time.Millisecond)
	if got := len(rec.snapshot()); got != 1 {
		t.Errorf("got %d uploads for one save burst, want 1", got)
	}

	cancel()
	<-done
}

func TestWatcherIgnoresDotDirs(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".vscode"), 0o755); err != nil {
		t.Fatal(err)
	}
	rec := &uploadRecorder{}

	w := New(root, 50*time.Millisecond, rec.record)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(root, ".vscode", "settings.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "real.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, 5*time.Second, func() bool { return len(rec.snapshot()) == 1 }) {
		t.Fatalf("expected only the non-ignored file, got %v", rec.snapshot())
	}
	if got := rec.snapshot()[0]; got != "real.txt" {
		t.Errorf("uploaded %q, want real.txt", got)
	}

	cancel()
	<-done
}
