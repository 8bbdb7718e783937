// Package watch triggers deploy-on-save: it watches the project tree and
// uploads changed files for profiles that opt in.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ignoredDirs are never watched or deployed.
var ignoredDirs = map[string]bool{
	".git":         true,
	".vscode":      true,
	"node_modules": true,
}

// UploadFunc uploads one changed file. relPath is slash-separated and
// relative to the watched root.
type UploadFunc func(ctx context.Context, localPath, relPath string) error

// Watcher debounces file change events and hands settled files to an
// upload callback. Uploads run on the event loop goroutine, one at a
// time; an upload failure is reported and watching continues.
type Watcher struct {
	root     string
	debounce time.Duration
	upload   UploadFunc

	// OnError, if set, receives upload and watch errors.
	OnError func(path string, err error)
}

// New creates a watcher over root. debounce is the per-file quiet period
// before an upload fires; editors tend to emit several events per save.
func New(root string, debounce time.Duration, upload UploadFunc) *Watcher {
	return &Watcher{root: root, debounce: debounce, upload: upload}
}

// ShouldIgnore reports whether a project-relative slash path is excluded
// from deploy-on-save.
func ShouldIgnore(relPath string) bool {
	for _, part := range strings.Split(relPath, "/") {
		if ignoredDirs[part] {
			return true
		}
	}
	return false
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := w.addRecursive(fsw, w.root); err != nil {
		return err
	}

	// Pending files by relative path, keyed to their settle deadline.
	pending := make(map[string]string)
	timer := time.NewTimer(time.Hour)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(fsw, event, pending)
			if len(pending) > 0 {
				timer.Reset(w.debounce)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.reportError("", err)

		case <-timer.C:
			for relPath, localPath := range pending {
				delete(pending, relPath)
				if err := w.upload(ctx, localPath, relPath); err != nil {
					w.reportError(relPath, err)
				}
			}
		}
	}
}

func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, event fsnotify.Event, pending map[string]string) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	relPath, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	relPath = filepath.ToSlash(relPath)
	if ShouldIgnore(relPath) {
		return
	}

	fi, err := os.Stat(event.Name)
	if err != nil {
		return
	}

	if fi.IsDir() {
		// New directories need their own watch for future saves.
		if event.Has(fsnotify.Create) {
			_ = w.addRecursive(fsw, event.Name)
		}
		return
	}
	if !fi.Mode().IsRegular() {
		return
	}

	pending[relPath] = event.Name
}

// addRecursive watches dir and all its subdirectories, skipping ignored
// directory names.
func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if ignoredDirs[d.Name()] && path != dir {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

func (w *Watcher) reportError(path string, err error) {
	if w.OnError != nil {
		w.OnError(path, err)
	}
}
