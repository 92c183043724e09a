// Package watch triggers a corpus reload when files under the content root change.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of file events into one reload.
const DefaultDebounce = 500 * time.Millisecond

// EventCallback is called for every relevant file event.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind, path string)

// Options configures Watch.
type Options struct {
	// Debounce is the quiet period before OnChange fires.
	Debounce time.Duration
	// OnEvent receives each file event, path relative to root. Optional.
	OnEvent EventCallback
	// OnChange runs once per burst of events, on the watcher goroutine.
	OnChange func(ctx context.Context)
	Logger   *slog.Logger
}

// Watch watches root recursively until ctx is cancelled. Directories
// created at runtime are added to the watch list. Hidden files and the
// temporary files left by atomic writes are ignored.
func Watch(ctx context.Context, root string, opts Options) error {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(opts.Debounce)
			fire = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(opts.Debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			logger.Info("watcher: content changed, reloading")
			if opts.OnChange != nil {
				opts.OnChange(ctx)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ignored(ev.Name) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					schedule()
					continue
				}
			}

			kind := eventKind(ev.Op)
			if kind == "" {
				continue
			}
			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			logger.Debug("watcher: event", slog.String("path", rel), slog.String("op", kind))
			if opts.OnEvent != nil {
				opts.OnEvent(kind, rel)
			}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func eventKind(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "created"
	case op&fsnotify.Write != 0:
		return "updated"
	case op&(fsnotify.Remove|fsnotify.Rename) != 0:
		return "deleted"
	default:
		return ""
	}
}

func ignored(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
