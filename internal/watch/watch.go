// Package watch re-runs a callback when input files change on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mcncl/pojotyper/internal/errors"
	"github.com/mcncl/pojotyper/internal/logging"
)

// DefaultDebounce is the quiet period that ends a burst of events.
const DefaultDebounce = 200 * time.Millisecond

// Watcher delivers changes to a fixed set of files, one callback per burst.
type Watcher struct {
	Debounce time.Duration
	Logger   *slog.Logger
}

// Watch watches paths with the given debounce and no logging.
func Watch(ctx context.Context, paths []string, debounce time.Duration, fn func(changed []string)) error {
	return (&Watcher{Debounce: debounce}).Watch(ctx, paths, fn)
}

// Watch blocks until ctx is done. Editors often replace files through a
// rename, so the parent directories are watched and events filtered by name.
// fn receives the changed paths, sorted, as they were given.
func (w *Watcher) Watch(ctx context.Context, paths []string, fn func(changed []string)) error {
	logger := logging.OrDiscard(w.Logger)
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.NewInputError("failed to start file watcher", err)
	}
	defer func() { _ = watcher.Close() }()

	targets := make(map[string]string, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.NewInputError(fmt.Sprintf("invalid path '%s'", p), err)
		}
		targets[abs] = p
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return errors.NewInputError(fmt.Sprintf("failed to watch '%s'", dir), err)
		}
		logger.Debug("watching directory", "dir", dir)
	}

	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			original, tracked := targets[filepath.Clean(ev.Name)]
			if !tracked || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logger.Debug("file event", "path", original, "op", ev.Op.String())
			pending[original] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			fn(changed)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("file watcher error", "error", err)
		}
	}
}
