// Package watch re-runs a pipeline action when project inputs change on
// disk.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce coalesces editor save bursts into one rebuild.
const debounce = 250 * time.Millisecond

// Run watches the given files and invokes rebuild after any of them change.
// The initial rebuild happens immediately. Run returns when the context is
// cancelled; rebuild errors are logged, not fatal, so a broken edit does not
// kill the watch loop.
func Run(ctx context.Context, files []string, logger *slog.Logger, rebuild func() error) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := make(map[string]bool, len(files))
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	// Watch directories rather than files: editors replace files on save,
	// which drops file-level watches.
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}

	runOnce := func() {
		if err := rebuild(); err != nil {
			logger.Error("rebuild failed", "error", err)
		}
	}
	runOnce()

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
				!event.Op.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil || !watched[abs] {
				continue
			}
			logger.Info("input changed", "path", abs)
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-pending:
			runOnce()
		}
	}
}
