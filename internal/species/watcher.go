package species

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch starts an fsnotify watcher on the data directory and reloads
// the knowledge base whenever its file changes on disk, until ctx is
// cancelled. The file is documented as human-editable, so external
// edits must become visible without a restart. cb (if non-nil) runs
// after each successful reload.
//
// Events are debounced: editors and atomic renames produce bursts of
// create/write/rename events for a single logical change.
func Watch(ctx context.Context, kb *KnowledgeBase, dataDir string, logger *slog.Logger, cb func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dataDir); err != nil {
		return err
	}

	logger.Info("species watcher: started", slog.String("dir", dataDir), slog.String("file", kb.file))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(200 * time.Millisecond)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("species watcher: stopped")
			return nil

		case <-reloadCh:
			if err := kb.Load(); err != nil {
				logger.Warn("species watcher: reload failed",
					slog.String("error", err.Error()))
				continue
			}
			logger.Info("species watcher: knowledge base reloaded")
			if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != kb.file {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				scheduleReload()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("species watcher: error", slog.String("error", err.Error()))
		}
	}
}
