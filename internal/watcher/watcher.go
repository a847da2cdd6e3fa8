// Package watcher reloads the garden when its snapshot file is changed by
// another process.
package watcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/rosarium/internal/checksum"
)

// Source is the file-backed snapshot being watched.
type Source interface {
	Path() string
	// LastChecksum is the checksum of the bytes the process itself last read
	// or wrote; matching content is not reloaded.
	LastChecksum() string
}

// Reloader replaces in-memory state from the snapshot.
type Reloader interface {
	Reload(ctx context.Context) error
}

// EventCallback is called after a watcher-driven reload.
type EventCallback func(path string)

const defaultDebounce = 200 * time.Millisecond

// Watch watches the directory holding src's file and reloads r after the
// file settles with content this process did not write. It returns when ctx
// is cancelled.
//
// The directory is watched instead of the file because atomic saves replace
// the file by rename.
func Watch(ctx context.Context, src Source, r Reloader, debounce time.Duration, logger *slog.Logger, cb EventCallback) error {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target := src.Path()
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("path", target))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			reloadIfChanged(ctx, src, r, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func reloadIfChanged(ctx context.Context, src Source, r Reloader, logger *slog.Logger, cb EventCallback) {
	path := src.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("watcher: read failed", slog.String("path", path), slog.String("error", err.Error()))
		}
		return
	}
	if checksum.Sum(data) == src.LastChecksum() {
		return
	}
	if err := r.Reload(ctx); err != nil {
		logger.Warn("watcher: reload failed", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	logger.Info("watcher: reloaded external change", slog.String("path", path))
	if cb != nil {
		cb(path)
	}
}
