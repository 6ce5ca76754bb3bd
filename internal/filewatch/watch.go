// Package filewatch re-delivers a taxonomy document whenever its file changes.
package filewatch

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/taxonomy/internal/checksum"
	"github.com/starford/taxonomy/internal/storage"
)

// Debounce is how long the watcher waits after the last event on the file
// before reading it.
const Debounce = 200 * time.Millisecond

// Callback receives the file's new content. A returned error is logged and
// the content is retried on the next change.
type Callback func(ctx context.Context, data []byte) error

// Watch delivers the current content of path to cb, then watches the
// file's directory and delivers every later change until ctx is cancelled.
// The directory is watched rather than the file so that editors which
// save by renaming a temp file over the original are still seen. Content
// whose checksum matches the last delivery is skipped.
func Watch(ctx context.Context, path string, logger *slog.Logger, cb Callback) error {
	fs, name, err := storage.ForFile(path)
	if err != nil {
		return err
	}
	target := filepath.Join(fs.Root(), name)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(fs.Root()); err != nil {
		return err
	}
	logger.Info("watch: started", slog.String("path", target))

	var last string
	deliver := func() {
		data, err := fs.Read(name)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				logger.Debug("watch: file absent", slog.String("path", target))
			} else {
				logger.Warn("watch: read failed", slog.String("path", target), slog.String("error", err.Error()))
			}
			return
		}
		sum := checksum.Sum(data)
		if sum == last {
			logger.Debug("watch: unchanged", slog.String("path", target))
			return
		}
		if err := cb(ctx, data); err != nil {
			logger.Warn("watch: callback failed", slog.String("path", target), slog.String("error", err.Error()))
			return
		}
		last = sum
	}

	deliver()

	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(Debounce)
			timerCh = timer.C
		} else {
			timer.Reset(Debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watch: stopped")
			return nil

		case <-timerCh:
			deliver()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || storage.IsTemp(ev.Name) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch: error", slog.String("error", watchErr.Error()))
		}
	}
}
