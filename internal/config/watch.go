package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 250 * time.Millisecond

// Watcher calls onChange after the settings file was written. Bursts of
// events are collapsed into one call.
type Watcher struct {
	filePath string
	debounce time.Duration
	onChange func()
}

func NewWatcher(filePath string, debounce time.Duration, onChange func()) Watcher {
	return Watcher{
		filePath: filepath.Clean(filePath),
		debounce: debounce,
		onChange: onChange,
	}
}

func (w Watcher) String() string {
	return "config.Watcher"
}

func (w Watcher) Serve(ctx context.Context) error {
	slog := slog.With("func", "config.Watcher.Serve", "file", w.filePath)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Editors replace files, so the directory is watched instead of the file.
	if err := watcher.Add(filepath.Dir(w.filePath)); err != nil {
		return err
	}

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.filePath {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}

			slog.Debug("settings file changed", "op", ev.Op.String())
			timer.Reset(w.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Failed to watch settings file", "error", err)
		case <-timer.C:
			w.onChange()
		}
	}
}
