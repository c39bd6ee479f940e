package dataset

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/cohortlens/cohortlens/internal/cohort"
)

// Watch monitors the fixture at path and calls onChange with the newly
// loaded data each time the file is written. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file so that atomic saves
// (write to a temp file, rename over the original) are seen. If a reload
// fails the error is logged and onChange is not called.
func Watch(ctx context.Context, path string, onChange func(*cohort.Data)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	slog.Info("dataset: watching for changes", "path", abs)
	src := &FileSource{Path: abs}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			data, err := src.Load(ctx)
			if err != nil {
				slog.Error("dataset: reload failed, keeping previous data",
					"path", abs, "err", err)
				continue
			}

			slog.Info("dataset: reloaded", "path", abs, "cohorts", len(data.Heatmap))
			onChange(data)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("dataset: watcher error", "err", err)
		}
	}
}
