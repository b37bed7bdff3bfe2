package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/askiada/go-kanaval/pkg/pipeline"
)

// Editors often write a file in several events; they are merged when they
// fall within this window.
const watchDebounce = 200 * time.Millisecond

// watch validates files again as they change, until ctx is done. Directories
// are watched rather than files so that a file replaced by rename is still
// followed.
func (a *app) watch(ctx context.Context, out io.Writer, pipe *pipeline.Pipeline, paths []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "unable to create file watcher")
	}
	defer watcher.Close()

	watched := make(map[string]string, len(paths))
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return errors.Wrapf(err, "unable to resolve %s", path)
		}
		dir := filepath.Dir(abs)
		if !slices.Contains(watcher.WatchList(), dir) {
			if err := watcher.Add(dir); err != nil {
				return errors.Wrapf(err, "unable to watch %s", dir)
			}
		}
		watched[abs] = path
	}
	a.logger.Info("watching files", slog.Int("count", len(watched)))

	pending := make(map[string]bool)
	timer := time.NewTimer(watchDebounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			path, ok := watched[filepath.Clean(event.Name)]
			if !ok {
				continue
			}
			pending[path] = true
			timer.Reset(watchDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("file watcher error", slog.Any("error", err))
		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for path := range pending {
				changed = append(changed, path)
			}
			clear(pending)
			slices.Sort(changed)
			if _, err := a.validateFiles(ctx, out, pipe, changed); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}
