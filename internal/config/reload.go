// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/yunseo/gabiad/internal/log"
)

// Watch observes the config file and re-applies the log level when the file
// changes. Credentials and wiring are fixed for the process lifetime; the
// log level is the one knob that is safe to flip on a running daemon.
// Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path, version string) error {
	logger := log.WithComponent("config.watch")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory: editors and configuration tools typically
	// replace the file, which drops a watch placed on the file itself.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			cfg, err := NewLoader(path, version).Load()
			if err != nil {
				logger.Warn().
					Err(err).
					Str("event", "config.reload_failed").
					Str("path", path).
					Msg("ignoring config change")
				continue
			}
			if log.SetLevel(cfg.LogLevel) {
				logger.Info().
					Str("event", "config.reloaded").
					Str("log_level", cfg.LogLevel).
					Msg("applied new log level")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Str("event", "config.watch_error").Msg("watch error")
		}
	}
}
