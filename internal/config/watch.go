package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Carmen-Shannon/h2scape/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// settleDelay coalesces the burst of events editors emit for a single save.
const settleDelay = 100 * time.Millisecond

// Watch reloads the file at path whenever it changes and passes each valid result to onChange.
// Invalid files are logged and skipped so a half-typed edit never reaches the engine. Watch
// blocks until ctx is cancelled.
//
// The parent directory is watched rather than the file itself, since editors commonly save by
// writing a temporary file and renaming it over the original.
//
// Parameters:
//   - ctx: cancelling it stops the watcher
//   - path: the configuration file
//   - log: the logger reload failures are reported to; nil discards them
//   - onChange: called from the watcher goroutine with every successfully loaded config
//
// Returns:
//   - error: an error if the watcher could not be started
func Watch(ctx context.Context, path string, log logging.Logger, onChange func(Config)) error {
	log = logging.OrNoop(log)

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	var (
		settle  *time.Timer
		settled <-chan time.Time
	)
	defer func() {
		if settle != nil {
			settle.Stop()
		}
	}()

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
			if settle == nil {
				settle = time.NewTimer(settleDelay)
			} else {
				settle.Reset(settleDelay)
			}
			settled = settle.C

		case <-settled:
			settled = nil
			cfg, err := Load(abs)
			if err != nil {
				log.Warn(ctx, "config reload rejected", logging.String("path", abs), logging.Err(err))
				continue
			}
			log.Info(ctx, "config reloaded", logging.String("path", abs), logging.String("profile", cfg.Profile))
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn(ctx, "config watcher error", logging.Err(err))
		}
	}
}
