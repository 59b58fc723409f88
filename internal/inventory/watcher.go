package inventory

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// debounceWindow batches rapid successive writes into one change event.
// Editors and spreadsheet tools often save a file in several bursts.
const debounceWindow = 2 * time.Second

// Watch monitors an inventory CSV and invokes onChange after each
// settled modification. Blocks until the context is cancelled.
//
// The parent directory is watched rather than the file itself, because
// most tools save via rename and that would otherwise drop the watch.
func Watch(ctx context.Context, csvPath string, onChange func() error) error {
	absPath, err := filepath.Abs(csvPath)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", csvPath, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(absPath), err)
	}

	debounce := time.NewTimer(debounceWindow)
	debounce.Stop()
	pending := false

	log.Info("watching inventory", "path", absPath)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			pending = true
			debounce.Reset(debounceWindow)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watch error", "err", err)

		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false
			if err := onChange(); err != nil {
				log.Error("processing inventory change", "err", err)
			}
		}
	}
}
