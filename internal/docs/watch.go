package docs

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces bursts of file events into one rebuild.
const debounceDelay = 100 * time.Millisecond

// Watch re-runs rebuild whenever a schema source file under dir changes,
// until ctx is done. Each rebuild is a full fresh run of the pipeline;
// nothing is patched incrementally. Rebuild errors are logged, not fatal,
// so a temporarily broken file does not stop the watcher.
func Watch(ctx context.Context, dir string, rebuild func() error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watchDir(watcher, dir); err != nil {
		return err
	}

	log.Printf("Watching for changes in %s", dir)
	log.Println("Press Ctrl+C to stop")

	var debounceTimer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".star" {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			name := filepath.Base(event.Name)
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				log.Printf("Change detected: %s", name)
				if err := rebuild(); err != nil {
					log.Printf("Regenerate error: %v", err)
				} else {
					log.Println("Regenerated")
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

// watchDir recursively adds a directory tree to the watcher, skipping
// hidden directories.
func watchDir(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if len(info.Name()) > 1 && info.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}
