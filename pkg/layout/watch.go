package layout

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// ReloadFunc observes a reload. ids lists the forms stored; err is set when
// the files failed to load and the catalog was left as it was.
type ReloadFunc func(ids []string, err error)

const reloadDelay = 100 * time.Millisecond

// Watch reloads the layouts matched by patterns into catalog whenever one of
// them is written, created, or renamed. It blocks until ctx is done.
// Directories are resolved once at start, so new directories matching a
// `**` pattern need a restart.
func Watch(ctx context.Context, catalog *Catalog, patterns []string, onReload ReloadFunc) error {
	if len(patterns) == 0 {
		<-ctx.Done()
		return nil
	}
	paths, err := Glob(patterns...)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("layout: create watcher: %w", err)
	}
	defer watcher.Close()

	dirs := make(map[string]struct{})
	for _, path := range paths {
		dir := filepath.Dir(path)
		if _, ok := dirs[dir]; ok {
			continue
		}
		dirs[dir] = struct{}{}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("layout: watch %s: %w", dir, err)
		}
	}

	cleaned := make([]string, len(patterns))
	for i, pattern := range patterns {
		cleaned[i] = filepath.Clean(pattern)
	}

	timer := time.NewTimer(reloadDelay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !matchesAny(cleaned, filepath.Clean(event.Name)) {
				continue
			}
			// debounce bursts of writes
			timer.Reset(reloadDelay)

		case <-timer.C:
			ids, err := reload(catalog, patterns)
			if onReload != nil {
				onReload(ids, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if onReload != nil {
				onReload(nil, fmt.Errorf("layout: watch: %w", err))
			}
		}
	}
}

func reload(catalog *Catalog, patterns []string) ([]string, error) {
	forms, err := LoadAll(patterns...)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(forms))
	for _, form := range forms {
		catalog.Put(form)
		ids = append(ids, form.ID)
	}
	return ids, nil
}

func matchesAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.PathMatch(pattern, name); ok {
			return true
		}
	}
	return false
}
