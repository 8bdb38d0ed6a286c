package layout

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchReloadsChangedLayouts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.yaml")
	write := func(title string) {
		t.Helper()
		payload := "id: notes\ntitle: " + title + "\ncontainers:\n  - {id: notes-container, row_kind: note-row, fields: [{name: note}]}\n"
		if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	write("First")

	catalog := DefaultCatalog()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan []string, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, catalog, []string{filepath.Join(dir, "*.yaml")}, func(ids []string, err error) {
			if err == nil {
				reloaded <- ids
			}
		})
	}()

	// the watcher registers asynchronously; keep writing until it reports
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case ids := <-reloaded:
			if len(ids) != 1 || ids[0] != "notes" {
				t.Fatalf("reloaded ids = %v", ids)
			}
			form, err := catalog.Get("notes")
			if err != nil || form.Title != "Second" {
				t.Fatalf("catalog not updated: %+v %v", form, err)
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("watch: %v", err)
			}
			return
		case <-tick.C:
			write("Second")
		case <-deadline:
			t.Fatalf("no reload observed")
		}
	}
}

func TestWatchRejectsUnmatchedPatterns(t *testing.T) {
	err := Watch(context.Background(), DefaultCatalog(), []string{filepath.Join(t.TempDir(), "*.yaml")}, nil)
	if err == nil {
		t.Fatalf("expected an error for a pattern matching nothing")
	}
}
