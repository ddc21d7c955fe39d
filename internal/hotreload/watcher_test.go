package hotreload

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestWatcher_AddRemove(t *testing.T) {
	w, err := NewWatcher(zap.NewNop())
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}
	defer w.Stop()

	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")

	if err := w.Add(a); err != nil {
		t.Fatalf("Add(a) failed: %v", err)
	}
	if err := w.Add(b); err != nil {
		t.Fatalf("Add(b) failed: %v", err)
	}
	if err := w.Add(a); err != nil {
		t.Fatalf("Adding a watched file again should be a no-op, got %v", err)
	}
	if got := len(w.Paths()); got != 2 {
		t.Fatalf("Expected 2 watched paths, got %d", got)
	}
	if w.dirs[dir] != 2 {
		t.Fatalf("Expected directory refcount 2, got %d", w.dirs[dir])
	}

	if err := w.Remove(a); err != nil {
		t.Fatalf("Remove(a) failed: %v", err)
	}
	if err := w.Remove(a); err == nil {
		t.Fatal("Expected error removing an unwatched path")
	}
	if err := w.Remove(b); err != nil {
		t.Fatalf("Remove(b) failed: %v", err)
	}
	if _, ok := w.dirs[dir]; ok {
		t.Fatal("Directory should no longer be watched")
	}
}

func TestWatcher_Events(t *testing.T) {
	w, err := NewWatcher(zap.NewNop())
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}

	dir := t.TempDir()
	file := filepath.Join(dir, "hotels.yaml")
	if err := os.WriteFile(file, []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := w.Add(file); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	w.Start()
	if !w.IsWatching() {
		t.Fatal("Watcher should be watching after Start()")
	}

	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(file, []byte("b"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-w.Events():
		abs, _ := filepath.Abs(file)
		if got, _ := filepath.Abs(ev.Path); got != abs {
			t.Errorf("Expected event for %s, got %s", abs, ev.Path)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for file event")
	}

	w.Stop()
	if w.IsWatching() {
		t.Fatal("Watcher should not be watching after Stop()")
	}
	// Events is closed once stopped
	for range w.Events() {
	}
}
