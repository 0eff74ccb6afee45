package definitions

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherCloseDuringBurst(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	// Fill the event buffer without draining so the watch loop is parked on a
	// send when Close lands.
	for i := 0; i < 40; i++ {
		name := filepath.Join(dir, fmt.Sprintf("burst_%d.yaml", i))
		if err := os.WriteFile(name, []byte("name: burst"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	time.Sleep(50 * time.Millisecond)

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	// The loop owns the channels; after Close it must wind down and close
	// them rather than racing our (absent) reads.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-w.Events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("watch loop did not shut down after Close")
		}
	}
}

func TestWatcherClassifiesChanges(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	files := map[string]ChangeKind{
		"strafe.yaml": ChangeDefinition,
		"old.yml":     ChangeDefinition,
		"sweep.tengo": ChangeScript,
	}
	for name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("WriteFile %s: %v", name, err)
		}
	}
	// Ignored extension: must never surface.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	seen := make(map[string]ChangeKind)
	deadline := time.After(2 * time.Second)
	for len(seen) < len(files) {
		select {
		case change, ok := <-w.Events:
			if !ok {
				t.Fatalf("watcher closed early, saw %v", seen)
			}
			base := filepath.Base(change.Path)
			want, watched := files[base]
			if !watched {
				t.Fatalf("event for unwatched file %s", base)
			}
			if change.Kind != want {
				t.Fatalf("%s classified as %s, want %s", base, change.Kind, want)
			}
			seen[base] = change.Kind
		case <-deadline:
			t.Fatalf("missing change events, saw %v", seen)
		}
	}
}

func TestClassifyChange(t *testing.T) {
	cases := []struct {
		path    string
		kind    ChangeKind
		watched bool
	}{
		{"definitions/locomotion.yaml", ChangeDefinition, true},
		{"definitions/OLD.YML", ChangeDefinition, true},
		{"definitions/scripts/sweep.tengo", ChangeScript, true},
		{"definitions/notes.txt", 0, false},
		{"definitions/locomotion.yaml.bak", 0, false},
	}
	for _, c := range cases {
		kind, watched := classifyChange(c.path)
		if watched != c.watched || (watched && kind != c.kind) {
			t.Fatalf("classifyChange(%q) = (%v, %v), want (%v, %v)", c.path, kind, watched, c.kind, c.watched)
		}
	}
}
