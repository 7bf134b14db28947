package scenario

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsDataFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	notes := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notes, []byte("ignored"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	graph := filepath.Join(dir, "level.yaml")
	if err := os.WriteFile(graph, []byte("grid_spacing: 1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	timeout := time.After(5 * time.Second)
	for {
		select {
		case name := <-w.Events:
			if name == notes {
				t.Fatalf("Non-data file should be filtered out")
			}
			if name == graph {
				return
			}
		case err := <-w.Errors:
			t.Fatalf("Watcher error: %v", err)
		case <-timeout:
			t.Fatalf("Timed out waiting for %s", graph)
		}
	}
}

func TestWatcherReportsOnceAfterBurst(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	graph := filepath.Join(dir, "level.yaml")
	final := []byte("grid_spacing: 5\n")
	for i := 1; i <= 5; i++ {
		content := []byte("grid_spacing: " + string(rune('0'+i)) + "\n")
		if err := os.WriteFile(graph, content, 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
		time.Sleep(Debounce / 5)
	}

	select {
	case name := <-w.Events:
		if name != graph {
			t.Fatalf("Expected %s, got %s", graph, name)
		}
		data, err := os.ReadFile(graph)
		if err != nil {
			t.Fatalf("ReadFile failed: %v", err)
		}
		if string(data) != string(final) {
			t.Fatalf("Event fired before the last write, file holds %q", data)
		}
	case err := <-w.Errors:
		t.Fatalf("Watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("Timed out waiting for %s", graph)
	}

	select {
	case name := <-w.Events:
		t.Fatalf("Burst should be reported once, got a second event for %s", name)
	case <-time.After(3 * Debounce):
	}
}

func TestWatcherCloseClosesChannels(t *testing.T) {
	w, err := NewWatcher(t.TempDir())
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Second Close should be a no-op, got %v", err)
	}

	select {
	case _, ok := <-w.Events:
		if ok {
			t.Fatalf("Expected Events to be closed")
		}
	case <-time.After(time.Second):
		t.Fatalf("Events was not closed")
	}
}

func TestIsDataFile(t *testing.T) {
	for path, want := range map[string]bool{
		"level.yaml":  true,
		"level.YML":   true,
		"graph.json":  true,
		"readme.md":   false,
		"noextension": false,
	} {
		if got := IsDataFile(path); got != want {
			t.Fatalf("IsDataFile(%q) = %v, want %v", path, got, want)
		}
	}
}
