package trends

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchLoopDebouncesWrites(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "trends.db")
	if err := os.WriteFile(target, []byte("a"), 0o644); err != nil {
		t.Fatalf("write target: %v", err)
	}

	watcher, err := newWatcher([]string{target})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer watcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan struct{}, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		watchLoop(ctx, watcher, []string{target}, func() { changes <- struct{}{} })
	}()

	if err := os.WriteFile(filepath.Join(dir, "unrelated.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write unrelated: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(target, []byte{byte('b' + i)}, 0o644); err != nil {
			t.Fatalf("write target: %v", err)
		}
	}

	select {
	case <-changes:
	case <-time.After(3 * time.Second):
		t.Fatalf("expected a change notification")
	}
	select {
	case <-changes:
		t.Fatalf("expected writes in one burst to be debounced")
	case <-time.After(2 * watchDebounce):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("watch loop did not stop after cancel")
	}
}
