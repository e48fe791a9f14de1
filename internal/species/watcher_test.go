package species

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pattarin/treebank/internal/storage"
)

func TestWatchReloadsOnExternalEdit(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	kb := New(store, kbFile)
	if err := kb.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan struct{}, 4)
	go func() {
		_ = Watch(ctx, kb, dir, logger, func() {
			select {
			case reloaded <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)

	// Simulate a hand edit of the species file.
	edited := `{"Frangipani": {"name": "Frangipani", "scientific_name": "Plumeria", "carbon_factor": 8, "value_multiplier": 0.5, "is_native": false}}`
	if err := os.WriteFile(filepath.Join(dir, kbFile), []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not reload after external edit")
	}

	if _, ok := kb.Get("Frangipani"); !ok {
		t.Error("edited record not visible after reload")
	}
	// Built-in defaults are still merged underneath.
	if _, ok := kb.Get("Mango"); !ok {
		t.Error("built-in defaults lost after reload")
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	store, _ := storage.NewFS(dir)
	kb := New(store, kbFile)
	_ = kb.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, kb, dir, logger, nil)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}
