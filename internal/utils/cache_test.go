package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_FileStamp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "go.mod")
	if err := os.WriteFile(path, []byte("module example.com/a\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cache := NewCache[string, string]()
	if err := cache.Set(path, "example.com/a", path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	value, ok := cache.Get(path, path)
	if !ok || value != "example.com/a" {
		t.Fatalf("expected cached value, got %q (%v)", value, ok)
	}

	// change size and mtime so the stamp no longer matches
	future := time.Now().Add(2 * time.Second)
	if err := os.WriteFile(path, []byte("module example.com/b\n\ngo 1.22\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	if _, ok := cache.Get(path, path); ok {
		t.Error("expected stale entry to be dropped")
	}
	if cache.Size() != 0 {
		t.Errorf("expected empty cache, got %d entries", cache.Size())
	}
}

func TestCache_MissingFile(t *testing.T) {
	cache := NewCache[string, int]()
	missing := filepath.Join(t.TempDir(), "nope")

	if err := cache.Set("k", 1, missing); err == nil {
		t.Error("expected error for missing file")
	}
	if _, ok := cache.Get("k", missing); ok {
		t.Error("expected miss")
	}
}

func TestCache_Clear(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("a"), 0644); err != nil {
		t.Fatal(err)
	}

	cache := NewCache[string, int]()
	_ = cache.Set("a", 1, path)
	_ = cache.Set("b", 2, path)
	if cache.Size() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Size())
	}

	cache.Clear()
	if cache.Size() != 0 {
		t.Errorf("expected empty cache after Clear, got %d", cache.Size())
	}
}
