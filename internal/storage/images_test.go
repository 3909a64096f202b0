package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const baseURL = "http://localhost:8000"

func TestImageStore_SaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewImageStore(dir, baseURL)
	if err != nil {
		t.Fatalf("NewImageStore: %v", err)
	}

	url, err := store.Save("leaf.png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(url, baseURL+"/static/images/") {
		t.Fatalf("unexpected url: %q", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Fatalf("extension not kept: %q", url)
	}

	name := strings.TrimPrefix(url, baseURL+"/static/images/")
	path := filepath.Join(dir, "images", name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("stored content mismatch: %q", data)
	}

	if err := store.Remove(url); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("file still present after Remove: %v", err)
	}

	// Removing an already-gone file is not an error.
	if err := store.Remove(url); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
}

func TestImageStore_UniqueNames(t *testing.T) {
	store, err := NewImageStore(t.TempDir(), baseURL)
	if err != nil {
		t.Fatalf("NewImageStore: %v", err)
	}

	first, err := store.Save("leaf.png", []byte("a"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := store.Save("leaf.png", []byte("b"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first == second {
		t.Fatalf("expected unique names for same filename, got %q twice", first)
	}
}

func TestImageStore_RemoveIgnoresForeignURLs(t *testing.T) {
	dir := t.TempDir()
	store, err := NewImageStore(dir, baseURL)
	if err != nil {
		t.Fatalf("NewImageStore: %v", err)
	}

	url, err := store.Save("leaf.png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.Remove("http://elsewhere.example/static/images/x.png"); err != nil {
		t.Fatalf("foreign url: %v", err)
	}
	if err := store.Remove(baseURL + "/static/../secrets"); err != nil {
		t.Fatalf("traversal url: %v", err)
	}

	// The stored file is untouched by either call.
	name := strings.TrimPrefix(url, baseURL+"/static/images/")
	if _, err := os.Stat(filepath.Join(dir, "images", name)); err != nil {
		t.Fatalf("stored file affected: %v", err)
	}
}
