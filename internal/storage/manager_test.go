// manager_test.go - Tests for storage layer
package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func createTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestNewLocalStore(t *testing.T) {
	t.Run("creates storage directory", func(t *testing.T) {
		dataDir := filepath.Join(t.TempDir(), "scenes")

		if _, err := NewLocalStore(dataDir); err != nil {
			t.Fatalf("Failed to create store: %v", err)
		}

		if _, err := os.Stat(dataDir); os.IsNotExist(err) {
			t.Error("Expected storage directory to be created")
		}
	})
}

func TestLocalStore_Save(t *testing.T) {
	t.Run("saves file from reader", func(t *testing.T) {
		store := createTestStore(t)
		content := `{"version":"1.0"}`

		info, err := store.Save("scene.json", strings.NewReader(content))
		if err != nil {
			t.Fatalf("Failed to save file: %v", err)
		}

		if info.ID == "" {
			t.Error("Expected ID to be set")
		}
		if info.Name != "scene.json" {
			t.Errorf("Expected name 'scene.json', got %v", info.Name)
		}
		if info.Size != int64(len(content)) {
			t.Errorf("Expected size %d, got %d", len(content), info.Size)
		}
		if info.Status != StatusUploaded {
			t.Errorf("Expected status %q, got %q", StatusUploaded, info.Status)
		}

		path, err := store.GetFilePath(info.ID)
		if err != nil {
			t.Fatalf("Failed to get path: %v", err)
		}
		data, _ := os.ReadFile(path)
		if string(data) != content {
			t.Errorf("Expected stored content %q, got %q", content, data)
		}
	})

	t.Run("saves export bytes with format", func(t *testing.T) {
		store := createTestStore(t)

		info, err := store.SaveBytes("scene.csv", StatusExported, "csv", []byte("type,id\n"))
		if err != nil {
			t.Fatalf("Failed to save bytes: %v", err)
		}
		if info.Status != StatusExported || info.Format != "csv" {
			t.Errorf("Unexpected metadata: %+v", info)
		}
	})
}

func TestLocalStore_GetAndOpen(t *testing.T) {
	store := createTestStore(t)
	info, _ := store.Save("a.yaml", strings.NewReader("version: \"1.0\"\n"))

	got, err := store.Get(info.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	got.Name = "mutated"
	again, _ := store.Get(info.ID)
	if again.Name != "a.yaml" {
		t.Error("Expected Get to return a copy")
	}

	rc, opened, err := store.Open(info.ID)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "version: \"1.0\"\n" || opened.ID != info.ID {
		t.Errorf("Unexpected open result: %q %+v", data, opened)
	}

	if _, err := store.Get("missing"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
	if _, _, err := store.Open("missing"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
}

func TestLocalStore_List(t *testing.T) {
	store := createTestStore(t)
	first, _ := store.Save("first.json", strings.NewReader("{}"))
	time.Sleep(2 * time.Millisecond)
	second, _ := store.Save("second.json", strings.NewReader("{}"))

	list, err := store.List(10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Expected 2 files, got %d", len(list))
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Error("Expected most recent file first")
	}

	limited, _ := store.List(1)
	if len(limited) != 1 {
		t.Errorf("Expected limit to apply, got %d", len(limited))
	}

	all, _ := store.List(0)
	if len(all) != 2 {
		t.Errorf("Expected non-positive limit to return all, got %d", len(all))
	}
}

func TestLocalStore_DeleteAndRename(t *testing.T) {
	store := createTestStore(t)
	info, _ := store.Save("old.json", strings.NewReader("{}"))

	renamed, err := store.Rename(info.ID, "new.json")
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if renamed.Name != "new.json" {
		t.Errorf("Expected new name, got %s", renamed.Name)
	}

	path, _ := store.GetFilePath(info.ID)
	if err := store.Delete(info.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Expected file to be removed from disk")
	}
	if err := store.Delete(info.ID); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
	if _, err := store.Rename(info.ID, "x"); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Expected ErrFileNotFound, got %v", err)
	}
}
