package database

import (
	"path/filepath"
	"testing"

	"findv/internal/config"
)

func TestNewStoreFromConfig(t *testing.T) {
	t.Run("memory catalog", func(t *testing.T) {
		got, err := NewStoreFromConfig(config.CatalogConfig{Type: "memory"}, nil, nil)
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		defer got.Close()

		if got.Location() != MemoryPath {
			t.Errorf("Location() = %q, want %q", got.Location(), MemoryPath)
		}
	})

	t.Run("sqlite catalog creates parent directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "findv.sqlite")
		got, err := NewStoreFromConfig(config.CatalogConfig{Type: "sqlite", Path: path}, nil, nil)
		if err != nil {
			t.Fatalf("NewStoreFromConfig() error = %v", err)
		}
		defer got.Close()

		if got.Location() != path {
			t.Errorf("Location() = %q, want %q", got.Location(), path)
		}
		if err := got.CheckMigrations(); err != nil {
			t.Errorf("CheckMigrations() error = %v", err)
		}
	})

	t.Run("sqlite catalog without path", func(t *testing.T) {
		got, err := NewStoreFromConfig(config.CatalogConfig{Type: "sqlite"}, nil, nil)
		if err == nil {
			got.Close()
			t.Fatal("NewStoreFromConfig() expected error for missing path, got nil")
		}
	})

	t.Run("unknown catalog type", func(t *testing.T) {
		got, err := NewStoreFromConfig(config.CatalogConfig{Type: "unknown"}, nil, nil)
		if err == nil {
			got.Close()
			t.Fatal("NewStoreFromConfig() expected error for unknown type, got nil")
		}
	})
}
