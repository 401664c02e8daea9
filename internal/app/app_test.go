package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"findv/internal/catalog"
	"findv/internal/config"
	"findv/internal/database"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.NewConfig("host-1", base)
	cfg.Hostname = "test-host:tester"
	cfg.LogLevel = "error"
	cfg.Encryption.Type = "test"
	cfg.Vaults = []config.VaultConfig{
		{Type: "filesystem", Name: "local", FSVaultRoot: filepath.Join(base, "vault")},
	}
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config, operation string) *App {
	t.Helper()
	a, err := NewApp(cfg, operation)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

// makeVolume builds the tree: a.mp4, .hidden.mp4, sub/, sub/b.txt.
func makeVolume(t *testing.T) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "volume")
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.mp4", ".hidden.mp4", "sub/b.txt"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestApp_ScanFindCount(t *testing.T) {
	cfg := newTestConfig(t)
	a := newTestApp(t, cfg, "Scan")
	root := makeVolume(t)

	res, err := a.Scan(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if res.Persisted != 2 {
		t.Errorf("Persisted = %d, want 2", res.Persisted)
	}

	t.Run("find with path", func(t *testing.T) {
		entries, err := a.Find(catalog.FindOptions{Name: "a", ShowPath: true})
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		var buf bytes.Buffer
		if err := catalog.RenderEntries(&buf, entries, true); err != nil {
			t.Fatalf("RenderEntries() error = %v", err)
		}
		want := "a.mp4:(" + filepath.Join(root, "a.mp4") + ")\n"
		if buf.String() != want {
			t.Errorf("output = %q, want %q", buf.String(), want)
		}
	})

	t.Run("find directories only", func(t *testing.T) {
		entries, err := a.Find(catalog.FindOptions{Name: "sub", DirsOnly: true})
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		if len(entries) != 1 || entries[0].FileName != "sub" || !entries[0].IsDirectory {
			t.Errorf("Find() = %+v, want the sub directory", entries)
		}
	})

	t.Run("entries carry the configured identity", func(t *testing.T) {
		entries, err := a.Find(catalog.FindOptions{Name: "a.mp4"})
		if err != nil {
			t.Fatalf("Find() error = %v", err)
		}
		if len(entries) != 1 || entries[0].Hostname != "test-host:tester" {
			t.Errorf("Find() = %+v, want hostname test-host:tester", entries)
		}
	})

	t.Run("count", func(t *testing.T) {
		report, err := a.Count()
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		want := "file.count: 2, events.count: 2 and in db path: " + cfg.Catalog.Path
		if report.String() != want {
			t.Errorf("Count() = %q, want %q", report.String(), want)
		}
	})
}

func TestApp_ScanUsesIgnoreFile(t *testing.T) {
	cfg := newTestConfig(t)
	a := newTestApp(t, cfg, "Scan")
	root := makeVolume(t)
	if err := os.WriteFile(filepath.Join(root, ".findvignore"), []byte("sub\n"), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := a.Scan(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if res.Persisted != 1 {
		t.Errorf("Persisted = %d, want 1 (sub ignored)", res.Persisted)
	}
}

func TestApp_ScanWritesMetrics(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Metrics.Textfile = filepath.Join(t.TempDir(), "findv.prom")
	a := newTestApp(t, cfg, "Scan")

	if _, err := a.Scan(context.Background(), makeVolume(t), nil); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	data, err := os.ReadFile(cfg.Metrics.Textfile)
	if err != nil {
		t.Fatalf("reading metrics textfile: %v", err)
	}
	for _, want := range []string{"findv_catalog_files 2", "findv_scan_entries_persisted_total 2", "findv_scan_last_run_success 1"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}

func TestApp_ScanMissingRoot(t *testing.T) {
	a := newTestApp(t, newTestConfig(t), "Scan")

	_, err := a.Scan(context.Background(), filepath.Join(t.TempDir(), "gone"), nil)
	if err == nil {
		t.Fatal("Scan() error = nil, want traversal error")
	}
	if !a.op.Failed() {
		t.Error("operation not marked failed")
	}
}

func TestApp_ForgetAndHistory(t *testing.T) {
	a := newTestApp(t, newTestConfig(t), "Forget")
	if _, err := a.Scan(context.Background(), makeVolume(t), nil); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	entries, err := a.Find(catalog.FindOptions{Name: "a.mp4"})
	if err != nil || len(entries) != 1 {
		t.Fatalf("Find() = %v, %v", entries, err)
	}

	forgotten, err := a.Forget(entries[0].ID)
	if err != nil {
		t.Fatalf("Forget() error = %v", err)
	}
	if forgotten == nil || forgotten.ID != entries[0].ID {
		t.Fatalf("Forget() = %+v, want entry %s", forgotten, entries[0].ID)
	}

	events, err := a.History("a.mp4")
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("History() returned %d events, want 2", len(events))
	}
	if events[0].Type != catalog.EventCreate || events[1].Type != catalog.EventDelete {
		t.Errorf("event types = %s, %s; want create, delete", events[0].Type, events[1].Type)
	}
}

func TestApp_BackupRestore(t *testing.T) {
	cfg := newTestConfig(t)
	a := newTestApp(t, cfg, "Backup")
	if _, err := a.Scan(context.Background(), makeVolume(t), nil); err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	version, err := a.Backup()
	if err != nil {
		t.Fatalf("Backup() error = %v", err)
	}
	if version != 2 {
		t.Errorf("Backup() version = %d, want 2", version)
	}

	dest := filepath.Join(t.TempDir(), "restored.sqlite")
	got, err := a.RestoreCatalog(dest, "")
	if err != nil {
		t.Fatalf("RestoreCatalog() error = %v", err)
	}
	if got != dest {
		t.Errorf("RestoreCatalog() path = %q, want %q", got, dest)
	}

	restored, err := database.NewSQLiteDatabase(dest, nil, nil)
	if err != nil {
		t.Fatalf("opening restored catalog: %v", err)
	}
	defer restored.Close()

	n, err := restored.FileCount()
	if err != nil {
		t.Fatalf("FileCount() error = %v", err)
	}
	if n != 2 {
		t.Errorf("restored FileCount() = %d, want 2", n)
	}

	if _, err := a.RestoreCatalog(dest, ""); err == nil {
		t.Error("RestoreCatalog() over an existing file succeeded")
	}
}

func TestApp_BackupWithoutVault(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Vaults = nil
	a := newTestApp(t, cfg, "Backup")

	if _, err := a.Backup(); err == nil {
		t.Fatal("Backup() error = nil, want no vaults configured")
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"missing host id", func(c *config.Config) { c.HostID = "" }},
		{"unknown catalog type", func(c *config.Config) { c.Catalog.Type = "postgres" }},
		{"unknown log level", func(c *config.Config) { c.LogLevel = "loud" }},
		{"unknown encryption", func(c *config.Config) { c.Encryption.Type = "rot13" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig(t)
			tt.mutate(cfg)
			a, err := NewApp(cfg, "Count")
			if err == nil {
				a.Close()
				t.Fatal("NewApp() error = nil")
			}
		})
	}
}
