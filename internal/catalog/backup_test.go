package catalog_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"findv/internal/catalog"
	"findv/internal/config"
	"findv/internal/database"
	"findv/internal/encryption"
	"findv/internal/testutil"
)

func TestService_Backup(t *testing.T) {
	t.Run("uploads an encrypted snapshot versioned by event count", func(t *testing.T) {
		svc, _ := scannedService(t, scenarioTree(), catalog.Options{})
		v := testutil.NewTestVault()
		svc.SetBackupTarget(v, testutil.NewTestEncryptor())

		version, err := svc.Backup()
		if err != nil {
			t.Fatalf("Backup() error = %v", err)
		}
		if version != 2 {
			t.Errorf("Backup() version = %d, want 2", version)
		}

		stored, err := v.SnapshotVersion("host-1")
		if err != nil {
			t.Fatalf("SnapshotVersion() error = %v", err)
		}
		if stored != 2 {
			t.Errorf("vault version = %d, want 2", stored)
		}

		var snap strings.Builder
		if err := v.GetSnapshot("host-1", &snap); err != nil {
			t.Fatalf("GetSnapshot() error = %v", err)
		}
		if !strings.HasPrefix(snap.String(), "FINDVTEST\n") {
			t.Error("snapshot was not passed through the encryptor")
		}
	})

	t.Run("refuses to overwrite a newer snapshot", func(t *testing.T) {
		svc, _ := scannedService(t, scenarioTree(), catalog.Options{})
		v := testutil.NewTestVault()
		if err := v.PutSnapshot("host-1", strings.NewReader("newer"), 5, 10); err != nil {
			t.Fatalf("PutSnapshot() error = %v", err)
		}
		svc.SetBackupTarget(v, testutil.NewTestEncryptor())

		if _, err := svc.Backup(); err == nil {
			t.Fatal("Backup() error = nil, want newer snapshot error")
		}
		if stored, _ := v.SnapshotVersion("host-1"); stored != 10 {
			t.Errorf("vault version = %d, want 10 (unchanged)", stored)
		}
	})

	t.Run("requires a vault", func(t *testing.T) {
		svc, _ := scannedService(t, scenarioTree(), catalog.Options{})
		if _, err := svc.Backup(); err == nil {
			t.Error("Backup() error = nil without a vault")
		}
	})

	t.Run("requires encryption keys", func(t *testing.T) {
		svc, _ := scannedService(t, scenarioTree(), catalog.Options{})
		dir := t.TempDir()
		enc := encryption.NewAgeEncryptor(config.EncryptionConfig{
			PublicKeyPath:  filepath.Join(dir, "findv.pub"),
			PrivateKeyPath: filepath.Join(dir, "findv.key"),
		})
		svc.SetBackupTarget(testutil.NewTestVault(), enc)

		if _, err := svc.Backup(); err == nil || !strings.Contains(err.Error(), "keys init") {
			t.Errorf("Backup() error = %v, want a keys init hint", err)
		}
	})
}

func TestService_RestoreCatalog(t *testing.T) {
	setup := func(t *testing.T) (*catalog.Service, catalog.DecryptionContext) {
		t.Helper()
		svc, _ := scannedService(t, scenarioTree(), catalog.Options{})
		enc := testutil.NewTestEncryptor()
		svc.SetBackupTarget(testutil.NewTestVault(), enc)
		dc, err := enc.Unlock("")
		if err != nil {
			t.Fatalf("Unlock() error = %v", err)
		}
		return svc, dc
	}

	t.Run("restores the latest snapshot", func(t *testing.T) {
		svc, dc := setup(t)
		if _, err := svc.Backup(); err != nil {
			t.Fatalf("Backup() error = %v", err)
		}

		dest := filepath.Join(t.TempDir(), "restore", "findv.sqlite")
		if err := svc.RestoreCatalog(dest, dc); err != nil {
			t.Fatalf("RestoreCatalog() error = %v", err)
		}

		db, err := database.OpenConnection(dest)
		if err != nil {
			t.Fatalf("OpenConnection() error = %v", err)
		}
		restored := database.NewSQLiteDatabaseFromDB(db, nil, nil)
		defer restored.Close()

		if files, events := counts(t, restored); files != 2 || events != 2 {
			t.Errorf("restored counts = %d/%d, want 2/2", files, events)
		}
		entries, err := restored.Query(catalog.Query{Pattern: "a.mp4"})
		if err != nil || len(entries) != 1 || entries[0].FullPath != "/root/a.mp4" {
			t.Errorf("restored Query() = %v, %v", entries, err)
		}

		if _, err := os.Stat(dest + ".partial"); !os.IsNotExist(err) {
			t.Error("partial file left behind")
		}
	})

	t.Run("refuses an existing destination", func(t *testing.T) {
		svc, dc := setup(t)
		if _, err := svc.Backup(); err != nil {
			t.Fatalf("Backup() error = %v", err)
		}

		dest := filepath.Join(t.TempDir(), "findv.sqlite")
		if err := os.WriteFile(dest, []byte("keep me"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := svc.RestoreCatalog(dest, dc); err == nil {
			t.Fatal("RestoreCatalog() error = nil for an existing destination")
		}
		if data, _ := os.ReadFile(dest); string(data) != "keep me" {
			t.Error("existing destination was modified")
		}
	})

	t.Run("no snapshot stored", func(t *testing.T) {
		svc, dc := setup(t)
		dest := filepath.Join(t.TempDir(), "findv.sqlite")

		if err := svc.RestoreCatalog(dest, dc); err == nil {
			t.Fatal("RestoreCatalog() error = nil with an empty vault")
		}
		if _, err := os.Stat(dest); !os.IsNotExist(err) {
			t.Error("destination created without a snapshot")
		}
	})
}
