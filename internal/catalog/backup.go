package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Backup snapshots the catalog, encrypts it and stores it in the vault.
// The snapshot version is the current event count, which only grows, so a
// vault holding a higher version is never overwritten by an older catalog.
// Returns the version written.
func (s *Service) Backup() (int64, error) {
	if s.vault == nil {
		return 0, fmt.Errorf("no vault configured")
	}
	if s.encryptor == nil || !s.encryptor.IsConfigured() {
		return 0, fmt.Errorf("encryption keys not configured: run `findv keys init`")
	}

	version, err := s.store.EventCount()
	if err != nil {
		return 0, fmt.Errorf("reading catalog version: %w", err)
	}

	remote, err := s.vault.SnapshotVersion(s.opts.HostID)
	if err != nil {
		return 0, fmt.Errorf("reading vault snapshot version: %w", err)
	}
	if remote > version {
		return 0, fmt.Errorf("vault holds a newer catalog snapshot (local=%d, vault=%d)", version, remote)
	}

	tmpDir, err := os.MkdirTemp("", "findv-backup-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	plainPath := filepath.Join(tmpDir, "catalog.db")
	if err := s.store.BackupTo(plainPath); err != nil {
		return 0, fmt.Errorf("snapshotting catalog: %w", err)
	}

	encPath := plainPath + ".age"
	if err := s.encryptFile(plainPath, encPath); err != nil {
		return 0, err
	}

	f, err := os.Open(encPath)
	if err != nil {
		return 0, fmt.Errorf("opening encrypted snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat encrypted snapshot: %w", err)
	}

	if err := s.vault.PutSnapshot(s.opts.HostID, f, info.Size(), version); err != nil {
		return 0, fmt.Errorf("uploading snapshot: %w", err)
	}

	s.logger.Info("catalog backed up", "version", version, "size", info.Size())
	return version, nil
}

func (s *Service) encryptFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("creating encrypted snapshot: %w", err)
	}

	if err := s.encryptor.Encrypt(in, out); err != nil {
		out.Close()
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing encrypted snapshot: %w", err)
	}
	return nil
}

// RestoreCatalog downloads this host's latest snapshot, decrypts it and
// writes it to destPath, which must not exist yet.
func (s *Service) RestoreCatalog(destPath string, dc DecryptionContext) error {
	if s.vault == nil {
		return fmt.Errorf("no vault configured")
	}
	if dc == nil {
		return fmt.Errorf("decryption context required")
	}
	if _, err := os.Stat(destPath); err == nil {
		return fmt.Errorf("destination already exists: %s", destPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking destination: %w", err)
	}

	version, err := s.vault.SnapshotVersion(s.opts.HostID)
	if err != nil {
		return fmt.Errorf("reading vault snapshot version: %w", err)
	}
	if version == 0 {
		return fmt.Errorf("no catalog snapshot stored for host %s", s.opts.HostID)
	}

	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	enc, err := os.CreateTemp(dir, ".findv-restore-*.age")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		enc.Close()
		os.Remove(enc.Name())
	}()

	if err := s.vault.GetSnapshot(s.opts.HostID, enc); err != nil {
		return fmt.Errorf("downloading snapshot: %w", err)
	}
	if _, err := enc.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding snapshot: %w", err)
	}

	tmpPath := destPath + ".partial"
	out, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("creating destination: %w", err)
	}

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if err := dc.Decrypt(enc, out); err != nil {
		out.Close()
		return fmt.Errorf("decrypting snapshot: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing destination: %w", err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("moving restored catalog into place: %w", err)
	}

	success = true
	s.logger.Info("catalog restored", "path", destPath, "version", version)
	return nil
}
