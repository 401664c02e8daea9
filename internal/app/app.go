package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"findv/internal/catalog"
	"findv/internal/config"
	"findv/internal/database"
	"findv/internal/encryption"
	"findv/internal/fs"
	"findv/internal/metrics"
	"findv/internal/vault"
)

// App is the application layer between the CLI and catalog.Service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw CLI arguments, and manages the store lifecycle on Close.
type App struct {
	cfg       *config.Config
	store     *database.SQLiteDatabase
	encryptor catalog.Encryptor
	metrics   *metrics.ScanMetrics
	service   *catalog.Service
	logger    *slog.Logger
	op        *Operation
	logFile   *os.File

	// vault is created on first use; S3 resolves credentials when built.
	vault catalog.Vault
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Scan", "Find").
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	op := NewOperation(operation, "", time.Now())
	logger, logFile, err := newLogger(cfg.LogDir, op.ID, level)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	hostname, err := Identity(cfg.Hostname)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("resolving identity: %w", err)
	}

	store, err := database.NewStoreFromConfig(cfg.Catalog, catalog.UUIDGenerator{}, catalog.RealClock{})
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("opening catalog: %w", err)
	}

	if err := store.CheckMigrations(); err != nil {
		store.Close()
		logFile.Close()
		return nil, fmt.Errorf("catalog schema out of date: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		store.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	filter := catalog.NewFilter(cfg.Scan.Exclude, cfg.Scan.Extensions, nil)
	svc := catalog.NewService(store, fs.NewOSWalker(), filter, &slogAdapter{l: logger}, catalog.RealClock{}, catalog.UUIDGenerator{}, catalog.Options{
		DefaultRoot:   cfg.Scan.Root,
		ChannelSize:   cfg.Scan.ChannelSize,
		BatchSize:     cfg.Scan.BatchSize,
		Hostname:      hostname,
		HostID:        cfg.HostID,
		MatchMode:     catalog.MatchMode(cfg.Query.Match),
		CaseSensitive: cfg.Query.CaseSensitive,
	})
	svc.SetIgnoreLoader(fs.IgnoreLoader(cfg.Scan.Ignore))

	logger.Debug("operation started", "operation", operation, "catalog", store.Location(), "hostname", hostname)

	return &App{
		cfg:       cfg,
		store:     store,
		encryptor: enc,
		metrics:   metrics.NewScanMetrics(nil),
		service:   svc,
		logger:    logger,
		op:        op,
		logFile:   logFile,
	}, nil
}

// Scan walks rawPath (or the configured root when empty) into the catalog.
// progress may be nil. When a metrics textfile is configured it is written
// after the scan, whether or not the scan succeeded.
func (a *App) Scan(ctx context.Context, rawPath string, progress catalog.ScanObserver) (*catalog.ScanResult, error) {
	a.op.Parameters = rawPath

	observers := catalog.MultiObserver{a.metrics}
	if progress != nil {
		observers = append(observers, progress)
	}

	res, err := a.service.Scan(ctx, rawPath, observers)
	if merr := a.exportMetrics(); merr != nil {
		a.logger.Warn("metrics export failed", "error", merr)
	}
	return res, a.op.Record(err)
}

func (a *App) exportMetrics() error {
	if a.cfg.Metrics.Textfile == "" {
		return nil
	}
	report, err := a.service.Count()
	if err != nil {
		return err
	}
	a.metrics.RecordCatalog(report)
	return a.metrics.WriteTextfile(a.cfg.Metrics.Textfile)
}

// Find searches the catalog by name.
func (a *App) Find(opts catalog.FindOptions) ([]*catalog.Entry, error) {
	a.op.Parameters = opts.Name
	entries, err := a.service.Find(opts)
	return entries, a.op.Record(err)
}

// Count reports the catalog's row counts and location.
func (a *App) Count() (*catalog.CountReport, error) {
	report, err := a.service.Count()
	return report, a.op.Record(err)
}

// History returns the events recorded for entries named name.
func (a *App) History(name string) ([]*catalog.Event, error) {
	a.op.Parameters = name
	events, err := a.service.History(name)
	return events, a.op.Record(err)
}

// Forget removes the entry with the given ID from the catalog.
func (a *App) Forget(id string) (*catalog.Entry, error) {
	a.op.Parameters = id
	e, err := a.service.Forget(id)
	return e, a.op.Record(err)
}

// SetupKeys generates the encryption key pair protected by passphrase.
func (a *App) SetupKeys(passphrase string) error {
	return a.op.Record(a.encryptor.Setup(passphrase))
}

// KeyPaths returns where the key pair lives for the configured encryptor.
func (a *App) KeyPaths() (public, private string) {
	return a.cfg.Encryption.PublicKeyPath, a.cfg.Encryption.PrivateKeyPath
}

// Backup uploads an encrypted catalog snapshot to the first configured vault.
func (a *App) Backup() (int64, error) {
	if err := a.useVault(); err != nil {
		return 0, a.op.Record(err)
	}
	version, err := a.service.Backup()
	return version, a.op.Record(err)
}

// RestoreCatalog downloads this host's latest snapshot into rawDest.
func (a *App) RestoreCatalog(rawDest string, passphrase string) (string, error) {
	dest, err := filepath.Abs(rawDest)
	if err != nil {
		return "", a.op.Record(fmt.Errorf("resolving path: %w", err))
	}
	a.op.Parameters = dest

	if err := a.useVault(); err != nil {
		return "", a.op.Record(err)
	}
	dc, err := a.encryptor.Unlock(passphrase)
	if err != nil {
		return "", a.op.Record(fmt.Errorf("unlocking private key: %w", err))
	}
	return dest, a.op.Record(a.service.RestoreCatalog(dest, dc))
}

func (a *App) useVault() error {
	if a.vault != nil {
		return nil
	}
	if len(a.cfg.Vaults) == 0 {
		return fmt.Errorf("no vaults configured")
	}
	v, err := vault.NewVaultFromConfig(a.cfg.Vaults[0])
	if err != nil {
		return fmt.Errorf("creating vault: %w", err)
	}
	if err := v.ValidateSetup(); err != nil {
		return fmt.Errorf("vault %q not usable: %w", a.cfg.Vaults[0].Name, err)
	}
	a.vault = v
	a.service.SetBackupTarget(v, a.encryptor)
	return nil
}

// Close logs the operation outcome and releases the store and log file.
func (a *App) Close() error {
	var firstErr error

	a.logger.Debug("operation finished",
		"operation", a.op.Name,
		"parameters", a.op.Parameters,
		"status", a.op.Status,
		"elapsed", time.Since(a.op.StartedAt).Truncate(time.Millisecond),
	)

	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing catalog: %w", err)
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}
