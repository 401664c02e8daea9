package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
)

// Defaults for a fresh configuration.
const (
	DefaultScanRoot    = "/Volumes"
	DefaultChannelSize = 10000
	DefaultLogLevel    = "info"
	CatalogFileName    = "findv.sqlite"
)

var (
	DefaultExcludes   = []string{"/Volumes/Macintosh"}
	DefaultExtensions = []string{"mp4", "mp3"}
)

// Config is the on-disk configuration for findv.
type Config struct {
	HostID     string           `toml:"host_id"`
	Hostname   string           `toml:"hostname,omitempty"` // overrides the detected "<host>:<user>"
	BaseDir    string           `toml:"base_dir"`
	LogDir     string           `toml:"log_dir"`
	LogLevel   string           `toml:"log_level"`
	Catalog    CatalogConfig    `toml:"catalog"`
	Scan       ScanConfig       `toml:"scan"`
	Query      QueryConfig      `toml:"query"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Vaults     []VaultConfig    `toml:"vaults"`
	Encryption EncryptionConfig `toml:"encryption"`
}

// CatalogConfig selects where the catalog lives.
// Type is "sqlite" (default) or "memory"; Path is only used for sqlite.
type CatalogConfig struct {
	Type string `toml:"type"`
	Path string `toml:"path,omitempty"`
}

// ScanConfig controls what a scan visits and how it is persisted.
type ScanConfig struct {
	Root        string   `toml:"root"`
	Exclude     []string `toml:"exclude"`
	Ignore      []string `toml:"ignore"`
	Extensions  []string `toml:"extensions"`
	ChannelSize int      `toml:"channel_size"`
	BatchSize   int      `toml:"batch_size"` // 0 or 1 saves one entry per transaction
}

// QueryConfig is the name matching policy used by find.
type QueryConfig struct {
	Match         string `toml:"match"` // "substring" (default) or "glob"
	CaseSensitive bool   `toml:"case_sensitive"`
}

// MetricsConfig enables writing scan metrics in the Prometheus text format.
type MetricsConfig struct {
	Textfile string `toml:"textfile,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used for catalog snapshots.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// VaultConfig represents configuration for a vault backend.
// The Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket   string `toml:"s3_bucket,omitempty"`
	S3Prefix   string `toml:"s3_prefix,omitempty"`
	S3Region   string `toml:"s3_region,omitempty"`
	S3Endpoint string `toml:"s3_endpoint,omitempty"`

	// Static credentials; when empty the default AWS chain is used.
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// Filesystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
}

// NewConfig creates a Config with every default filled in.
func NewConfig(hostID, baseDir string) *Config {
	cfg := &Config{HostID: hostID, BaseDir: baseDir}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields. Paths default to locations under BaseDir.
func (c *Config) ApplyDefaults() {
	if c.LogDir == "" && c.BaseDir != "" {
		c.LogDir = filepath.Join(c.BaseDir, "log")
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Catalog.Type == "" {
		c.Catalog.Type = "sqlite"
	}
	if c.Catalog.Type == "sqlite" && c.Catalog.Path == "" && c.BaseDir != "" {
		c.Catalog.Path = filepath.Join(c.BaseDir, CatalogFileName)
	}
	if c.Scan.Root == "" {
		c.Scan.Root = DefaultScanRoot
	}
	if c.Scan.Exclude == nil {
		c.Scan.Exclude = slices.Clone(DefaultExcludes)
	}
	if len(c.Scan.Extensions) == 0 {
		c.Scan.Extensions = slices.Clone(DefaultExtensions)
	}
	if c.Scan.ChannelSize <= 0 {
		c.Scan.ChannelSize = DefaultChannelSize
	}
	if c.Query.Match == "" {
		c.Query.Match = "substring"
	}
	if c.Encryption.PublicKeyPath == "" && c.BaseDir != "" {
		c.Encryption.PublicKeyPath = filepath.Join(c.BaseDir, "keys", "findv.pub")
	}
	if c.Encryption.PrivateKeyPath == "" && c.BaseDir != "" {
		c.Encryption.PrivateKeyPath = filepath.Join(c.BaseDir, "keys", "findv.key")
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if c.HostID == "" {
		errs = append(errs, errors.New("host_id is required"))
	}
	switch c.Catalog.Type {
	case "sqlite":
		if c.Catalog.Path == "" {
			errs = append(errs, errors.New("catalog.path required for sqlite catalog"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown catalog type: %q", c.Catalog.Type))
	}
	switch c.Query.Match {
	case "substring", "glob":
	default:
		errs = append(errs, fmt.Errorf("unknown query.match: %q", c.Query.Match))
	}
	if c.Scan.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("scan.batch_size must not be negative, got %d", c.Scan.BatchSize))
	}
	return errors.Join(errs...)
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from path and fills in defaults for anything
// the file leaves out.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to path. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}

// LoadOrInit reads the config at path, first writing newCfg() there if the
// file does not exist yet. created reports whether a file was written.
func LoadOrInit(path string, newCfg func() *Config) (cfg *Config, created bool, err error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := Init(path, newCfg()); err != nil {
			return nil, false, err
		}
		created = true
	} else if err != nil {
		return nil, false, fmt.Errorf("checking config file: %w", err)
	}

	cfg, err = ReadFromFile(path)
	if err != nil {
		return nil, created, err
	}
	return cfg, created, nil
}
