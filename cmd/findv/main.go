package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"findv/internal/app"
	"findv/internal/catalog"
	"findv/internal/config"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, writing a default one first if none exists.
func loadConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, created, err := config.LoadOrInit(defaults["config_path"], func() *config.Config {
		return config.NewConfig(uuid.New().String(), defaults["base_dir"])
	})
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if created {
		fmt.Fprintf(os.Stderr, "Created default configuration at %s\n", defaults["config_path"])
	}
	return cfg, nil
}

// newApp creates an App for cfg. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Scan", "Find").
func newApp(cfg *config.Config, operation string) (*app.App, error) {
	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

func loadApp(operation string) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newApp(cfg, operation)
}

func readPassphrase(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("passphrase prompt needs a terminal on stdin")
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

var rootCmd = &cobra.Command{
	Use:          "findv",
	Short:        "Index removable volumes and find files on them offline",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		hostID := uuid.New().String()
		cfg := config.NewConfig(hostID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Host ID:  %s\n", hostID)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		fmt.Printf("Catalog:  %s\n", cfg.Catalog.Path)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Host ID:     %s\n", cfg.HostID)
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Catalog:     %s (%s)\n", cfg.Catalog.Path, cfg.Catalog.Type)
		fmt.Printf("Scan Root:   %s\n", cfg.Scan.Root)
		fmt.Printf("Excludes:    %v\n", cfg.Scan.Exclude)
		fmt.Printf("Extensions:  %v\n", cfg.Scan.Extensions)
		fmt.Printf("Match:       %s (case sensitive: %v)\n", cfg.Query.Match, cfg.Query.CaseSensitive)
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:       %s (%s)\n", v.Name, v.Type)
		}
		return nil
	},
}

// scan command
var scanCmd = &cobra.Command{
	Use:   "scan [PATH]",
	Short: "Index a volume (defaults to the configured scan root)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("batch-size") {
			cfg.Scan.BatchSize, _ = cmd.Flags().GetInt("batch-size")
		}

		a, err := newApp(cfg, "Scan")
		if err != nil {
			return err
		}
		defer a.Close()

		root := ""
		if len(args) > 0 {
			root = args[0]
		}

		var progress catalog.ScanObserver
		if term.IsTerminal(int(os.Stderr.Fd())) {
			progress = app.NewProgressReporter(os.Stderr, nil, app.DefaultProgressInterval)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		res, err := a.Scan(ctx, root, progress)
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}

		fmt.Printf("Indexed %s entries from %s in %s\n",
			humanize.Comma(res.Persisted),
			res.Root,
			res.Elapsed.Truncate(time.Millisecond),
		)
		if res.Skipped > 0 {
			fmt.Printf("Skipped %s unreadable path(s)\n", humanize.Comma(res.Skipped))
		}
		return nil
	},
}

// find command
var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Search the catalog by file name",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		showPath, _ := cmd.Flags().GetBool("show-path")
		dirsOnly, _ := cmd.Flags().GetBool("only-show-dir")

		a, err := loadApp("Find")
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.Find(catalog.FindOptions{Name: name, ShowPath: showPath, DirsOnly: dirsOnly})
		if err != nil {
			return err
		}
		return catalog.RenderEntries(os.Stdout, entries, showPath)
	},
}

// count command
var countCmd = &cobra.Command{
	Use:   "count",
	Short: "Show catalog size and location",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp("Count")
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.Count()
		if err != nil {
			return err
		}
		fmt.Println(report)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history NAME",
	Short: "Show create/delete events for a file name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp("History")
		if err != nil {
			return err
		}
		defer a.Close()

		events, err := a.History(args[0])
		if err != nil {
			return err
		}

		if len(events) == 0 {
			fmt.Println("No events recorded.")
			return nil
		}

		for _, ev := range events {
			fmt.Printf("%s  %-6s  %s  %s\n",
				ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
				ev.Type,
				ev.Hostname,
				ev.FullPath,
			)
		}
		return nil
	},
}

// forget command
var forgetCmd = &cobra.Command{
	Use:   "forget ID",
	Short: "Remove an entry from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp("Forget")
		if err != nil {
			return err
		}
		defer a.Close()

		e, err := a.Forget(args[0])
		if err != nil {
			return err
		}
		if e == nil {
			return fmt.Errorf("no entry with id %s", args[0])
		}

		fmt.Printf("Forgot %s\n", e.FullPath)
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage catalog backup encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the key pair used to encrypt catalog backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp("SetupKeys")
		if err != nil {
			return err
		}
		defer a.Close()

		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Repeat passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return errors.New("passphrases do not match")
		}

		if err := a.SetupKeys(pass); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

		public, private := a.KeyPaths()
		fmt.Printf("Public key:  %s\n", public)
		fmt.Printf("Private key: %s (passphrase protected)\n", private)
		return nil
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Upload an encrypted catalog snapshot to the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp("Backup")
		if err != nil {
			return err
		}
		defer a.Close()

		version, err := a.Backup()
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}

		fmt.Printf("Catalog snapshot stored (version %d)\n", version)
		return nil
	},
}

// restore-catalog command
var restoreCatalogCmd = &cobra.Command{
	Use:   "restore-catalog DEST",
	Short: "Download and decrypt the latest catalog snapshot to DEST",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp("RestoreCatalog")
		if err != nil {
			return err
		}
		defer a.Close()

		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}

		dest, err := a.RestoreCatalog(args[0], pass)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		fmt.Printf("Catalog restored to %s\n", dest)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// keys subcommands
	keysCmd.AddCommand(keysInitCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().IntP("batch-size", "b", 0, "Entries per transaction (0 or 1 saves one at a time)")
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().StringP("name", "n", "", "Name substring (or glob) to search for")
	findCmd.Flags().BoolP("show-path", "p", false, "Print the full path of each match")
	findCmd.Flags().BoolP("only-show-dir", "d", false, "Only match directories")
	findCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(forgetCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCatalogCmd)
}
