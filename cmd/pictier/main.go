package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"pictier/internal/app"
	"pictier/internal/config"
	"pictier/internal/database/sqlc"
	"pictier/internal/pt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, *app.Paths, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, nil, fmt.Errorf("getting defaults: %w", err)
	}
	cfg, err := config.ReadFromFile(defaults.ConfigPath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults, nil
}

// newApp reads the config and creates a PTApp. The caller must defer closeApp.
// operation identifies the CLI command being run and is journaled with args.
func newApp(cmd *cobra.Command, operation string, args []string) (*app.PTApp, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewPTApp(cmd.Context(), cfg, operation, args)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

func closeApp(a *app.PTApp) {
	if err := a.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}

// readPassphrase prompts on stderr and reads without echo.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

// printBulk reports per-item failures and returns an error if any occurred.
func printBulk(verb string, res *pt.BulkResult) error {
	for _, e := range res.Errors {
		fmt.Fprintf(os.Stderr, "  %s: %v\n", e.ID, e.Err)
	}
	fmt.Printf("%s %d photo(s)", verb, res.Succeeded)
	if res.Failed > 0 {
		fmt.Printf(", %d failed", res.Failed)
	}
	fmt.Println()
	if res.Failed > 0 {
		return fmt.Errorf("%d of %d failed", res.Failed, res.Failed+res.Succeeded)
	}
	return nil
}

func printPhoto(p *sqlc.Photo) {
	state := p.Tier
	if p.DeletedAt.Valid {
		state = "trash"
	}
	fmt.Printf("%s  %-9s  %s  %s\n", p.ID, state, shortHash(p.ContentHash), p.StoragePath)
}

// shortHash abbreviates a digest for listings.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

var rootCmd = &cobra.Command{
	Use:          "pictier",
	Short:        "Tiered photo library",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration and library",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}

		libraryID := uuid.New().String()
		cfg := config.NewConfig(libraryID, defaults.BaseDir)
		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return err
		}
		if err := app.InitLibrary(cfg); err != nil {
			return fmt.Errorf("initializing library: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Printf("Library ID: %s\n", libraryID)
		fmt.Printf("Data Root:  %s\n", cfg.Library.DataRoot)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, defaults, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", defaults.ConfigPath)
		fmt.Printf("Library ID: %s\n", cfg.LibraryID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Data Root:  %s\n", cfg.Library.DataRoot)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Database:   %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:      %s (%s)\n", v.Name, v.Type)
		}
		return nil
	},
}

var configVaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage vault",
}

var configVaultInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Verify the configured vaults are reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if err := app.ValidateVault(cmd.Context(), cfg); err != nil {
			return err
		}
		fmt.Printf("%d vault(s) ready\n", len(cfg.Vaults))
		return nil
	},
}

var configEncryptionCmd = &cobra.Command{
	Use:   "encryption",
	Short: "Manage snapshot encryption",
}

var configEncryptionInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the snapshot encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		pass, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return errors.New("passphrases do not match")
		}

		if err := app.SetupEncryption(cfg, pass); err != nil {
			return err
		}
		fmt.Printf("Public key:  %s\n", cfg.Encryption.PublicKeyPath)
		fmt.Printf("Private key: %s\n", cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the catalog database",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending catalog migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if err := app.InitLibrary(cfg); err != nil {
			return err
		}
		fmt.Println("Catalog is up to date.")
		return nil
	},
}

// ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest PATH",
	Short: "Copy a file or directory into the intake tier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")

		target, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}
		info, err := os.Stat(target)
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "ingest", args)
		if err != nil {
			return err
		}
		defer closeApp(a)

		if !info.IsDir() {
			res, err := a.Ingest(cmd.Context(), target)
			if err != nil {
				return fmt.Errorf("ingesting: %w", err)
			}
			if res.Duplicate {
				fmt.Printf("Duplicate of %s\n", res.Photo.ID)
			} else {
				fmt.Printf("Ingested %s\n", res.Photo.ID)
			}
			return nil
		}

		res, err := a.IngestTree(cmd.Context(), target, recursive)
		if err != nil {
			return fmt.Errorf("ingesting: %w", err)
		}
		for _, e := range res.Errors {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", e.ID, e.Err)
		}
		fmt.Printf("Ingested %d, duplicates %d, ignored %d, failed %d\n",
			res.Ingested, res.Duplicates, res.Ignored, res.Failed)
		if res.Failed > 0 {
			return fmt.Errorf("%d file(s) failed", res.Failed)
		}
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List photos",
	RunE: func(cmd *cobra.Command, args []string) error {
		tier, _ := cmd.Flags().GetString("tier")
		trash, _ := cmd.Flags().GetBool("trash")

		a, err := newApp(cmd, "list", args)
		if err != nil {
			return err
		}
		defer closeApp(a)

		photos, err := a.List(cmd.Context(), pt.ListOptions{Tier: tier, Trash: trash})
		if err != nil {
			return err
		}
		if len(photos) == 0 {
			fmt.Println("No photos.")
			return nil
		}
		for _, p := range photos {
			printPhoto(p)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "show", args)
		if err != nil {
			return err
		}
		defer closeApp(a)

		p, err := a.Show(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:        %s\n", p.ID)
		fmt.Printf("Tier:      %s\n", p.Tier)
		fmt.Printf("Hash:      %s\n", p.ContentHash)
		fmt.Printf("Stored at: %s\n", p.StoragePath)
		fmt.Printf("Original:  %s\n", p.OriginalPath)
		fmt.Printf("Created:   %s\n", p.CreatedAt.Format(time.RFC3339))
		fmt.Printf("Updated:   %s\n", p.UpdatedAt.Format(time.RFC3339))
		if p.DeletedAt.Valid {
			fmt.Printf("Deleted:   %s\n", p.DeletedAt.Time.Format(time.RFC3339))
		}
		return nil
	},
}

var promoteCmd = &cobra.Command{
	Use:   "promote TIER ID...",
	Short: "Move photos to a tier",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "promote", args)
		if err != nil {
			return err
		}
		defer closeApp(a)

		res, err := a.Promote(cmd.Context(), args[0], args[1:])
		if err != nil {
			return err
		}
		return printBulk("Moved to "+args[0]+":", res)
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete ID...",
	Short: "Move photos to the trash",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		permanent, _ := cmd.Flags().GetBool("permanent")

		a, err := newApp(cmd, "delete", args)
		if err != nil {
			return err
		}
		defer closeApp(a)

		res, err := a.Delete(cmd.Context(), args, permanent)
		if err != nil {
			return err
		}
		verb := "Trashed"
		if permanent {
			verb = "Deleted"
		}
		return printBulk(verb, res)
	},
}

var trashCmd = &cobra.Command{
	Use:   "trash",
	Short: "Manage the trash",
}

var trashPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Permanently delete everything in the trash",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "purge", args)
		if err != nil {
			return err
		}
		defer closeApp(a)

		res, err := a.PurgeTrash(cmd.Context())
		if err != nil {
			return err
		}
		return printBulk("Purged", res)
	},
}

var thumbnailCmd = &cobra.Command{
	Use:   "thumbnail ID",
	Short: "Print the path of a photo's thumbnail, rendering it if needed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		size, _ := cmd.Flags().GetInt("size")

		a, err := newApp(cmd, "thumbnail", args)
		if err != nil {
			return err
		}
		defer closeApp(a)

		path, err := a.Thumbnail(cmd.Context(), args[0], size)
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var duplicatesCmd = &cobra.Command{
	Use:   "duplicates",
	Short: "List photos whose files hold identical content",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "duplicates", args)
		if err != nil {
			return err
		}
		defer closeApp(a)

		groups, err := a.Duplicates(cmd.Context())
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			fmt.Println("No duplicates.")
			return nil
		}
		for _, g := range groups {
			fmt.Printf("%s\n", g.Hash)
			for _, p := range g.Photos {
				fmt.Printf("  %s  %s\n", p.ID, p.StoragePath)
			}
		}
		return nil
	},
}

var burstsCmd = &cobra.Command{
	Use:   "bursts",
	Short: "List photos taken in quick succession",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "bursts", args)
		if err != nil {
			return err
		}
		defer closeApp(a)

		groups, err := a.Bursts(cmd.Context())
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			fmt.Println("No bursts.")
			return nil
		}
		for _, g := range groups {
			fmt.Printf("%s  %s .. %s  (%d photos)\n",
				g.Prefix,
				g.Start.Format("2006-01-02 15:04:05"),
				g.End.Format("15:04:05"),
				len(g.Photos),
			)
			for _, p := range g.Photos {
				fmt.Printf("  %s  %s\n", p.ID, p.StoragePath)
			}
		}
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Count photos per tier",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "status", args)
		if err != nil {
			return err
		}
		defer closeApp(a)

		st, err := a.Status(cmd.Context())
		if err != nil {
			return err
		}
		for _, tc := range st.Tiers {
			fmt.Printf("%-10s %d\n", tc.Tier, tc.Count)
		}
		fmt.Printf("%-10s %d\n", "trash", st.Trashed)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd, "history", args)
		if err != nil {
			return err
		}
		defer closeApp(a)

		ops, err := a.GetHistory(limit)
		if err != nil {
			return err
		}
		if len(ops) == 0 {
			fmt.Println("No operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt.Valid {
				d := op.FinishedAt.Time.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-10s  %s  %-8s  %-10s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
				op.Parameters,
			)
		}
		return nil
	},
}

// catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage catalog snapshots",
}

var catalogPullCmd = &cobra.Command{
	Use:   "pull OUT",
	Short: "Download the latest catalog snapshot from the vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}

		version, err := app.PullCatalog(cmd.Context(), cfg, args[0], func() (string, error) {
			return readPassphrase("Passphrase: ")
		})
		if err != nil {
			return err
		}
		fmt.Printf("Catalog snapshot (version %d) written to %s\n", version, args[0])
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configVaultCmd)
	configVaultCmd.AddCommand(configVaultInitCmd)
	configCmd.AddCommand(configEncryptionCmd)
	configEncryptionCmd.AddCommand(configEncryptionInitCmd)

	dbCmd.AddCommand(dbMigrateCmd)
	trashCmd.AddCommand(trashPurgeCmd)
	catalogCmd.AddCommand(catalogPullCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().String("tier", "", "Only list photos in this tier")
	listCmd.Flags().Bool("trash", false, "List trashed photos instead")
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(promoteCmd)
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().Bool("permanent", false, "Remove files instead of trashing them")
	rootCmd.AddCommand(trashCmd)
	rootCmd.AddCommand(thumbnailCmd)
	thumbnailCmd.Flags().Int("size", 0, "Longest thumbnail side in pixels (default from config)")
	rootCmd.AddCommand(duplicatesCmd)
	rootCmd.AddCommand(burstsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
	rootCmd.AddCommand(catalogCmd)
}
