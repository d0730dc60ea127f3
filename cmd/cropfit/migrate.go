// ABOUTME: Migration command for copying fields between storage backends
// ABOUTME: Copies the current user's documents from the configured backend to another one

package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harper/cropfit/internal/config"
	"github.com/harper/cropfit/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy fields to a different storage backend",
	Long: `Copy all of your fields from the currently configured backend to another one.

Ids, timestamps and favourite marks are kept. Does NOT update the config file;
verify the migration was successful then update config.json or pass --backend.

Examples:
  cropfit migrate --to badger
  cropfit migrate --to sqlite --target-dir ~/cropfit-sqlite
  cropfit migrate --to charm`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

var (
	migrateTo        string
	migrateTargetDir string
)

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "target backend (sqlite, badger or charm)")
	migrateCmd.Flags().StringVar(&migrateTargetDir, "target-dir", "", "target data directory (defaults to the current data directory)")
	_ = migrateCmd.MarkFlagRequired("to")

	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	sourceBackend := cfg.GetBackend()
	targetBackend := migrateTo

	switch targetBackend {
	case config.BackendSQLite, config.BackendBadger, config.BackendCharm:
	default:
		return fmt.Errorf("invalid target backend %q: must be %q, %q or %q",
			targetBackend, config.BackendSQLite, config.BackendBadger, config.BackendCharm)
	}

	target := *cfg
	target.Backend = targetBackend
	if migrateTargetDir != "" {
		target.DataDir = config.ExpandPath(migrateTargetDir)
	}
	if targetBackend == sourceBackend && filepath.Clean(target.GetDataDir()) == filepath.Clean(cfg.GetDataDir()) {
		return fmt.Errorf("target backend %q is the same as the current backend", targetBackend)
	}

	uid, err := currentUser(cmd.Context())
	if err != nil {
		return err
	}

	dst, err := target.OpenStorage()
	if err != nil {
		return fmt.Errorf("open target storage (%s): %w", targetBackend, err)
	}
	defer func() {
		if cerr := dst.Close(); cerr != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: closing target storage: %v\n", cerr)
		}
	}()

	color.Yellow("Migrating fields:")
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Source:  %s (%s)\n", sourceBackend, cfg.GetDataDir())
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Target:  %s (%s)\n\n", targetBackend, target.GetDataDir())

	summary, err := storage.MigrateData(cmd.Context(), repo, dst, uid)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	color.Green("Migration complete!")
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Fields:     %d\n", summary.Fields)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Favourites: %d\n\n", summary.Favourite)
	color.Yellow("Note: config.json was NOT updated. To switch to the new backend, edit:")
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s\n  Set \"backend\": %q\n", config.GetConfigPath(), targetBackend)
	return nil
}
