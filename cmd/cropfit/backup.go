// ABOUTME: Backup and restore commands for YAML snapshots
// ABOUTME: Creates portable backup files and restores them into any backend

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harper/cropfit/internal/storage"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create a YAML backup of all fields",
	Long: `Create a YAML backup file containing all of your fields.

The backup keeps ids, timestamps and favourite marks, so it can be used to:
- Move fields between machines or backends
- Restore after data loss

Examples:
  cropfit backup --output fields.yaml
  cropfit backup -o ~/backups/cropfit-$(date +%Y%m%d).yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		uid, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}

		backup, err := storage.NewBackup(cmd.Context(), repo, uid)
		if err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
		data, err := backup.Encode()
		if err != nil {
			return fmt.Errorf("failed to encode backup: %w", err)
		}

		if output == "" {
			output = fmt.Sprintf("cropfit-%s.yaml", time.Now().Format("20060102-150405"))
		}

		if err := os.WriteFile(output, data, 0644); err != nil { //nolint:gosec // 0644 is intentional for backup files
			return fmt.Errorf("failed to write backup: %w", err)
		}

		color.Green("Backup created: %s", output)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %d fields\n", len(backup.Fields))
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:     "restore <file>",
	Aliases: []string{"import"},
	Short:   "Restore fields from a YAML backup",
	Long: `Restore fields from a backup created with 'cropfit backup'.

Fields keep their ids; a field that already exists is overwritten.
Other fields are left alone, unless --replace deletes all of your
fields before the backup is written.

Examples:
  cropfit restore fields.yaml
  cropfit restore ~/backups/cropfit-20250101.yaml --confirm
  cropfit restore fields.yaml --replace`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename) //nolint:gosec // user-chosen backup file
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		backup, err := storage.ParseBackup(data)
		if err != nil {
			return fmt.Errorf("failed to restore: %w", err)
		}

		uid, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}

		replace, _ := cmd.Flags().GetBool("replace")
		if ok, _ := cmd.Flags().GetBool("confirm"); !ok {
			prompt := fmt.Sprintf("Restore %d fields from '%s'?", len(backup.Fields), filename)
			if replace {
				prompt = fmt.Sprintf("Delete all of your fields and restore %d from '%s'?", len(backup.Fields), filename)
			}
			if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), prompt) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Canceled.")
				return nil
			}
		}

		if replace {
			if err := repo.Reset(cmd.Context(), uid); err != nil {
				return fmt.Errorf("failed to clear fields: %w", err)
			}
		}

		n, err := backup.Restore(cmd.Context(), repo, uid)
		if err != nil {
			return fmt.Errorf("failed to restore: %w", err)
		}
		if err := repo.Sync(); err != nil {
			color.Yellow("⚠ Sync failed: %v", err)
		}

		color.Green("Restore complete")
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %d fields restored\n", n)
		return nil
	},
}

func init() {
	backupCmd.Flags().StringP("output", "o", "", "output file (default: cropfit-YYYYMMDD-HHMMSS.yaml)")
	restoreCmd.Flags().Bool("confirm", false, "skip confirmation prompt")
	restoreCmd.Flags().Bool("replace", false, "delete your existing fields before restoring")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}
