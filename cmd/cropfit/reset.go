// ABOUTME: Field reset command
// ABOUTME: Deletes every field of the current user on the configured backend

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all of your fields",
	Long: `Delete every field recorded by the current user. Other users' fields in
the same store are not touched. Take a backup first if you may want them back.

Examples:
  cropfit backup -o fields.yaml && cropfit reset
  cropfit reset --user demo --confirm`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}

		fields, err := repo.ListFields(cmd.Context(), uid)
		if err != nil {
			return fmt.Errorf("failed to list fields: %w", err)
		}
		if len(fields) == 0 {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No fields to delete.")
			return nil
		}

		if ok, _ := cmd.Flags().GetBool("confirm"); !ok {
			prompt := fmt.Sprintf("Delete all %d fields of %s?", len(fields), uid)
			if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), prompt) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
		}

		if err := repo.Reset(cmd.Context(), uid); err != nil {
			return fmt.Errorf("failed to reset: %w", err)
		}
		if err := repo.Sync(); err != nil {
			color.Yellow("⚠ Sync failed: %v", err)
		}

		color.Green("✓ Deleted %d fields", len(fields))
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("confirm", false, "skip confirmation prompt")

	rootCmd.AddCommand(resetCmd)
}
