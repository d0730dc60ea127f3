// ABOUTME: Field remove command
// ABOUTME: Deletes a field after confirmation

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harper/cropfit/internal/flow"
	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:     "remove <id|name>",
	Aliases: []string{"rm"},
	Short:   "Delete a field",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}

		field, err := resolveField(cmd.Context(), uid, args[0])
		if err != nil {
			return err
		}

		if ok, _ := cmd.Flags().GetBool("confirm"); !ok {
			if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete field '%s'?", field.Name)) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
				return nil
			}
		}

		if err := repo.DeleteField(cmd.Context(), uid, field.ID); err != nil {
			return fmt.Errorf("%s: %w", flow.MsgDeleteFailed, err)
		}

		color.Green("✓ %s: %s", flow.MsgFieldDeleted, field.Name)
		return nil
	},
}

func init() {
	removeCmd.Flags().Bool("confirm", false, "skip confirmation prompt")

	rootCmd.AddCommand(removeCmd)
}
