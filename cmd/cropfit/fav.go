// ABOUTME: Field favourite command
// ABOUTME: Marks or unmarks a field as a favourite

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harper/cropfit/internal/flow"
	"github.com/spf13/cobra"
)

var favCmd = &cobra.Command{
	Use:     "fav <id|name>",
	Aliases: []string{"favourite"},
	Short:   "Mark a field as a favourite",
	Long: `Mark a field as a favourite, or unmark it with --off.

Examples:
  cropfit fav 3f2a
  cropfit fav "north paddock" --off`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}

		field, err := resolveField(cmd.Context(), uid, args[0])
		if err != nil {
			return err
		}

		off, _ := cmd.Flags().GetBool("off")
		if err := repo.UpdateFavorite(cmd.Context(), uid, field.ID, !off); err != nil {
			return fmt.Errorf("%s: %w", flow.MsgUpdateFailed, err)
		}

		color.Green("✓ %s", flow.MsgFieldUpdated)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s favourite: %t\n", field.Name, !off)
		return nil
	},
}

func init() {
	favCmd.Flags().Bool("off", false, "remove the favourite mark")

	rootCmd.AddCommand(favCmd)
}
