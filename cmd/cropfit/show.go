// ABOUTME: Field show command
// ABOUTME: Prints one field with its center and every boundary point

package main

import (
	"fmt"

	"github.com/harper/cropfit/internal/ui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Show a field and its boundary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}

		field, err := resolveField(cmd.Context(), uid, args[0])
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), ui.FormatFieldDetail(field))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
