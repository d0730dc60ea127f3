// ABOUTME: whoami command
// ABOUTME: Shows the resolved user and the active storage configuration

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harper/cropfit/internal/config"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:         "whoami",
	Short:       "Show the signed-in user and storage backend",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipStorage: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "Backend:  %s\n", cfg.GetBackend())
		if cfg.GetBackend() != config.BackendCharm {
			_, _ = fmt.Fprintf(out, "Data dir: %s\n", cfg.GetDataDir())
		}
		_, _ = fmt.Fprintf(out, "Config:   %s\n", config.GetConfigPath())

		uid, err := currentUser(cmd.Context())
		if err != nil {
			color.Yellow("\nUser:     not signed in")
			_, _ = fmt.Fprintln(out, "Set --user, CROPFIT_USER, or run 'cropfit sync link'.")
			return nil
		}
		_, _ = fmt.Fprintf(out, "User:     %s\n", uid)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
