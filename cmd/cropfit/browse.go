// ABOUTME: Interactive field browser command
// ABOUTME: Runs the bubbletea UI over the list and capture flows

package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/harper/cropfit/internal/tui"
	"github.com/spf13/cobra"
)

var browseCmd = &cobra.Command{
	Use:     "browse",
	Aliases: []string{"ui"},
	Short:   "Browse, favourite, add and delete fields interactively",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}

		model := tui.New(cmd.Context(), repo, uid)
		defer model.Close()

		_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
