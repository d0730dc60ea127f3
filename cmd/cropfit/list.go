// ABOUTME: Field list command
// ABOUTME: Loads the user's fields through the list flow and prints them oldest first

package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harper/cropfit/internal/fetch"
	"github.com/harper/cropfit/internal/flow"
	"github.com/harper/cropfit/internal/models"
	"github.com/harper/cropfit/internal/task"
	"github.com/harper/cropfit/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all recorded fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}

		result := loadFields(cmd, uid)
		if favOnly, _ := cmd.Flags().GetBool("favourites"); favOnly {
			result = fetch.Map(result, favourites)
		}
		if msg, failed := result.Message(); failed {
			return errors.New(msg)
		}
		fields, _ := result.Value()

		out := cmd.OutOrStdout()
		if len(fields) == 0 {
			_, _ = fmt.Fprintln(out, "No fields recorded yet. Use 'cropfit add' to add one.")
			return nil
		}

		for _, f := range fields {
			_, _ = fmt.Fprintf(out, "%s %s\n", color.New(color.Faint).Sprint(shortID(f.ID)), ui.FormatField(f))
		}
		return nil
	},
}

// loadFields runs one load of the list flow and waits for it.
func loadFields(cmd *cobra.Command, uid string) fetch.Result[[]*models.Field] {
	scope := task.NewScope(cmd.Context(), nil)
	defer scope.Close()

	list := flow.NewList(scope, repo, uid, nil)
	list.Load()
	scope.Wait()

	return list.Result()
}

func favourites(fields []*models.Field) []*models.Field {
	kept := fields[:0:0]
	for _, f := range fields {
		if f.IsFavorite {
			kept = append(kept, f)
		}
	}
	return kept
}

func init() {
	listCmd.Flags().BoolP("favourites", "f", false, "only show favourite fields")

	rootCmd.AddCommand(listCmd)
}
