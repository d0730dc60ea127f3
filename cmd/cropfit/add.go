// ABOUTME: Field add command
// ABOUTME: Captures a boundary from --point flags and saves it as a new field

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harper/cropfit/internal/flow"
	"github.com/harper/cropfit/internal/models"
	"github.com/harper/cropfit/internal/ui"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:     "add <name> --point <lat,lng> --point <lat,lng> --point <lat,lng>",
	Aliases: []string{"a"},
	Short:   "Record a field from its boundary points",
	Long: fmt.Sprintf(`Record a new field. Give the corners of the field in walking order;
at least %d points are required. The center is computed from the points.

Examples:
  cropfit add "north paddock" --point 41.10,-87.20 --point 41.10,-87.18 --point 41.12,-87.18
  cropfit add orchard -p 10,20 -p 10,22 -p 12,22 -p 12,20`, models.MinBoundaryPoints),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetStringArray("point")

		points := make([]models.Coordinate, 0, len(raw))
		for _, p := range raw {
			c, err := ui.ParseCoordinate(p)
			if err != nil {
				return fmt.Errorf("invalid --point: %w", err)
			}
			points = append(points, c)
		}

		uid, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}

		field, err := flow.CreateField(cmd.Context(), repo, uid, args[0], points)
		if err != nil {
			return fmt.Errorf("failed to add field: %w", err)
		}

		color.Green("✓ Added field %s", field.Name)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %s @ %s (%d points)\n",
			color.New(color.Faint).Sprint(shortID(field.ID)),
			ui.FormatCoordinate(field.Center), len(field.Boundary))
		return nil
	},
}

func init() {
	addCmd.Flags().StringArrayP("point", "p", nil, "boundary point as lat,lng (repeat for each corner)")

	rootCmd.AddCommand(addCmd)
}
