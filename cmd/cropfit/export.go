// ABOUTME: Export command for GeoJSON and markdown output
// ABOUTME: Writes boundaries as polygons, centers as points, or a markdown table

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harper/cropfit/internal/geojson"
	"github.com/harper/cropfit/internal/storage"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Aliases: []string{"e"},
	Short:   "Export fields as GeoJSON or markdown",
	Long: `Export every field of the current user.

Formats:
  geojson    one Polygon feature per field (default)
  centroids  one Point feature per field at its center
  markdown   a table for notes and reports

Examples:
  cropfit export
  cropfit export --format centroids
  cropfit export --format geojson --output fields.geojson
  cropfit export --format markdown -o fields.md`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		if format != "geojson" && format != "centroids" && format != "markdown" {
			return fmt.Errorf("unsupported format: %s (use 'geojson', 'centroids', or 'markdown')", format)
		}

		uid, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}

		var data []byte
		switch format {
		case "markdown":
			data, err = storage.ExportToMarkdown(cmd.Context(), repo, uid)
			if err != nil {
				return fmt.Errorf("failed to export: %w", err)
			}
		default:
			fields, err := repo.ListFields(cmd.Context(), uid)
			if err != nil {
				return fmt.Errorf("failed to list fields: %w", err)
			}
			fc := geojson.ToPolygonFeatureCollection(fields)
			if format == "centroids" {
				fc = geojson.ToCentroidFeatureCollection(fields)
			}
			data, err = fc.ToJSONIndent()
			if err != nil {
				return fmt.Errorf("failed to encode GeoJSON: %w", err)
			}
			data = append(data, '\n')
		}

		if output == "" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}

		if err := os.WriteFile(output, data, 0644); err != nil { //nolint:gosec // 0644 is intentional for export files
			return fmt.Errorf("failed to write file: %w", err)
		}
		color.Green("Exported to %s", output)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("format", "f", "geojson", "output format: geojson, centroids, or markdown")
	exportCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")

	rootCmd.AddCommand(exportCmd)
}
