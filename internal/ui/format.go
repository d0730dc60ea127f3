// ABOUTME: Terminal UI formatting utilities
// ABOUTME: Provides human-readable output for fields and their boundaries

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harper/cropfit/internal/models"
)

// FavouriteMark prefixes favourite fields in listings.
const FavouriteMark = "★"

// FormatCoordinate formats a coordinate as (lat, lng).
func FormatCoordinate(c models.Coordinate) string {
	return fmt.Sprintf("(%.5f, %.5f)", c.Latitude, c.Longitude)
}

// FormatCreated formats a field's creation time relative to now.
// Documents stored without a timestamp show as unknown.
func FormatCreated(f *models.Field) string {
	if f.CreatedAt == 0 {
		return "unknown time"
	}
	return FormatRelativeTime(f.Created())
}

// FormatField formats a field for one line of a listing.
func FormatField(f *models.Field) string {
	if f == nil {
		return color.New(color.Faint).Sprint("(invalid field)")
	}

	mark := " "
	if f.IsFavorite {
		mark = color.YellowString(FavouriteMark)
	}
	name := f.Name
	if name == "" {
		name = "(unnamed)"
	}

	return fmt.Sprintf("%s %s %s - %s (%s)",
		mark,
		color.GreenString(name),
		color.New(color.Faint).Sprint(FormatCoordinate(f.Center)),
		pointCount(len(f.Boundary)),
		color.New(color.Faint).Sprint(FormatCreated(f)))
}

// FormatFieldDetail formats a field with every boundary point.
func FormatFieldDetail(f *models.Field) string {
	if f == nil {
		return color.New(color.Faint).Sprint("(invalid field)")
	}

	var sb strings.Builder
	name := f.Name
	if f.IsFavorite {
		name = FavouriteMark + " " + name
	}
	sb.WriteString(color.GreenString(name) + "\n")
	sb.WriteString(fmt.Sprintf("  ID:      %s\n", f.ID))
	sb.WriteString(fmt.Sprintf("  Center:  %s\n", color.CyanString(FormatCoordinate(f.Center))))
	if f.CreatedAt != 0 {
		sb.WriteString(fmt.Sprintf("  Created: %s (%s)\n",
			f.Created().Format("Jan 2 2006, 3:04 PM"),
			color.New(color.Faint).Sprint(FormatCreated(f))))
	} else {
		sb.WriteString("  Created: unknown\n")
	}
	sb.WriteString(fmt.Sprintf("  Boundary: %s\n", pointCount(len(f.Boundary))))
	for i, p := range f.Boundary {
		sb.WriteString(fmt.Sprintf("    %2d. %s\n", i+1, FormatCoordinate(p)))
	}
	return sb.String()
}

func pointCount(n int) string {
	if n == 1 {
		return "1 point"
	}
	return fmt.Sprintf("%d points", n)
}

// FormatRelativeTime formats a time as relative to now.
func FormatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	// Handle future times (clock skew, bad data)
	if diff < 0 {
		return color.YellowString("in the future")
	}

	if diff < time.Minute {
		return "just now"
	}
	if diff < time.Hour {
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	}
	if diff < 24*time.Hour {
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := int(diff.Hours() / 24)
	if days == 1 {
		return "1 day ago"
	}
	return fmt.Sprintf("%d days ago", days)
}
