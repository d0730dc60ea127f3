// ABOUTME: Parsing of user-entered coordinates
// ABOUTME: Accepts "lat,lng" with optional whitespace, shared by the CLI and TUI

package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/harper/cropfit/internal/models"
)

// ParseCoordinate parses "lat,lng" into a validated coordinate.
func ParseCoordinate(s string) (models.Coordinate, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return models.Coordinate{}, fmt.Errorf("expected lat,lng but got %q", s)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("invalid latitude %q: %w", parts[0], err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.Coordinate{}, fmt.Errorf("invalid longitude %q: %w", parts[1], err)
	}

	if err := models.ValidateCoordinates(lat, lng); err != nil {
		return models.Coordinate{}, err
	}
	return models.NewCoordinate(lat, lng), nil
}
