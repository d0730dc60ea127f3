// ABOUTME: Core data models for fields and their boundary coordinates
// ABOUTME: Provides validation, constructors and whole-record replacement helpers

package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

// MinBoundaryPoints is the smallest boundary that can be persisted as a field.
const MinBoundaryPoints = 3

// MaxNameLength is the longest field name, in characters.
const MaxNameLength = 255

// ErrNoPoints is returned when a calculation needs at least one coordinate.
var ErrNoPoints = errors.New("no points")

// ErrInvalid matches every validation failure via errors.Is.
var ErrInvalid = errors.New("invalid input")

type validationError string

func (e validationError) Error() string { return string(e) }

func (e validationError) Is(target error) bool { return target == ErrInvalid }

func invalidf(format string, args ...any) error {
	return validationError(fmt.Sprintf(format, args...))
}

// ValidateCoordinates checks if latitude and longitude are within valid ranges.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return invalidf("coordinates cannot be NaN")
	}
	if math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return invalidf("coordinates cannot be infinite")
	}
	if lat < -90 || lat > 90 {
		return invalidf("latitude must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return invalidf("longitude must be between -180 and 180")
	}
	return nil
}

// ValidateName checks if a field name is valid (non-blank, within length limits).
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalidf("field name cannot be empty")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return invalidf("field name too long (max %d characters)", MaxNameLength)
	}
	return nil
}

// ValidateBoundary checks that a boundary has enough points to outline a field.
func ValidateBoundary(points []Coordinate) error {
	if len(points) < MinBoundaryPoints {
		return invalidf("a field needs at least %d points, got %d", MinBoundaryPoints, len(points))
	}
	for i, p := range points {
		if err := ValidateCoordinates(p.Latitude, p.Longitude); err != nil {
			return fmt.Errorf("point %d: %w", i+1, err)
		}
	}
	return nil
}

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NewCoordinate builds a coordinate.
func NewCoordinate(lat, lng float64) Coordinate {
	return Coordinate{Latitude: lat, Longitude: lng}
}

// Centroid returns the arithmetic-mean coordinate of points.
func Centroid(points []Coordinate) (Coordinate, error) {
	if len(points) == 0 {
		return Coordinate{}, ErrNoPoints
	}
	var lat, lng float64
	for _, p := range points {
		lat += p.Latitude
		lng += p.Longitude
	}
	n := float64(len(points))
	return Coordinate{Latitude: lat / n, Longitude: lng / n}, nil
}

// Field is a saved farm field: a named boundary with its centroid.
type Field struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Center     Coordinate   `json:"center"`
	Boundary   []Coordinate `json:"boundary"`
	CreatedAt  int64        `json:"created_at"` // epoch milliseconds
	IsFavorite bool         `json:"is_favorite"`
}

// NewField creates an unpersisted field with its centroid computed from boundary.
// The ID stays empty until a store assigns one.
func NewField(name string, boundary []Coordinate) (*Field, error) {
	center, err := Centroid(boundary)
	if err != nil {
		return nil, err
	}
	return &Field{
		Name:      name,
		Center:    center,
		Boundary:  cloneCoordinates(boundary),
		CreatedAt: time.Now().UnixMilli(),
	}, nil
}

// WithFavorite returns a copy of the field with the favorite flag replaced.
func (f *Field) WithFavorite(fav bool) *Field {
	out := *f
	out.Boundary = cloneCoordinates(f.Boundary)
	out.IsFavorite = fav
	return &out
}

// Created returns CreatedAt as a time.Time.
func (f *Field) Created() time.Time {
	return time.UnixMilli(f.CreatedAt)
}

func cloneCoordinates(in []Coordinate) []Coordinate {
	out := make([]Coordinate, len(in))
	copy(out, in)
	return out
}
