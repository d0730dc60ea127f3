// ABOUTME: GeoJSON generation utilities
// ABOUTME: Converts field boundaries to Polygon features and centroids to Point features

package geojson

import (
	"encoding/json"
	"time"

	"github.com/harper/cropfit/internal/models"
)

// FeatureCollection represents a GeoJSON FeatureCollection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature represents a GeoJSON Feature.
type Feature struct {
	Type       string                 `json:"type"`
	ID         string                 `json:"id,omitempty"`
	Geometry   *Geometry              `json:"geometry"`
	Properties map[string]interface{} `json:"properties"`
}

// Geometry represents a GeoJSON Geometry.
type Geometry struct {
	Type        string      `json:"type"`
	Coordinates interface{} `json:"coordinates"`
}

// PointCoordinates represents [longitude, latitude] for a Point.
type PointCoordinates [2]float64

const minRingPositions = 4

// RingCoordinates is a closed linear ring: the first position repeats at the end.
type RingCoordinates []PointCoordinates

// PolygonCoordinates is a Polygon's rings; fields only have the outer ring.
type PolygonCoordinates []RingCoordinates

func point(c models.Coordinate) PointCoordinates {
	return PointCoordinates{c.Longitude, c.Latitude}
}

// Ring closes a boundary into a linear ring. A ring needs at least four
// positions once closed, so shorter boundaries (including A,B,A) return nil.
func Ring(boundary []models.Coordinate) RingCoordinates {
	if len(boundary) < models.MinBoundaryPoints {
		return nil
	}
	ring := make(RingCoordinates, 0, len(boundary)+1)
	for _, c := range boundary {
		ring = append(ring, point(c))
	}
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	if len(ring) < minRingPositions {
		return nil
	}
	return ring
}

func properties(f *models.Field) map[string]interface{} {
	return map[string]interface{}{
		"id":          f.ID,
		"name":        f.Name,
		"favourite":   f.IsFavorite,
		"created_at":  f.Created().UTC().Format(time.RFC3339),
		"point_count": len(f.Boundary),
	}
}

// ToPolygonFeatureCollection converts fields to Polygon features.
// Fields whose boundary cannot form a ring get a null geometry.
func ToPolygonFeatureCollection(fields []*models.Field) *FeatureCollection {
	features := make([]Feature, 0, len(fields))

	for _, f := range fields {
		var geom *Geometry
		if ring := Ring(f.Boundary); ring != nil {
			geom = &Geometry{
				Type:        "Polygon",
				Coordinates: PolygonCoordinates{ring},
			}
		}
		features = append(features, Feature{
			Type:       "Feature",
			ID:         f.ID,
			Geometry:   geom,
			Properties: properties(f),
		})
	}

	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

// ToCentroidFeatureCollection converts fields to Point features at their centers.
func ToCentroidFeatureCollection(fields []*models.Field) *FeatureCollection {
	features := make([]Feature, 0, len(fields))

	for _, f := range fields {
		features = append(features, Feature{
			Type: "Feature",
			ID:   f.ID,
			Geometry: &Geometry{
				Type:        "Point",
				Coordinates: point(f.Center),
			},
			Properties: properties(f),
		})
	}

	return &FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}

// ToJSON serializes a FeatureCollection to JSON.
func (fc *FeatureCollection) ToJSON() ([]byte, error) {
	return json.Marshal(fc)
}

// ToJSONIndent serializes a FeatureCollection to indented JSON.
func (fc *FeatureCollection) ToJSONIndent() ([]byte, error) {
	return json.MarshalIndent(fc, "", "  ")
}
