// ABOUTME: Wire schema of a field document and its lenient decoder
// ABOUTME: Missing or mistyped keys default instead of failing the whole listing

package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harper/cropfit/internal/models"
)

// Document keys as stored in every backend.
const (
	KeyName      = "name"
	KeyCenter    = "center"
	KeyPoints    = "points"
	KeyTimestamp = "timestamp"
	KeyFavourite = "favourite"
)

// LatLng is the stored form of a coordinate.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Document mirrors one field document.
type Document struct {
	Name      string   `json:"name"`
	Center    LatLng   `json:"center"`
	Points    []LatLng `json:"points"`
	Timestamp int64    `json:"timestamp"`
	Favourite bool     `json:"favourite"`
}

// NewDocument builds the document written by CreateField.
func NewDocument(name string, center models.Coordinate, boundary []models.Coordinate) Document {
	return Document{
		Name:      name,
		Center:    toLatLng(center),
		Points:    toLatLngs(boundary),
		Timestamp: time.Now().UnixMilli(),
		Favourite: false,
	}
}

// DocumentFromField builds the stored form of an existing record.
func DocumentFromField(f *models.Field) Document {
	return Document{
		Name:      f.Name,
		Center:    toLatLng(f.Center),
		Points:    toLatLngs(f.Boundary),
		Timestamp: f.CreatedAt,
		Favourite: f.IsFavorite,
	}
}

// Encode serializes the document.
func (d Document) Encode() ([]byte, error) {
	if d.Points == nil {
		d.Points = []LatLng{}
	}
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

// Field converts the document into a record with the given id.
func (d Document) Field(id string) *models.Field {
	boundary := make([]models.Coordinate, len(d.Points))
	for i, p := range d.Points {
		boundary[i] = models.NewCoordinate(p.Lat, p.Lng)
	}
	return &models.Field{
		ID:         id,
		Name:       d.Name,
		Center:     models.NewCoordinate(d.Center.Lat, d.Center.Lng),
		Boundary:   boundary,
		CreatedAt:  d.Timestamp,
		IsFavorite: d.Favourite,
	}
}

// DecodeDocument decodes body key by key. Every key that is missing, null or of
// the wrong type takes its default and is reported in defaulted.
func DecodeDocument(id string, body []byte) (field *models.Field, defaulted []string) {
	var doc Document
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return doc.Field(id), []string{KeyName, KeyCenter, KeyPoints, KeyTimestamp, KeyFavourite}
	}

	if !decodeKey(raw, KeyName, &doc.Name) {
		defaulted = append(defaulted, KeyName)
	}

	if v, ok := raw[KeyCenter]; ok && !isNull(v) {
		center, ok := decodeLatLng(v)
		if !ok {
			defaulted = append(defaulted, KeyCenter)
		}
		doc.Center = center
	} else {
		defaulted = append(defaulted, KeyCenter)
	}

	var points []json.RawMessage
	if decodeKey(raw, KeyPoints, &points) {
		doc.Points = make([]LatLng, 0, len(points))
		for _, p := range points {
			ll, _ := decodeLatLng(p)
			doc.Points = append(doc.Points, ll)
		}
	} else {
		defaulted = append(defaulted, KeyPoints)
	}

	var ts json.Number
	if decodeKey(raw, KeyTimestamp, &ts) {
		if n, err := ts.Int64(); err == nil {
			doc.Timestamp = n
		} else if f, err := ts.Float64(); err == nil {
			doc.Timestamp = int64(f)
		} else {
			defaulted = append(defaulted, KeyTimestamp)
		}
	} else {
		defaulted = append(defaulted, KeyTimestamp)
	}

	if !decodeKey(raw, KeyFavourite, &doc.Favourite) {
		defaulted = append(defaulted, KeyFavourite)
	}

	return doc.Field(id), defaulted
}

// DecodeFields decodes a batch of documents, logging defaulted keys.
func DecodeFields(docs map[string][]byte) []*models.Field {
	fields := make([]*models.Field, 0, len(docs))
	for id, body := range docs {
		field, defaulted := DecodeDocument(id, body)
		if len(defaulted) > 0 {
			log.Debug("field document decoded with defaults", "id", id, "keys", defaulted)
		}
		fields = append(fields, field)
	}
	SortFields(fields)
	return fields
}

// SortFields orders fields by creation time, then id.
func SortFields(fields []*models.Field) {
	sort.SliceStable(fields, func(i, j int) bool {
		if fields[i].CreatedAt != fields[j].CreatedAt {
			return fields[i].CreatedAt < fields[j].CreatedAt
		}
		return fields[i].ID < fields[j].ID
	})
}

// PatchFavourite rewrites only the favourite key of a stored document.
func PatchFavourite(body []byte, favourite bool) ([]byte, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	if raw == nil {
		raw = map[string]json.RawMessage{}
	}
	value, err := json.Marshal(favourite)
	if err != nil {
		return nil, err
	}
	raw[KeyFavourite] = value
	return json.Marshal(raw)
}

func decodeKey(raw map[string]json.RawMessage, key string, dst any) bool {
	v, ok := raw[key]
	if !ok || isNull(v) {
		return false
	}
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	return dec.Decode(dst) == nil
}

func decodeLatLng(v json.RawMessage) (LatLng, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(v, &raw); err != nil {
		return LatLng{}, false
	}
	var ll LatLng
	okLat := decodeKey(raw, "lat", &ll.Lat)
	okLng := decodeKey(raw, "lng", &ll.Lng)
	return ll, okLat && okLng
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func toLatLng(c models.Coordinate) LatLng {
	return LatLng{Lat: c.Latitude, Lng: c.Longitude}
}

func toLatLngs(in []models.Coordinate) []LatLng {
	out := make([]LatLng, len(in))
	for i, c := range in {
		out[i] = toLatLng(c)
	}
	return out
}
