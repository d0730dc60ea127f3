// ABOUTME: Tests for the field document schema and lenient decoding
// ABOUTME: Verifies per-key defaults, ordering, and favourite patching

package storage

import (
	"encoding/json"
	"testing"

	"github.com/harper/cropfit/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_EncodeKeys(t *testing.T) {
	doc := NewDocument("terrace", models.NewCoordinate(1, 2), triangle)
	body, err := doc.Encode()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(body, &raw))
	for _, key := range []string{KeyName, KeyCenter, KeyPoints, KeyTimestamp, KeyFavourite} {
		assert.Contains(t, raw, key)
	}
	assert.Equal(t, false, raw[KeyFavourite])
	assert.Equal(t, map[string]any{"lat": 1.0, "lng": 2.0}, raw[KeyCenter])
	assert.Len(t, raw[KeyPoints], 3)
}

func TestDocument_EncodeNilPoints(t *testing.T) {
	body, err := Document{Name: "empty"}.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(body), `"points":[]`)
}

func TestDecodeDocument_Complete(t *testing.T) {
	field := &models.Field{
		Name:       "orchard",
		Center:     models.NewCoordinate(1, 1),
		Boundary:   triangle,
		CreatedAt:  1700000000000,
		IsFavorite: true,
	}
	body, err := DocumentFromField(field).Encode()
	require.NoError(t, err)

	got, defaulted := DecodeDocument("id-1", body)
	assert.Empty(t, defaulted)
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, field.Name, got.Name)
	assert.Equal(t, field.Center, got.Center)
	assert.Equal(t, field.Boundary, got.Boundary)
	assert.Equal(t, field.CreatedAt, got.CreatedAt)
	assert.True(t, got.IsFavorite)
}

func TestDecodeDocument_Defaults(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		defaulted []string
		check     func(t *testing.T, f *models.Field)
	}{
		{
			name:      "missing_points",
			body:      `{"name":"a","center":{"lat":1,"lng":2},"timestamp":10,"favourite":false}`,
			defaulted: []string{KeyPoints},
			check: func(t *testing.T, f *models.Field) {
				assert.Empty(t, f.Boundary)
				assert.Equal(t, "a", f.Name)
			},
		},
		{
			name:      "null_name",
			body:      `{"name":null,"center":{"lat":1,"lng":2},"points":[],"timestamp":10,"favourite":false}`,
			defaulted: []string{KeyName},
			check: func(t *testing.T, f *models.Field) {
				assert.Equal(t, "", f.Name)
			},
		},
		{
			name:      "wrong_type_favourite",
			body:      `{"name":"a","center":{"lat":1,"lng":2},"points":[],"timestamp":10,"favourite":"yes"}`,
			defaulted: []string{KeyFavourite},
			check: func(t *testing.T, f *models.Field) {
				assert.False(t, f.IsFavorite)
			},
		},
		{
			name:      "missing_center",
			body:      `{"name":"a","points":[],"timestamp":10,"favourite":true}`,
			defaulted: []string{KeyCenter},
			check: func(t *testing.T, f *models.Field) {
				assert.Equal(t, models.Coordinate{}, f.Center)
				assert.True(t, f.IsFavorite)
			},
		},
		{
			name:      "float_timestamp",
			body:      `{"name":"a","center":{"lat":1,"lng":2},"points":[],"timestamp":1.7e12,"favourite":false}`,
			defaulted: nil,
			check: func(t *testing.T, f *models.Field) {
				assert.Equal(t, int64(1700000000000), f.CreatedAt)
			},
		},
		{
			name:      "string_timestamp",
			body:      `{"name":"a","center":{"lat":1,"lng":2},"points":[],"timestamp":"today","favourite":false}`,
			defaulted: []string{KeyTimestamp},
			check: func(t *testing.T, f *models.Field) {
				assert.Zero(t, f.CreatedAt)
			},
		},
		{
			name:      "malformed_point",
			body:      `{"name":"a","center":{"lat":1,"lng":2},"points":[{"lat":1,"lng":1},"bogus",{"lat":3}],"timestamp":1,"favourite":false}`,
			defaulted: nil,
			check: func(t *testing.T, f *models.Field) {
				require.Len(t, f.Boundary, 3)
				assert.Equal(t, models.NewCoordinate(1, 1), f.Boundary[0])
				assert.Equal(t, models.Coordinate{}, f.Boundary[1])
				assert.Equal(t, models.NewCoordinate(3, 0), f.Boundary[2])
			},
		},
		{
			name:      "not_an_object",
			body:      `[1,2,3]`,
			defaulted: []string{KeyName, KeyCenter, KeyPoints, KeyTimestamp, KeyFavourite},
			check: func(t *testing.T, f *models.Field) {
				assert.Equal(t, "x", f.ID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, defaulted := DecodeDocument("x", []byte(tt.body))
			require.NotNil(t, field)
			assert.Equal(t, tt.defaulted, defaulted)
			tt.check(t, field)
		})
	}
}

func TestSortFields(t *testing.T) {
	fields := []*models.Field{
		{ID: "c", CreatedAt: 2},
		{ID: "b", CreatedAt: 1},
		{ID: "a", CreatedAt: 2},
	}
	SortFields(fields)
	assert.Equal(t, "b", fields[0].ID)
	assert.Equal(t, "a", fields[1].ID)
	assert.Equal(t, "c", fields[2].ID)
}

func TestPatchFavourite(t *testing.T) {
	body := []byte(`{"name":"keep","extra":{"nested":true},"favourite":false}`)

	patched, err := PatchFavourite(body, true)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(patched, &raw))
	assert.Equal(t, true, raw[KeyFavourite])
	assert.Equal(t, "keep", raw[KeyName])
	assert.Equal(t, map[string]any{"nested": true}, raw["extra"])
}

func TestPatchFavourite_InvalidBody(t *testing.T) {
	_, err := PatchFavourite([]byte(`garbage`), true)
	assert.Error(t, err)
}
