// ABOUTME: Unit tests for terminal UI formatting
// ABOUTME: Tests human-readable output for fields and relative times

package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/harper/cropfit/internal/models"
)

func sampleField() *models.Field {
	return &models.Field{
		ID:   "f1",
		Name: "rice terrace",
		Boundary: []models.Coordinate{
			models.NewCoordinate(27.7172, 85.3240),
			models.NewCoordinate(27.7180, 85.3251),
			models.NewCoordinate(27.7165, 85.3262),
		},
		Center:    models.NewCoordinate(27.71723, 85.32510),
		CreatedAt: time.Now().Add(-2 * time.Hour).UnixMilli(),
	}
}

func TestFormatField(t *testing.T) {
	output := FormatField(sampleField())
	if !strings.Contains(output, "rice terrace") {
		t.Error("expected output to contain name")
	}
	if !strings.Contains(output, "27.71723") {
		t.Error("expected output to contain center latitude")
	}
	if !strings.Contains(output, "3 points") {
		t.Errorf("expected point count, got %q", output)
	}
	if !strings.Contains(output, "2 hours ago") {
		t.Errorf("expected relative time, got %q", output)
	}
	if strings.Contains(output, FavouriteMark) {
		t.Error("non-favourite should not be marked")
	}
}

func TestFormatField_Favourite(t *testing.T) {
	field := sampleField().WithFavorite(true)
	if !strings.Contains(FormatField(field), FavouriteMark) {
		t.Error("expected favourite mark")
	}
}

func TestFormatField_Defaulted(t *testing.T) {
	output := FormatField(&models.Field{ID: "broken"})
	if !strings.Contains(output, "(unnamed)") {
		t.Errorf("expected unnamed placeholder, got %q", output)
	}
	if !strings.Contains(output, "0 points") {
		t.Errorf("expected 0 points, got %q", output)
	}
	if !strings.Contains(output, "unknown time") {
		t.Errorf("expected unknown time, got %q", output)
	}
}

func TestFormatField_Nil(t *testing.T) {
	if !strings.Contains(FormatField(nil), "invalid field") {
		t.Error("expected nil field message")
	}
}

func TestFormatFieldDetail(t *testing.T) {
	output := FormatFieldDetail(sampleField())
	for _, want := range []string{"rice terrace", "ID:      f1", "Boundary: 3 points", " 1. (27.71720, 85.32400)", " 3. (27.71650, 85.32620)"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected detail to contain %q, got:\n%s", want, output)
		}
	}
}

func TestFormatFieldDetail_NoTimestamp(t *testing.T) {
	output := FormatFieldDetail(&models.Field{ID: "x", Boundary: []models.Coordinate{models.NewCoordinate(1, 2)}})
	if !strings.Contains(output, "Created: unknown") {
		t.Errorf("expected unknown creation time, got:\n%s", output)
	}
	if !strings.Contains(output, "1 point\n") {
		t.Errorf("expected singular point count, got:\n%s", output)
	}
}

func TestFormatCoordinate(t *testing.T) {
	got := FormatCoordinate(models.NewCoordinate(-1.5, 2.25))
	if got != "(-1.50000, 2.25000)" {
		t.Errorf("unexpected coordinate format %q", got)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		contains string
	}{
		{"just_now", 30 * time.Second, "just now"},
		{"one_minute", 1 * time.Minute, "1 minute ago"},
		{"five_minutes", 5 * time.Minute, "5 minutes ago"},
		{"one_hour", 1 * time.Hour, "1 hour ago"},
		{"two_hours", 2 * time.Hour, "2 hours ago"},
		{"one_day", 25 * time.Hour, "1 day ago"},
		{"multiple_days", 72 * time.Hour, "3 days ago"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tm := time.Now().Add(-tc.duration)
			result := FormatRelativeTime(tm)
			if !strings.Contains(result, tc.contains) {
				t.Errorf("FormatRelativeTime for %v: expected to contain %q, got %q", tc.duration, tc.contains, result)
			}
		})
	}
}

func TestFormatRelativeTime_FutureTime(t *testing.T) {
	futureTime := time.Now().Add(1 * time.Hour)
	result := FormatRelativeTime(futureTime)
	if !strings.Contains(result, "future") {
		t.Errorf("expected future time message, got %q", result)
	}
}

func TestFormatRelativeTime_EdgeCases(t *testing.T) {
	// Test just under one minute
	tm := time.Now().Add(-59 * time.Second)
	result := FormatRelativeTime(tm)
	if !strings.Contains(result, "just now") {
		t.Errorf("59 seconds ago should be 'just now', got %q", result)
	}

	// Test exactly one minute
	tm = time.Now().Add(-60 * time.Second)
	result = FormatRelativeTime(tm)
	if !strings.Contains(result, "minute") {
		t.Errorf("60 seconds ago should contain 'minute', got %q", result)
	}

	// Test 59 minutes
	tm = time.Now().Add(-59 * time.Minute)
	result = FormatRelativeTime(tm)
	if !strings.Contains(result, "59 minutes") {
		t.Errorf("59 minutes ago should be '59 minutes ago', got %q", result)
	}

	// Test 23 hours
	tm = time.Now().Add(-23 * time.Hour)
	result = FormatRelativeTime(tm)
	if !strings.Contains(result, "23 hours") {
		t.Errorf("23 hours ago should be '23 hours ago', got %q", result)
	}
}
