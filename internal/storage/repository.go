// ABOUTME: Repository interfaces for field boundary storage
// ABOUTME: Every operation is scoped to an explicit user id

package storage

import (
	"context"

	"github.com/harper/cropfit/internal/models"
)

// FieldRepository is the per-user field document store used by the flows.
type FieldRepository interface {
	// CreateField writes a new document and returns the record with the store-assigned id.
	CreateField(ctx context.Context, userID, name string, center models.Coordinate, boundary []models.Coordinate) (*models.Field, error)
	// ListFields decodes every document of the user. Malformed keys fall back to defaults.
	ListFields(ctx context.Context, userID string) ([]*models.Field, error)
	// UpdateFavorite overwrites only the favourite flag of one document.
	UpdateFavorite(ctx context.Context, userID, id string, favorite bool) error
	// DeleteField removes one document.
	DeleteField(ctx context.Context, userID, id string) error
}

// Repository combines field operations with admin and lifecycle management.
type Repository interface {
	FieldRepository
	GetField(ctx context.Context, userID, id string) (*models.Field, error)
	// ImportField writes a record as-is, keeping its id, timestamp and favourite flag.
	ImportField(ctx context.Context, userID string, field *models.Field) error
	// Reset deletes every document of the user.
	Reset(ctx context.Context, userID string) error
	Sync() error
	Close() error
}
