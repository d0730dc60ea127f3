// ABOUTME: Data migration between field storage backends
// ABOUTME: Copies a user's field documents from source to destination repository

package storage

import (
	"context"
	"fmt"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Fields    int
	Favourite int
}

// MigrateData copies all of the user's fields from src to dst, keeping ids,
// timestamps and favourite flags. Existing documents with the same id in dst
// are overwritten.
func MigrateData(ctx context.Context, src, dst Repository, userID string) (*MigrateSummary, error) {
	if err := RequireUser(userID); err != nil {
		return nil, err
	}

	summary := &MigrateSummary{}

	fields, err := src.ListFields(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list source fields: %w", err)
	}

	for _, field := range fields {
		if err := dst.ImportField(ctx, userID, field); err != nil {
			return summary, fmt.Errorf("copy field %q: %w", field.Name, err)
		}
		summary.Fields++
		if field.IsFavorite {
			summary.Favourite++
		}
	}

	if err := dst.Sync(); err != nil {
		return summary, fmt.Errorf("sync destination: %w", err)
	}

	return summary, nil
}
