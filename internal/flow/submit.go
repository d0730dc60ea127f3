// ABOUTME: One-shot capture for non-interactive callers (CLI, HTTP API, MCP)
// ABOUTME: Taps every point, names the field and waits for the submit to finish

package flow

import (
	"context"

	"github.com/harper/cropfit/internal/models"
	"github.com/harper/cropfit/internal/storage"
	"github.com/harper/cropfit/internal/task"
)

// CreateField runs a complete capture and returns the stored field.
// Validation follows the interactive flow: name first, then point count.
func CreateField(ctx context.Context, repo storage.FieldRepository, userID, name string, points []models.Coordinate) (*models.Field, error) {
	scope := task.NewScope(ctx, &task.Inline{})
	defer scope.Close()

	c := NewCapture(scope, repo, userID)
	var created *models.Field
	c.OnCreated(func(f *models.Field) { created = f })

	for _, p := range points {
		if _, err := c.Tap(p); err != nil {
			return nil, err
		}
	}
	c.SetName(name)
	if err := c.Submit(); err != nil {
		return nil, err
	}
	scope.Wait()

	if err := c.Err(); err != nil {
		return nil, err
	}
	if created == nil {
		return nil, ctx.Err()
	}
	return created, nil
}
