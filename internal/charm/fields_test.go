// ABOUTME: Tests for field document CRUD on Charm KV
// ABOUTME: Runs against a local KV database in a temp CHARM_DATA_DIR

package charm

import (
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/charm/kv"
	"github.com/harper/cropfit/internal/models"
	"github.com/harper/cropfit/internal/storage"
)

var triangle = []models.Coordinate{
	models.NewCoordinate(27.7172, 85.3240),
	models.NewCoordinate(27.7180, 85.3251),
	models.NewCoordinate(27.7165, 85.3262),
}

func testClient(t *testing.T, name string) *Client {
	t.Helper()
	t.Setenv("CHARM_DATA_DIR", t.TempDir())

	client, err := NewTestClient(name)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCreateAndListFields(t *testing.T) {
	ctx := context.Background()
	client := testClient(t, "test-fields")

	center, _ := models.Centroid(triangle)
	created, err := client.CreateField(ctx, "farmer", "rice terrace", center, triangle)
	if err != nil {
		t.Fatalf("failed to create field: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a generated id")
	}

	fields, err := client.ListFields(ctx, "farmer")
	if err != nil {
		t.Fatalf("failed to list fields: %v", err)
	}
	if len(fields) != 1 {
		t.Fatalf("expected 1 field, got %d", len(fields))
	}
	if fields[0].ID != created.ID || fields[0].Name != "rice terrace" {
		t.Errorf("unexpected field %+v", fields[0])
	}
	if len(fields[0].Boundary) != 3 {
		t.Errorf("expected 3 boundary points, got %d", len(fields[0].Boundary))
	}
}

func TestListFields_ScopedToUser(t *testing.T) {
	ctx := context.Background()
	client := testClient(t, "test-scope")

	if _, err := client.CreateField(ctx, "farmer", "mine", triangle[0], triangle); err != nil {
		t.Fatalf("create: %v", err)
	}
	// "farmer:x" must not leak into "farmer"'s key range.
	if _, err := client.CreateField(ctx, "farmer:x", "theirs", triangle[0], triangle); err != nil {
		t.Fatalf("create: %v", err)
	}

	fields, err := client.ListFields(ctx, "farmer")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(fields) != 1 || fields[0].Name != "mine" {
		t.Errorf("expected only 'mine', got %+v", fields)
	}
}

func TestListFields_MalformedDocument(t *testing.T) {
	ctx := context.Background()
	client := testClient(t, "test-malformed")

	if _, err := client.CreateField(ctx, "farmer", "good", triangle[0], triangle); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := client.Do(func(k *kv.KV) error {
		return k.Set(fieldKey("farmer", "broken"), []byte(`{"name":"broken","timestamp":1}`))
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	fields, err := client.ListFields(ctx, "farmer")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	if fields[0].ID != "broken" || len(fields[0].Boundary) != 0 {
		t.Errorf("expected broken record with empty boundary first, got %+v", fields[0])
	}
}

func TestUpdateFavorite(t *testing.T) {
	ctx := context.Background()
	client := testClient(t, "test-favourite")

	created, err := client.CreateField(ctx, "farmer", "orchard", triangle[1], triangle)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := client.UpdateFavorite(ctx, "farmer", created.ID, true); err != nil {
		t.Fatalf("update favourite: %v", err)
	}

	got, err := client.GetField(ctx, "farmer", created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsFavorite {
		t.Error("expected favourite to be set")
	}
	if got.Name != created.Name || got.CreatedAt != created.CreatedAt || got.Center != created.Center {
		t.Errorf("favourite update changed other keys: %+v", got)
	}

	if err := client.UpdateFavorite(ctx, "farmer", "missing", true); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteField(t *testing.T) {
	ctx := context.Background()
	client := testClient(t, "test-delete")

	created, err := client.CreateField(ctx, "farmer", "gone", triangle[0], triangle)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := client.DeleteField(ctx, "farmer", created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := client.GetField(ctx, "farmer", created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := client.DeleteField(ctx, "farmer", created.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestReset_OnlyTouchesUser(t *testing.T) {
	ctx := context.Background()
	client := testClient(t, "test-reset")

	for _, user := range []string{"farmer", "neighbour"} {
		if _, err := client.CreateField(ctx, user, "plot", triangle[0], triangle); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := client.Reset(ctx, "farmer"); err != nil {
		t.Fatalf("reset: %v", err)
	}

	mine, _ := client.ListFields(ctx, "farmer")
	theirs, _ := client.ListFields(ctx, "neighbour")
	if len(mine) != 0 {
		t.Errorf("expected no fields after reset, got %d", len(mine))
	}
	if len(theirs) != 1 {
		t.Errorf("expected neighbour's field to survive, got %d", len(theirs))
	}
}

func TestRequiresUser(t *testing.T) {
	ctx := context.Background()
	client := testClient(t, "test-auth")

	if _, err := client.CreateField(ctx, "", "x", triangle[0], triangle); !errors.Is(err, storage.ErrUnauthorized) {
		t.Errorf("CreateField: expected ErrUnauthorized, got %v", err)
	}
	if _, err := client.ListFields(ctx, ""); !errors.Is(err, storage.ErrUnauthorized) {
		t.Errorf("ListFields: expected ErrUnauthorized, got %v", err)
	}
	if err := client.DeleteField(ctx, "", "x"); !errors.Is(err, storage.ErrUnauthorized) {
		t.Errorf("DeleteField: expected ErrUnauthorized, got %v", err)
	}
}
