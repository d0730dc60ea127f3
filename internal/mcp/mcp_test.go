// ABOUTME: Tests for MCP server, tools, and resources
// ABOUTME: Verifies MCP integration with the field repository interface

package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/harper/cropfit/internal/flow"
	"github.com/harper/cropfit/internal/models"
	"github.com/harper/cropfit/internal/storage"
)

const testUser = "farmer-1"

// mockRepo implements storage.FieldRepository for testing.
type mockRepo struct {
	fields map[string]*models.Field
	users  map[string]string
	nextID int

	createErr error
	listErr   error
	updateErr error
	deleteErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		fields: make(map[string]*models.Field),
		users:  make(map[string]string),
	}
}

func (m *mockRepo) CreateField(ctx context.Context, userID, name string, center models.Coordinate, boundary []models.Coordinate) (*models.Field, error) {
	if err := storage.RequireUser(userID); err != nil {
		return nil, err
	}
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.nextID++
	f := &models.Field{
		ID:        "f" + strconv.Itoa(m.nextID),
		Name:      name,
		Center:    center,
		Boundary:  boundary,
		CreatedAt: int64(m.nextID) * 1000,
	}
	m.fields[f.ID] = f
	m.users[f.ID] = userID
	return f, nil
}

func (m *mockRepo) ListFields(ctx context.Context, userID string) ([]*models.Field, error) {
	if err := storage.RequireUser(userID); err != nil {
		return nil, err
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*models.Field
	for id, f := range m.fields {
		if m.users[id] == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

func (m *mockRepo) UpdateFavorite(ctx context.Context, userID, id string, favorite bool) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	f, ok := m.fields[id]
	if !ok || m.users[id] != userID {
		return storage.ErrNotFound
	}
	m.fields[id] = f.WithFavorite(favorite)
	return nil
}

func (m *mockRepo) DeleteField(ctx context.Context, userID, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.fields[id]; !ok || m.users[id] != userID {
		return storage.ErrNotFound
	}
	delete(m.fields, id)
	delete(m.users, id)
	return nil
}

func squarePoints() []PointInput {
	return []PointInput{
		{Lat: 10, Lng: 20},
		{Lat: 10, Lng: 22},
		{Lat: 12, Lng: 22},
		{Lat: 12, Lng: 20},
	}
}

func newTestServer(t *testing.T) (*Server, *mockRepo) {
	t.Helper()
	repo := newMockRepo()
	server, err := NewServer(repo, testUser)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server, repo
}

// Tests

func TestNewServer(t *testing.T) {
	server, _ := newTestServer(t)
	if server.repo == nil {
		t.Error("expected non-nil repo")
	}
	if server.mcp == nil {
		t.Error("expected non-nil mcp server")
	}
	if server.userID != testUser {
		t.Errorf("expected user %q, got %q", testUser, server.userID)
	}
}

func TestNewServer_NilRepo(t *testing.T) {
	_, err := NewServer(nil, testUser)
	if err == nil {
		t.Error("expected error for nil repo")
	}
}

func TestNewServer_NoUser(t *testing.T) {
	_, err := NewServer(newMockRepo(), "")
	if !errors.Is(err, storage.ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestHandleCreateField(t *testing.T) {
	server, repo := newTestServer(t)

	input := CreateFieldInput{Name: "  north paddock ", Points: squarePoints()}
	result, output, err := server.handleCreateField(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("handleCreateField failed: %v", err)
	}
	if result == nil {
		t.Fatal("expected non-nil result")
	}
	if output.Name != "north paddock" {
		t.Errorf("expected trimmed name 'north paddock', got %q", output.Name)
	}
	if output.Center.Lat != 11 || output.Center.Lng != 21 {
		t.Errorf("expected center (11, 21), got (%f, %f)", output.Center.Lat, output.Center.Lng)
	}
	if len(output.Points) != 4 {
		t.Errorf("expected 4 points, got %d", len(output.Points))
	}
	if output.Favourite {
		t.Error("new field should not be a favourite")
	}

	if len(repo.fields) != 1 {
		t.Errorf("expected 1 stored field, got %d", len(repo.fields))
	}
	if repo.users[output.ID] != testUser {
		t.Errorf("field stored for %q, want %q", repo.users[output.ID], testUser)
	}
}

func TestHandleCreateField_TooFewPoints(t *testing.T) {
	server, repo := newTestServer(t)

	input := CreateFieldInput{Name: "strip", Points: squarePoints()[:2]}
	_, _, err := server.handleCreateField(context.Background(), nil, input)
	if !errors.Is(err, flow.ErrTooFewPoints) {
		t.Errorf("expected ErrTooFewPoints, got %v", err)
	}
	if len(repo.fields) != 0 {
		t.Error("no field should be stored")
	}
}

func TestHandleCreateField_BlankName(t *testing.T) {
	server, _ := newTestServer(t)

	input := CreateFieldInput{Name: "   ", Points: squarePoints()}
	_, _, err := server.handleCreateField(context.Background(), nil, input)
	if !errors.Is(err, flow.ErrBlankName) {
		t.Errorf("expected ErrBlankName, got %v", err)
	}
}

func TestHandleCreateField_InvalidPoint(t *testing.T) {
	server, repo := newTestServer(t)

	points := squarePoints()
	points[1].Lat = 91
	_, _, err := server.handleCreateField(context.Background(), nil, CreateFieldInput{Name: "bad", Points: points})
	if err == nil {
		t.Error("expected error for out-of-range latitude")
	}
	if len(repo.fields) != 0 {
		t.Error("no field should be stored")
	}
}

func TestHandleCreateField_StoreError(t *testing.T) {
	server, repo := newTestServer(t)
	repo.createErr = errors.New("disk full")

	_, _, err := server.handleCreateField(context.Background(), nil, CreateFieldInput{Name: "x", Points: squarePoints()})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestHandleListFields(t *testing.T) {
	server, repo := newTestServer(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		if _, _, err := server.handleCreateField(ctx, nil, CreateFieldInput{Name: name, Points: squarePoints()}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	_, _ = repo.CreateField(ctx, "someone-else", "theirs", models.Coordinate{}, nil)

	_, output, err := server.handleListFields(ctx, nil, ListFieldsInput{})
	if err != nil {
		t.Fatalf("handleListFields failed: %v", err)
	}
	if output.Count != 3 {
		t.Fatalf("expected 3 fields, got %d", output.Count)
	}
	if output.Fields[0].Name != "a" || output.Fields[2].Name != "c" {
		t.Errorf("expected oldest first, got %q..%q", output.Fields[0].Name, output.Fields[2].Name)
	}
	if !output.Fields[0].CreatedAt.Equal(time.UnixMilli(1000)) {
		t.Errorf("unexpected created_at %v", output.Fields[0].CreatedAt)
	}
}

func TestHandleListFields_Empty(t *testing.T) {
	server, _ := newTestServer(t)

	result, output, err := server.handleListFields(context.Background(), nil, ListFieldsInput{})
	if err != nil {
		t.Fatalf("handleListFields failed: %v", err)
	}
	if output.Count != 0 || output.Fields == nil {
		t.Errorf("expected empty non-nil list, got %+v", output)
	}
	if result == nil {
		t.Fatal("expected non-nil result")
	}
}

func TestHandleListFields_FavouritesOnly(t *testing.T) {
	server, _ := newTestServer(t)
	ctx := context.Background()

	_, first, _ := server.handleCreateField(ctx, nil, CreateFieldInput{Name: "a", Points: squarePoints()})
	_, _, _ = server.handleCreateField(ctx, nil, CreateFieldInput{Name: "b", Points: squarePoints()})
	if _, _, err := server.handleSetFavourite(ctx, nil, SetFavouriteInput{ID: first.ID, Favourite: true}); err != nil {
		t.Fatalf("handleSetFavourite failed: %v", err)
	}

	_, output, err := server.handleListFields(ctx, nil, ListFieldsInput{FavouritesOnly: true})
	if err != nil {
		t.Fatalf("handleListFields failed: %v", err)
	}
	if output.Count != 1 || output.Fields[0].ID != first.ID {
		t.Errorf("expected only %s, got %+v", first.ID, output.Fields)
	}
}

func TestHandleListFields_Error(t *testing.T) {
	server, repo := newTestServer(t)
	repo.listErr = errors.New("boom")

	_, _, err := server.handleListFields(context.Background(), nil, ListFieldsInput{})
	if err == nil {
		t.Error("expected error")
	}
}

func TestHandleSetFavourite(t *testing.T) {
	server, repo := newTestServer(t)
	ctx := context.Background()

	_, created, _ := server.handleCreateField(ctx, nil, CreateFieldInput{Name: "a", Points: squarePoints()})

	_, output, err := server.handleSetFavourite(ctx, nil, SetFavouriteInput{ID: created.ID, Favourite: true})
	if err != nil {
		t.Fatalf("handleSetFavourite failed: %v", err)
	}
	if output.Message != flow.MsgFieldUpdated {
		t.Errorf("unexpected message %q", output.Message)
	}
	if !repo.fields[created.ID].IsFavorite {
		t.Error("expected field to be a favourite")
	}
}

func TestHandleSetFavourite_NotFound(t *testing.T) {
	server, _ := newTestServer(t)

	_, _, err := server.handleSetFavourite(context.Background(), nil, SetFavouriteInput{ID: "missing", Favourite: true})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestHandleSetFavourite_MissingID(t *testing.T) {
	server, _ := newTestServer(t)

	_, _, err := server.handleSetFavourite(context.Background(), nil, SetFavouriteInput{})
	if err == nil {
		t.Error("expected error for missing id")
	}
}

func TestHandleDeleteField(t *testing.T) {
	server, repo := newTestServer(t)
	ctx := context.Background()

	_, created, _ := server.handleCreateField(ctx, nil, CreateFieldInput{Name: "a", Points: squarePoints()})

	_, output, err := server.handleDeleteField(ctx, nil, DeleteFieldInput{ID: created.ID})
	if err != nil {
		t.Fatalf("handleDeleteField failed: %v", err)
	}
	if output.Message != flow.MsgFieldDeleted {
		t.Errorf("unexpected message %q", output.Message)
	}
	if len(repo.fields) != 0 {
		t.Error("expected field to be deleted")
	}
}

func TestHandleDeleteField_Errors(t *testing.T) {
	server, repo := newTestServer(t)
	ctx := context.Background()

	if _, _, err := server.handleDeleteField(ctx, nil, DeleteFieldInput{}); err == nil {
		t.Error("expected error for missing id")
	}
	if _, _, err := server.handleDeleteField(ctx, nil, DeleteFieldInput{ID: "missing"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	repo.deleteErr = errors.New("locked")
	if _, _, err := server.handleDeleteField(ctx, nil, DeleteFieldInput{ID: "any"}); err == nil {
		t.Error("expected store error")
	}
}

func TestHandleFieldsResource(t *testing.T) {
	server, _ := newTestServer(t)
	ctx := context.Background()

	_, _, _ = server.handleCreateField(ctx, nil, CreateFieldInput{Name: "orchard", Points: squarePoints()})

	result, err := server.handleFieldsResource(ctx, nil)
	if err != nil {
		t.Fatalf("handleFieldsResource failed: %v", err)
	}
	if len(result.Contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(result.Contents))
	}
	content := result.Contents[0]
	if content.URI != FieldsResourceURI {
		t.Errorf("unexpected URI %q", content.URI)
	}
	if content.MIMEType != "application/json" {
		t.Errorf("unexpected MIME type %q", content.MIMEType)
	}

	var decoded ListFieldsOutput
	if err := json.Unmarshal([]byte(content.Text), &decoded); err != nil {
		t.Fatalf("resource is not valid JSON: %v", err)
	}
	if decoded.Count != 1 || decoded.Fields[0].Name != "orchard" {
		t.Errorf("unexpected resource body: %+v", decoded)
	}
}

func TestHandleFieldsResource_Error(t *testing.T) {
	server, repo := newTestServer(t)
	repo.listErr = errors.New("offline")

	if _, err := server.handleFieldsResource(context.Background(), nil); err == nil {
		t.Error("expected error")
	}
}
