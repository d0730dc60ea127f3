// ABOUTME: MCP tool definitions and handlers
// ABOUTME: Create, list, favourite and delete fields for AI agents

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harper/cropfit/internal/flow"
	"github.com/harper/cropfit/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	s.registerCreateFieldTool()
	s.registerListFieldsTool()
	s.registerSetFavouriteTool()
	s.registerDeleteFieldTool()
}

// PointInput is one boundary point.
type PointInput struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CreateFieldInput defines input for create_field tool.
type CreateFieldInput struct {
	Name   string       `json:"name"`
	Points []PointInput `json:"points"`
}

// PointOutput is a coordinate in tool output.
type PointOutput struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// FieldOutput defines output for field tools.
type FieldOutput struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Center    PointOutput   `json:"center"`
	Points    []PointOutput `json:"points"`
	CreatedAt time.Time     `json:"created_at"`
	Favourite bool          `json:"favourite"`
}

func toFieldOutput(f *models.Field) FieldOutput {
	out := FieldOutput{
		ID:        f.ID,
		Name:      f.Name,
		Center:    PointOutput{Lat: f.Center.Latitude, Lng: f.Center.Longitude},
		Points:    make([]PointOutput, len(f.Boundary)),
		CreatedAt: f.Created().UTC(),
		Favourite: f.IsFavorite,
	}
	for i, p := range f.Boundary {
		out.Points[i] = PointOutput{Lat: p.Latitude, Lng: p.Longitude}
	}
	return out
}

func textResult(v interface{}) *mcp.CallToolResult {
	jsonBytes, _ := json.MarshalIndent(v, "", "  ") //nolint:errchkjson // output is always serializable
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(jsonBytes)}},
	}
}

var pointSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"lat": map[string]interface{}{"type": "number", "description": "Latitude (-90 to 90)"},
		"lng": map[string]interface{}{"type": "number", "description": "Longitude (-180 to 180)"},
	},
	"required": []string{"lat", "lng"},
}

func (s *Server) registerCreateFieldTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "create_field",
		Description: "Record a new field from its boundary. Points are the corners of the field in walking order; at least 3 are required.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the field (e.g., 'north paddock')",
				},
				"points": map[string]interface{}{
					"type":        "array",
					"description": "Boundary points, at least 3",
					"items":       pointSchema,
				},
			},
			"required": []string{"name", "points"},
		},
	}, s.handleCreateField)
}

func (s *Server) handleCreateField(ctx context.Context, req *mcp.CallToolRequest, input CreateFieldInput) (*mcp.CallToolResult, FieldOutput, error) {
	points := make([]models.Coordinate, len(input.Points))
	for i, p := range input.Points {
		points[i] = models.NewCoordinate(p.Lat, p.Lng)
	}

	field, err := flow.CreateField(ctx, s.repo, s.userID, input.Name, points)
	if err != nil {
		return nil, FieldOutput{}, fmt.Errorf("failed to create field: %w", err)
	}

	output := toFieldOutput(field)
	return textResult(output), output, nil
}

// ListFieldsInput defines input for list_fields tool.
type ListFieldsInput struct {
	FavouritesOnly bool `json:"favourites_only,omitempty"`
}

// ListFieldsOutput defines output for list_fields tool.
type ListFieldsOutput struct {
	Fields []FieldOutput `json:"fields"`
	Count  int           `json:"count"`
}

func toListOutput(fields []*models.Field) ListFieldsOutput {
	out := ListFieldsOutput{Fields: make([]FieldOutput, 0, len(fields))}
	for _, f := range fields {
		out.Fields = append(out.Fields, toFieldOutput(f))
	}
	out.Count = len(out.Fields)
	return out
}

func (s *Server) registerListFieldsTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_fields",
		Description: "List all recorded fields, oldest first.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"favourites_only": map[string]interface{}{
					"type":        "boolean",
					"description": "Only return favourite fields",
				},
			},
		},
	}, s.handleListFields)
}

func (s *Server) handleListFields(ctx context.Context, req *mcp.CallToolRequest, input ListFieldsInput) (*mcp.CallToolResult, ListFieldsOutput, error) {
	fields, err := s.repo.ListFields(ctx, s.userID)
	if err != nil {
		return nil, ListFieldsOutput{}, fmt.Errorf("failed to list fields: %w", err)
	}

	if input.FavouritesOnly {
		kept := fields[:0:0]
		for _, f := range fields {
			if f.IsFavorite {
				kept = append(kept, f)
			}
		}
		fields = kept
	}

	output := toListOutput(fields)
	return textResult(output), output, nil
}

// SetFavouriteInput defines input for set_favourite tool.
type SetFavouriteInput struct {
	ID        string `json:"id"`
	Favourite bool   `json:"favourite"`
}

// StatusOutput reports the outcome of a write.
type StatusOutput struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (s *Server) registerSetFavouriteTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "set_favourite",
		Description: "Mark or unmark a field as a favourite.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the field",
				},
				"favourite": map[string]interface{}{
					"type":        "boolean",
					"description": "true to mark as favourite, false to unmark",
				},
			},
			"required": []string{"id", "favourite"},
		},
	}, s.handleSetFavourite)
}

func (s *Server) handleSetFavourite(ctx context.Context, req *mcp.CallToolRequest, input SetFavouriteInput) (*mcp.CallToolResult, StatusOutput, error) {
	if input.ID == "" {
		return nil, StatusOutput{}, fmt.Errorf("id is required")
	}
	if err := s.repo.UpdateFavorite(ctx, s.userID, input.ID, input.Favourite); err != nil {
		return nil, StatusOutput{}, fmt.Errorf("%s: %w", flow.MsgUpdateFailed, err)
	}

	output := StatusOutput{ID: input.ID, Message: flow.MsgFieldUpdated}
	return textResult(output), output, nil
}

// DeleteFieldInput defines input for delete_field tool.
type DeleteFieldInput struct {
	ID string `json:"id"`
}

func (s *Server) registerDeleteFieldTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_field",
		Description: "Permanently delete a field.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the field to delete",
				},
			},
			"required": []string{"id"},
		},
	}, s.handleDeleteField)
}

func (s *Server) handleDeleteField(ctx context.Context, req *mcp.CallToolRequest, input DeleteFieldInput) (*mcp.CallToolResult, StatusOutput, error) {
	if input.ID == "" {
		return nil, StatusOutput{}, fmt.Errorf("id is required")
	}
	if err := s.repo.DeleteField(ctx, s.userID, input.ID); err != nil {
		return nil, StatusOutput{}, fmt.Errorf("%s: %w", flow.MsgDeleteFailed, err)
	}

	output := StatusOutput{ID: input.ID, Message: flow.MsgFieldDeleted}
	return textResult(output), output, nil
}
