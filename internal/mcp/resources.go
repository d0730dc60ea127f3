// ABOUTME: MCP resource definitions
// ABOUTME: Provides a read-only view of the user's fields for AI agents

package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// FieldsResourceURI addresses the list of the user's fields.
const FieldsResourceURI = "cropfit://fields"

func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		Name:        FieldsResourceURI,
		Description: "All recorded fields with their centers and boundaries",
		URI:         FieldsResourceURI,
		MIMEType:    "application/json",
	}, s.handleFieldsResource)
}

func (s *Server) handleFieldsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	fields, err := s.repo.ListFields(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list fields: %w", err)
	}

	output := toListOutput(fields)
	jsonBytes, _ := json.MarshalIndent(output, "", "  ") //nolint:errchkjson // output is always serializable

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      FieldsResourceURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		},
	}, nil
}
