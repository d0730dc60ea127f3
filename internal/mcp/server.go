// ABOUTME: MCP server initialization and configuration
// ABOUTME: Sets up server with field tools and resources for AI agents

package mcp

import (
	"context"
	"fmt"

	"github.com/harper/cropfit/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps MCP server with a field repository scoped to one user.
type Server struct {
	mcp    *mcp.Server
	repo   storage.FieldRepository
	userID string
}

// NewServer creates MCP server with all capabilities.
func NewServer(repo storage.FieldRepository, userID string) (*Server, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if err := storage.RequireUser(userID); err != nil {
		return nil, err
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "cropfit",
			Version: "1.0.0",
		},
		nil,
	)

	s := &Server{
		mcp:    mcpServer,
		repo:   repo,
		userID: userID,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server in stdio mode.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}
