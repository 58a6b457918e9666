// Package mcp serves the assistant's file tools to other MCP clients over
// stdio.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"maple/model"
	"maple/toolcall"
	"maple/tools"
)

const serverName = "maple"

// Server exposes a tool registry as an MCP server.
type Server struct {
	registry *tools.Registry
	mcp      *server.MCPServer
}

// NewServer registers every tool of r with a new MCP server.
func NewServer(r *tools.Registry, version string) *Server {
	s := &Server{
		registry: r,
		mcp: server.NewMCPServer(serverName, version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}
	for _, def := range r.Definitions() {
		s.mcp.AddTool(def, s.handle)
	}
	return s
}

// handle runs one tools/call request through the registry. Tool failures are
// reported as error results, never as protocol errors.
func (s *Server) handle(ctx context.Context, req mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
	args, err := normalizeArgs(req.GetArguments())
	if err != nil {
		return mcptypes.NewToolResultError(err.Error()), nil
	}

	result := s.registry.Dispatch(ctx, model.ToolCall{
		Name:      req.Params.Name,
		Arguments: args,
	})
	log.Debug().Str("tool", result.Name).Str("outcome", tools.Outcome(result.Content)).Msg("mcp tool call")

	if tools.Outcome(result.Content) == "error" {
		return mcptypes.NewToolResultError(result.Content), nil
	}
	return mcptypes.NewToolResultText(result.Content), nil
}

// normalizeArgs converts structured edits into the JSON text the edit_file
// handler parses. MCP clients send edits as an array; the tag protocol
// carries them as text.
func normalizeArgs(args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for k, v := range args {
		out[k] = v
	}
	if edits, ok := out[toolcall.ArgEdits]; ok {
		if _, isString := edits.(string); !isString {
			b, err := json.Marshal(edits)
			if err != nil {
				return nil, fmt.Errorf("invalid edits: %w", err)
			}
			out[toolcall.ArgEdits] = string(b)
		}
	}
	return out, nil
}

// Serve speaks MCP over in and out until ctx is cancelled or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	log.Info().Int("tools", len(s.registry.Definitions())).Msg("mcp server listening on stdio")
	if err := stdio.Listen(ctx, in, out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
