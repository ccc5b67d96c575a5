package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/driftml/lattice"
	"github.com/driftml/lattice/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
)

// Engine defines the interface required by the MCP server.
type Engine interface {
	Decode(ctx context.Context, numSteps int) (*domain.Run, error)
	DecodeConstrained(ctx context.Context, numSteps int, constraint []int) (*domain.Run, error)
	Table() *domain.Table
}

// Server exposes the lattice engine as an MCP server, so AI agents can
// run searches as tools.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("lattice-mcp", lattice.Version),
	}
	s.registerTools()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer,
		server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	searchTool := mcp.NewTool("beam_search",
		mcp.WithDescription("Run a beam search over the loaded transition table and return the ranked terminal hypotheses."),
		mcp.WithNumber("num_steps", mcp.Required(), mcp.Description("Maximum number of search steps")),
		mcp.WithString("constraint", mcp.Description("Comma-separated action ids forcing the initial sequence (optional)")),
	)
	s.mcpServer.AddTool(searchTool, s.handleSearch)

	describeTool := mcp.NewTool("describe_table",
		mcp.WithDescription("Describe the loaded transition table: name, action count, terminal actions."),
	)
	s.mcpServer.AddTool(describeTool, s.handleDescribe)
}

type searchArgs struct {
	NumSteps   float64 `mapstructure:"num_steps"`
	Constraint string  `mapstructure:"constraint"`
}

func (s *Server) handleSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args searchArgs
	if err := mapstructure.Decode(request.GetArguments(), &args); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	numSteps := int(args.NumSteps)
	if numSteps <= 0 {
		return mcp.NewToolResultError("num_steps must be a positive integer"), nil
	}

	constraint, err := parseConstraint(args.Constraint)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var run *domain.Run
	if len(constraint) > 0 {
		run, err = s.engine.DecodeConstrained(ctx, numSteps, constraint)
	} else {
		run, err = s.engine.Decode(ctx, numSteps)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	payload, err := json.Marshal(run)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode run: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func (s *Server) handleDescribe(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table := s.engine.Table()
	payload, err := json.Marshal(map[string]any{
		"name":             table.Name(),
		"num_actions":      table.NumActions(),
		"terminal_actions": table.TerminalActions(),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode table: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}

func parseConstraint(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	actions := make([]int, 0, len(parts))
	for _, part := range parts {
		action, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid constraint action %q", part)
		}
		actions = append(actions, action)
	}
	return actions, nil
}
