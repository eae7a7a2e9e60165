package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"composermcp/internal/logging"
	"composermcp/internal/scripts"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ServerName is the name reported during the MCP handshake.
const ServerName = "Composer Scripts MCP Server"

// Tool names.
const (
	ToolRun  = "composer_run"
	ToolList = "composer_list"
)

const shutdownTimeout = 5 * time.Second

// Server represents an MCP server instance using mcp-go
type Server struct {
	registry  *scripts.Registry
	logger    *logging.AppLogger
	mcpServer *server.MCPServer
	handlers  map[string]server.ToolHandlerFunc
}

// NewServer creates a server exposing registry's scripts.
func NewServer(registry *scripts.Registry, logger *logging.AppLogger, version string) *Server {
	s := &Server{
		registry: registry,
		logger:   logger.With("component", "mcp"),
	}

	s.mcpServer = server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(s.instructions()),
	)

	s.handlers = map[string]server.ToolHandlerFunc{
		ToolRun:  s.handleRun,
		ToolList: s.handleList,
	}
	for _, tool := range s.tools() {
		s.mcpServer.AddTool(tool, s.handlers[tool.Name])
	}

	s.logger.Info("MCP server created", "manifest", registry.Path(), "scripts", len(registry.Names()))
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// Call dispatches a tool call by name without a transport.
func (s *Server) Call(ctx context.Context, name string, args map[string]any) (*mcpgo.CallToolResult, error) {
	handler, ok := s.handlers[name]
	if !ok {
		return mcpgo.NewToolResultError(fmt.Sprintf("unknown tool: %s", name)), nil
	}

	var req mcpgo.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return handler(ctx, req)
}

func (s *Server) tools() []mcpgo.Tool {
	scriptOpts := []mcpgo.PropertyOption{
		mcpgo.Required(),
		mcpgo.Description("Name of the composer script to run"),
	}
	if names := s.registry.Names(); len(names) > 0 {
		scriptOpts = append(scriptOpts, mcpgo.Enum(names...))
	}

	return []mcpgo.Tool{
		mcpgo.NewTool(ToolRun,
			mcpgo.WithDescription("Run a composer script defined in the project's composer.json and return its output, exit code and success flag"),
			mcpgo.WithString("script", scriptOpts...),
			mcpgo.WithArray("arguments",
				mcpgo.Description("Extra arguments appended to the script's command line. Each is shell-quoted"),
				mcpgo.WithStringItems(),
			),
		),
		mcpgo.NewTool(ToolList,
			mcpgo.WithDescription("List the composer scripts defined in the project's composer.json with their commands"),
		),
	}
}

func (s *Server) instructions() string {
	return fmt.Sprintf("This server runs the Composer scripts of the project at %s. "+
		"Call %s to see what is available, then %s with a script name.",
		s.registry.Dir(), ToolList, ToolRun)
}

func (s *Server) handleRun(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	name, err := req.RequireString("script")
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	args, err := stringArguments(req)
	if err != nil {
		return mcpgo.NewToolResultError(err.Error()), nil
	}

	result, err := s.registry.Run(ctx, name, args)
	if errors.Is(err, scripts.ErrScriptNotFound) {
		s.logger.Warn("Unknown script requested", "script", name)
		return mcpgo.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return nil, err
	}

	return jsonResult(result)
}

// stringArguments reads the optional "arguments" array. Items that are not
// strings are rejected rather than dropped.
func stringArguments(req mcpgo.CallToolRequest) ([]string, error) {
	raw, ok := req.GetArguments()["arguments"]
	if !ok || raw == nil {
		return nil, nil
	}

	switch v := raw.(type) {
	case []string:
		return v, nil
	case []any:
		args := make([]string, 0, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("arguments[%d] must be a string, got %T", i, item)
			}
			args = append(args, str)
		}
		return args, nil
	default:
		return nil, fmt.Errorf("arguments must be an array of strings, got %T", raw)
	}
}

func (s *Server) handleList(_ context.Context, _ mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	return jsonResult(s.registry.List())
}

func jsonResult(v any) (*mcpgo.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return mcpgo.NewToolResultText(string(data)), nil
}

// ServeStdio serves JSON-RPC over in and out until in is exhausted or ctx
// is cancelled.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("Serving MCP over stdio")

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(s.logger.StandardLog())

	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Listen binds the HTTP transport address.
func Listen(host string, port int) (net.Listener, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return ln, nil
}

// ServeHTTP serves the streamable HTTP transport at endpoint on ln until ctx
// is cancelled. ln is closed on return.
func (s *Server) ServeHTTP(ctx context.Context, ln net.Listener, endpoint string) error {
	streamable := server.NewStreamableHTTPServer(s.mcpServer, server.WithEndpointPath(endpoint))

	mux := http.NewServeMux()
	mux.Handle(endpoint, streamable)
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          s.logger.StandardLog(),
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info("Serving MCP over HTTP", "url", fmt.Sprintf("http://%s%s", ln.Addr(), endpoint))
	err := srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
