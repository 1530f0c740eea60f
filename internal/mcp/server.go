// Package mcp provides an MCP (Model Context Protocol) server for tdselect.
// Agents can run a selection over a Java tree and read the report without
// going through the CLI.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tdkit/tdselect/internal/analysis"
	"github.com/tdkit/tdselect/internal/config"
	"github.com/tdkit/tdselect/internal/logging"
	"github.com/tdkit/tdselect/internal/output"
	"github.com/tdkit/tdselect/internal/rank"
	"github.com/tdkit/tdselect/internal/report"
)

// Tool names.
const (
	ToolAnalyze = "tdselect_analyze"
	ToolModes   = "tdselect_modes"
)

// AllTools lists all available tools
var AllTools = []string{ToolAnalyze, ToolModes}

// Server wraps the MCP server with tdselect tools
type Server struct {
	mcpServer    *server.MCPServer
	base         *config.Config
	logger       *slog.Logger
	tools        map[string]bool
	lastActivity time.Time
	timeout      time.Duration
	mu           sync.RWMutex
}

// Config holds server configuration
type Config struct {
	// Base is layered under every request. Nil loads tdselect.yaml from the
	// requested input root.
	Base    *config.Config
	Logger  *slog.Logger
	Version string
	Timeout time.Duration // Inactivity timeout (0 = no timeout)
}

// New creates a new MCP server with every tool registered.
func New(cfg Config) (*Server, error) {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewDiscardLogger()
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		mcpServer:    server.NewMCPServer("tdselect", version, server.WithToolCapabilities(false)),
		base:         cfg.Base,
		logger:       cfg.Logger,
		tools:        make(map[string]bool),
		lastActivity: time.Now(),
		timeout:      cfg.Timeout,
	}

	for _, name := range AllTools {
		if err := s.registerTool(name); err != nil {
			return nil, fmt.Errorf("failed to register tool %s: %w", name, err)
		}
		s.tools[name] = true
	}
	return s, nil
}

// registerTool registers a single tool with the MCP server
func (s *Server) registerTool(name string) error {
	switch name {
	case ToolAnalyze:
		tool := mcp.NewTool(ToolAnalyze,
			mcp.WithDescription(toolSchemaRegistry[ToolAnalyze].Description),
			mcp.WithString("input",
				mcp.Required(),
				mcp.Description("Path of the Java project root"),
			),
			mcp.WithNumber("top",
				mcp.Description("Number of methods to select (default: 15)"),
			),
			mcp.WithString("mode",
				mcp.Description("Weighting preset: "+strings.Join(rank.ModeNames(), ", ")),
			),
			mcp.WithString("format",
				mcp.Description("Report format: yaml or json (default: yaml)"),
			),
		)
		s.mcpServer.AddTool(tool, s.handleAnalyze)
	case ToolModes:
		tool := mcp.NewTool(ToolModes,
			mcp.WithDescription(toolSchemaRegistry[ToolModes].Description),
		)
		s.mcpServer.AddTool(tool, s.handleModes)
	default:
		return fmt.Errorf("unknown tool: %s", name)
	}
	return nil
}

// ServeStdio starts the server using stdio transport
func (s *Server) ServeStdio() error {
	if s.timeout > 0 {
		go s.timeoutChecker()
	}
	return server.ServeStdio(s.mcpServer)
}

// timeoutChecker monitors for inactivity and exits if timeout exceeded
func (s *Server) timeoutChecker() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.RLock()
		elapsed := time.Since(s.lastActivity)
		s.mu.RUnlock()

		if elapsed > s.timeout {
			s.logger.Info("mcp server idle, exiting", "idle", elapsed)
			os.Exit(0)
		}
	}
}

// updateActivity updates the last activity timestamp
func (s *Server) updateActivity() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// ListTools returns the registered tool names, sorted.
func (s *Server) ListTools() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tools := make([]string, 0, len(s.tools))
	for t := range s.tools {
		tools = append(tools, t)
	}
	sort.Strings(tools)
	return tools
}

// ToolSchema describes a tool's name, description, and parameters.
type ToolSchema struct {
	Name        string            `json:"name" yaml:"name"`
	Description string            `json:"description" yaml:"description"`
	Parameters  []ParameterSchema `json:"parameters" yaml:"parameters"`
}

// ParameterSchema describes a single tool parameter.
type ParameterSchema struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
}

// toolSchemaRegistry mirrors the mcp.NewTool() definitions in registerTool.
var toolSchemaRegistry = map[string]ToolSchema{
	ToolAnalyze: {
		Name:        ToolAnalyze,
		Description: "Rank the methods of a Java project for fill-in-the-blank exercises and return the exercise configuration report.",
		Parameters: []ParameterSchema{
			{Name: "input", Type: "string", Description: "Path of the Java project root", Required: true},
			{Name: "top", Type: "number", Description: "Number of methods to select (default: 15)"},
			{Name: "mode", Type: "string", Description: "Weighting preset"},
			{Name: "format", Type: "string", Description: "Report format: yaml or json (default: yaml)"},
		},
	},
	ToolModes: {
		Name:        ToolModes,
		Description: "List the selection modes and their scoring weights.",
	},
}

// GetToolSchemas returns schemas for all registered tools, sorted by name.
func (s *Server) GetToolSchemas() []ToolSchema {
	names := s.ListTools()
	schemas := make([]ToolSchema, 0, len(names))
	for _, name := range names {
		if schema, ok := toolSchemaRegistry[name]; ok {
			schemas = append(schemas, schema)
		}
	}
	return schemas
}

// CallTool dispatches a tool call by name with the given arguments.
// Returns the result text or an error.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	s.mu.RLock()
	registered := s.tools[name]
	s.mu.RUnlock()

	if !registered {
		return "", fmt.Errorf("unknown tool: %s", name)
	}

	switch name {
	case ToolAnalyze:
		input, _ := args["input"].(string)
		if input == "" {
			return "", fmt.Errorf("input parameter is required")
		}
		top := 0
		if t, ok := args["top"].(float64); ok {
			top = int(t)
		}
		mode, _ := args["mode"].(string)
		format, _ := args["format"].(string)
		return s.executeAnalyze(ctx, input, top, mode, format)

	case ToolModes:
		return executeModes()

	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

func (s *Server) handleAnalyze(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	result, err := s.CallTool(ctx, ToolAnalyze, req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleModes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.updateActivity()

	result, err := s.CallTool(ctx, ToolModes, req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) executeAnalyze(ctx context.Context, input string, top int, mode, format string) (string, error) {
	base := s.base
	if base == nil {
		loaded, err := config.Load(input)
		if err != nil {
			return "", err
		}
		base = loaded
	}

	cfg := config.Merge(&config.Config{
		Analysis: config.AnalysisConfig{Input: input, Top: top, Mode: mode},
		Report:   config.ReportConfig{Format: format},
	}, base)

	res, err := analysis.Run(ctx, cfg, s.logger)
	if err != nil {
		return "", err
	}
	f, err := output.ParseFormat(cfg.Report.Format)
	if err != nil {
		return "", err
	}
	data, err := report.Encode(res.Report, f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func executeModes() (string, error) {
	data, err := output.NewYAMLFormatter().Format(map[string][]rank.Info{"modes": rank.Describe()})
	if err != nil {
		return "", err
	}
	return string(data), nil
}
