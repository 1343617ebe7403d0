package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-assessment-import/internal/assessment"
	"github.com/a3tai/mcp-assessment-import/internal/config"
	"github.com/a3tai/mcp-assessment-import/internal/descriptions"
	"github.com/a3tai/mcp-assessment-import/internal/intelligence"
)

const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	service   *assessment.Service
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, service *assessment.Service, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("assessment service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // the tool list is fixed at startup
	)

	s := &Server{
		config:    cfg,
		service:   service,
		mcpServer: mcpServer,
		logger:    logger,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	documentType := mcp.WithString("document_type",
		mcp.Description("Extractor to use (e.g. OT_ASSESSMENT, ATTENDANT_CARE); chosen from the classification when empty"),
	)

	importFileTool := mcp.NewTool(
		"assessment_import_file",
		mcp.WithDescription(descriptions.ImportFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the document, relative to the document directory"),
		),
		documentType,
	)
	s.mcpServer.AddTool(importFileTool, s.handleImportFile)

	detectSectionsTool := mcp.NewTool(
		"assessment_detect_sections",
		mcp.WithDescription(descriptions.DetectSectionsDescription),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Full text of the assessment"),
		),
	)
	s.mcpServer.AddTool(detectSectionsTool, s.handleDetectSections)

	extractFieldsTool := mcp.NewTool(
		"assessment_extract_fields",
		mcp.WithDescription(descriptions.ExtractFieldsDescription),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Full text of the assessment"),
		),
		documentType,
	)
	s.mcpServer.AddTool(extractFieldsTool, s.handleExtractFields)

	classifyTool := mcp.NewTool(
		"assessment_classify",
		mcp.WithDescription(descriptions.ClassifyDescription),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Full text of the assessment"),
		),
	)
	s.mcpServer.AddTool(classifyTool, s.handleClassify)

	serverInfoTool := mcp.NewTool(
		"assessment_server_info",
		mcp.WithDescription(descriptions.ServerInfoDescription),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleImportFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	analysis, err := s.service.ImportFile(ctx, path, optionalString(request, "document_type"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return s.jsonResult(formatAnalysisSummary(analysis), analysis)
}

func (s *Server) handleDetectSections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	detection, opts, err := s.service.DetectSections(ctx, text)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	payload := struct {
		*intelligence.Detection
		Options intelligence.Options `json:"options"`
	}{detection, opts}

	return s.jsonResult(fmt.Sprintf("Detected %d section(s)", len(detection.Sections)), payload)
}

func (s *Server) handleExtractFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.service.ExtractFields(ctx, text, optionalString(request, "document_type"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	header := fmt.Sprintf("Extracted %d field(s) as %s (confidence %.2f)",
		result.FieldCount(), result.DocumentType, result.DocumentConfidence)
	return s.jsonResult(header, result)
}

func (s *Server) handleClassify(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	c := s.service.Classify(text)
	header := fmt.Sprintf("Classified as %s (%s, confidence %.2f)", c.Type, c.Structure, c.Confidence)
	return s.jsonResult(header, c)
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info, err := s.service.ServerInfo(ctx, s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatServerInfo(info)), nil
}

// jsonResult renders a one-line header followed by indented JSON
func (s *Server) jsonResult(header string, v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.logger.Error("failed to encode tool result", "error", err)
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(header + "\n\n" + string(data)), nil
}

func optionalString(request mcp.CallToolRequest, key string) string {
	if v, ok := request.GetArguments()[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// Formatting methods
func formatAnalysisSummary(a *assessment.Analysis) string {
	text := fmt.Sprintf("Analysis %s", a.ID)
	if a.Source != nil {
		text += fmt.Sprintf(" of %s", a.Source.Path)
		if a.Source.Truncated {
			text += " (text truncated)"
		}
	}
	text += fmt.Sprintf(": %s, %d section(s), %d field(s), confidence %.2f",
		a.Classification.Type, len(a.Sections), a.Fields.FieldCount(), a.Fields.DocumentConfidence)
	return text
}

func formatServerInfo(info *assessment.ServerInfo) string {
	text := fmt.Sprintf("%s v%s - Server Information\n", info.ServerName, info.Version)
	if info.DocumentDirectory != "" {
		text += fmt.Sprintf("Document Directory: %s\n", info.DocumentDirectory)
		text += fmt.Sprintf("Max File Size: %d MB\n", info.MaxFileSize/(1024*1024))
	}
	text += fmt.Sprintf("Pattern Version: %s\n", info.PatternVersion)
	text += fmt.Sprintf("Adaptive Strategy: %t\n", info.AdaptiveStrategy)
	text += fmt.Sprintf("Detection Options: threshold %.2f, context weight %.2f, priority %s\n\n",
		info.Options.ConfidenceThreshold, info.Options.ContextWeight, info.Options.PatternPriority)

	if len(info.Documents) > 0 {
		text += fmt.Sprintf("Documents (%d found):\n", len(info.Documents))
		for i, file := range info.Documents {
			if i >= 10 {
				text += fmt.Sprintf("   ... and %d more files\n", len(info.Documents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%s, %d bytes)\n", i+1, file.Name, file.Format, file.Size)
		}
		if info.DocumentsTruncated {
			text += "   (listing truncated)\n"
		}
		text += "\n"
	} else {
		text += "Documents: none found in the document directory\n\n"
	}

	text += "Document Types: " + strings.Join(info.DocumentTypes, ", ") + "\n"
	text += "Supported Formats: " + strings.Join(info.SupportedFormats, ", ") + "\n\n"

	text += "Available Tools:\n"
	for _, tool := range info.Tools {
		text += fmt.Sprintf("• %s: %s\n", tool.Name, tool.Description)
	}

	return text
}

// Run starts the MCP server in the configured mode and blocks until ctx is done or the
// transport fails
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode serves MCP over stdin/stdout
func (s *Server) runStdioMode(ctx context.Context) error {
	s.logger.Info("starting assessment MCP server", "mode", config.ModeStdio,
		"dir", s.config.DocumentDirectory)

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return ctx.Err()
}

// runServerMode serves MCP over HTTP with server-sent events
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	s.logger.Info("starting assessment MCP server", "mode", config.ModeServer, "addr", addr,
		"dir", s.config.DocumentDirectory)

	errCh := make(chan error, 1)
	go func() {
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve SSE: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("SSE server shutdown failed", "error", err)
		}
		return ctx.Err()
	}
}
