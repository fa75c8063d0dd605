package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/a3tai/mcp-pdf-counter/internal/config"
	"github.com/a3tai/mcp-pdf-counter/internal/descriptions"
	"github.com/a3tai/mcp-pdf-counter/internal/pdf"
)

const (
	endpointPath    = "/mcp"
	shutdownTimeout = 10 * time.Second
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
	logger     *slog.Logger

	// stdio transport streams
	stdin  io.Reader
	stdout io.Writer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
		logger:     slog.Default().With("component", "mcp"),
		stdin:      os.Stdin,
		stdout:     os.Stdout,
	}
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	pathParam := mcp.WithString("path",
		mcp.Required(),
		mcp.Description("PDF file, absolute or relative to the configured directory"),
	)
	fieldsParam := mcp.WithString("fields",
		mcp.Description(`JSON array of field descriptors, e.g. [{"name":"INVOICE_NO","is_first_page_identifier":true,"x":100,"y":697,"width":40,"height":9}]`),
	)
	fieldsFileParam := mcp.WithString("fields_file",
		mcp.Description("Field descriptor file (.json, .yaml or .toml) under the configured directory"),
	)
	pageParam := mcp.WithNumber("page",
		mcp.Required(),
		mcp.Description("1-based page number"),
		mcp.Min(1),
	)

	s.mcpServer.AddTool(mcp.NewTool("pdf_count_documents",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_count_documents")),
		pathParam, fieldsParam, fieldsFileParam,
	), s.handleCountDocuments)

	s.mcpServer.AddTool(mcp.NewTool("pdf_page_chunks",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_page_chunks")),
		pathParam, pageParam,
		mcp.WithString("filter", mcp.Description("Only list chunks containing this text, ignoring case")),
	), s.handlePageChunks)

	s.mcpServer.AddTool(mcp.NewTool("pdf_seed_field",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_seed_field")),
		pathParam, pageParam,
		mcp.WithString("text", mcp.Required(), mcp.Description("Text the value chunk contains")),
		mcp.WithString("name", mcp.Description("Name of the new field (defaults to the text)")),
		mcp.WithBoolean("identifier", mcp.Description("Mark the field as the first-page identifier that starts each document")),
	), s.handleSeedField)

	s.mcpServer.AddTool(mcp.NewTool("pdf_validate_file",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_validate_file")),
		pathParam,
	), s.handleValidateFile)

	s.mcpServer.AddTool(mcp.NewTool("pdf_scan_directory",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_scan_directory")),
		mcp.WithString("directory", mcp.Description("Directory to scan (uses the configured directory if empty)")),
		mcp.WithString("query", mcp.Description("Optional fuzzy filename filter")),
		fieldsParam, fieldsFileParam,
	), s.handleScanDirectory)

	s.mcpServer.AddTool(mcp.NewTool("pdf_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_server_info")),
	), s.handleServerInfo)
}

// Handler functions

func (s *Server) handleCountDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.CountDocuments(ctx, pdf.CountDocumentsRequest{
		Path:        path,
		FieldSource: fieldSource(request),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatCountDocumentsResult(result)), nil
}

func (s *Server) handlePageChunks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := request.RequireInt("page")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.PageChunks(ctx, pdf.PageChunksRequest{
		Path:   path,
		Page:   page,
		Filter: request.GetString("filter", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatPageChunksResult(result)), nil
}

func (s *Server) handleSeedField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := request.RequireInt("page")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.SeedField(ctx, pdf.SeedFieldRequest{
		Path:       path,
		Page:       page,
		Text:       text,
		Name:       request.GetString("name", ""),
		Identifier: request.GetBool("identifier", false),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSeedFieldResult(result)), nil
}

func (s *Server) handleValidateFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.ValidateFile(pdf.ValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !result.Valid {
		return mcp.NewToolResultText(fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("PDF file %s is valid and readable (%d pages)", result.Path, result.Pages)), nil
}

func (s *Server) handleScanDirectory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.ScanDirectory(ctx, pdf.ScanDirectoryRequest{
		Directory:   request.GetString("directory", ""),
		Query:       request.GetString("query", ""),
		FieldSource: fieldSource(request),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatScanDirectoryResult(result)), nil
}

func (s *Server) handleServerInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.ServerInfo(ctx, pdf.ServerInfoRequest{}, s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatServerInfoResult(result)), nil
}

func fieldSource(request mcp.CallToolRequest) pdf.FieldSource {
	return pdf.FieldSource{
		Fields:     request.GetString("fields", ""),
		FieldsFile: request.GetString("fields_file", ""),
	}
}

// Run starts the MCP server in the configured mode and returns when ctx is
// cancelled or the transport fails
func (s *Server) Run(ctx context.Context) error {
	switch {
	case s.config.IsServerMode():
		return s.runServerMode(ctx)
	case s.config.IsStdioMode():
		return s.runStdioMode(ctx)
	default:
		return fmt.Errorf("mode %q does not run an MCP server", s.config.Mode)
	}
}

// runStdioMode serves MCP over the stdio streams
func (s *Server) runStdioMode(ctx context.Context) error {
	s.logger.Debug("starting stdio transport", "directory", s.config.PDFDirectory)

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	err := stdio.Listen(ctx, s.stdin, s.stdout)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over streamable HTTP until ctx is cancelled, then
// shuts down gracefully
func (s *Server) runServerMode(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Address(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	streamable := server.NewStreamableHTTPServer(s.mcpServer,
		server.WithEndpointPath(endpointPath),
		server.WithStreamableHTTPServer(httpServer),
		server.WithLogger(slogAdapter{s.logger}),
	)

	mux := http.NewServeMux()
	mux.Handle(endpointPath, streamable)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok\n")
	})
	httpServer.Handler = mux

	s.logger.Info("starting streamable HTTP transport",
		"address", httpServer.Addr, "endpoint", endpointPath, "directory", s.config.PDFDirectory)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := streamable.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve http: %w", err)
	}
	s.logger.Info("http transport stopped")
	return nil
}

// slogAdapter lets the HTTP transport log through slog
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Infof(format string, v ...any) {
	a.logger.Info(fmt.Sprintf(format, v...))
}

func (a slogAdapter) Errorf(format string, v ...any) {
	a.logger.Error(fmt.Sprintf(format, v...))
}
