package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/pflag"

	"github.com/a3tai/mcp-pdf-counter/internal/config"
	"github.com/a3tai/mcp-pdf-counter/internal/mcp"
	"github.com/a3tai/mcp-pdf-counter/internal/pdf"
	"github.com/a3tai/mcp-pdf-counter/internal/pdf/fields"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// maxCellWidth caps a value column in the text scan report
const maxCellWidth = 40

// setupLogging installs the default slog logger for the configured mode
func setupLogging(cfg *config.Config, w io.Writer) *slog.Logger {
	level := cfg.SlogLevel()
	// stdout carries the MCP protocol in stdio mode, keep stderr quiet too
	// unless debugging
	if cfg.IsStdioMode() && !cfg.IsDebug() && level < slog.LevelWarn {
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: cfg.IsDebug()}
	logger := slog.New(slog.NewTextHandler(w, opts))
	slog.SetDefault(logger)
	return logger
}

// run executes the configured mode until it completes or ctx is cancelled
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	if cfg.IsScanMode() {
		return runScan(ctx, cfg, logger, stdout)
	}

	pdfService, err := pdf.NewService(cfg.MaxFileSize, cfg.PDFDirectory, pdf.Options{
		Workers: cfg.Workers,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create PDF service: %w", err)
	}

	server, err := mcp.NewServer(cfg, pdfService)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	logger.Debug("starting", "config", cfg.String())
	if err := server.Run(ctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// runScan counts the documents of one bundle and prints the report
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) error {
	fieldSet, err := fields.LoadFile(cfg.FieldsFile)
	if err != nil {
		return err
	}

	svc, err := pdf.NewService(cfg.MaxFileSize, filepath.Dir(cfg.File), pdf.Options{
		Workers: cfg.Workers,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create PDF service: %w", err)
	}

	result, err := svc.CountDocuments(ctx, pdf.CountDocumentsRequest{
		Path:        cfg.File,
		FieldSource: pdf.FieldSource{FieldSet: fieldSet},
	})
	if err != nil {
		return err
	}

	if cfg.Format == config.FormatJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return writeScanReport(stdout, result)
}

// writeScanReport prints one line per document with its field values in
// aligned columns
func writeScanReport(w io.Writer, result *pdf.CountDocumentsResult) error {
	res := result.Result

	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", result.Path)
	fmt.Fprintf(&b, "Pages: %d (%d blank)\n", res.TotalPages, res.TotalBlankPages)
	fmt.Fprintf(&b, "Documents: %d\n", res.TotalDocuments)
	if len(res.Fonts) > 0 {
		fmt.Fprintf(&b, "Fonts: %s\n", strings.Join(res.Fonts, ", "))
	}

	if len(result.Rows) > 0 {
		header := append([]string{"DOC", "PAGES", "BLANK"}, result.Columns...)
		table := [][]string{header}
		for _, row := range result.Rows {
			line := []string{
				fmt.Sprint(row.DocNo),
				fmt.Sprintf("%d-%d", row.StartPage, row.StartPage+row.Pages-1),
				fmt.Sprint(row.BlankPages),
			}
			for _, col := range result.Columns {
				line = append(line, row.Values[col])
			}
			table = append(table, line)
		}
		b.WriteString("\n")
		writeTable(&b, table)
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(&b, "\nwarning: %s", warning)
	}
	if len(result.Warnings) > 0 {
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// writeTable pads cells by display width so CJK and other wide values line
// up in a terminal
func writeTable(b *strings.Builder, rows [][]string) {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], min(runewidth.StringWidth(cell), maxCellWidth))
		}
	}
	for _, row := range rows {
		for i, cell := range row {
			cell = runewidth.Truncate(cell, maxCellWidth, "…")
			if i == len(row)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		b.WriteString("\n")
	}
}

func main() {
	cfg, err := config.LoadFromFlags()
	switch {
	case errors.Is(err, config.ErrVersionRequested):
		printVersion(os.Stdout)
		return
	case errors.Is(err, pflag.ErrHelp):
		return
	case err != nil:
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	logger := setupLogging(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := run(ctx, cfg, logger, os.Stdout); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("interrupted")
			return
		}
		logger.Error("exiting", "error", err)
		stop()
		os.Exit(1)
	}
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "MCP PDF Counter\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
