package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/a3tai/mcp-pdf-counter/internal/pdf"
)

// jsonBlock renders v as an indented fenced JSON block for clients that want
// the structured payload
func jsonBlock(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("\n(failed to encode result: %v)\n", err)
	}
	return "\n```json\n" + string(data) + "\n```\n"
}

func formatCountDocumentsResult(result *pdf.CountDocumentsResult) string {
	res := result.Result

	text := fmt.Sprintf("Scanned PDF: %s\n", result.Path)
	text += fmt.Sprintf("Scan ID: %s\n", res.ScanID)
	text += fmt.Sprintf("Pages: %d (%d blank)\n", res.TotalPages, res.TotalBlankPages)
	text += fmt.Sprintf("Documents: %d\n", res.TotalDocuments)
	if len(res.Fonts) > 0 {
		text += fmt.Sprintf("Fonts: %s\n", strings.Join(res.Fonts, ", "))
	}
	if len(res.SkippedPages) > 0 {
		text += fmt.Sprintf("Skipped pages: %s\n", joinInts(res.SkippedPages))
	}

	if len(result.Rows) > 0 {
		text += "\nDocuments:\n"
		for _, row := range result.Rows {
			text += fmt.Sprintf("%d. pages %d-%d (%d pages, %d blank)\n",
				row.DocNo, row.StartPage, row.StartPage+row.Pages-1, row.Pages, row.BlankPages)
			for _, col := range result.Columns {
				if v, ok := row.Values[col]; ok {
					text += fmt.Sprintf("   %s: %s\n", col, v)
				}
			}
		}
	}

	if len(result.Warnings) > 0 {
		text += "\nWarnings:\n"
		for _, w := range result.Warnings {
			text += fmt.Sprintf("- %s\n", w)
		}
	}

	return text + jsonBlock(result)
}

func formatPageChunksResult(result *pdf.PageChunksResult) string {
	text := fmt.Sprintf("Page %d of %d in %s\n", result.Page, result.PageCount, result.Path)
	text += fmt.Sprintf("Height: %.2f\n", result.Height)
	if len(result.Fonts) > 0 {
		text += fmt.Sprintf("Fonts: %s\n", strings.Join(result.Fonts, ", "))
	}
	if result.Filter != "" {
		text += fmt.Sprintf("Filter: %s (%d of %d chunks)\n", result.Filter, len(result.Chunks), result.TotalChunks)
	} else {
		text += fmt.Sprintf("Chunks: %d\n", result.TotalChunks)
	}

	if len(result.Chunks) == 0 {
		return text + "\nNo text chunks found.\n"
	}

	text += "\n"
	for i, c := range result.Chunks {
		text += fmt.Sprintf("%d. %q x=%.2f y=%.2f width=%.2f top=%.2f bottom=%.2f\n",
			i+1, c.Text, c.X, c.Y, c.Width, c.Top, c.Bottom)
	}
	return text + jsonBlock(result.Chunks)
}

func formatSeedFieldResult(result *pdf.SeedFieldResult) string {
	text := fmt.Sprintf("Seeded field %q from page %d of %s\n", result.Field.Name, result.Page, result.Path)
	text += fmt.Sprintf("Chunk: %q\n", result.Chunk.Text)
	text += fmt.Sprintf("Rectangle: x=%.2f y=%.2f width=%.2f height=%.2f\n",
		result.Field.X, result.Field.Y, result.Field.Width, result.Field.Height)
	if result.Matches > 1 {
		text += fmt.Sprintf("Note: %d chunks on the page contain the text, the first in reading order was used\n", result.Matches)
	}
	return text + jsonBlock(result.Field)
}

func formatScanDirectoryResult(result *pdf.ScanDirectoryResult) string {
	if result.TotalFiles == 0 {
		return fmt.Sprintf("No PDF files found in directory: %s\n", result.Directory)
	}

	text := fmt.Sprintf("Scanned %d PDF file(s) in directory: %s\n", result.TotalFiles, result.Directory)
	text += fmt.Sprintf("Total pages: %d\n", result.TotalPages)
	text += fmt.Sprintf("Total documents: %d\n", result.TotalDocuments)
	if result.Failed > 0 {
		text += fmt.Sprintf("Failed files: %d\n", result.Failed)
	}
	text += "\n"

	for i, f := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, f.Name)
		if f.Error != "" {
			text += fmt.Sprintf("   Error: %s\n", f.Error)
			continue
		}
		text += fmt.Sprintf("   Pages: %d\n", f.TotalPages)
		text += fmt.Sprintf("   Documents: %d\n", f.TotalDocuments)
		if len(f.SkippedPages) > 0 {
			text += fmt.Sprintf("   Skipped pages: %s\n", joinInts(f.SkippedPages))
		}
		if len(f.Duplicates) > 0 {
			text += fmt.Sprintf("   Duplicate identifiers: %s\n", strings.Join(f.Duplicates, ", "))
		}
	}

	return text + jsonBlock(result)
}

func formatServerInfoResult(result *pdf.ServerInfoResult) string {
	text := fmt.Sprintf("%s v%s\n", result.ServerName, result.Version)
	text += fmt.Sprintf("Default directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("Max file size: %d bytes\n", result.MaxFileSize)
	text += fmt.Sprintf("Supported formats: %s\n", strings.Join(result.SupportedFormats, ", "))

	text += "\nAvailable tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("- %s: %s\n", tool.Name, tool.Parameters)
	}

	text += fmt.Sprintf("\nPDF files in default directory (%d):\n", len(result.DirectoryContents))
	if len(result.DirectoryContents) == 0 {
		text += "(none)\n"
	}
	for _, f := range result.DirectoryContents {
		text += fmt.Sprintf("- %s (%d bytes)\n", f.Name, f.Size)
	}

	text += "\n" + result.UsageGuidance + "\n"
	return text
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
