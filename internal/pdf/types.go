package pdf

import (
	"github.com/a3tai/mcp-pdf-counter/internal/pdf/fields"
	"github.com/a3tai/mcp-pdf-counter/internal/pdf/geometry"
	"github.com/a3tai/mcp-pdf-counter/internal/pdf/segment"
)

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Request Types

// FieldSource names where a request's field descriptors come from. Exactly
// one of the three is used, in this order: FieldSet, Fields, FieldsFile.
type FieldSource struct {
	// FieldSet is for in-process callers that already hold descriptors
	FieldSet []fields.ExtractField `json:"-"`
	// Fields is a JSON array of descriptors, or an object with a "fields" key
	Fields string `json:"fields,omitempty"`
	// FieldsFile is a descriptor file (.json, .yaml, .toml) under the
	// configured directory
	FieldsFile string `json:"fields_file,omitempty"`
}

// CountDocumentsRequest asks for the documents of a PDF bundle
type CountDocumentsRequest struct {
	Path string `json:"path"`
	FieldSource
}

// PageChunksRequest asks for the positioned chunks of one page
type PageChunksRequest struct {
	Path   string `json:"path"`
	Page   int    `json:"page"`
	Filter string `json:"filter,omitempty"`
}

// SeedFieldRequest asks for a rectangle descriptor built from the first
// chunk on a page containing Text
type SeedFieldRequest struct {
	Path       string `json:"path"`
	Page       int    `json:"page"`
	Text       string `json:"text"`
	Name       string `json:"name,omitempty"`
	Identifier bool   `json:"identifier,omitempty"`
}

// ValidateFileRequest represents a request to validate a PDF file
type ValidateFileRequest struct {
	Path string `json:"path"`
}

// ScanDirectoryRequest asks for a document count of every PDF in a directory
type ScanDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query,omitempty"`
	FieldSource
}

// ServerInfoRequest represents a request to get server information
type ServerInfoRequest struct{}

// Response Types

// CountDocumentsResult is the outcome of one scan
type CountDocumentsResult struct {
	Path       string                     `json:"path"`
	Result     *segment.Result            `json:"result"`
	Columns    []string                   `json:"columns"`
	Rows       []segment.DocumentRow      `json:"rows"`
	Identifier *segment.IdentifierSummary `json:"identifier,omitempty"`
	Warnings   []string                   `json:"warnings,omitempty"`
}

// PageChunksResult lists the chunks of a page in reading order
type PageChunksResult struct {
	Path        string           `json:"path"`
	Page        int              `json:"page"`
	PageCount   int              `json:"page_count"`
	Height      float64          `json:"height"`
	Fonts       []string         `json:"fonts"`
	Chunks      []geometry.Chunk `json:"chunks"`
	TotalChunks int              `json:"total_chunks"`
	Filter      string           `json:"filter,omitempty"`
}

// SeedFieldResult carries the seeded descriptor and the chunk it came from
type SeedFieldResult struct {
	Path    string              `json:"path"`
	Page    int                 `json:"page"`
	Field   fields.ExtractField `json:"field"`
	Chunk   geometry.Chunk      `json:"chunk"`
	Matches int                 `json:"matches"`
}

// ValidateFileResult represents the result of a PDF validation operation
type ValidateFileResult struct {
	Valid   bool   `json:"valid"`
	Path    string `json:"path"`
	Pages   int    `json:"pages,omitempty"`
	Message string `json:"message,omitempty"`
}

// FileScanResult is one file of a directory scan. Error is set instead of
// the counts when the file could not be scanned.
type FileScanResult struct {
	Path           string   `json:"path"`
	Name           string   `json:"name"`
	TotalPages     int      `json:"total_pages"`
	TotalDocuments int      `json:"total_documents"`
	SkippedPages   []int    `json:"skipped_pages,omitempty"`
	Duplicates     []string `json:"duplicates,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// ScanDirectoryResult aggregates the per-file scans of a directory
type ScanDirectoryResult struct {
	Directory      string           `json:"directory"`
	Files          []FileScanResult `json:"files"`
	TotalFiles     int              `json:"total_files"`
	TotalPages     int              `json:"total_pages"`
	TotalDocuments int              `json:"total_documents"`
	Failed         int              `json:"failed"`
}

// ServerInfoResult represents server information and usage guidance
type ServerInfoResult struct {
	ServerName        string     `json:"server_name"`
	Version           string     `json:"version"`
	DefaultDirectory  string     `json:"default_directory"`
	MaxFileSize       int64      `json:"max_file_size"`
	Workers           int        `json:"workers"`
	AvailableTools    []ToolInfo `json:"available_tools"`
	DirectoryContents []FileInfo `json:"directory_contents"`
	UsageGuidance     string     `json:"usage_guidance"`
	SupportedFormats  []string   `json:"supported_formats"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  string `json:"parameters"`
}
