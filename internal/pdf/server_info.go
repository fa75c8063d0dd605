package pdf

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/a3tai/mcp-pdf-counter/internal/descriptions"
)

const (
	serverInfoCacheTTL   = 5 * time.Minute
	serverInfoFileLimit  = 100
	serverInfoScanWindow = 3 * time.Second
)

// DirectoryCache provides TTL-based caching for directory listings
type DirectoryCache struct {
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
}

type cacheEntry struct {
	files      []FileInfo
	lastUpdate time.Time
}

// NewDirectoryCache creates a new directory cache with specified TTL
func NewDirectoryCache(ttl time.Duration) *DirectoryCache {
	return &DirectoryCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached listing of a directory if it has not expired
func (c *DirectoryCache) Get(path string) ([]FileInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[path]
	if !ok || c.now().Sub(entry.lastUpdate) > c.ttl {
		return nil, false
	}
	return entry.files, true
}

// Set stores a directory listing
func (c *DirectoryCache) Set(path string, files []FileInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = cacheEntry{files: files, lastUpdate: c.now()}
}

// Prune removes expired entries
func (c *DirectoryCache) Prune() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for path, entry := range c.entries {
		if now.Sub(entry.lastUpdate) > c.ttl {
			delete(c.entries, path)
		}
	}
}

// Len returns the number of cached directories, expired ones included
func (c *DirectoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// ServerInfo answers pdf_server_info with a cached, bounded listing of the
// configured directory
type ServerInfo struct {
	service *Service
	cache   *DirectoryCache
}

// NewServerInfo creates a server info handler for a service
func NewServerInfo(service *Service) *ServerInfo {
	return &ServerInfo{
		service: service,
		cache:   NewDirectoryCache(serverInfoCacheTTL),
	}
}

// GetServerInfo describes the server and lists up to 100 PDFs of the
// configured directory. A listing that does not finish in time is reported
// empty rather than failing the call.
func (p *ServerInfo) GetServerInfo(ctx context.Context, serverName, version string) (*ServerInfoResult, error) {
	dir := p.service.pathValidator.Root()

	files, ok := p.cache.Get(dir)
	if !ok {
		scanCtx, cancel := context.WithTimeout(ctx, serverInfoScanWindow)
		defer cancel()

		found, err := p.service.search.FindPDFs(scanCtx, dir, "")
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			p.service.logger.Debug("server info listing failed", "directory", dir, "error", err)
			found = []FileInfo{}
		}
		if len(found) > serverInfoFileLimit {
			found = found[:serverInfoFileLimit]
		}
		p.cache.Prune()
		p.cache.Set(dir, found)
		p.service.logger.Debug("server info listing cached",
			"directory", dir, "files", len(found), "cached_directories", p.cache.Len())
		files = found
	}

	return &ServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  dir,
		MaxFileSize:       p.service.maxFileSize,
		Workers:           p.service.workers,
		AvailableTools:    availableTools(),
		DirectoryContents: files,
		UsageGuidance:     p.usageGuidance(),
		SupportedFormats:  []string{"pdf"},
	}, nil
}

func availableTools() []ToolInfo {
	const pathParam = "path (required): PDF file, absolute or relative to the configured directory"
	const fieldParams = "fields (optional): JSON array of field descriptors, " +
		"fields_file (optional): descriptor file (.json, .yaml, .toml); one of the two is required"

	return []ToolInfo{
		{
			Name:        "pdf_count_documents",
			Description: descriptions.GetToolDescription("pdf_count_documents"),
			Parameters:  pathParam + ", " + fieldParams,
		},
		{
			Name:        "pdf_page_chunks",
			Description: descriptions.GetToolDescription("pdf_page_chunks"),
			Parameters:  pathParam + ", page (required): 1-based page number, filter (optional): case-insensitive text filter",
		},
		{
			Name:        "pdf_seed_field",
			Description: descriptions.GetToolDescription("pdf_seed_field"),
			Parameters:  pathParam + ", page (required), text (required): text to look for, name (optional): field name, identifier (optional): starts a new document",
		},
		{
			Name:        "pdf_validate_file",
			Description: descriptions.GetToolDescription("pdf_validate_file"),
			Parameters:  pathParam,
		},
		{
			Name:        "pdf_scan_directory",
			Description: descriptions.GetToolDescription("pdf_scan_directory"),
			Parameters: "directory (optional): defaults to the configured directory, " +
				"query (optional): fuzzy filename filter, " + fieldParams,
		},
		{
			Name:        "pdf_server_info",
			Description: descriptions.GetToolDescription("pdf_server_info"),
			Parameters:  "No parameters required",
		},
	}
}

func (p *ServerInfo) usageGuidance() string {
	maxFileSizeMB := p.service.maxFileSize / (1024 * 1024)

	return fmt.Sprintf(`PDF Document Counter Usage Guide:

1. FIND FIELD POSITIONS:
   - Use 'pdf_page_chunks' to list the text of a page with coordinates
   - Use 'pdf_seed_field' to turn a value on the page into a rectangle field

2. DESCRIBE FIELDS:
   - Each field has a name and exactly one strategy:
     * match_values: comma separated values to look for
     * is_inline_value: the value is right of a label equal to the name
     * x, y, width, height: a rectangle in PDF points
   - Mark the field that changes per document with is_first_page_identifier

3. COUNT DOCUMENTS:
   - Use 'pdf_count_documents' for one bundle
   - Use 'pdf_scan_directory' for every PDF in a directory

IMPORTANT NOTES:
- Paths are confined to the configured directory
- The server can handle files up to %dMB
- Scanned (image only) pages have no text and count as blank
- Pages the decoder cannot read are skipped and listed in skipped_pages`, maxFileSizeMB)
}
