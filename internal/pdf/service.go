package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/sourcegraph/conc/pool"

	pdferrors "github.com/a3tai/mcp-pdf-counter/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-counter/internal/pdf/fields"
	"github.com/a3tai/mcp-pdf-counter/internal/pdf/geometry"
	"github.com/a3tai/mcp-pdf-counter/internal/pdf/security"
	"github.com/a3tai/mcp-pdf-counter/internal/pdf/segment"
	"github.com/a3tai/mcp-pdf-counter/internal/pdf/wrapper"
)

// Options configures a Service
type Options struct {
	// Workers bounds per-page geometry resolution and the files scanned at
	// once by ScanDirectory. Zero means GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
}

// Service handles PDF scanning requests by orchestrating the path
// validator, file validator, page source and scanner
type Service struct {
	maxFileSize   int64
	workers       int
	logger        *slog.Logger
	validator     *Validator
	search        *Search
	pathValidator *security.PathValidator
	info          *ServerInfo
}

// NewService creates a new PDF service confined to configuredDirectory
func NewService(maxFileSize int64, configuredDirectory string, opts Options) (*Service, error) {
	pathValidator, err := security.NewPathValidator(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		maxFileSize:   maxFileSize,
		workers:       max(opts.Workers, 0),
		logger:        logger,
		validator:     NewValidator(maxFileSize),
		search:        NewSearch(maxFileSize),
		pathValidator: pathValidator,
	}
	s.info = NewServerInfo(s)
	return s, nil
}

// Directory returns the directory requests are confined to
func (s *Service) Directory() string {
	return s.pathValidator.Root()
}

// CountDocuments scans a bundle and returns its documents and field values
func (s *Service) CountDocuments(ctx context.Context, req CountDocumentsRequest) (*CountDocumentsResult, error) {
	path, err := s.resolve(req.Path)
	if err != nil {
		return nil, err
	}
	fieldSet, err := s.loadFields(req.FieldSource)
	if err != nil {
		return nil, err
	}
	return s.countDocuments(ctx, path, fieldSet)
}

// PageChunks resolves one page and returns its chunks in reading order
func (s *Service) PageChunks(ctx context.Context, req PageChunksRequest) (*PageChunksResult, error) {
	path, err := s.resolve(req.Path)
	if err != nil {
		return nil, err
	}

	doc, err := s.open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	page, err := s.loadPage(ctx, doc, req.Page)
	if err != nil {
		return nil, err
	}

	chunks := geometry.SortReadingOrder(page.Chunks)
	return &PageChunksResult{
		Path:        path,
		Page:        req.Page,
		PageCount:   doc.PageCount(),
		Height:      page.Height,
		Fonts:       page.Fonts.Sorted(),
		Chunks:      geometry.FilterText(chunks, req.Filter),
		TotalChunks: len(chunks),
		Filter:      req.Filter,
	}, nil
}

// SeedField builds a rectangle descriptor from the first chunk, in reading
// order, whose text contains req.Text
func (s *Service) SeedField(ctx context.Context, req SeedFieldRequest) (*SeedFieldResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}
	path, err := s.resolve(req.Path)
	if err != nil {
		return nil, err
	}

	doc, err := s.open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	page, err := s.loadPage(ctx, doc, req.Page)
	if err != nil {
		return nil, err
	}

	matches := geometry.FilterText(geometry.SortReadingOrder(page.Chunks), req.Text)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no text on page %d contains %q", req.Page, req.Text)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.TrimSpace(req.Text)
	}
	field := fields.FromChunk(name, matches[0])
	field.IsFirstPageIdentifier = req.Identifier
	field.PageIndex = req.Page
	return &SeedFieldResult{
		Path:    path,
		Page:    req.Page,
		Field:   field,
		Chunk:   matches[0],
		Matches: len(matches),
	}, nil
}

// ValidateFile performs validation on a PDF file
func (s *Service) ValidateFile(req ValidateFileRequest) (*ValidateFileResult, error) {
	path, err := s.resolve(req.Path)
	if err != nil {
		return nil, err
	}
	return s.validator.ValidateFile(ValidateFileRequest{Path: path})
}

// ScanDirectory counts the documents of every PDF found under a directory.
// Files are scanned concurrently, each with its own document handle. A file
// that fails is reported in its entry; only cancellation fails the call.
func (s *Service) ScanDirectory(ctx context.Context, req ScanDirectoryRequest) (*ScanDirectoryResult, error) {
	dir := req.Directory
	if strings.TrimSpace(dir) == "" {
		dir = s.pathValidator.Root()
	}
	dir, err := s.pathValidator.ResolveDirectory(dir)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	fieldSet, err := s.loadFields(req.FieldSource)
	if err != nil {
		return nil, err
	}

	files, err := s.search.FindPDFs(ctx, dir, req.Query)
	if err != nil {
		return nil, err
	}

	results := make([]FileScanResult, len(files))
	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(s.fileWorkers())
	for i, f := range files {
		p.Go(func(ctx context.Context) error {
			entry := FileScanResult{Path: f.Path, Name: f.Name}
			res, err := s.countDocuments(ctx, f.Path, fieldSet)
			switch {
			case err != nil && ctx.Err() != nil:
				return ctx.Err()
			case err != nil:
				s.logger.Warn("file scan failed", "path", f.Path, "error", err)
				entry.Error = err.Error()
			default:
				entry.TotalPages = res.Result.TotalPages
				entry.TotalDocuments = res.Result.TotalDocuments
				entry.SkippedPages = res.Result.SkippedPages
				if res.Identifier != nil {
					entry.Duplicates = res.Identifier.Duplicates()
				}
			}
			results[i] = entry
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("directory scan of %s stopped: %w", dir, err)
	}

	out := &ScanDirectoryResult{Directory: dir, Files: results, TotalFiles: len(results)}
	for _, r := range results {
		if r.Error != "" {
			out.Failed++
			continue
		}
		out.TotalPages += r.TotalPages
		out.TotalDocuments += r.TotalDocuments
	}
	return out, nil
}

// ServerInfo returns server information, available tools and the PDFs of
// the configured directory
func (s *Service) ServerInfo(ctx context.Context, _ ServerInfoRequest, serverName, version string) (*ServerInfoResult, error) {
	return s.info.GetServerInfo(ctx, serverName, version)
}

func (s *Service) countDocuments(ctx context.Context, path string, fieldSet []fields.ExtractField) (*CountDocumentsResult, error) {
	doc, err := s.open(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	scanner := segment.NewScanner(segment.Options{
		Workers:  s.workers,
		Logger:   s.logger.With("path", path),
		FilePath: path,
	})
	res, err := scanner.Scan(ctx, doc, fieldSet)
	if err != nil {
		return nil, err
	}

	result := &CountDocumentsResult{
		Path:    path,
		Result:  res,
		Columns: res.Columns(),
		Rows:    res.Rows(),
	}
	if summary, ok := segment.IdentifierStats(res, fieldSet); ok {
		result.Identifier = &summary
	}
	result.Warnings = scanWarnings(res, fieldSet, result.Identifier)
	return result, nil
}

func scanWarnings(res *segment.Result, fieldSet []fields.ExtractField, ident *segment.IdentifierSummary) []string {
	var warnings []string
	switch n := fields.IdentifierCount(fieldSet); {
	case n == 0:
		warnings = append(warnings, "no field is marked as first-page identifier, so no document can start")
	case n > 1:
		warnings = append(warnings, fmt.Sprintf("%d identifier fields: a value from any of them starts a new document", n))
	}
	if len(res.SkippedPages) > 0 {
		warnings = append(warnings, res.Diagnostics.Summary())
	}
	if ident != nil {
		if dups := ident.Duplicates(); len(dups) > 0 {
			warnings = append(warnings, fmt.Sprintf("%s values seen on more than one document: %s",
				ident.Field, strings.Join(dups, ", ")))
		}
	}
	return warnings
}

// resolve confines a request path to the configured directory
func (s *Service) resolve(path string) (string, error) {
	abs, err := s.pathValidator.Resolve(path)
	if err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	return abs, nil
}

// open runs the file checks and opens the document
func (s *Service) open(path string) (*wrapper.Document, error) {
	if err := s.validator.Check(path); err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeInvalidDocument, err).InFile(path)
	}
	doc, err := wrapper.Open(path, wrapper.Options{Logger: s.logger})
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeInvalidDocument, err).InFile(path)
	}
	return doc, nil
}

func (s *Service) loadPage(ctx context.Context, doc *wrapper.Document, page int) (geometry.Page, error) {
	if err := ctx.Err(); err != nil {
		return geometry.Page{}, err
	}
	if n := doc.PageCount(); page < 1 || page > n {
		return geometry.Page{}, fmt.Errorf("page %d out of range (document has %d pages)", page, n)
	}

	height, err := doc.PageHeight(page)
	if err != nil {
		return geometry.Page{}, pdferrors.Wrap(pdferrors.ErrorTypeMalformedPage, err).
			InFile(doc.Path()).OnPage(page)
	}

	var events []geometry.RenderEvent
	if err := doc.VisitText(page, func(ev geometry.RenderEvent) {
		events = append(events, ev)
	}); err != nil {
		return geometry.Page{}, pdferrors.Wrap(pdferrors.ErrorTypeMalformedPage, err).
			InFile(doc.Path()).OnPage(page)
	}

	pg := geometry.ResolvePage(events, s.workers)
	pg.Height = height
	return pg, nil
}

// loadFields reads the descriptors of a request and validates them
func (s *Service) loadFields(src FieldSource) ([]fields.ExtractField, error) {
	var (
		fieldSet []fields.ExtractField
		err      error
	)
	switch {
	case len(src.FieldSet) > 0:
		fieldSet = src.FieldSet
	case strings.TrimSpace(src.Fields) != "":
		fieldSet, err = fields.ParseJSON([]byte(src.Fields))
	case strings.TrimSpace(src.FieldsFile) != "":
		var path string
		if path, err = s.resolve(src.FieldsFile); err == nil {
			fieldSet, err = fields.LoadFile(path)
		}
	default:
		err = fmt.Errorf("field descriptors are required: pass fields or fields_file")
	}
	if err != nil {
		return nil, err
	}

	if err := fields.Validate(fieldSet); err != nil {
		return nil, pdferrors.Wrap(pdferrors.ErrorTypeInvalidField, err)
	}
	return fieldSet, nil
}

func (s *Service) fileWorkers() int {
	if s.workers > 0 {
		return s.workers
	}
	return max(runtime.GOMAXPROCS(0), 1)
}
