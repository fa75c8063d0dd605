package segment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	pdferrors "github.com/a3tai/mcp-pdf-counter/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-counter/internal/pdf/fields"
	"github.com/a3tai/mcp-pdf-counter/internal/pdf/geometry"
)

// Options configures a Scanner
type Options struct {
	// Workers bounds the goroutines resolving the render events of a page.
	// Zero means GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
	// FilePath is attached to page diagnostics
	FilePath string
}

// Scanner runs document segmentation. A Scanner holds no per-scan state and
// may be used for concurrent scans of different documents.
type Scanner struct {
	workers  int
	logger   *slog.Logger
	filePath string
}

// NewScanner creates a scanner
func NewScanner(opts Options) *Scanner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers < 0 {
		workers = 0
	}
	return &Scanner{workers: workers, logger: logger, filePath: opts.FilePath}
}

// Scan walks the pages of doc in order and returns the detected documents
// with their field values. A nil doc yields an empty result. Pages that
// cannot be decoded are skipped and reported in the result; only
// cancellation of ctx, checked between pages, aborts the scan.
func (s *Scanner) Scan(ctx context.Context, doc Document, fieldSet []fields.ExtractField) (*Result, error) {
	res := newResult(uuid.NewString(), s.filePath)
	if doc == nil {
		return res, nil
	}

	rules := fields.Compile(fieldSet)
	var identifiers []*fields.Rule
	for _, r := range rules {
		if r.Identifier() {
			identifiers = append(identifiers, r)
		}
	}
	if len(identifiers) > 1 {
		s.logger.Warn("several identifier fields, any of them starts a new document",
			"scan_id", res.ScanID, "identifiers", len(identifiers))
	}

	total := doc.PageCount()
	if total < 0 {
		total = 0
	}
	s.logger.Info("scan started", "scan_id", res.ScanID, "pages", total, "fields", len(rules))

	st := newScanState(res)
	for page := 1; page <= total; page++ {
		if err := ctx.Err(); err != nil {
			errType := pdferrors.ErrorTypeCancelled
			if errors.Is(err, context.DeadlineExceeded) {
				errType = pdferrors.ErrorTypeTimeout
			}
			return nil, fmt.Errorf("scan %s stopped before page %d: %w",
				res.ScanID, page, pdferrors.Wrap(errType, err).OnPage(page))
		}

		pg, blank, err := s.loadPage(doc, page)
		if err != nil {
			st.skip(page, err)
			s.logger.Warn("page skipped", "scan_id", res.ScanID, "page", page, "error", err)
			continue
		}

		if opened := st.fold(page, pg, blank, rules, identifiers); opened {
			s.logger.Debug("document boundary", "scan_id", res.ScanID, "doc_no", st.docNo,
				"page", page, "page_height", pg.Height)
		}
	}

	st.finish(total)
	s.logger.Info("scan finished",
		"scan_id", res.ScanID,
		"pages", res.TotalPages,
		"documents", res.TotalDocuments,
		"properties", len(res.Properties),
		"skipped", len(res.SkippedPages))
	return res, nil
}

// loadPage decodes one page into chunks and fonts and reports whether its
// text is blank. Any decoder failure, including a panic, fails the page.
func (s *Scanner) loadPage(doc Document, page int) (pg geometry.Page, blank bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = pdferrors.New(pdferrors.ErrorTypeMalformedPage, "decoder panic").
				OnPage(page).
				Detailf("%v", r)
		}
	}()

	height, err := doc.PageHeight(page)
	if err != nil {
		return pg, false, pageError(page, "failed to read page size", err)
	}

	var events []geometry.RenderEvent
	if err := doc.VisitText(page, func(ev geometry.RenderEvent) {
		events = append(events, ev)
	}); err != nil {
		return pg, false, pageError(page, "failed to decode page content", err)
	}

	text, err := doc.PageText(page)
	if err != nil {
		return pg, false, pageError(page, "failed to extract page text", err)
	}

	pg = geometry.ResolvePage(events, s.workers)
	pg.Height = height
	return pg, geometry.CollapseSpace(text) == "", nil
}

func pageError(page int, message string, err error) *pdferrors.PDFError {
	var pe *pdferrors.PDFError
	if errors.As(err, &pe) {
		return pe.OnPage(page)
	}
	pe = pdferrors.Wrap(pdferrors.ErrorTypeMalformedPage, err).Detailf("%v", err)
	pe.Message = message
	return pe.OnPage(page)
}

// openDocument is the running state of a detected document
type openDocument struct {
	docNo int
	start int
	end   int
	blank int
	fonts *geometry.FontSet
}

// scanState is the fold threaded through the pages of one scan
type scanState struct {
	res *Result

	docNo int
	open  *openDocument
	docs  []*openDocument
	seen  map[propertyKey]struct{}
	fonts *geometry.FontSet
}

type propertyKey struct {
	docNo int
	name  string
	value string
}

func newScanState(res *Result) *scanState {
	return &scanState{
		res:   res,
		seen:  make(map[propertyKey]struct{}),
		fonts: geometry.NewFontSet(),
	}
}

func (st *scanState) skip(page int, err error) {
	st.res.Diagnostics.Skip(page, err)
	st.res.SkippedPages = append(st.res.SkippedPages, page)
}

// fold applies one decoded page and reports whether it opened a document
func (st *scanState) fold(page int, pg geometry.Page, blank bool, rules, identifiers []*fields.Rule) bool {
	if blank {
		st.res.TotalBlankPages++
		if st.open != nil {
			st.open.blank++
		}
	}

	st.fonts.Merge(pg.Fonts)
	if st.open != nil {
		st.open.fonts.Merge(pg.Fonts)
	}

	opened := false
	for _, r := range identifiers {
		if r.Extract(pg.Chunks) != "" {
			st.startDocument(page, blank, pg.Fonts)
			opened = true
			break
		}
	}

	if st.open == nil {
		return false
	}

	for _, r := range rules {
		value := r.Extract(pg.Chunks)
		if value == "" {
			continue
		}
		st.addProperty(r.Name(), value)
	}
	return opened
}

func (st *scanState) startDocument(page int, blank bool, fonts *geometry.FontSet) {
	if st.open != nil {
		end := page - 1
		if end < 1 {
			end = page
		}
		st.open.end = end
	}

	st.docNo++
	doc := &openDocument{
		docNo: st.docNo,
		start: page,
		fonts: fonts.Clone(),
	}
	if blank {
		doc.blank = 1
	}
	st.open = doc
	st.docs = append(st.docs, doc)
}

func (st *scanState) addProperty(name, value string) {
	key := propertyKey{
		docNo: st.docNo,
		name:  geometry.FoldKey(name),
		value: geometry.FoldKey(value),
	}
	if _, dup := st.seen[key]; dup {
		return
	}
	st.seen[key] = struct{}{}

	st.res.Properties = append(st.res.Properties, Property{
		DocNo:           st.docNo,
		DocStartingPage: st.open.start,
		Name:            name,
		Value:           value,
	})
}

// finish closes the last document and fills the per-document columns of
// every property
func (st *scanState) finish(totalPages int) {
	if st.open != nil && st.open.end == 0 {
		st.open.end = totalPages
	}

	res := st.res
	res.TotalPages = totalPages
	res.TotalDocuments = st.docNo
	res.Fonts = st.fonts.Sorted()

	joined := make([]string, len(st.docs))
	for i, d := range st.docs {
		joined[i] = d.fonts.Join(", ")
		res.Documents = append(res.Documents, DocumentSummary{
			DocNo:      d.docNo,
			StartPage:  d.start,
			EndPage:    d.end,
			Pages:      docPages(d),
			BlankPages: d.blank,
			Fonts:      d.fonts.Sorted(),
		})
	}

	for i := range res.Properties {
		p := &res.Properties[i]
		d := st.docs[p.DocNo-1]
		p.DocPages = docPages(d)
		p.DocBlankPages = d.blank
		p.Fonts = joined[p.DocNo-1]
	}
}

func docPages(d *openDocument) int {
	return max(1, d.end-d.start+1)
}
