package wrapper

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/mcp-pdf-counter/internal/pdf/geometry"
)

// Options configures how a document is opened
type Options struct {
	Logger *slog.Logger
}

// Document is an open PDF file. It is not safe for concurrent use; open
// one Document per scan.
type Document struct {
	reader   *pdf.Reader
	file     *os.File
	filePath string
	heights  []float64
	fonts    map[string]*pdf.Font
	closed   bool
	logger   *slog.Logger
}

// Open opens a PDF file for scanning. Text and fonts are read with
// ledongthuc/pdf; page sizes come from pdfcpu when it can parse the file.
func Open(path string, opts Options) (*Document, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, textError("open_file", 0, fmt.Errorf("failed to open PDF: %w", err))
	}

	doc := &Document{
		reader:   reader,
		file:     f,
		filePath: path,
		fonts:    make(map[string]*pdf.Font),
		logger:   logger,
	}

	heights, err := pageHeights(path)
	if err != nil {
		logger.Debug("page sizes unavailable from pdfcpu, using MediaBox", "path", path, "error", err)
	} else {
		doc.heights = heights
	}
	return doc, nil
}

// Path returns the file the document was opened from
func (d *Document) Path() string {
	return d.filePath
}

// PageCount returns the number of pages in the document. A page tree the
// decoder cannot read counts as empty.
func (d *Document) PageCount() (n int) {
	if d.closed {
		return 0
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Warn("unreadable page tree", "path", d.filePath, "error", r)
			n = 0
		}
	}()
	return d.reader.NumPage()
}

// PageHeight returns the height of a page in points
func (d *Document) PageHeight(page int) (float64, error) {
	p, err := d.page("page_height", page)
	if err != nil {
		return 0, err
	}
	if page <= len(d.heights) && d.heights[page-1] > 0 {
		return d.heights[page-1], nil
	}
	return mediaBoxHeight(p), nil
}

// VisitText calls visit for every single-line glyph run of the page, in
// content stream order
func (d *Document) VisitText(page int, visit func(geometry.RenderEvent)) (err error) {
	p, err := d.page("visit_text", page)
	if err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			err = textError("visit_text", page, fmt.Errorf("malformed content stream: %v", r))
		}
	}()

	metrics := pageFontMetrics(p)
	for _, run := range groupRuns(p.Content().Text) {
		visit(runEvent(run, metrics[run.font]))
	}
	return nil
}

// PageText returns the plain text of a page
func (d *Document) PageText(page int) (text string, err error) {
	p, err := d.page("page_text", page)
	if err != nil {
		return "", err
	}

	defer func() {
		if r := recover(); r != nil {
			err = textError("page_text", page, fmt.Errorf("unreadable fonts: %v", r))
		}
	}()

	for _, name := range p.Fonts() {
		if _, ok := d.fonts[name]; !ok {
			f := p.Font(name)
			d.fonts[name] = &f
		}
	}

	text, err = p.GetPlainText(d.fonts)
	if err != nil {
		return "", textError("page_text", page, err)
	}
	return text, nil
}

// Close closes the document
func (d *Document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

func (d *Document) page(op string, page int) (p pdf.Page, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = textError(op, page, fmt.Errorf("broken page tree: %v", r))
		}
	}()

	if d.closed {
		return pdf.Page{}, textError(op, page, ErrDocumentClosed)
	}
	if page < 1 || page > d.reader.NumPage() {
		return pdf.Page{}, textError(op, page, fmt.Errorf("%w %d (document has %d pages)", ErrInvalidPage, page, d.reader.NumPage()))
	}

	p = d.reader.Page(page)
	if p.V.IsNull() {
		return pdf.Page{}, textError(op, page, fmt.Errorf("page object not found"))
	}
	return p, nil
}

// mediaBoxHeight reads the inherited MediaBox of a page
func mediaBoxHeight(p pdf.Page) float64 {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Kind() != pdf.Array || box.Len() != 4 {
			continue
		}
		if h := math.Abs(box.Index(3).Float64() - box.Index(1).Float64()); h > 0 {
			return h
		}
	}
	return DefaultPageHeight
}
