package segment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/a3tai/mcp-pdf-counter/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-counter/internal/pdf/fields"
	"github.com/a3tai/mcp-pdf-counter/internal/pdf/geometry"
)

type fakePage struct {
	events    []geometry.RenderEvent
	text      *string
	heightErr error
	visitErr  error
	textErr   error
	panicMsg  string
	onVisit   func()
}

type fakeDocument struct {
	pages []fakePage
}

func (d *fakeDocument) PageCount() int { return len(d.pages) }

func (d *fakeDocument) PageHeight(page int) (float64, error) {
	if err := d.pages[page-1].heightErr; err != nil {
		return 0, err
	}
	return 792, nil
}

func (d *fakeDocument) VisitText(page int, visit func(geometry.RenderEvent)) error {
	p := d.pages[page-1]
	if p.onVisit != nil {
		p.onVisit()
	}
	if p.panicMsg != "" {
		panic(p.panicMsg)
	}
	if p.visitErr != nil {
		return p.visitErr
	}
	for _, ev := range p.events {
		visit(ev)
	}
	return nil
}

func (d *fakeDocument) PageText(page int) (string, error) {
	p := d.pages[page-1]
	if p.textErr != nil {
		return "", p.textErr
	}
	if p.text != nil {
		return *p.text, nil
	}
	parts := make([]string, len(p.events))
	for i, ev := range p.events {
		parts[i] = ev.Text
	}
	return strings.Join(parts, " "), nil
}

// event places a 10pt run on baseline y with a 10pt tall glyph box
func event(text, font string, x, y, w float64) geometry.RenderEvent {
	asc := geometry.Line{Start: geometry.Point{X: x, Y: y + 8}, End: geometry.Point{X: x + w, Y: y + 8}}
	desc := geometry.Line{Start: geometry.Point{X: x, Y: y - 2}, End: geometry.Point{X: x + w, Y: y - 2}}
	return geometry.RenderEvent{
		Baseline: geometry.Line{Start: geometry.Point{X: x, Y: y}, End: geometry.Point{X: x + w, Y: y}},
		Ascent:   &asc,
		Descent:  &desc,
		FontSize: 10,
		Text:     text,
		FontName: font,
	}
}

func invoicePage(number string) fakePage {
	return fakePage{events: []geometry.RenderEvent{
		event("Invoice", "ABCDEF+Helvetica", 50, 700, 40),
		event(number, "ABCDEF+Helvetica", 100, 700, 50),
		event("Total", "Helvetica", 50, 600, 30),
		event("100.00", "Helvetica", 100, 600, 40),
	}}
}

func textPage(text, font string) fakePage {
	return fakePage{events: []geometry.RenderEvent{event(text, font, 50, 700, 80)}}
}

func blankPage() fakePage {
	s := "  \n "
	return fakePage{text: &s}
}

var invoiceFields = []fields.ExtractField{
	{Name: "Invoice", IsFirstPageIdentifier: true, IsInlineValue: true},
	{Name: "Total", IsInlineValue: true},
}

func newTestScanner(workers int) *Scanner {
	return NewScanner(Options{
		Workers: workers,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func fiveInvoicePages() *fakeDocument {
	return &fakeDocument{pages: []fakePage{
		textPage("Cover letter", "Times-Roman"),
		invoicePage("INV-001"),
		blankPage(),
		textPage("continued", "Courier"),
		invoicePage("INV-002"),
	}}
}

func TestScan_FivePageBundle(t *testing.T) {
	res, err := newTestScanner(0).Scan(context.Background(), fiveInvoicePages(), invoiceFields)
	require.NoError(t, err)

	assert.NotEmpty(t, res.ScanID)
	assert.Equal(t, 5, res.TotalPages)
	assert.Equal(t, 1, res.TotalBlankPages)
	assert.Equal(t, 2, res.TotalDocuments)
	assert.Equal(t, []string{"Courier", "Helvetica", "Times-Roman"}, res.Fonts)
	assert.Empty(t, res.SkippedPages)

	assert.Equal(t, []DocumentSummary{
		{DocNo: 1, StartPage: 2, EndPage: 4, Pages: 3, BlankPages: 1, Fonts: []string{"Courier", "Helvetica"}},
		{DocNo: 2, StartPage: 5, EndPage: 5, Pages: 1, BlankPages: 0, Fonts: []string{"Helvetica"}},
	}, res.Documents)

	assert.Equal(t, []Property{
		{DocNo: 1, DocStartingPage: 2, Name: "Invoice", Value: "INV-001", DocPages: 3, DocBlankPages: 1, Fonts: "Courier, Helvetica"},
		{DocNo: 1, DocStartingPage: 2, Name: "Total", Value: "100.00", DocPages: 3, DocBlankPages: 1, Fonts: "Courier, Helvetica"},
		{DocNo: 2, DocStartingPage: 5, Name: "Invoice", Value: "INV-002", DocPages: 1, DocBlankPages: 0, Fonts: "Helvetica"},
		{DocNo: 2, DocStartingPage: 5, Name: "Total", Value: "100.00", DocPages: 1, DocBlankPages: 0, Fonts: "Helvetica"},
	}, res.Properties)
}

func TestScan_NoBoundary(t *testing.T) {
	tests := []struct {
		name   string
		fields []fields.ExtractField
	}{
		{"no identifier field", []fields.ExtractField{{Name: "Invoice", IsInlineValue: true}}},
		{"identifier never matches", []fields.ExtractField{{Name: "Order", IsFirstPageIdentifier: true, IsInlineValue: true}}},
		{"no fields", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newTestScanner(0).Scan(context.Background(), fiveInvoicePages(), tt.fields)
			require.NoError(t, err)

			assert.Zero(t, res.TotalDocuments)
			assert.Empty(t, res.Properties)
			assert.Empty(t, res.Documents)
			assert.Equal(t, 5, res.TotalPages)
			assert.Equal(t, 1, res.TotalBlankPages)
			assert.Len(t, res.Fonts, 3)
		})
	}
}

func TestScan_NilDocument(t *testing.T) {
	res, err := newTestScanner(0).Scan(context.Background(), nil, invoiceFields)
	require.NoError(t, err)

	assert.Zero(t, res.TotalPages)
	assert.Zero(t, res.TotalDocuments)
	assert.Empty(t, res.Properties)
	assert.Empty(t, res.Fonts)
	assert.NotNil(t, res.Diagnostics)
}

func TestScan_Dedup(t *testing.T) {
	upper := invoicePage("INV-001")
	lower := fakePage{events: []geometry.RenderEvent{
		event("TOTAL", "Helvetica", 50, 600, 30),
		event(" 100.00", "Helvetica", 100, 600, 40),
		event("Ref", "Helvetica", 50, 500, 20),
		event("abc", "Helvetica", 100, 500, 20),
	}}
	again := fakePage{events: []geometry.RenderEvent{
		event("Ref", "Helvetica", 50, 500, 20),
		event("ABC", "Helvetica", 100, 500, 20),
	}}
	doc := &fakeDocument{pages: []fakePage{upper, lower, again, invoicePage("INV-001")}}

	fieldSet := append([]fields.ExtractField{}, invoiceFields...)
	fieldSet = append(fieldSet, fields.ExtractField{Name: "ref", IsInlineValue: true})

	res, err := newTestScanner(0).Scan(context.Background(), doc, fieldSet)
	require.NoError(t, err)

	type triple struct {
		doc         int
		name, value string
	}
	var got []triple
	for _, p := range res.Properties {
		got = append(got, triple{p.DocNo, p.Name, p.Value})
	}

	// a reused identifier still opens a new document with its own values
	assert.Equal(t, []triple{
		{1, "Invoice", "INV-001"},
		{1, "Total", "100.00"},
		{1, "ref", "abc"},
		{2, "Invoice", "INV-001"},
		{2, "Total", "100.00"},
	}, got)
}

func TestScan_PageCountInvariant(t *testing.T) {
	doc := &fakeDocument{pages: []fakePage{
		invoicePage("A"), invoicePage("B"), textPage("x", "Courier"),
		textPage("y", "Courier"), invoicePage("C"), blankPage(),
	}}

	res, err := newTestScanner(0).Scan(context.Background(), doc, invoiceFields)
	require.NoError(t, err)
	require.Equal(t, 3, res.TotalDocuments)

	ends := make(map[int]DocumentSummary)
	for _, d := range res.Documents {
		ends[d.DocNo] = d
	}
	for _, p := range res.Properties {
		d := ends[p.DocNo]
		assert.Equal(t, d.EndPage-d.StartPage+1, p.DocPages)
		assert.GreaterOrEqual(t, p.DocPages, 1)
	}
	assert.Equal(t, 1, ends[1].Pages)
	assert.Equal(t, 3, ends[2].Pages)
	assert.Equal(t, 2, ends[3].Pages)
	assert.Equal(t, 1, ends[3].BlankPages)
}

func TestScan_Deterministic(t *testing.T) {
	fontNames := []string{"Zapf", "Arial", "Courier", "Times", "Bodoni"}
	var pages []fakePage
	for i := 0; i < 12; i++ {
		p := invoicePage("INV-" + string(rune('A'+i/3)))
		for j, f := range fontNames {
			p.events = append(p.events, event("filler", f, 200+float64(j)*30, 400, 20))
		}
		pages = append(pages, p)
	}
	doc := &fakeDocument{pages: pages}

	first, err := newTestScanner(1).Scan(context.Background(), doc, invoiceFields)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := newTestScanner(8).Scan(context.Background(), doc, invoiceFields)
		require.NoError(t, err)

		assert.Equal(t, first.Properties, again.Properties)
		assert.Equal(t, first.Documents, again.Documents)
		assert.Equal(t, first.Fonts, again.Fonts)
		assert.Equal(t, first.TotalPages, again.TotalPages)
		assert.Equal(t, first.TotalBlankPages, again.TotalBlankPages)
		assert.Equal(t, first.TotalDocuments, again.TotalDocuments)
		assert.NotEqual(t, first.ScanID, again.ScanID)
	}
}

func TestScan_UnreadablePageSizeSkipsPage(t *testing.T) {
	doc := &fakeDocument{pages: []fakePage{
		invoicePage("INV-001"),
		{heightErr: errors.New("missing MediaBox")},
		invoicePage("INV-002"),
	}}

	res, err := newTestScanner(0).Scan(context.Background(), doc, invoiceFields)
	require.NoError(t, err)

	assert.Equal(t, []int{2}, res.SkippedPages)
	require.Equal(t, 1, res.Diagnostics.Len())
	assert.Equal(t, "failed to read page size", res.Diagnostics.Skipped[0].Message)
	assert.Contains(t, res.Diagnostics.Skipped[0].Detail, "missing MediaBox")
	assert.Equal(t, 2, res.TotalDocuments)
}

func TestScan_SkipsBrokenPages(t *testing.T) {
	broken := fakePage{visitErr: errors.New("unexpected EOF in content stream")}
	unreadable := fakePage{textErr: errors.New("bad encoding")}
	panicking := fakePage{panicMsg: "index out of range"}

	doc := &fakeDocument{pages: []fakePage{
		invoicePage("INV-001"),
		broken,
		unreadable,
		panicking,
		invoicePage("INV-002"),
		broken,
	}}

	res, err := newTestScanner(0).Scan(context.Background(), doc, invoiceFields)
	require.NoError(t, err)

	assert.Equal(t, 6, res.TotalPages)
	assert.Equal(t, []int{2, 3, 4, 6}, res.SkippedPages)
	assert.Equal(t, []int{2, 3, 4, 6}, res.Diagnostics.Pages())
	assert.Zero(t, res.TotalBlankPages)
	assert.Equal(t, 2, res.TotalDocuments)

	require.Len(t, res.Documents, 2)
	assert.Equal(t, 4, res.Documents[0].EndPage)
	assert.Equal(t, 6, res.Documents[1].EndPage, "an open document runs to the last page even when it is skipped")

	require.Equal(t, 4, res.Diagnostics.Len())
	for _, w := range res.Diagnostics.Skipped {
		assert.Equal(t, pdferrors.ErrorTypeMalformedPage, w.Type)
		assert.True(t, w.Recoverable)
	}
	assert.Contains(t, res.Diagnostics.Skipped[2].Detail, "index out of range")
}

func TestScan_Cancellation(t *testing.T) {
	t.Run("before first page", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res, err := newTestScanner(0).Scan(ctx, fiveInvoicePages(), invoiceFields)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, context.Canceled)

		var pe *pdferrors.PDFError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, pdferrors.ErrorTypeCancelled, pe.Type)
		assert.Equal(t, 1, pe.Page)
	})

	t.Run("between pages", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		doc := fiveInvoicePages()
		visited := 0
		for i := range doc.pages {
			doc.pages[i].onVisit = func() { visited++ }
		}
		doc.pages[1].onVisit = func() {
			visited++
			cancel()
		}

		_, err := newTestScanner(0).Scan(ctx, doc, invoiceFields)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 2, visited, "the current page finishes, the next one never starts")

		var pe *pdferrors.PDFError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, 3, pe.Page)
	})
}

func TestScan_MultipleIdentifiersAreOR(t *testing.T) {
	doc := &fakeDocument{pages: []fakePage{
		invoicePage("INV-001"),
		{events: []geometry.RenderEvent{
			event("Credit", "Helvetica", 50, 700, 40),
			event("CN-9", "Helvetica", 100, 700, 30),
		}},
		textPage("terms", "Helvetica"),
	}}
	fieldSet := []fields.ExtractField{
		{Name: "Invoice", IsFirstPageIdentifier: true, IsInlineValue: true},
		{Name: "Credit", IsFirstPageIdentifier: true, IsInlineValue: true},
	}

	res, err := newTestScanner(0).Scan(context.Background(), doc, fieldSet)
	require.NoError(t, err)

	assert.Equal(t, 2, res.TotalDocuments)
	require.Len(t, res.Documents, 2)
	assert.Equal(t, 1, res.Documents[0].EndPage)
	assert.Equal(t, 2, res.Documents[1].StartPage)
	assert.Equal(t, 3, res.Documents[1].EndPage)
}
