package wrapper

import (
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/mcp-pdf-counter/internal/pdf/geometry"
)

// fontDescriptor returns the descriptor of a simple font or, for Type0
// fonts, of its descendant
func fontDescriptor(f pdf.Font) pdf.Value {
	desc := f.V.Key("FontDescriptor")
	if !desc.IsNull() {
		return desc
	}
	descendants := f.V.Key("DescendantFonts")
	if descendants.Kind() == pdf.Array && descendants.Len() > 0 {
		return descendants.Index(0).Key("FontDescriptor")
	}
	return pdf.Value{}
}

// fontMetrics reads the vertical metrics of a font descriptor. It returns
// nil when the font has none (Type3 and the standard 14 fonts).
func fontMetrics(f pdf.Font) *geometry.FontMetrics {
	desc := fontDescriptor(f)
	if desc.IsNull() {
		return nil
	}

	m := &geometry.FontMetrics{
		TypoAscender:  desc.Key("Ascent").Float64(),
		TypoDescender: desc.Key("Descent").Float64(),
		CapHeight:     desc.Key("CapHeight").Float64(),
		XHeight:       desc.Key("XHeight").Float64(),
	}
	if *m == (geometry.FontMetrics{}) {
		return nil
	}
	return m
}

// baseFontKey matches the font names the decoder reports per glyph, which
// drop everything up to the first "+"
func baseFontKey(f pdf.Font) string {
	name := f.BaseFont()
	if i := strings.Index(name, "+"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// pageFontMetrics maps the base font names of a page to their metrics
func pageFontMetrics(p pdf.Page) map[string]*geometry.FontMetrics {
	metrics := make(map[string]*geometry.FontMetrics)
	for _, name := range p.Fonts() {
		f := p.Font(name)
		key := baseFontKey(f)
		if _, ok := metrics[key]; ok {
			continue
		}
		metrics[key] = fontMetrics(f)
	}
	return metrics
}

// runEvent turns a glyph run into a render event. Ascent and descent lines
// are only set when the font reports them.
func runEvent(run glyphRun, m *geometry.FontMetrics) geometry.RenderEvent {
	ev := geometry.RenderEvent{
		Baseline: geometry.Line{
			Start: geometry.Point{X: run.x, Y: run.y},
			End:   geometry.Point{X: run.right, Y: run.y},
		},
		FontSize: run.size,
		Metrics:  m,
		Text:     run.text,
		FontName: run.font,
	}

	if m != nil && (m.TypoAscender != 0 || m.TypoDescender != 0) {
		ascY := run.y + m.TypoAscender/1000*run.size
		descY := run.y + m.TypoDescender/1000*run.size
		ev.Ascent = &geometry.Line{
			Start: geometry.Point{X: run.x, Y: ascY},
			End:   geometry.Point{X: run.right, Y: ascY},
		}
		ev.Descent = &geometry.Line{
			Start: geometry.Point{X: run.x, Y: descY},
			End:   geometry.Point{X: run.right, Y: descY},
		}
	}
	return ev
}
