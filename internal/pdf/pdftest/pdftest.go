// Package pdftest builds small, structurally valid PDF files for tests.
// Every page uses one Helvetica font with WinAnsi encoding, a font
// descriptor (ascent 718, descent -207) and fixed glyph widths: 278/1000 em
// for a space and 556/1000 em for every other character.
package pdftest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	Ascent     = 718.0
	Descent    = -207.0
	SpaceWidth = 278.0
	GlyphWidth = 556.0
)

// Text is one string drawn at a baseline position
type Text struct {
	X, Y float64
	Size float64
	S    string
}

// Page is a page of positioned strings. Zero sizes mean US Letter.
type Page struct {
	Width  float64
	Height float64
	Texts  []Text
}

// Advance returns the width of s at the given font size
func Advance(s string, size float64) float64 {
	w := 0.0
	for _, r := range s {
		if r == ' ' {
			w += SpaceWidth
		} else {
			w += GlyphWidth
		}
	}
	return w / 1000 * size
}

// Build renders the pages into a PDF file with a correct xref table
func Build(pages ...Page) []byte {
	// objects: 1 catalog, 2 pages, 3 font, 4 descriptor, then a page and
	// a content stream per page
	n := 4 + 2*len(pages)
	objects := make([]string, n+1)

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 5+2*i)
	}
	objects[1] = "<< /Type /Catalog /Pages 2 0 R >>"
	objects[2] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))
	objects[3] = fontObject()
	objects[4] = fmt.Sprintf("<< /Type /FontDescriptor /FontName /Helvetica /Flags 32 "+
		"/FontBBox [-166 -225 1000 931] /ItalicAngle 0 /Ascent %g /Descent %g "+
		"/CapHeight 718 /XHeight 523 /StemV 88 >>", Ascent, Descent)

	for i, p := range pages {
		w, h := p.Width, p.Height
		if w <= 0 {
			w = 612
		}
		if h <= 0 {
			h = 792
		}
		pageObj, contentObj := 5+2*i, 6+2*i
		objects[pageObj] = fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %g] "+
			"/Contents %d 0 R /Resources << /Font << /F1 3 0 R >> >> >>", w, h, contentObj)

		stream := contentStream(p.Texts)
		objects[contentObj] = fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream)
	}

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, n+1)
	for i := 1; i <= n; i++ {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i, objects[i])
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", n+1)
	b.WriteString("0000000000 65535 f \n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", n+1, xref)
	return []byte(b.String())
}

// WriteFile builds the pages into dir/name and returns the path
func WriteFile(t testing.TB, dir, name string, pages ...Page) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(pages...), 0o644); err != nil {
		t.Fatalf("failed to write test PDF: %v", err)
	}
	return path
}

func fontObject() string {
	widths := make([]string, 0, 95)
	for c := 32; c <= 126; c++ {
		if c == ' ' {
			widths = append(widths, fmt.Sprintf("%g", SpaceWidth))
		} else {
			widths = append(widths, fmt.Sprintf("%g", GlyphWidth))
		}
	}
	return "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding " +
		"/FirstChar 32 /LastChar 126 /Widths [" + strings.Join(widths, " ") + "] " +
		"/FontDescriptor 4 0 R >>"
}

func contentStream(texts []Text) string {
	var b strings.Builder
	for i, t := range texts {
		if i > 0 {
			b.WriteString("\n")
		}
		size := t.Size
		if size <= 0 {
			size = 10
		}
		fmt.Fprintf(&b, "BT /F1 %g Tf %g %g Td (%s) Tj ET", size, t.X, t.Y, escape(t.S))
	}
	return b.String()
}

func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "(", `\(`)
	return strings.ReplaceAll(s, ")", `\)`)
}
