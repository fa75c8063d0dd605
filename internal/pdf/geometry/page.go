package geometry

import (
	"sort"
	"strings"

	"github.com/sourcegraph/conc/iter"
)

// Page is the resolved text of one page. Height is in points and left 0
// by ResolvePage; the page source fills it in.
type Page struct {
	Height float64
	Chunks []Chunk
	Fonts  *FontSet
}

type resolved struct {
	chunk Chunk
	ok    bool
}

// ResolvePage resolves every event of a page. Events are resolved in
// parallel by up to workers goroutines (0 means GOMAXPROCS); the chunks keep
// the order the events arrived in. The font of every event is recorded,
// including events that produce no chunk.
func ResolvePage(events []RenderEvent, workers int) Page {
	if workers < 0 {
		workers = 0
	}

	mapper := iter.Mapper[RenderEvent, resolved]{MaxGoroutines: workers}
	results := mapper.Map(events, func(ev *RenderEvent) resolved {
		c, ok := Resolve(*ev)
		return resolved{chunk: c, ok: ok}
	})

	page := Page{
		Chunks: make([]Chunk, 0, len(events)),
		Fonts:  NewFontSet(),
	}
	for i, r := range results {
		page.Fonts.Add(events[i].FontName)
		if r.ok {
			page.Chunks = append(page.Chunks, r.chunk)
		}
	}
	return page
}

// SortReadingOrder returns a copy of chunks ordered top to bottom, then
// left to right. Ties keep their original order.
func SortReadingOrder(chunks []Chunk) []Chunk {
	out := make([]Chunk, len(chunks))
	copy(out, chunks)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y > out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// FilterText drops whitespace-only chunks and, when query is not blank,
// keeps only chunks whose text contains it ignoring case.
func FilterText(chunks []Chunk, query string) []Chunk {
	q := FoldKey(query)
	out := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		if q != "" && !strings.Contains(FoldKey(c.Text), q) {
			continue
		}
		out = append(out, c)
	}
	return out
}
