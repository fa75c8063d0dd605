package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func horizontal(x, y, w float64) Line {
	return Line{Start: Point{X: x, Y: y}, End: Point{X: x + w, Y: y}}
}

func TestResolve_AscentDescent(t *testing.T) {
	asc := horizontal(100, 709, 50)
	desc := horizontal(100, 697, 50)

	c, ok := Resolve(RenderEvent{
		Baseline: horizontal(100, 700, 50),
		Ascent:   &asc,
		Descent:  &desc,
		FontSize: 12,
		Text:     "INV-001",
	})
	require.True(t, ok)

	assert.Equal(t, "INV-001", c.Text)
	assert.InDelta(t, 100, c.X, 1e-9)
	assert.InDelta(t, 50, c.Width, 1e-9)
	assert.InDelta(t, 12, c.Height, 1e-9)
	assert.InDelta(t, 709, c.Top, 1e-9)
	assert.InDelta(t, 697, c.Bottom, 1e-9)
	assert.InDelta(t, 703, c.Y, 1e-9)
	assert.InDelta(t, c.Height, c.Top-c.Bottom, 1e-9)
}

func TestResolve_NaNAscentFallsBackToFontSize(t *testing.T) {
	nan := math.NaN()
	asc := Line{Start: Point{X: nan, Y: nan}, End: Point{X: nan, Y: nan}}
	desc := horizontal(0, -2, 10)

	c, ok := Resolve(RenderEvent{
		Baseline: horizontal(0, 0, 10),
		Ascent:   &asc,
		Descent:  &desc,
		FontSize: 10,
		Text:     "x",
	})
	require.True(t, ok)

	assert.InDelta(t, 7.5, c.Height, 1e-9)
	assert.InDelta(t, 4.5, c.Top, 1e-9)
	assert.InDelta(t, -3, c.Bottom, 1e-9)
	assert.InDelta(t, 0.75, c.Y, 1e-9)
	assert.InDelta(t, 10, c.Width, 1e-9)
}

func TestResolvePage_NaNAscentAndDescentKeepsChunk(t *testing.T) {
	nan := math.NaN()
	asc := Line{Start: Point{X: nan, Y: nan}, End: Point{X: nan, Y: nan}}
	desc := Line{Start: Point{X: nan, Y: nan}, End: Point{X: nan, Y: nan}}

	page := ResolvePage([]RenderEvent{{
		Baseline: horizontal(0, 0, 10),
		Ascent:   &asc,
		Descent:  &desc,
		FontSize: 10,
		Text:     "x",
		FontName: "Helvetica",
	}}, 0)

	require.Len(t, page.Chunks, 1)
	c := page.Chunks[0]
	assert.Equal(t, "x", c.Text)
	assert.InDelta(t, 7.5, c.Height, 1e-9)
	assert.InDelta(t, c.Height, c.Top-c.Bottom, 1e-9)
	assert.False(t, math.IsNaN(c.Y))
}

func TestResolve_MetricsChain(t *testing.T) {
	tests := []struct {
		name     string
		metrics  *FontMetrics
		fontSize float64
		height   float64
	}{
		{"no metrics", nil, 10, 7.5},
		{"typo ascender and descender", &FontMetrics{TypoAscender: 800, TypoDescender: -200}, 10, 10},
		{"descender only", &FontMetrics{TypoDescender: -250}, 8, 2},
		{"cap height", &FontMetrics{CapHeight: 700}, 10, 7.7},
		{"x height", &FontMetrics{XHeight: 500}, 10, 7.5},
		{"empty metrics", &FontMetrics{}, 20, 15},
		{"zero font size", nil, 0, MinimumHeight},
		{"negative font size", &FontMetrics{CapHeight: 700}, -4, MinimumHeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := Resolve(RenderEvent{
				Baseline: horizontal(10, 10, 30),
				FontSize: tt.fontSize,
				Metrics:  tt.metrics,
				Text:     "abc",
			})
			require.True(t, ok)
			assert.InDelta(t, tt.height, c.Height, 1e-9)
			assert.InDelta(t, c.Height, c.Top-c.Bottom, 1e-9)
		})
	}
}

func TestResolve_DegenerateBaseline(t *testing.T) {
	c, ok := Resolve(RenderEvent{
		Baseline: Line{Start: Point{X: 5, Y: 5}, End: Point{X: 5, Y: 5}},
		FontSize: 10,
		Text:     "·",
	})
	require.True(t, ok)

	assert.Zero(t, c.Width)
	assert.InDelta(t, 7.5, c.Height, 1e-9)
	assert.False(t, math.IsNaN(c.Y))
	assert.False(t, math.IsNaN(c.Top))
	assert.False(t, math.IsNaN(c.Bottom))
}

func TestResolve_RotatedBaseline(t *testing.T) {
	c, ok := Resolve(RenderEvent{
		Baseline: Line{Start: Point{X: 100, Y: 100}, End: Point{X: 100, Y: 150}},
		FontSize: 10,
		Text:     "vertical",
	})
	require.True(t, ok)

	assert.InDelta(t, 50, c.Width, 1e-9)
	assert.InDelta(t, 7.5, c.Height, 1e-9)
	assert.InDelta(t, 100, c.X, 1e-9)
}

func TestResolve_NaNBaseline(t *testing.T) {
	nan := math.NaN()
	c, ok := Resolve(RenderEvent{
		Baseline: Line{Start: Point{X: nan, Y: 10}, End: Point{X: nan, Y: 10}},
		FontSize: 10,
		Text:     "x",
	})
	require.True(t, ok)

	assert.Zero(t, c.X)
	assert.Zero(t, c.Width)
	assert.False(t, math.IsNaN(c.Height))
}

func TestResolve_EmptyText(t *testing.T) {
	_, ok := Resolve(RenderEvent{Baseline: horizontal(0, 0, 10), FontSize: 10})
	assert.False(t, ok)
}

func TestEmRatio(t *testing.T) {
	assert.InDelta(t, 0.75, EmRatio(nil), 1e-9)
	assert.InDelta(t, 1.0, EmRatio(&FontMetrics{TypoAscender: 750, TypoDescender: -250, CapHeight: 700}), 1e-9)
	assert.InDelta(t, 0.77, EmRatio(&FontMetrics{CapHeight: 700, XHeight: 500}), 1e-9)
	assert.InDelta(t, 0.75, EmRatio(&FontMetrics{XHeight: 500}), 1e-9)
}

func TestNormalizeFontName(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"ABCDEF+Helvetica", "Helvetica"},
		{"Arial,Bold", "ArialBold"},
		{"  XYZABC+Times,Italic ", "TimesItalic"},
		{"abcdef+Helvetica", "abcdef+Helvetica"},
		{"ABC+Helvetica", "ABC+Helvetica"},
		{"Courier", "Courier"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeFontName(tt.raw))
		})
	}
}

func TestCollapseSpace(t *testing.T) {
	assert.Equal(t, "a b c", CollapseSpace("  a  b\t\nc "))
	assert.Equal(t, "", CollapseSpace("  \n"))
}

func TestFoldKey(t *testing.T) {
	assert.Equal(t, FoldKey("INV-001"), FoldKey(" inv-001 "))
	assert.NotEqual(t, FoldKey("INV-001"), FoldKey("INV-002"))
}
