package geometry

import (
	"math"
	"strings"
)

const (
	// DefaultEmRatio is used when no font metric can size the glyph box
	DefaultEmRatio = 0.75

	// MinimumHeight is the absolute last-resort chunk height in points
	MinimumHeight = 8.0

	capHeightFactor = 1.1
	xHeightFactor   = 1.5

	// share of the height placed above the baseline in the metrics fallback
	aboveBaseline = 0.6

	metricsUnitsPerEm = 1000.0
)

// Resolve turns a single render event into a positioned chunk.
// It reports false when the event carries no text. Degenerate geometry is
// never an error: missing or NaN ascent/descent data falls back to font
// metrics and then to fixed ratios of the font size.
func Resolve(ev RenderEvent) (Chunk, bool) {
	if ev.Text == "" {
		return Chunk{}, false
	}

	base := ev.Baseline.Start
	dirX := ev.Baseline.End.X - base.X
	dirY := ev.Baseline.End.Y - base.Y
	dirLen := math.Hypot(dirX, dirY)
	if !(dirLen > 0) {
		dirLen = 1
	}

	// unit normal to the baseline
	nX := -dirY / dirLen
	nY := dirX / dirLen

	// scalar projection of (end - start) onto the baseline direction
	width := dirX*(dirX/dirLen) + dirY*(dirY/dirLen)

	var height, top, bottom float64
	if ev.Ascent.valid() && ev.Descent.valid() {
		height, top, bottom = fromAscentDescent(*ev.Ascent, *ev.Descent, nX, nY)
	} else {
		height, top, bottom = fromMetrics(ev, base, nX, nY)
	}

	x := base.X
	if math.IsNaN(x) {
		x = 0
	}
	if math.IsNaN(width) || width < 0 {
		width = 0
	}
	if math.IsNaN(height) || height < 0 {
		height = 0
	}
	if math.IsNaN(top) || math.IsNaN(bottom) {
		top = base.Y + height*0.5
		bottom = base.Y - height*0.5
	}

	y := (top + bottom) / 2
	if math.IsNaN(y) {
		y = base.Y
	}

	return Chunk{
		Text:   ev.Text,
		X:      x,
		Y:      y,
		Width:  width,
		Top:    top,
		Bottom: bottom,
		Height: height,
	}, true
}

// fromAscentDescent measures the distance between the ascent and descent
// lines along the baseline normal at both ends and keeps the larger one,
// which stays correct for skewed or rotated runs.
func fromAscentDescent(asc, desc Line, nX, nY float64) (height, top, bottom float64) {
	dist := func(a, d Point) float64 {
		return math.Abs((a.X-d.X)*nX + (a.Y-d.Y)*nY)
	}

	height = math.Max(dist(asc.Start, desc.Start), dist(asc.End, desc.End))

	ascMaxY := math.Max(asc.Start.Y, asc.End.Y)
	descMinY := math.Min(desc.Start.Y, desc.End.Y)
	top = math.Max(ascMaxY, descMinY+height)
	bottom = top - height
	return height, top, bottom
}

// fromMetrics places a box of fontSize*emRatio around the baseline,
// 60% above and 40% below along the normal.
func fromMetrics(ev RenderEvent, base Point, nX, nY float64) (height, top, bottom float64) {
	height = ev.FontSize * EmRatio(ev.Metrics)
	if !(height > 0) {
		height = MinimumHeight
	}

	topY := base.Y + nY*(height*aboveBaseline)
	botY := topY - nY*height

	return height, math.Max(topY, botY), math.Min(topY, botY)
}

// EmRatio returns the glyph box height as a fraction of the font size,
// derived from the first usable font metric.
func EmRatio(m *FontMetrics) float64 {
	if m == nil {
		return DefaultEmRatio
	}

	asc := m.TypoAscender
	desc := math.Abs(m.TypoDescender)
	switch {
	case asc != 0 || desc != 0:
		return (asc + desc) / metricsUnitsPerEm
	case m.CapHeight != 0:
		return m.CapHeight / metricsUnitsPerEm * capHeightFactor
	case m.XHeight != 0:
		return m.XHeight / metricsUnitsPerEm * xHeightFactor
	default:
		return DefaultEmRatio
	}
}

// NormalizeFontName strips a subset tag such as "ABCDEF+" and any commas.
func NormalizeFontName(raw string) string {
	name := strings.TrimSpace(raw)
	if i := strings.IndexByte(name, '+'); i == 6 && isSubsetTag(name[:i]) {
		name = name[i+1:]
	}
	return strings.TrimSpace(strings.ReplaceAll(name, ",", ""))
}

func isSubsetTag(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}
