package geometry

import "math"

// Point is a coordinate in PDF user space (points, bottom-left origin)
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsNaN reports whether either coordinate is NaN
func (p Point) IsNaN() bool {
	return math.IsNaN(p.X) || math.IsNaN(p.Y)
}

// Line is a directed segment, used for baselines and ascent/descent lines
type Line struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// valid reports whether the line exists and carries usable coordinates
func (l *Line) valid() bool {
	return l != nil && !l.Start.IsNaN() && !l.End.IsNaN()
}

// FontMetrics holds font program metrics in glyph space units (1/1000 em)
type FontMetrics struct {
	TypoAscender  float64 `json:"typo_ascender"`
	TypoDescender float64 `json:"typo_descender"`
	CapHeight     float64 `json:"cap_height"`
	XHeight       float64 `json:"x_height"`
}

// RenderEvent is one text-rendering primitive emitted by the page decoder.
// Ascent and Descent are optional; Metrics may be nil for fonts that carry
// no descriptor (Type3, standard 14 fonts).
type RenderEvent struct {
	Baseline Line         `json:"baseline"`
	Ascent   *Line        `json:"ascent,omitempty"`
	Descent  *Line        `json:"descent,omitempty"`
	FontSize float64      `json:"font_size"`
	Metrics  *FontMetrics `json:"metrics,omitempty"`
	Text     string       `json:"text"`
	FontName string       `json:"font_name"`
}

// Chunk is a positioned run of decoded text on a page.
// Top and Bottom are reported as if the page were not rotated.
type Chunk struct {
	Text   string  `json:"text"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the chunk's right edge
func (c Chunk) Right() float64 {
	return c.X + c.Width
}

// Area returns the chunk's bounding box area
func (c Chunk) Area() float64 {
	return c.Width * (c.Top - c.Bottom)
}
