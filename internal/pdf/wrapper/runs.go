package wrapper

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

const (
	// glyphs further apart than this share of the font size start a new run
	maxGapRatio = 0.3

	// baseline drift allowed inside one run, in points
	baselineTolerance = 0.5

	sizeTolerance = 0.01

	// advance assumed per glyph when the font carries no widths
	fallbackAdvanceRatio = 0.5
)

// glyphRun is a single-line sequence of glyphs sharing font, size and
// baseline
type glyphRun struct {
	font   string
	size   float64
	x      float64
	y      float64
	right  float64
	text   string
	glyphs int
}

// groupRuns merges the per-glyph output of the decoder into runs.
// A newline glyph always ends the current run.
func groupRuns(texts []pdf.Text) []glyphRun {
	var runs []glyphRun
	var current []pdf.Text

	flush := func() {
		if len(current) > 0 {
			runs = append(runs, buildRun(current))
			current = nil
		}
	}

	for _, t := range texts {
		if t.S == "\n" {
			flush()
			continue
		}
		if len(current) > 0 && !continuesRun(current[len(current)-1], current[0], t) {
			flush()
		}
		current = append(current, t)
	}
	flush()
	return runs
}

func continuesRun(prev, first, next pdf.Text) bool {
	if next.Font != first.Font {
		return false
	}
	size := math.Abs(first.FontSize)
	if math.Abs(math.Abs(next.FontSize)-size) > sizeTolerance {
		return false
	}
	if math.Abs(next.Y-first.Y) > baselineTolerance {
		return false
	}
	gap := next.X - (prev.X + prev.W)
	return math.Abs(gap) <= maxGapRatio*size
}

// buildRun trims whitespace glyphs at both ends. A run made only of
// whitespace keeps its font but carries no text.
func buildRun(glyphs []pdf.Text) glyphRun {
	first := glyphs[0]
	run := glyphRun{
		font:  first.Font,
		size:  math.Abs(first.FontSize),
		x:     first.X,
		y:     first.Y,
		right: first.X,
	}

	start, end := 0, len(glyphs)
	for start < end && isBlank(glyphs[start].S) {
		start++
	}
	for end > start && isBlank(glyphs[end-1].S) {
		end--
	}
	if start == end {
		return run
	}

	var b strings.Builder
	for _, g := range glyphs[start:end] {
		b.WriteString(g.S)
	}
	last := glyphs[end-1]

	run.x = glyphs[start].X
	run.right = last.X + last.W
	run.text = b.String()
	run.glyphs = utf8.RuneCountInString(run.text)
	if run.right <= run.x {
		run.right = run.x + float64(run.glyphs)*run.size*fallbackAdvanceRatio
	}
	return run
}

func isBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}
