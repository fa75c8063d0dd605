package fields

import (
	"math"
	"sort"
	"strings"

	"github.com/a3tai/mcp-pdf-counter/internal/pdf/geometry"
)

const (
	// rectangles grow by this many points on every side before matching
	rectPadding = 0.5

	// share of a chunk's area that must fall inside the rectangle
	minCoverage = 0.6

	minHeightTolerance   = 1.5
	heightToleranceRatio = 0.25

	minChunkArea = 0.0001

	// max baseline distance between an inline label and its value
	inlineYTolerance = 2.0
)

// Rule is a field compiled for extraction. The mode and any candidate set
// are fixed at compile time.
type Rule struct {
	Field ExtractField
	Mode  Mode

	candidates map[string]struct{}
}

// NewRule compiles a single field
func NewRule(f ExtractField) *Rule {
	r := &Rule{Field: f, Mode: f.Mode()}
	if r.Mode == ModeMatchList {
		r.candidates = matchSet(f.MatchValues)
	}
	return r
}

// Compile compiles fields in order
func Compile(fields []ExtractField) []*Rule {
	rules := make([]*Rule, 0, len(fields))
	for _, f := range fields {
		rules = append(rules, NewRule(f))
	}
	return rules
}

// Name returns the field name
func (r *Rule) Name() string {
	return r.Field.Name
}

// Identifier reports whether the field marks document boundaries
func (r *Rule) Identifier() bool {
	return r.Field.IsFirstPageIdentifier
}

// Extract returns the field value found among the page chunks, or "" when
// nothing matches.
func (r *Rule) Extract(chunks []geometry.Chunk) string {
	switch r.Mode {
	case ModeRectangle:
		f := r.Field
		return extractRectangle(chunks, f.X, f.Y, f.Width, f.Height)
	case ModeInline:
		return extractInline(chunks, r.Field.Name)
	case ModeMatchList:
		return extractMatch(chunks, r.candidates)
	default:
		return ""
	}
}

func extractRectangle(chunks []geometry.Chunk, x, y, w, h float64) string {
	left := x - rectPadding
	bottom := y - rectPadding
	right := x + w + rectPadding
	top := y + h + rectPadding
	rectHeight := top - bottom

	var hits []geometry.Chunk
	for _, c := range chunks {
		iw := min(right, c.Right()) - max(left, c.X)
		ih := min(top, c.Top) - max(bottom, c.Bottom)
		if iw <= 0 || ih <= 0 {
			continue
		}

		area := max(c.Area(), minChunkArea)
		if iw*ih/area < minCoverage {
			continue
		}

		tolerance := max(minHeightTolerance, heightToleranceRatio*c.Height)
		if math.Abs(c.Height-rectHeight) > tolerance {
			continue
		}
		hits = append(hits, c)
	}
	if len(hits) == 0 {
		return ""
	}

	hits = geometry.SortReadingOrder(hits)
	parts := make([]string, len(hits))
	for i, c := range hits {
		parts[i] = c.Text
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func extractInline(chunks []geometry.Chunk, label string) string {
	if strings.TrimSpace(label) == "" {
		return ""
	}

	// the label chunk must equal the name exactly, case aside
	idx := -1
	for i, c := range chunks {
		if strings.EqualFold(c.Text, label) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ""
	}
	lbl := chunks[idx]

	var right []geometry.Chunk
	for _, c := range chunks {
		if c.X > lbl.Right() && math.Abs(c.Y-lbl.Y) < inlineYTolerance {
			right = append(right, c)
		}
	}
	if len(right) == 0 {
		return ""
	}
	sort.SliceStable(right, func(i, j int) bool { return right[i].X < right[j].X })
	return strings.TrimSpace(right[0].Text)
}

func extractMatch(chunks []geometry.Chunk, candidates map[string]struct{}) string {
	if len(candidates) == 0 {
		return ""
	}
	for _, c := range chunks {
		if _, ok := candidates[geometry.FoldKey(geometry.CollapseSpace(c.Text))]; ok {
			return c.Text
		}
	}
	return ""
}

func matchSet(values string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, v := range strings.Split(values, ",") {
		v = geometry.CollapseSpace(v)
		if v == "" {
			continue
		}
		set[geometry.FoldKey(v)] = struct{}{}
	}
	return set
}
