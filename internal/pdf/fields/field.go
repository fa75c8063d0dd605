// Package fields describes the values to pull out of each detected document
// and the spatial/textual strategies that locate them on a page.
package fields

import (
	"strings"

	"github.com/a3tai/mcp-pdf-counter/internal/pdf/geometry"
)

// ExtractField is a user-defined field descriptor. Coordinates are PDF
// points with a bottom-left origin.
type ExtractField struct {
	Name                  string  `json:"name" mapstructure:"name"`
	IsFirstPageIdentifier bool    `json:"is_first_page_identifier" mapstructure:"is_first_page_identifier"`
	IsInlineValue         bool    `json:"is_inline_value" mapstructure:"is_inline_value"`
	MatchValues           string  `json:"match_values,omitempty" mapstructure:"match_values"`
	X                     float64 `json:"x" mapstructure:"x"`
	Y                     float64 `json:"y" mapstructure:"y"`
	Width                 float64 `json:"width" mapstructure:"width"`
	Height                float64 `json:"height" mapstructure:"height"`
	// PageIndex is the sample page the field was authored on. Extraction
	// applies the field to every page regardless.
	PageIndex int `json:"page_index,omitempty" mapstructure:"page_index"`
}

// Mode is the extraction strategy of a field
type Mode int

const (
	ModeNone Mode = iota
	ModeRectangle
	ModeInline
	ModeMatchList
)

// String returns the string representation of the mode
func (m Mode) String() string {
	switch m {
	case ModeRectangle:
		return "rectangle"
	case ModeInline:
		return "inline"
	case ModeMatchList:
		return "match_list"
	default:
		return "none"
	}
}

// Mode resolves the strategy of the field. A rectangle needs a positive
// size and neither of the other modes; inline wins over a match list.
func (f ExtractField) Mode() Mode {
	hasMatch := strings.TrimSpace(f.MatchValues) != ""
	switch {
	case !f.IsInlineValue && !hasMatch && f.Width > 0 && f.Height > 0:
		return ModeRectangle
	case f.IsInlineValue:
		return ModeInline
	case hasMatch:
		return ModeMatchList
	default:
		return ModeNone
	}
}

// IdentifierCount returns how many fields mark document boundaries
func IdentifierCount(fields []ExtractField) int {
	n := 0
	for _, f := range fields {
		if f.IsFirstPageIdentifier {
			n++
		}
	}
	return n
}

// FromChunk seeds a rectangle field covering chunk c
func FromChunk(name string, c geometry.Chunk) ExtractField {
	y := c.Bottom
	if y == 0 {
		y = c.Y - c.Height/2
	}
	return ExtractField{
		Name:   strings.TrimSpace(name),
		X:      c.X,
		Y:      y,
		Width:  c.Width,
		Height: c.Height,
	}
}
