package fields

import (
	"errors"
	"fmt"
	"strings"

	"github.com/a3tai/mcp-pdf-counter/internal/pdf/geometry"
)

// FieldError describes a descriptor that cannot be used as authored
type FieldError struct {
	Index  int
	Name   string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("field %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("field %d (%s): %s", e.Index, e.Name, e.Reason)
}

// Validate checks a field set before a scan. Every problem is reported;
// the result is nil or an errors.Join of *FieldError values.
//
// Scanning never requires this: a malformed field simply extracts nothing.
func Validate(fields []ExtractField) error {
	var errs []error
	seen := make(map[string]int)

	for i, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			errs = append(errs, &FieldError{Index: i, Reason: "name is required"})
			continue
		}

		key := geometry.FoldKey(name)
		if first, dup := seen[key]; dup {
			errs = append(errs, &FieldError{
				Index:  i,
				Name:   name,
				Reason: fmt.Sprintf("duplicate name, first defined at field %d", first),
			})
		} else {
			seen[key] = i
		}

		if f.IsInlineValue || strings.TrimSpace(f.MatchValues) != "" {
			continue
		}
		if !(f.X > 0) || !(f.Y > 0) || !(f.Width > 0) || !(f.Height > 0) {
			errs = append(errs, &FieldError{
				Index:  i,
				Name:   name,
				Reason: "rectangle fields need positive x, y, width and height",
			})
		}
	}

	return errors.Join(errs...)
}
