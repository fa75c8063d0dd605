package geometry

import (
	"strings"

	"golang.org/x/text/cases"
)

// CollapseSpace replaces every run of Unicode whitespace, non-breaking and
// thin spaces included, with a single space and trims the result.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FoldKey returns the case-folded, trimmed form of s used as a map key
// wherever names or values compare case-insensitively.
func FoldKey(s string) string {
	// a Caser keeps state between calls, so each key gets its own
	return cases.Fold().String(strings.TrimSpace(s))
}
