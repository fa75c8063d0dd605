package geometry

import (
	"sort"
	"strings"
)

// FontSet is a case-insensitive set of font names. The first spelling seen
// for a name is the one reported.
type FontSet struct {
	names map[string]string
}

// NewFontSet creates a set holding the given names
func NewFontSet(names ...string) *FontSet {
	s := &FontSet{names: make(map[string]string)}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add records a font name after normalization. Empty names are ignored.
func (s *FontSet) Add(name string) {
	name = NormalizeFontName(name)
	if name == "" {
		return
	}
	if s.names == nil {
		s.names = make(map[string]string)
	}
	key := FoldKey(name)
	if _, ok := s.names[key]; !ok {
		s.names[key] = name
	}
}

// Merge adds every name of other to s
func (s *FontSet) Merge(other *FontSet) {
	if other == nil {
		return
	}
	for _, n := range other.names {
		s.Add(n)
	}
}

// Clone returns an independent copy
func (s *FontSet) Clone() *FontSet {
	c := NewFontSet()
	c.Merge(s)
	return c
}

// Len returns the number of distinct fonts
func (s *FontSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Sorted returns the names ordered by their normalized key
func (s *FontSet) Sorted() []string {
	if s == nil {
		return []string{}
	}
	keys := make([]string, 0, len(s.names))
	for k := range s.names {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = s.names[k]
	}
	return out
}

// Join renders the sorted names separated by sep
func (s *FontSet) Join(sep string) string {
	return strings.Join(s.Sorted(), sep)
}
