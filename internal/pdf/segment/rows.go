package segment

import (
	"sort"
	"strings"

	"github.com/a3tai/mcp-pdf-counter/internal/pdf/fields"
	"github.com/a3tai/mcp-pdf-counter/internal/pdf/geometry"
)

// valueSeparator joins several distinct values of one field in a row
const valueSeparator = "; "

// DocumentRow is the pivot of one document: one column per field name
type DocumentRow struct {
	DocNo      int               `json:"doc_no"`
	StartPage  int               `json:"start_page"`
	Pages      int               `json:"pages"`
	BlankPages int               `json:"blank_pages"`
	Fonts      string            `json:"fonts"`
	Values     map[string]string `json:"values"`
}

// Columns returns the field names in the order they were first extracted
func (r *Result) Columns() []string {
	seen := make(map[string]struct{})
	cols := make([]string, 0)
	for _, p := range r.Properties {
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		cols = append(cols, p.Name)
	}
	return cols
}

// Rows pivots the properties into one row per document, ordered by document
// number. A field with several values in one document lists them in
// extraction order.
func (r *Result) Rows() []DocumentRow {
	rows := make([]DocumentRow, 0, len(r.Documents))
	index := make(map[int]int, len(r.Documents))
	for _, d := range r.Documents {
		index[d.DocNo] = len(rows)
		rows = append(rows, DocumentRow{
			DocNo:      d.DocNo,
			StartPage:  d.StartPage,
			Pages:      d.Pages,
			BlankPages: d.BlankPages,
			Fonts:      strings.Join(d.Fonts, ", "),
			Values:     make(map[string]string),
		})
	}

	for _, p := range r.Properties {
		i, ok := index[p.DocNo]
		if !ok {
			continue
		}
		if prev, ok := rows[i].Values[p.Name]; ok {
			rows[i].Values[p.Name] = prev + valueSeparator + p.Value
		} else {
			rows[i].Values[p.Name] = p.Value
		}
	}

	sort.SliceStable(rows, func(a, b int) bool { return rows[a].DocNo < rows[b].DocNo })
	return rows
}

// ValueCount is how many documents carry an identifier value
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// IdentifierSummary counts the values of the first identifier field across
// documents. A MaxCount above one means an identifier was reused.
type IdentifierSummary struct {
	Field    string       `json:"field"`
	Values   []ValueCount `json:"values"`
	MaxCount int          `json:"max_count"`
}

// Duplicates returns the values seen in more than one document
func (s IdentifierSummary) Duplicates() []string {
	var dups []string
	for _, v := range s.Values {
		if v.Count > 1 {
			dups = append(dups, v.Value)
		}
	}
	return dups
}

// IdentifierStats summarizes the first identifier field of fieldSet. It
// returns false when the set has no identifier.
func IdentifierStats(res *Result, fieldSet []fields.ExtractField) (IdentifierSummary, bool) {
	var name string
	for _, f := range fieldSet {
		if f.IsFirstPageIdentifier {
			name = f.Name
			break
		}
	}
	if name == "" || res == nil {
		return IdentifierSummary{}, false
	}

	summary := IdentifierSummary{Field: name, Values: []ValueCount{}}
	nameKey := geometry.FoldKey(name)
	counted := make(map[int]bool)
	index := make(map[string]int)

	for _, p := range res.Properties {
		if counted[p.DocNo] || geometry.FoldKey(p.Name) != nameKey {
			continue
		}
		counted[p.DocNo] = true

		key := geometry.FoldKey(p.Value)
		if i, ok := index[key]; ok {
			summary.Values[i].Count++
			continue
		}
		index[key] = len(summary.Values)
		summary.Values = append(summary.Values, ValueCount{Value: p.Value, Count: 1})
	}

	sort.SliceStable(summary.Values, func(a, b int) bool {
		va, vb := summary.Values[a], summary.Values[b]
		if va.Count != vb.Count {
			return va.Count > vb.Count
		}
		return va.Value < vb.Value
	})
	if len(summary.Values) > 0 {
		summary.MaxCount = summary.Values[0].Count
	}
	return summary, true
}
