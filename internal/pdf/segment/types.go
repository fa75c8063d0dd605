// Package segment splits a multi-document PDF bundle into logical documents
// and resolves field values for each of them.
package segment

import (
	pdferrors "github.com/a3tai/mcp-pdf-counter/internal/pdf/errors"
	"github.com/a3tai/mcp-pdf-counter/internal/pdf/geometry"
)

// Document is an open PDF as seen by the scanner. Pages are 1-based.
// Implementations need not be safe for concurrent use.
type Document interface {
	PageCount() int
	PageHeight(page int) (float64, error)
	// VisitText calls visit once for every text render event of the page,
	// in content stream order.
	VisitText(page int, visit func(geometry.RenderEvent)) error
	// PageText returns the full plain text of the page, used for blank
	// page detection.
	PageText(page int) (string, error)
}

// Property is one extracted field value of one detected document
type Property struct {
	DocNo           int    `json:"doc_no"`
	DocStartingPage int    `json:"doc_starting_page"`
	Name            string `json:"name"`
	Value           string `json:"value"`
	DocPages        int    `json:"doc_pages"`
	DocBlankPages   int    `json:"doc_blank_pages"`
	Fonts           string `json:"fonts"`
}

// DocumentSummary describes one detected document. Pages are inclusive.
type DocumentSummary struct {
	DocNo      int      `json:"doc_no"`
	StartPage  int      `json:"start_page"`
	EndPage    int      `json:"end_page"`
	Pages      int      `json:"pages"`
	BlankPages int      `json:"blank_pages"`
	Fonts      []string `json:"fonts"`
}

// Result is the outcome of one scan. Every list is deterministic for a
// given page stream and field set; ScanID and diagnostic timestamps are the
// only values that differ between runs.
type Result struct {
	ScanID          string                 `json:"scan_id"`
	Properties      []Property             `json:"properties"`
	TotalPages      int                    `json:"total_pages"`
	TotalBlankPages int                    `json:"total_blank_pages"`
	TotalDocuments  int                    `json:"total_documents"`
	Fonts           []string               `json:"fonts"`
	Documents       []DocumentSummary      `json:"documents"`
	SkippedPages    []int                  `json:"skipped_pages"`
	Diagnostics     *pdferrors.Diagnostics `json:"diagnostics"`
}

func newResult(scanID, filePath string) *Result {
	return &Result{
		ScanID:       scanID,
		Properties:   []Property{},
		Fonts:        []string{},
		Documents:    []DocumentSummary{},
		SkippedPages: []int{},
		Diagnostics:  pdferrors.NewDiagnostics(filePath),
	}
}
