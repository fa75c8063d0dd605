// Package wrapper adapts the third-party PDF libraries to the page source
// used by the scanner: ledongthuc/pdf decodes text and fonts, pdfcpu reads
// page geometry and validates files.
package wrapper

import (
	"errors"
	"fmt"
)

// DefaultPageHeight is used when neither library reports a page size (US Letter)
const DefaultPageHeight = 792.0

var (
	ErrDocumentClosed = errors.New("document is closed")
	ErrInvalidPage    = errors.New("invalid page number")
)

// LibraryError records which decoder failed and on what
type LibraryError struct {
	Library string `json:"library"`
	Op      string `json:"operation"`
	Page    int    `json:"page,omitempty"`
	Err     error  `json:"error"`
}

func (e *LibraryError) Error() string {
	where := e.Op
	if e.Page > 0 {
		where = fmt.Sprintf("%s, page %d", e.Op, e.Page)
	}
	return fmt.Sprintf("%s (%s): %v", e.Library, where, e.Err)
}

func (e *LibraryError) Unwrap() error {
	return e.Err
}

func textError(op string, page int, err error) *LibraryError {
	return &LibraryError{Library: "ledongthuc", Op: op, Page: page, Err: err}
}

func structureError(op string, err error) *LibraryError {
	return &LibraryError{Library: "pdfcpu", Op: op, Err: err}
}
