// Package errors holds the typed diagnostics recorded while scanning a PDF.
// Page-level problems never abort a scan; they are collected and reported
// next to the result.
package errors

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ErrorType names the class of a diagnostic. It is rendered verbatim in
// JSON and in error strings.
type ErrorType string

const (
	ErrorTypeInvalidDocument     ErrorType = "INVALID_DOCUMENT"
	ErrorTypeMalformedPage       ErrorType = "MALFORMED_PAGE"
	ErrorTypeInvalidField        ErrorType = "INVALID_FIELD"
	ErrorTypeSecurityRestriction ErrorType = "SECURITY_RESTRICTION"
	ErrorTypeTimeout             ErrorType = "TIMEOUT"
	ErrorTypeCancelled           ErrorType = "CANCELLED"
)

// Recoverable reports whether a scan keeps going past an error of this type.
// Only a page that fails to decode is skipped, everything else stops the
// request.
func (t ErrorType) Recoverable() bool {
	return t == ErrorTypeMalformedPage
}

// PDFError is a diagnostic tied to a file and optionally a page
type PDFError struct {
	Type        ErrorType `json:"type"`
	File        string    `json:"file,omitempty"`
	Page        int       `json:"page,omitempty"`
	Message     string    `json:"message"`
	Detail      string    `json:"detail,omitempty"`
	Recoverable bool      `json:"recoverable"`
	At          time.Time `json:"at"`

	cause error
}

// New creates a diagnostic of the given type
func New(t ErrorType, message string) *PDFError {
	return &PDFError{
		Type:        t,
		Message:     message,
		Recoverable: t.Recoverable(),
		At:          time.Now(),
	}
}

// Wrap turns err into a diagnostic of the given type, keeping it as the
// cause. An err that already is a *PDFError is returned unchanged.
func Wrap(t ErrorType, err error) *PDFError {
	if pe, ok := err.(*PDFError); ok {
		return pe
	}
	e := New(t, err.Error())
	e.cause = err
	return e
}

func (e *PDFError) Error() string {
	var b strings.Builder
	b.WriteString("[" + string(e.Type) + "] ")
	if e.Page > 0 {
		fmt.Fprintf(&b, "page %d: ", e.Page)
	}
	b.WriteString(e.Message)
	if e.Detail != "" {
		b.WriteString(": " + e.Detail)
	}
	return b.String()
}

func (e *PDFError) Unwrap() error {
	return e.cause
}

// OnPage sets the 1-based page the diagnostic refers to
func (e *PDFError) OnPage(page int) *PDFError {
	e.Page = page
	return e
}

// InFile sets the file the diagnostic refers to
func (e *PDFError) InFile(path string) *PDFError {
	e.File = path
	return e
}

// Detailf attaches a formatted detail line
func (e *PDFError) Detailf(format string, args ...any) *PDFError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Diagnostics lists the pages a scan skipped, one entry per page in page
// order
type Diagnostics struct {
	File    string      `json:"file,omitempty"`
	Skipped []*PDFError `json:"skipped"`
}

// NewDiagnostics returns an empty list for the given file
func NewDiagnostics(file string) *Diagnostics {
	return &Diagnostics{File: file, Skipped: []*PDFError{}}
}

// Skip records that page could not be decoded. Errors that are not already
// diagnostics become MALFORMED_PAGE. A second record for the same page
// replaces the first.
func (d *Diagnostics) Skip(page int, err error) *PDFError {
	pe := Wrap(ErrorTypeMalformedPage, err).OnPage(page)
	if pe.File == "" {
		pe.File = d.File
	}

	i := sort.Search(len(d.Skipped), func(i int) bool { return d.Skipped[i].Page >= page })
	switch {
	case i < len(d.Skipped) && d.Skipped[i].Page == page:
		d.Skipped[i] = pe
	default:
		d.Skipped = append(d.Skipped, nil)
		copy(d.Skipped[i+1:], d.Skipped[i:])
		d.Skipped[i] = pe
	}
	return pe
}

// Len returns the number of skipped pages
func (d *Diagnostics) Len() int {
	return len(d.Skipped)
}

// Pages returns the skipped page numbers, ascending
func (d *Diagnostics) Pages() []int {
	pages := make([]int, len(d.Skipped))
	for i, pe := range d.Skipped {
		pages[i] = pe.Page
	}
	return pages
}

// Summary renders the skipped pages as one warning line
func (d *Diagnostics) Summary() string {
	if d.Len() == 0 {
		return "no pages skipped"
	}
	pages := make([]string, len(d.Skipped))
	for i, pe := range d.Skipped {
		pages[i] = fmt.Sprint(pe.Page)
	}
	return fmt.Sprintf("skipped %d page(s) that could not be decoded: %s",
		d.Len(), strings.Join(pages, ", "))
}
