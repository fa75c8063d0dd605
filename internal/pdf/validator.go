package pdf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/a3tai/mcp-pdf-counter/internal/pdf/wrapper"
)

// Reasons a file is refused before any PDF parsing happens
var (
	ErrEmptyPath   = errors.New("path cannot be empty")
	ErrNotExist    = errors.New("file does not exist")
	ErrIsDirectory = errors.New("path is a directory, not a file")
	ErrNotPDF      = errors.New("file is not a PDF")
	ErrEmptyFile   = errors.New("file is empty")
	ErrTooLarge    = errors.New("file too large")
)

// Validator decides whether a file is something the scanner can open
type Validator struct {
	maxFileSize int64
}

func NewValidator(maxFileSize int64) *Validator {
	return &Validator{maxFileSize: maxFileSize}
}

// ValidateFile reports whether path is a readable, non-empty .pdf within the
// size limit that both PDF libraries parse. A refused file is a result with
// a message, never an error.
func (v *Validator) ValidateFile(req ValidateFileRequest) (*ValidateFileResult, error) {
	result := &ValidateFileResult{Path: req.Path}

	pages, err := v.inspect(req.Path)
	if err != nil {
		result.Message = err.Error()
		return result, nil
	}
	result.Valid = true
	result.Pages = pages
	return result, nil
}

func (v *Validator) inspect(path string) (int, error) {
	if err := v.Check(path); err != nil {
		return 0, err
	}
	return wrapper.Validate(path)
}

// Check stats path, applies Accept and opens the file with the text
// decoder. The structural pdfcpu validation is left to ValidateFile.
func (v *Validator) Check(path string) error {
	if path == "" {
		return ErrEmptyPath
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrNotExist, path)
	case err != nil:
		return fmt.Errorf("cannot access file: %w", err)
	}
	if err := v.Accept(path, info); err != nil {
		return err
	}

	f, _, err := pdf.Open(path)
	if err != nil {
		return fmt.Errorf("invalid PDF file: %w", err)
	}
	return f.Close()
}

// Accept applies the name and size rules to already stat'ed file info
func (v *Validator) Accept(path string, info fs.FileInfo) error {
	switch size := info.Size(); {
	case info.IsDir():
		return fmt.Errorf("%w: %s", ErrIsDirectory, path)
	case !isPDFFile(path):
		return fmt.Errorf("%w: %s", ErrNotPDF, path)
	case size == 0:
		return fmt.Errorf("%w: %s", ErrEmptyFile, path)
	case size > v.maxFileSize:
		return fmt.Errorf("%w: %d bytes (max: %d bytes)", ErrTooLarge, size, v.maxFileSize)
	}
	return nil
}

func isPDFFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pdf")
}
