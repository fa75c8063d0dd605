package pdf

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"unicode"

	"github.com/a3tai/mcp-pdf-counter/internal/pdf/geometry"
)

// Search discovers the PDF files a directory scan should process
type Search struct {
	validator *Validator
}

// NewSearch creates a new PDF search handler with the specified constraints
func NewSearch(maxFileSize int64) *Search {
	return &Search{
		validator: NewValidator(maxFileSize),
	}
}

// FindPDFs walks directory and returns every PDF that passes the quick
// file checks and matches query, sorted by path. Unreadable entries are
// skipped. Symlinked directories are not followed.
func (s *Search) FindPDFs(ctx context.Context, directory, query string) ([]FileInfo, error) {
	if directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", directory)
	}

	q := parseQuery(query)
	files := []FileInfo{}

	err := filepath.WalkDir(directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // keep walking past unreadable entries
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !isPDFFile(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil //nolint:nilerr // keep walking past unreadable entries
		}
		if s.validator.Accept(path, info) != nil {
			return nil
		}
		if !q.match(d.Name()) {
			return nil
		}

		files = append(files, FileInfo{
			Path:         path,
			Name:         d.Name(),
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// nameQuery matches file names against a directory scan filter. The name
// matches when it contains the whole filter, or when every filter word is
// part of some name word. Matching is case-folded and ignores the .pdf
// extension.
type nameQuery struct {
	phrase string
	words  []string
}

func parseQuery(query string) nameQuery {
	phrase := geometry.FoldKey(query)
	return nameQuery{phrase: phrase, words: splitIntoWords(phrase)}
}

func (q nameQuery) match(filename string) bool {
	if q.phrase == "" {
		return true
	}
	name := geometry.FoldKey(strings.TrimSuffix(filename, filepath.Ext(filename)))
	if strings.Contains(name, q.phrase) {
		return true
	}

	nameWords := splitIntoWords(name)
	return !slices.ContainsFunc(q.words, func(w string) bool {
		return !slices.ContainsFunc(nameWords, func(n string) bool { return strings.Contains(n, w) })
	})
}

func splitIntoWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune("_-.()[]", r)
	})
}
