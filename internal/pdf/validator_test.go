package pdf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-pdf-counter/internal/pdf/pdftest"
)

func TestValidator_ValidateFile(t *testing.T) {
	dir := t.TempDir()
	valid := pdftest.WriteFile(t, dir, "valid.pdf", textPage("hello"), textPage("world"))

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}
	notPDF := write("notes.txt", "plain text")
	empty := write("empty.pdf", "")
	garbage := write("garbage.pdf", "this is not a pdf")
	broken := write("broken.pdf", "%PDF-1.4\nno objects here")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.pdf"), 0o755))

	tests := []struct {
		name      string
		path      string
		maxSize   int64
		wantValid bool
		wantPages int
		wantMsg   string
	}{
		{name: "valid", path: valid, maxSize: testMaxFileSize, wantValid: true, wantPages: 2},
		{name: "empty path", path: "", maxSize: testMaxFileSize, wantMsg: "path cannot be empty"},
		{name: "missing", path: filepath.Join(dir, "missing.pdf"), maxSize: testMaxFileSize, wantMsg: "does not exist"},
		{name: "directory", path: filepath.Join(dir, "folder.pdf"), maxSize: testMaxFileSize, wantMsg: "is a directory"},
		{name: "wrong extension", path: notPDF, maxSize: testMaxFileSize, wantMsg: "not a PDF"},
		{name: "empty file", path: empty, maxSize: testMaxFileSize, wantMsg: "file is empty"},
		{name: "too large", path: valid, maxSize: 10, wantMsg: "file too large"},
		{name: "garbage", path: garbage, maxSize: testMaxFileSize, wantMsg: "invalid PDF file"},
		{name: "broken structure", path: broken, maxSize: testMaxFileSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(tt.maxSize)
			res, err := v.ValidateFile(ValidateFileRequest{Path: tt.path})
			require.NoError(t, err)
			assert.Equal(t, tt.path, res.Path)
			assert.Equal(t, tt.wantValid, res.Valid)
			assert.Equal(t, tt.wantPages, res.Pages)
			if tt.wantValid {
				assert.Empty(t, res.Message)
				assert.NoError(t, v.Check(tt.path))
				return
			}
			assert.NotEmpty(t, res.Message)
			if tt.wantMsg != "" {
				assert.Contains(t, res.Message, tt.wantMsg)
			}
		})
	}
}

func TestValidator_Accept(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.WriteFile(t, dir, "doc.PDF", textPage("x"))
	info, err := os.Stat(path)
	require.NoError(t, err)

	assert.NoError(t, NewValidator(testMaxFileSize).Accept(path, info))

	err = NewValidator(1).Accept(path, info)
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.ErrorContains(t, err, "(max: 1 bytes)")

	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	assert.ErrorIs(t, NewValidator(testMaxFileSize).Accept(dir, dirInfo), ErrIsDirectory)
}

func TestValidator_Check(t *testing.T) {
	v := NewValidator(testMaxFileSize)
	assert.ErrorIs(t, v.Check(""), ErrEmptyPath)
	assert.ErrorIs(t, v.Check(filepath.Join(t.TempDir(), "gone.pdf")), ErrNotExist)
}
