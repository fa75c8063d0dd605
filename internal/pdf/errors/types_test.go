package errors

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Recoverable(t *testing.T) {
	for _, tt := range []struct {
		errType     ErrorType
		recoverable bool
	}{
		{ErrorTypeMalformedPage, true},
		{ErrorTypeInvalidDocument, false},
		{ErrorTypeInvalidField, false},
		{ErrorTypeSecurityRestriction, false},
		{ErrorTypeTimeout, false},
		{ErrorTypeCancelled, false},
	} {
		t.Run(string(tt.errType), func(t *testing.T) {
			assert.Equal(t, tt.recoverable, tt.errType.Recoverable())
			assert.Equal(t, tt.recoverable, New(tt.errType, "x").Recoverable)
		})
	}
}

func TestPDFError_Error(t *testing.T) {
	err := New(ErrorTypeMalformedPage, "content stream unreadable")
	assert.Equal(t, "[MALFORMED_PAGE] content stream unreadable", err.Error())

	err.OnPage(3).Detailf("offset %d: %v", 120, io.ErrUnexpectedEOF)
	assert.Equal(t, "[MALFORMED_PAGE] page 3: content stream unreadable: offset 120: unexpected EOF", err.Error())
}

func TestWrap(t *testing.T) {
	err := Wrap(ErrorTypeInvalidDocument, io.ErrUnexpectedEOF).InFile("/tmp/a.pdf")

	assert.True(t, stderrors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, "/tmp/a.pdf", err.File)
	assert.False(t, err.Recoverable)

	assert.Same(t, err, Wrap(ErrorTypeMalformedPage, err), "a diagnostic keeps its own type")
}

func TestPDFError_JSON(t *testing.T) {
	data, err := json.Marshal(New(ErrorTypeMalformedPage, "bad").OnPage(2))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"MALFORMED_PAGE"`)
	assert.Contains(t, string(data), `"page":2`)
	assert.NotContains(t, string(data), `"detail"`)
}

func TestDiagnostics(t *testing.T) {
	d := NewDiagnostics("bundle.pdf")
	assert.Equal(t, "no pages skipped", d.Summary())
	assert.Empty(t, d.Pages())

	d.Skip(4, io.ErrUnexpectedEOF)
	d.Skip(2, New(ErrorTypeInvalidDocument, "broken xref"))
	d.Skip(6, stderrors.New("bad font"))
	replaced := d.Skip(4, stderrors.New("second try"))

	assert.Equal(t, 3, d.Len())
	assert.Equal(t, []int{2, 4, 6}, d.Pages())
	assert.Same(t, replaced, d.Skipped[1])
	assert.Equal(t, "second try", d.Skipped[1].Message)

	assert.Equal(t, ErrorTypeInvalidDocument, d.Skipped[0].Type, "an existing diagnostic keeps its type")
	assert.Equal(t, ErrorTypeMalformedPage, d.Skipped[2].Type)
	assert.True(t, d.Skipped[2].Recoverable)
	assert.Equal(t, "bundle.pdf", d.Skipped[2].File)

	assert.Equal(t, "skipped 3 page(s) that could not be decoded: 2, 4, 6", d.Summary())
}
