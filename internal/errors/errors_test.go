package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMalformedIndexError(t *testing.T) {
	err := NewMalformedIndexError("index.json", "document 3 has empty relative_path", nil)
	assert.Equal(t, ErrorTypeMalformedIndex, err.Type)
	assert.False(t, err.IsRecoverable())
	assert.Contains(t, err.Error(), "index.json")
	assert.Contains(t, err.Error(), "relative_path")
}

func TestMalformedIndexErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("unexpected EOF")
	err := NewMalformedIndexError("index.json", "decode", cause)
	assert.True(t, stderrors.Is(err, cause))
}

func TestFileErrorTypes(t *testing.T) {
	err := NewFileError("read", "src/main.rs", fmt.Errorf("permission denied"))
	assert.Equal(t, ErrorTypePermission, err.Type)
	assert.True(t, err.IsRecoverable())

	err = NewFileError("read", "src/main.rs", fmt.Errorf("no such file"))
	assert.Equal(t, ErrorTypeFileNotFound, err.Type)

	err = NewParseFileError("src/main.rs", fmt.Errorf("syntax error"))
	assert.Equal(t, ErrorTypeParse, err.Type)
	assert.True(t, err.IsRecoverable())
}

func TestSymbolError(t *testing.T) {
	cause := fmt.Errorf("no containing span")
	err := NewSymbolError("crate/helper().", "src/lib.rs", 41, cause)
	assert.Contains(t, err.Error(), "src/lib.rs:41")
	assert.True(t, err.IsRecoverable())

	var symErr *SymbolError
	require.True(t, stderrors.As(err, &symErr))
	assert.Equal(t, "crate/helper().", symErr.Symbol)
}

func TestRecoverable(t *testing.T) {
	assert.False(t, Recoverable(NewMalformedIndexError("i.json", "bad", nil)))
	assert.True(t, Recoverable(NewFileError("read", "a.rs", fmt.Errorf("gone"))))
	assert.True(t, Recoverable(NewSymbolError("s", "a.rs", 1, fmt.Errorf("x"))))
	assert.False(t, Recoverable(fmt.Errorf("plain")))
}
