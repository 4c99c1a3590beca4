package errors

import (
	"fmt"
	"time"
)

// Error types for the atomizer conversion pipeline
type ErrorType string

const (
	// Index errors
	ErrorTypeMalformedIndex ErrorType = "malformed_index"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypePermission   ErrorType = "permission"
	ErrorTypeParse        ErrorType = "parse"

	// Symbol errors
	ErrorTypeSymbol ErrorType = "symbol"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// MalformedIndexError is fatal. Structural defects in the input index make
// every downstream result suspect, so conversion aborts instead of guessing.
type MalformedIndexError struct {
	Type       ErrorType
	Path       string
	Detail     string
	Underlying error
	Timestamp  time.Time
}

// NewMalformedIndexError creates a fatal index validation error.
func NewMalformedIndexError(path, detail string, err error) *MalformedIndexError {
	return &MalformedIndexError{
		Type:       ErrorTypeMalformedIndex,
		Path:       path,
		Detail:     detail,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *MalformedIndexError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("malformed index %s: %s: %v", e.Path, e.Detail, e.Underlying)
	}
	return fmt.Sprintf("malformed index %s: %s", e.Path, e.Detail)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *MalformedIndexError) Unwrap() error {
	return e.Underlying
}

// IsRecoverable always reports false; a malformed index aborts the run.
func (e *MalformedIndexError) IsRecoverable() bool {
	return false
}

// FileError represents a per-file failure during span extraction. It is
// recoverable: the file degrades and conversion continues.
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error
func NewFileError(op, path string, err error) *FileError {
	errorType := ErrorTypeFileNotFound
	if isPermissionError(err) {
		errorType = ErrorTypePermission
	}

	return &FileError{
		Type:       errorType,
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// NewParseFileError marks a file whose syntax tree could not be built.
func NewParseFileError(path string, err error) *FileError {
	return &FileError{
		Type:       ErrorTypeParse,
		Path:       path,
		Operation:  "parse",
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// isPermissionError checks if the error is a permission error
func isPermissionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return errStr == "permission denied" || errStr == "access denied"
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// IsRecoverable checks if conversion can continue past this error
func (e *FileError) IsRecoverable() bool {
	return true
}

// SymbolError represents a per-symbol failure: an identifier that could not
// be cleaned, or a definition whose span could not be located.
type SymbolError struct {
	Type       ErrorType
	Symbol     string
	FilePath   string
	Line       int
	Underlying error
	Timestamp  time.Time
}

// NewSymbolError creates a new symbol error
func NewSymbolError(symbol, path string, line int, err error) *SymbolError {
	return &SymbolError{
		Type:       ErrorTypeSymbol,
		Symbol:     symbol,
		FilePath:   path,
		Line:       line,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *SymbolError) Error() string {
	return fmt.Sprintf("symbol %q at %s:%d: %v", e.Symbol, e.FilePath, e.Line, e.Underlying)
}

// Unwrap returns the underlying error
func (e *SymbolError) Unwrap() error {
	return e.Underlying
}

// IsRecoverable checks if conversion can continue past this error
func (e *SymbolError) IsRecoverable() bool {
	return true
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{
		Field:      field,
		Value:      value,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config field %s with value %q: %v", e.Field, e.Value, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// Recoverable reports whether conversion may continue after err. Unknown
// error types are treated as fatal.
func Recoverable(err error) bool {
	type recoverable interface {
		IsRecoverable() bool
	}
	if r, ok := err.(recoverable); ok {
		return r.IsRecoverable()
	}
	return false
}
