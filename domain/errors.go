package domain

import (
	"errors"
	"fmt"
)

// DomainError is the error type returned across layer boundaries. Code
// selects the error category shown to users.
type DomainError struct {
	Code    string
	Message string
	Cause   error
}

func (e DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e DomainError) Unwrap() error {
	return e.Cause
}

// Is matches a code-only sentinel such as ErrInvalidInput
func (e DomainError) Is(target error) bool {
	t, ok := target.(DomainError)
	return ok && t.Message == "" && t.Cause == nil && t.Code == e.Code
}

// Domain error codes
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeFileNotFound      = "FILE_NOT_FOUND"
	ErrCodeParseError        = "PARSE_ERROR"
	ErrCodeMatchError        = "MATCH_ERROR"
	ErrCodeAnalysisError     = "ANALYSIS_ERROR"
	ErrCodeConfigError       = "CONFIG_ERROR"
	ErrCodeOutputError       = "OUTPUT_ERROR"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
)

// Sentinels for errors.Is
var (
	ErrInvalidInput = DomainError{Code: ErrCodeInvalidInput}
	ErrFileNotFound = DomainError{Code: ErrCodeFileNotFound}
	ErrParse        = DomainError{Code: ErrCodeParseError}
	ErrMatch        = DomainError{Code: ErrCodeMatchError}
)

// ErrorCode returns the code of the outermost DomainError in err's chain,
// or "" when there is none
func ErrorCode(err error) string {
	var domainErr DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, cause error) error {
	return DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string, cause error) error {
	return NewDomainError(ErrCodeInvalidInput, message, cause)
}

// NewValidationError creates an invalid input error without a cause
func NewValidationError(message string) error {
	return NewDomainError(ErrCodeInvalidInput, message, nil)
}

// NewFileNotFoundError reports a variant path that does not exist
func NewFileNotFoundError(path string, cause error) error {
	return NewDomainError(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path), cause)
}

// NewParseError reports a source file or AST document that could not be
// loaded into a tree
func NewParseError(file string, cause error) error {
	return NewDomainError(ErrCodeParseError, fmt.Sprintf("failed to parse file: %s", file), cause)
}

// NewMatchError reports a failure while pairing the nodes of two trees
func NewMatchError(message string, cause error) error {
	return NewDomainError(ErrCodeMatchError, message, cause)
}

// NewAnalysisError reports a failure after matching, while extracting
// differences or building variation points
func NewAnalysisError(message string, cause error) error {
	return NewDomainError(ErrCodeAnalysisError, message, cause)
}

func NewConfigError(message string, cause error) error {
	return NewDomainError(ErrCodeConfigError, message, cause)
}

func NewOutputError(message string, cause error) error {
	return NewDomainError(ErrCodeOutputError, message, cause)
}

// NewUnsupportedFormatError creates an unsupported format error
func NewUnsupportedFormatError(format string) error {
	return NewDomainError(ErrCodeUnsupportedFormat, fmt.Sprintf("unsupported format: %s", format), nil)
}
