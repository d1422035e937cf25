package curator

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	ECONFLICT    = "conflict"
	EINTERNAL    = "internal"
	EINVALID     = "invalid"
	ENOTFOUND    = "not_found"
	EUNAVAILABLE = "unavailable"
)

// Error represents an application-specific error. Application errors can be
// unwrapped by the caller to extract the code and message.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("curator error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// coder is implemented by the typed per-item errors below.
type coder interface {
	ErrorCode() string
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var c coder
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	var c coder
	if errors.As(err, &c) {
		return err.Error()
	}
	return "Internal error."
}

// FetchError reports a failed retrieval of a single URL. It is never fatal
// to a run.
type FetchError struct {
	URL       string
	Status    int
	Transient bool
	Err       error
}

func (e *FetchError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d (%s)", e.URL, e.Status, kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v (%s)", e.URL, e.Err, kind)
	}
	return fmt.Sprintf("fetch %s: %s failure", e.URL, kind)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ErrorCode returns EUNAVAILABLE.
func (e *FetchError) ErrorCode() string { return EUNAVAILABLE }

// IsTransient reports whether err is a FetchError worth retrying.
func IsTransient(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Transient
	}
	return false
}

// ExtractionError reports that a page could not be parsed by its family's
// extractor. The page contributes zero examples.
type ExtractionError struct {
	URL    string
	Family DocFamily
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s (%s): %v", e.URL, e.Family, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// ErrorCode returns EINVALID.
func (e *ExtractionError) ErrorCode() string { return EINVALID }

// ProcessingError reports that the language model could not improve an
// example. The example degrades to fallback status.
type ProcessingError struct {
	Key CanonicalKey
	Err error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("process %s: %v", e.Key.Short(), e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// ErrorCode returns EINTERNAL.
func (e *ProcessingError) ErrorCode() string { return EINTERNAL }
