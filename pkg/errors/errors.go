// Package errors provides the unified error type used by every layer of the
// facet map panel. AppError carries a typed code so that HTTP handlers, the
// refresh cycle and metrics can classify failures without string matching.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack returns a formatted call-stack string starting two frames above
// the caller.
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		// Trim standard-library noise to keep traces readable.
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// AppError is the single structured error type. It supports errors.Is,
// errors.As and errors.Unwrap across layers.
//
//	return errors.New(errors.ErrCodeMissingTargetField, "panel field is empty")
//	return errors.Wrap(err, errors.ErrCodeTransport, "solr select failed")
type AppError struct {
	Code    ErrorCode
	Message string

	// Detail carries supplementary context (field names, endpoints) that aids
	// debugging.
	Detail string

	Cause error

	// Stack is not part of Error() output.
	Stack string
}

// Error formats as "[<code>] <message>: <detail>", followed by the cause when present.
func (e *AppError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", e.Code, e.Message)
	if e.Detail != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Detail)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *AppError carrying the same code, so that
// the package sentinels can be matched with errors.Is.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetail returns a shallow copy of the receiver with Detail set.
// It is safe to call on a nil pointer.
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError that wraps an existing error. A nil err yields nil.
//
// When err is already an *AppError and code is CodeUnknown the original code is
// preserved.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.
func IsCode(err error, code ErrorCode) bool {
	for err != nil {
		if ae, ok := err.(*AppError); ok && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the ErrorCode from the first *AppError found in err's chain.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// Sentinels for the pipeline's error kinds. Compare with errors.Is or IsCode.
var (
	ErrMissingTimeRange      = &AppError{Code: ErrCodeMissingTimeRange, Message: DefaultMessageForCode(ErrCodeMissingTimeRange)}
	ErrMissingTargetField    = &AppError{Code: ErrCodeMissingTargetField, Message: DefaultMessageForCode(ErrCodeMissingTargetField)}
	ErrMalformedFacetPayload = &AppError{Code: ErrCodeMalformedFacetPayload, Message: DefaultMessageForCode(ErrCodeMalformedFacetPayload)}
	ErrNoIndices             = &AppError{Code: ErrCodeNoIndices, Message: DefaultMessageForCode(ErrCodeNoIndices)}
)

// NotFound constructs a CodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
		Stack:   captureStack(1),
	}
}

// InvalidParam constructs a CodeInvalidParam AppError.
func InvalidParam(message string) *AppError {
	return &AppError{
		Code:    CodeInvalidParam,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Internal constructs a CodeInternal AppError.
func Internal(message string) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Transport wraps an executor failure. The cause is kept intact.
func Transport(err error, endpoint string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:    ErrCodeTransport,
		Message: DefaultMessageForCode(ErrCodeTransport),
		Detail:  endpoint,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// Is forwards to the standard library so callers need only this package.
func Is(err, target error) bool { return errors.Is(err, target) }

// As forwards to the standard library.
func As(err error, target interface{}) bool { return errors.As(err, target) }

//Personal.AI order the ending
