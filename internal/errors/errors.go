// Package errors defines the structured error type shared by the word-box
// detection and recognition packages.
//
// Every fallible operation reports one of a small set of codes so callers can
// tell a contract violation (bad input, fix the call) from an engine failure
// (retry after fixing the environment). A legitimately empty result is never
// an error.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode enum for structured error handling
type ErrorCode string

const (
	// Caller errors
	ErrorContractViolation ErrorCode = "CONTRACT_VIOLATION"

	// Engine errors
	ErrorEngineInit        ErrorCode = "ENGINE_INIT_FAILED"
	ErrorEngineNotReady    ErrorCode = "ENGINE_NOT_READY"
	ErrorDetectionFailed   ErrorCode = "DETECTION_FAILED"
	ErrorRecognitionFailed ErrorCode = "RECOGNITION_FAILED"
)

// Sentinels for errors.Is. They match any *Error carrying the same code.
var (
	ErrContractViolation = &Error{Code: ErrorContractViolation}
	ErrEngineInit        = &Error{Code: ErrorEngineInit}
	ErrEngineNotReady    = &Error{Code: ErrorEngineNotReady}
	ErrDetectionFailed   = &Error{Code: ErrorDetectionFailed}
	ErrRecognitionFailed = &Error{Code: ErrorRecognitionFailed}
)

// Error is a coded failure raised by an operation.
type Error struct {
	Code ErrorCode
	// Op names the operation that failed, e.g. "detection.DilationDetector".
	Op string
	// Param names the offending parameter for contract violations.
	Param   string
	Message string
	Details map[string]interface{}
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Param != "" {
		msg += fmt.Sprintf(" (%s)", e.Param)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Factory functions for common errors

// NewContractViolation reports a precondition breach on param.
func NewContractViolation(op, param, format string, args ...interface{}) *Error {
	return &Error{
		Code:    ErrorContractViolation,
		Op:      op,
		Param:   param,
		Message: fmt.Sprintf(format, args...),
	}
}

func NewEngineInitError(dataDir, language string, cause error) *Error {
	return &Error{
		Code:    ErrorEngineInit,
		Op:      "ocr.Manager.Init",
		Message: fmt.Sprintf("failed to start OCR engine for language %q", language),
		Details: map[string]interface{}{
			"data_dir": dataDir,
			"language": language,
		},
		Cause: cause,
	}
}

func NewEngineNotReadyError(op string) *Error {
	return &Error{
		Code:    ErrorEngineNotReady,
		Op:      op,
		Message: "OCR engine is not initialized",
	}
}

func NewDetectionError(op string, cause error) *Error {
	return &Error{
		Code:    ErrorDetectionFailed,
		Op:      op,
		Message: "word box detection failed",
		Cause:   cause,
	}
}

func NewRecognitionError(op string, cause error) *Error {
	return &Error{
		Code:    ErrorRecognitionFailed,
		Op:      op,
		Message: "text recognition failed",
		Cause:   cause,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ""
}

// ToMap converts the error to a map for protocol responses.
func (e *Error) ToMap() map[string]interface{} {
	result := map[string]interface{}{
		"error_code": string(e.Code),
		"message":    e.Message,
	}
	if e.Op != "" {
		result["op"] = e.Op
	}
	if e.Param != "" {
		result["param"] = e.Param
	}
	for k, v := range e.Details {
		result[k] = v
	}
	if e.Cause != nil {
		result["cause"] = e.Cause.Error()
	}
	return result
}
