// Package errors provides standardized error types for certbot-runner.
//
// Failures of external processes (certbot, openssl) are not errors in this
// program: they are logged with their exit code and execution continues.
// The types here cover what does stop the program: bad configuration,
// filesystem problems while publishing bundles, and lock contention.
//
// # Error Types
//
// CertError is the primary error type, containing:
//   - Code: Categorizes the error (CONFIG, FILESYSTEM, etc.)
//   - Message: Human-readable error description
//   - Subject: The domain or path involved (if applicable)
//   - Err: The underlying wrapped error (if any)
//
// # Usage
//
//	return errors.Config("CERTBOT_DOMAINS is required")
//	return errors.Filesystem(path, "failed to write bundle", err)
//
// Use errors.Is for code comparison:
//
//	if errors.Is(err, errors.ErrConfigInvalid) {
//	    // Handle configuration problem
//	}
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeConfig     ErrorCode = "CONFIG"     // Configuration error
	ErrCodeFilesystem ErrorCode = "FILESYSTEM" // Reading or writing files failed
	ErrCodeProcess    ErrorCode = "PROCESS"    // External process produced no usable output
	ErrCodeLock       ErrorCode = "LOCK"       // Advisory lock could not be taken
	ErrCodeInternal   ErrorCode = "INTERNAL"   // Internal/unexpected error
)

// CertError represents a structured error with context about the operation.
type CertError struct {
	Code    ErrorCode // Error category
	Message string    // Human-readable message
	Subject string    // Domain or path (if applicable)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface.
func (e *CertError) Error() string {
	msg := e.Message
	if e.Subject != "" {
		if msg == "" {
			msg = e.Subject
		} else {
			msg = e.Subject + ": " + msg
		}
	}
	if e.Err != nil {
		if msg == "" {
			return e.Err.Error()
		}
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for error chain traversal.
func (e *CertError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *CertError) Is(target error) bool {
	t, ok := target.(*CertError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors for use with errors.Is().
var (
	ErrConfigInvalid = &CertError{Code: ErrCodeConfig, Message: "invalid configuration"}
	ErrFilesystem    = &CertError{Code: ErrCodeFilesystem, Message: "filesystem error"}
	ErrProcess       = &CertError{Code: ErrCodeProcess, Message: "external process failed"}
	ErrLocked        = &CertError{Code: ErrCodeLock, Message: "lock unavailable"}
)

// Config creates a configuration error with a custom message.
func Config(msg string) error {
	return &CertError{
		Code:    ErrCodeConfig,
		Message: msg,
	}
}

// Filesystem creates an error for a failed operation on path.
func Filesystem(path, msg string, err error) error {
	return &CertError{
		Code:    ErrCodeFilesystem,
		Message: msg,
		Subject: path,
		Err:     err,
	}
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &CertError{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of errors.As for convenience.
var As = errors.As
