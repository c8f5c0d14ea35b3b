// Package errors provides standardized error handling for cull.
// It defines common error types, constants, and helper functions for consistent
// error creation, wrapping, and handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Standard errors package errors that we re-export for convenience
var (
	// Unwrap unwraps an error to access the underlying error
	Unwrap = errors.Unwrap
	// Is reports whether any error in err's chain matches target
	Is = errors.Is
	// As finds the first error in err's chain that matches target
	As = errors.As
)

// ErrorKind represents the kind of error
type ErrorKind int

// Error kinds
const (
	Unknown ErrorKind = iota
	// File error kinds
	FileNotFound
	FileAccessDenied
	InvalidPath
	FileOperationFailed
	// Image error kinds
	DecodeFailed
	// Config error kinds
	InvalidConfig
	// Triage error kinds
	EmptyCollection
	NothingToUndo
	UnsupportedPlatform
)

// Common error constants for frequently occurring errors
var (
	ErrFileNotFound  = NewFileError("file not found", "", FileNotFound, nil)
	ErrInvalidConfig = NewConfigError("invalid configuration", "", InvalidConfig, nil)
	ErrEmpty         = NewKind("no images left", EmptyCollection)
	ErrNothingToUndo = NewKind("nothing to undo", NothingToUndo)
)

// ApplicationError is the base error type for all application errors
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// FileError represents errors related to file operations
type FileError struct {
	ApplicationError
	path string
}

// NewFileError creates a new file error
func NewFileError(msg string, path string, kind ErrorKind, err error) *FileError {
	return &FileError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		path: path,
	}
}

// Error returns the file error message
func (e *FileError) Error() string {
	if e.path != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.path, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.path)
	}
	return e.ApplicationError.Error()
}

// Path returns the file path associated with the error
func (e *FileError) Path() string {
	return e.path
}

// DecodeError reports an image that could not be decoded into a preview.
type DecodeError struct {
	ApplicationError
	path string
}

// NewDecodeError creates a decode error for path
func NewDecodeError(path string, err error) *DecodeError {
	return &DecodeError{
		ApplicationError: ApplicationError{
			msg:  "generated an exception",
			err:  err,
			kind: DecodeFailed,
		},
		path: path,
	}
}

// Error formats as "<path> generated an exception: <cause>"
func (e *DecodeError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%q %s: %v", e.path, e.msg, e.err)
	}
	return fmt.Sprintf("%q %s", e.path, e.msg)
}

// Path returns the image that failed to decode
func (e *DecodeError) Path() string {
	return e.path
}

// ConfigError represents errors related to configuration
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, kind ErrorKind, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		param: param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter associated with the error
func (e *ConfigError) Param() string {
	return e.param
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
	}
}

// NewKind creates a new error of the given kind
func NewKind(msg string, kind ErrorKind) *ApplicationError {
	return &ApplicationError{
		msg:  msg,
		kind: kind,
	}
}

// Newf creates a new error with a formatted message
func Newf(format string, args ...interface{}) error {
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		kind: Unknown,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  msg,
		err:  err,
		kind: Unknown,
	}
}

// Wrapf wraps an existing error with additional formatted context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &ApplicationError{
		msg:  fmt.Sprintf(format, args...),
		err:  err,
		kind: Unknown,
	}
}

// KindOf returns the kind of the first ApplicationError in err's chain
func KindOf(err error) ErrorKind {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind()
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr.Kind()
	}
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind()
	}
	var appErr *ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Kind()
	}
	return Unknown
}

// IsFileNotFound checks if the error is a file not found error
func IsFileNotFound(err error) bool {
	var fileErr *FileError
	if errors.As(err, &fileErr) {
		return fileErr.Kind() == FileNotFound
	}
	return false
}

// IsDecodeFailed checks if the error is an image decode failure
func IsDecodeFailed(err error) bool {
	var decodeErr *DecodeError
	return errors.As(err, &decodeErr)
}

// IsInvalidConfig checks if the error is an invalid configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr.Kind() == InvalidConfig
	}
	return false
}

// IsEmpty checks if the error reports an exhausted collection
func IsEmpty(err error) bool {
	return KindOf(err) == EmptyCollection
}

// IsUnsupported checks if the error reports a feature missing on this platform
func IsUnsupported(err error) bool {
	return KindOf(err) == UnsupportedPlatform
}
