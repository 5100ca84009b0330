// Package errors provides standardized error handling for webdav-upload.
// It defines the error kinds a run can produce, typed errors for the
// configuration, pattern, file and remote layers, and helpers for
// consistent creation, wrapping and inspection.
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
	// Config error kinds
	InvalidConfig
	ConfigNotSet
	InvalidTLSMaterial
	// Pattern error kinds
	InvalidPattern
	UnmatchedPattern
	// Remote error kinds
	RemoteDirectoryFailed
	UploadFailed
)

// String returns a short name for the kind
func (k ErrorKind) String() string {
	switch k {
	case FileNotFound:
		return "file_not_found"
	case FileAccessDenied:
		return "file_access_denied"
	case InvalidConfig:
		return "invalid_config"
	case ConfigNotSet:
		return "config_not_set"
	case InvalidTLSMaterial:
		return "invalid_tls_material"
	case InvalidPattern:
		return "invalid_pattern"
	case UnmatchedPattern:
		return "unmatched_pattern"
	case RemoteDirectoryFailed:
		return "remote_directory_failed"
	case UploadFailed:
		return "upload_failed"
	default:
		return "unknown"
	}
}

// Common error constants for frequently occurring errors
var (
	ErrInvalidConfig     = NewConfigError("invalid configuration", "", InvalidConfig, nil)
	ErrUnmatchedPatterns = NewPatternError("there were unmatched files", "", UnmatchedPattern, nil)
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

// FileError represents errors related to local file operations
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

// PatternError represents errors related to file glob patterns
type PatternError struct {
	ApplicationError
	pattern string
}

// NewPatternError creates a new pattern error
func NewPatternError(msg string, pattern string, kind ErrorKind, err error) *PatternError {
	return &PatternError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: kind,
		},
		pattern: pattern,
	}
}

// Error returns the pattern error message
func (e *PatternError) Error() string {
	if e.pattern != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %q: %v", e.msg, e.pattern, e.err)
		}
		return fmt.Sprintf("%s: %q", e.msg, e.pattern)
	}
	return e.ApplicationError.Error()
}

// Pattern returns the glob pattern associated with the error
func (e *PatternError) Pattern() string {
	return e.pattern
}

// Is matches pattern errors of the same kind, so the sentinel
// ErrUnmatchedPatterns matches any unmatched-pattern error.
func (e *PatternError) Is(target error) bool {
	t, ok := target.(*PatternError)
	if !ok {
		return false
	}
	return t.kind == e.kind && (t.pattern == "" || t.pattern == e.pattern)
}

// RemoteError represents errors returned while talking to the WebDAV server
type RemoteError struct {
	ApplicationError
	operation string
	path      string
}

// NewRemoteError creates a new remote error
func NewRemoteError(msg string, err error) *RemoteError {
	return &RemoteError{
		ApplicationError: ApplicationError{
			msg:  msg,
			err:  err,
			kind: UploadFailed,
		},
	}
}

// WithOperation adds operation information to the remote error
func (e *RemoteError) WithOperation(operation string) *RemoteError {
	e.operation = operation
	return e
}

// WithPath adds the remote path to the remote error
func (e *RemoteError) WithPath(path string) *RemoteError {
	e.path = path
	return e
}

// WithKind overrides the kind of the remote error
func (e *RemoteError) WithKind(kind ErrorKind) *RemoteError {
	e.kind = kind
	return e
}

// Error returns the remote error message
func (e *RemoteError) Error() string {
	msg := e.msg
	if e.operation != "" {
		msg = fmt.Sprintf("%s: operation=%s", msg, e.operation)
	}
	if e.path != "" {
		msg = fmt.Sprintf("%s: path=%s", msg, e.path)
	}
	if e.err != nil {
		return fmt.Sprintf("%s: %v", msg, e.err)
	}
	return msg
}

// Operation returns the remote operation associated with the error
func (e *RemoteError) Operation() string {
	return e.operation
}

// Path returns the remote path associated with the error
func (e *RemoteError) Path() string {
	return e.path
}

// New creates a new error with a message
func New(msg string) error {
	return &ApplicationError{
		msg:  msg,
		kind: Unknown,
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

// KindOf returns the kind of the first application error in err's chain.
func KindOf(err error) ErrorKind {
	var kinded interface{ Kind() ErrorKind }
	if errors.As(err, &kinded) {
		return kinded.Kind()
	}
	return Unknown
}

// IsInvalidConfig checks if the error is a configuration error
func IsInvalidConfig(err error) bool {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		k := configErr.Kind()
		return k == InvalidConfig || k == ConfigNotSet || k == InvalidTLSMaterial
	}
	return false
}

// IsInvalidPattern checks if the error is an invalid glob pattern error
func IsInvalidPattern(err error) bool {
	var patternErr *PatternError
	if errors.As(err, &patternErr) {
		return patternErr.Kind() == InvalidPattern
	}
	return false
}

// IsUnmatchedPattern checks if the error reports unmatched patterns
func IsUnmatchedPattern(err error) bool {
	var patternErr *PatternError
	if errors.As(err, &patternErr) {
		return patternErr.Kind() == UnmatchedPattern
	}
	return false
}

// IsRemoteDirectory checks if the error is a remote directory failure
func IsRemoteDirectory(err error) bool {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Kind() == RemoteDirectoryFailed
	}
	return false
}

// IsUploadFailed checks if the error is a single file upload failure
func IsUploadFailed(err error) bool {
	return KindOf(err) == UploadFailed
}
