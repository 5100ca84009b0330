// Package log is the structured logger used across webdav-upload.
// It keeps a small package-level API on top of logrus so callers never
// touch the backend directly.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	apperrors "github.com/Lokeren12/action-upload-webdav/internal/errors"

	"github.com/sirupsen/logrus"
)

var (
	isDebug = false
	logger  = NewLogger()
)

// Field is a single key/value pair attached to a log entry
type Field struct {
	Key   string
	Value interface{}
}

// F creates a Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger writes leveled, structured log entries
type Logger struct {
	entry *logrus.Entry
	level logrus.Level
	file  *os.File
}

type options struct {
	out   io.Writer
	json  bool
	file  string
	level logrus.Level
}

// Option configures a Logger
type Option func(*options)

// WithOutput sets the writer log entries go to
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.out = w }
}

// WithJSON switches the logger to JSON output
func WithJSON() Option {
	return func(o *options) { o.json = true }
}

// WithFile writes log entries to the named file in addition to the output
func WithFile(path string) Option {
	return func(o *options) { o.file = path }
}

// WithLevel sets the minimum level; unknown names keep the default (info)
func WithLevel(level string) Option {
	return func(o *options) {
		if lvl, err := ParseLevel(level); err == nil {
			o.level = lvl
		}
	}
}

// ParseLevel converts a level name such as "debug" or "WARN" to a logrus level
func ParseLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "warning":
		return logrus.WarnLevel, nil
	default:
		return logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	}
}

// NewLogger creates a logger. Without options it writes text entries at
// info level to stdout.
func NewLogger(opts ...Option) *Logger {
	o := options{out: os.Stdout, level: logrus.InfoLevel}
	for _, opt := range opts {
		opt(&o)
	}

	l := &Logger{level: o.level}
	out := o.out
	if o.file != "" {
		f, err := os.OpenFile(o.file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log: cannot open %s: %v\n", o.file, err)
		} else {
			l.file = f
			out = io.MultiWriter(out, f)
		}
	}

	backend := logrus.New()
	backend.SetOutput(out)
	// Filtering happens in Logger.log so SetDebug can act on existing loggers.
	backend.SetLevel(logrus.TraceLevel)
	if o.json {
		backend.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		backend.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	l.entry = logrus.NewEntry(backend)
	return l
}

// Configure replaces the package-level logger
func Configure(opts ...Option) {
	logger = NewLogger(opts...)
}

// SetDebug enables debug output on every logger
func SetDebug(debug bool) {
	isDebug = debug
}

// Close releases the log file opened by WithFile, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// With returns a logger that adds the given fields to every entry
func (l *Logger) With(fields ...Field) *Logger {
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return &Logger{
		entry: l.entry.WithFields(data),
		level: l.level,
		file:  l.file,
	}
}

// WithError returns a logger carrying the error and its application details
func (l *Logger) WithError(err error) *Logger {
	return l.With(errorFields(err)...)
}

// Debug logs a message with arguments
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(logrus.DebugLevel, msg, args...)
}

// Debugf logs a formatted message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.log(logrus.DebugLevel, format, args...)
}

// Info logs an informational message
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(logrus.InfoLevel, msg, args...)
}

// Infof logs a formatted informational message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.log(logrus.InfoLevel, format, args...)
}

// Warn logs a warning
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(logrus.WarnLevel, msg, args...)
}

// Warnf logs a formatted warning
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.log(logrus.WarnLevel, format, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(logrus.ErrorLevel, msg, args...)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.log(logrus.ErrorLevel, format, args...)
}

func (l *Logger) enabled(level logrus.Level) bool {
	if level == logrus.DebugLevel && isDebug {
		return true
	}
	return level <= l.level
}

// log must be called directly from an exported method so the caller
// frame lands two levels up.
func (l *Logger) log(level logrus.Level, format string, args ...interface{}) {
	if !l.enabled(level) {
		return
	}
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	entry := l.entry
	if _, file, line, ok := runtime.Caller(2); ok {
		entry = entry.WithField("caller", fmt.Sprintf("%s:%d", filepath.Base(file), line))
	}
	entry.Log(level, msg)
}

func errorFields(err error) []Field {
	if err == nil {
		return []Field{F("error", "<nil>")}
	}
	fields := []Field{
		F("error", err.Error()),
		F("error_kind", apperrors.KindOf(err).String()),
	}

	var fileErr *apperrors.FileError
	var configErr *apperrors.ConfigError
	var patternErr *apperrors.PatternError
	var remoteErr *apperrors.RemoteError
	switch {
	case apperrors.As(err, &fileErr):
		fields = append(fields, F("path", fileErr.Path()))
	case apperrors.As(err, &configErr):
		fields = append(fields, F("param", configErr.Param()))
	case apperrors.As(err, &patternErr):
		fields = append(fields, F("pattern", patternErr.Pattern()))
	case apperrors.As(err, &remoteErr):
		if remoteErr.Operation() != "" {
			fields = append(fields, F("operation", remoteErr.Operation()))
		}
		if remoteErr.Path() != "" {
			fields = append(fields, F("remote_path", remoteErr.Path()))
		}
	}
	return fields
}

// Debug logs a message with arguments on the package logger
func Debug(msg string, args ...interface{}) {
	logger.log(logrus.DebugLevel, msg, args...)
}

// Debugf logs a formatted message on the package logger
func Debugf(format string, args ...interface{}) {
	logger.log(logrus.DebugLevel, format, args...)
}

// Info logs an informational message on the package logger
func Info(format string, args ...interface{}) {
	logger.log(logrus.InfoLevel, format, args...)
}

// Infof logs a formatted informational message on the package logger
func Infof(format string, args ...interface{}) {
	logger.log(logrus.InfoLevel, format, args...)
}

// Warn logs a warning on the package logger
func Warn(msg string, args ...interface{}) {
	logger.log(logrus.WarnLevel, msg, args...)
}

// Warnf logs a formatted warning on the package logger
func Warnf(format string, args ...interface{}) {
	logger.log(logrus.WarnLevel, format, args...)
}

// Error logs an error message on the package logger
func Error(msg string, args ...interface{}) {
	logger.log(logrus.ErrorLevel, msg, args...)
}

// Errorf logs a formatted error message on the package logger
func Errorf(format string, args ...interface{}) {
	logger.log(logrus.ErrorLevel, format, args...)
}

// LogWithFields returns the package logger with extra fields
func LogWithFields(fields ...Field) *Logger {
	return logger.With(fields...)
}

// LogWithError returns the package logger carrying err
func LogWithError(err error) *Logger {
	return logger.WithError(err)
}

// LogError logs err with a message at error level
func LogError(err error, msg string) {
	logger.WithError(err).log(logrus.ErrorLevel, msg)
}

// Default returns the package logger
func Default() *Logger {
	return logger
}
