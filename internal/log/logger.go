// Package log is the application-wide structured logger. It wraps logrus so
// callers only deal with plain messages and F(key, value) fields.
package log

import (
	"io"
	"os"
	"sync/atomic"

	"cull/internal/errors"

	"github.com/sirupsen/logrus"
)

var (
	isDebug atomic.Bool
	logger  = NewLogger()
)

// Field is a single structured key/value attached to a log line
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Option configures a Logger
type Option func(*options)

type options struct {
	out  io.Writer
	json bool
}

// WithOutput sends log lines to w instead of stdout
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithJSON switches to one JSON object per line
func WithJSON() Option {
	return func(o *options) {
		o.json = true
	}
}

// Logger writes leveled, structured log lines
type Logger struct {
	entry *logrus.Entry
}

// NewLogger creates a logger writing to stdout unless overridden
func NewLogger(opts ...Option) *Logger {
	o := options{out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	base := logrus.New()
	base.SetOutput(o.out)
	// Debug lines are filtered by SetDebug, not by logrus levels.
	base.SetLevel(logrus.DebugLevel)
	if o.json {
		base.SetFormatter(&logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			DisableColors:   true,
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	return &Logger{entry: logrus.NewEntry(base)}
}

// SetDebug enables or disables debug output for every logger
func SetDebug(debug bool) {
	isDebug.Store(debug)
}

// IsDebug reports whether debug output is enabled
func IsDebug() bool {
	return isDebug.Load()
}

// Configure replaces the package logger
func Configure(opts ...Option) {
	logger = NewLogger(opts...)
}

// With returns a child logger carrying the given fields
func (l *Logger) With(fields ...Field) *Logger {
	data := make(logrus.Fields, len(fields))
	for _, f := range fields {
		data[f.Key] = f.Value
	}
	return &Logger{entry: l.entry.WithFields(data)}
}

// WithError attaches err along with its kind and the path or parameter it concerns
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l.With(F("error", "<nil>"))
	}

	fields := []Field{
		F("error", err.Error()),
		F("error_kind", int(errors.KindOf(err))),
	}

	var fileErr *errors.FileError
	var decodeErr *errors.DecodeError
	var configErr *errors.ConfigError
	switch {
	case errors.As(err, &fileErr) && fileErr.Path() != "":
		fields = append(fields, F("path", fileErr.Path()))
	case errors.As(err, &decodeErr):
		fields = append(fields, F("path", decodeErr.Path()))
	case errors.As(err, &configErr) && configErr.Param() != "":
		fields = append(fields, F("param", configErr.Param()))
	}

	return l.With(fields...)
}

func (l *Logger) Info(msg string) {
	l.entry.Info(msg)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *Logger) Debug(msg string) {
	if isDebug.Load() {
		l.entry.Debug(msg)
	}
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	if isDebug.Load() {
		l.entry.Debugf(format, args...)
	}
}

func (l *Logger) Warn(msg string) {
	l.entry.Warn(msg)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

func (l *Logger) Error(msg string) {
	l.entry.Error(msg)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

// Info logs a message on the package logger
func Info(msg string) {
	logger.Info(msg)
}

// Infof logs a formatted message on the package logger
func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// Debug logs a message when debug output is enabled
func Debug(msg string) {
	logger.Debug(msg)
}

// Debugf logs a formatted message when debug output is enabled
func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// Warn logs a warning message
func Warn(msg string) {
	logger.Warn(msg)
}

// Warnf logs a formatted warning message
func Warnf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// Error logs an error message
func Error(msg string) {
	logger.Error(msg)
}

// Errorf logs a formatted error message
func Errorf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

// LogWithFields returns the package logger with fields attached
func LogWithFields(fields ...Field) *Logger {
	return logger.With(fields...)
}

// LogWithError returns the package logger with err attached
func LogWithError(err error) *Logger {
	return logger.WithError(err)
}

// LogError logs err with msg as the message
func LogError(err error, msg string) {
	logger.WithError(err).Error(msg)
}
