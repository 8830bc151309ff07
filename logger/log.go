// Package logger contains the structured logger used by every sweep command.
package logger

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

type ctxKey string

// ScanIDKey is the context key under which the current scan ID is stored.
// Logging a context adds the scan ID as a field.
const ScanIDKey ctxKey = "scanID"

// Logger handles structured logging.
type Logger struct {
	log    *logrus.Logger
	fields logrus.Fields
}

// New returns a new Logger instance with namespace "ns" and the given
// key-value pairs as base fields.
func New(ns string, args ...interface{}) *Logger {
	l := logrus.New()
	l.Formatter = &textFormatter{
		DefaultConfig().TextFormat,
		jsonFormatter{},
	}
	f := fields(args...)
	f["ns"] = ns
	return &Logger{log: l, fields: f}
}

// NewLogger returns a Logger configured with conf.
func NewLogger(ns string, conf Config) *Logger {
	l := New(ns)
	l.Configure(conf)
	return l
}

// Debug logs a debug message.
//
// After the first argument, arguments are key-value pairs which are written as structured logs.
//
//	log.Debug("Some message here", "key1", value1, "key2", value2)
func (l *Logger) Debug(msg string, args ...interface{}) {
	defer recoverLogErr()
	l.entry(args...).Debug(msg)
}

// Info logs an info message
//
// After the first argument, arguments are key-value pairs which are written as structured logs.
//
//	log.Info("Some message here", "key1", value1, "key2", value2)
func (l *Logger) Info(msg string, args ...interface{}) {
	defer recoverLogErr()
	l.entry(args...).Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...interface{}) {
	defer recoverLogErr()
	l.entry(args...).Warn(msg)
}

// Error logs an error message
//
// After the first argument, arguments are key-value pairs which are written as structured logs.
//
//	log.Error("Some message here", "key1", value1, "key2", value2)
//
// Error has a two-argument version that can be used as a shortcut.
//
//	err := startServer()
//	log.Error("Couldn't start server", err)
func (l *Logger) Error(msg string, args ...interface{}) {
	defer recoverLogErr()
	l.entry(args...).Error(msg)
}

// WithFields returns a new Logger instance with the given fields added to all log messages.
// The new logger shares output and configuration with l.
func (l *Logger) WithFields(args ...interface{}) *Logger {
	defer recoverLogErr()
	f := logrus.Fields{}
	for k, v := range l.fields {
		f[k] = v
	}
	for k, v := range fields(args...) {
		f[k] = v
	}
	return &Logger{log: l.log, fields: f}
}

// Sub returns a child logger with namespace "ns".
func (l *Logger) Sub(ns string, args ...interface{}) *Logger {
	return l.WithFields(append([]interface{}{"ns", ns}, args...)...)
}

// SetLevel sets the level of logging
func (l *Logger) SetLevel(lvl string) {
	switch strings.ToLower(lvl) {
	case "debug":
		l.log.SetLevel(logrus.DebugLevel)
	case "info":
		l.log.SetLevel(logrus.InfoLevel)
	case "warn", "warning":
		l.log.SetLevel(logrus.WarnLevel)
	case "error":
		l.log.SetLevel(logrus.ErrorLevel)
	default:
		l.log.SetLevel(logrus.InfoLevel)
	}
}

// SetFormatter sets the formatter of l.
func (l *Logger) SetFormatter(f logrus.Formatter) {
	l.log.SetFormatter(f)
}

// SetOutput sets the output of l.
func (l *Logger) SetOutput(w io.Writer) {
	l.log.SetOutput(w)
}

// Discard configures l to discard all logs.
func (l *Logger) Discard() {
	l.log.SetOutput(io.Discard)
}

func (l *Logger) entry(args ...interface{}) *logrus.Entry {
	return l.log.WithFields(l.fields).WithFields(fields(args...))
}

// recoverLogErr is used to recover from any panics during logging.
// Panics aren't expected of course, but logging should never crash
// a program, so this failsafe tries to prevent those crashes.
func recoverLogErr() {
	if r := recover(); r != nil {
		fmt.Println("Recovered from logging panic", r)
	}
}

const red = 31

// PrintSimpleError prints out an error message with a red "ERROR:" prefix.
func PrintSimpleError(err error) {
	fmt.Printf("\x1b[%dm%s\x1b[0m %s\n", red, "ERROR:", err.Error())
}

// fields turns key-value pairs into logrus fields. A lone error is stored
// under "error" and a lone context contributes its scan ID.
func fields(args ...interface{}) logrus.Fields {
	f := make(logrus.Fields, len(args)/2)
	var rest []interface{}
	for _, a := range args {
		switch x := a.(type) {
		case context.Context:
			if id, ok := x.Value(ScanIDKey).(string); ok {
				f["scanID"] = id
			}
		case error:
			if len(args) == 1 || len(rest)%2 == 0 {
				f["error"] = x.Error()
				continue
			}
			rest = append(rest, x)
		default:
			rest = append(rest, x)
		}
	}
	for i := 0; i+1 < len(rest); i += 2 {
		k, ok := rest[i].(string)
		if !ok {
			k = fmt.Sprint(rest[i])
		}
		f[k] = rest[i+1]
	}
	if len(rest)%2 != 0 {
		f["unknown"] = rest[len(rest)-1]
	}
	return f
}
