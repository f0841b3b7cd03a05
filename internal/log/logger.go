// Package log mirrors the shape of cometbft's libs/log package: a small
// Logger interface wrapping github.com/go-kit/log, with a no-op
// implementation for tests and defaults.
package log

import (
	"io"

	kitlog "github.com/go-kit/log"
)

// Logger is the minimal structured-logging interface peernet components
// take. Keyvals follow go-kit/log convention: alternating key, value.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

type logger struct {
	kl kitlog.Logger
}

// NewLogger returns a Logger writing logfmt-encoded lines to w.
func NewLogger(w io.Writer) Logger {
	return &logger{kl: kitlog.NewLogfmtLogger(w)}
}

func (l *logger) Debug(msg string, keyvals ...any) { l.log("debug", msg, keyvals...) }
func (l *logger) Info(msg string, keyvals ...any)  { l.log("info", msg, keyvals...) }
func (l *logger) Error(msg string, keyvals ...any) { l.log("error", msg, keyvals...) }

func (l *logger) log(level, msg string, keyvals ...any) {
	kv := append([]any{"level", level, "msg", msg}, keyvals...)
	_ = l.kl.Log(kv...)
}

type nopLogger struct{}

// NewNopLogger returns a Logger that discards everything, the default for
// a Net that isn't given one explicitly.
func NewNopLogger() Logger {
	return nopLogger{}
}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
