// Package logging provides the structured logger used by the engine to
// report flush and compaction events. The public shape (Level, Field,
// Logger, With-style child loggers) is deliberately small and
// implementation-agnostic; internally it is backed by go.uber.org/zap
// rather than a hand-rolled encoder.
package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level mirrors zapcore.Level so callers never need to import zap
// directly.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Field is a key-value pair for structured logging.
type Field = zap.Field

func String(key, value string) Field   { return zap.String(key, value) }
func Int(key string, value int) Field  { return zap.Int(key, value) }
func Int64(key string, v int64) Field  { return zap.Int64(key, v) }
func Uint64(key string, v uint64) Field { return zap.Uint64(key, v) }
func Duration(key string, v time.Duration) Field { return zap.Duration(key, v) }
func Err(err error) Field              { return zap.Error(err) }

// Logger is the interface the engine depends on. Its shape lets callers
// swap in a no-op logger for tests without pulling in zap's own API.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// zapLogger adapts *zap.Logger to the Logger interface.
type zapLogger struct {
	l *zap.Logger
}

// New builds a JSON logger writing to stderr at the given level, matching
// the engine's production defaults: structured, leveled, one JSON object
// per line.
func New(level Level) Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level.zapLevel())
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	l, err := cfg.Build()
	if err != nil {
		// zap.NewProductionConfig().Build() only fails on a broken sink
		// configuration; falling back to a no-op logger keeps the engine
		// usable rather than panicking on a purely cosmetic failure.
		return NewNop()
	}
	return &zapLogger{l: l}
}

func (z *zapLogger) Debug(msg string, fields ...Field) { z.l.Debug(msg, fields...) }
func (z *zapLogger) Info(msg string, fields ...Field)  { z.l.Info(msg, fields...) }
func (z *zapLogger) Warn(msg string, fields ...Field)  { z.l.Warn(msg, fields...) }
func (z *zapLogger) Error(msg string, fields ...Field) { z.l.Error(msg, fields...) }
func (z *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{l: z.l.With(fields...)}
}

// nopLogger discards everything; used by tests and by callers that don't
// want engine diagnostics.
type nopLogger struct{}

// NewNop returns a logger that discards all output.
func NewNop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...Field)      {}
func (nopLogger) Info(string, ...Field)       {}
func (nopLogger) Warn(string, ...Field)       {}
func (nopLogger) Error(string, ...Field)      {}
func (n nopLogger) With(...Field) Logger      { return n }
