package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DEBUG int = iota
	INFO
	WARNING
	ERROR
	SILENCE
)

type Logger interface {
	Debugf(msg string, a ...any)
	Infof(msg string, a ...any)
	Warnf(msg string, a ...any)
	Errorf(msg string, a ...any)
}

type defaultLogger struct {
	level int
	sugar *zap.SugaredLogger
}

// NewLogger returns a zap-backed logger writing console-encoded lines to
// stderr. Messages below level are dropped.
func NewLogger(level int) *defaultLogger {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(toZapLevel(level))
	cfg.DisableStacktrace = true

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewNop()
	}

	return &defaultLogger{level: level, sugar: l.Sugar()}
}

// NewNopLogger discards every message.
func NewNopLogger() *defaultLogger {
	return &defaultLogger{level: SILENCE, sugar: zap.NewNop().Sugar()}
}

// ParseLevel converts a config string to a level, INFO if unknown.
func ParseLevel(s string) int {
	switch s {
	case "debug", "DEBUG":
		return DEBUG
	case "warn", "warning", "WARN", "WARNING":
		return WARNING
	case "error", "ERROR":
		return ERROR
	case "silence", "SILENCE":
		return SILENCE
	default:
		return INFO
	}
}

func toZapLevel(level int) zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARNING:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func (l *defaultLogger) Debugf(msg string, a ...any) {
	if l.level <= DEBUG {
		l.sugar.Debugf(msg, a...)
	}
}

func (l *defaultLogger) Infof(msg string, a ...any) {
	if l.level <= INFO {
		l.sugar.Infof(msg, a...)
	}
}

func (l *defaultLogger) Warnf(msg string, a ...any) {
	if l.level <= WARNING {
		l.sugar.Warnf(msg, a...)
	}
}

func (l *defaultLogger) Errorf(msg string, a ...any) {
	if l.level <= ERROR {
		l.sugar.Errorf(msg, a...)
	}
}

// Sync flushes any buffered log entries.
func (l *defaultLogger) Sync() error {
	return l.sugar.Sync()
}
