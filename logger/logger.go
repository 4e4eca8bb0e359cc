// Package logger provides a small leveled logging facade for the client.
//
// The library never logs unless a caller hands it a Logger, so the default
// everywhere is Noop(). New() builds a zap-backed implementation for callers
// that want output without wiring zap themselves.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines the interface for logging messages.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Noop returns a do-nothing Logger (null object pattern).
func Noop() Logger { return noopLogger{} }

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}

// zapLogger adapts a zap sugared logger to the Logger interface.
type zapLogger struct {
	sugared *zap.SugaredLogger
}

// New creates a zap-backed Logger at the given level ("debug", "info",
// "warn", "error"; anything else means info). If pretty is true, output is
// human-readable console encoding; otherwise production JSON.
func New(level string, pretty bool) (Logger, error) {
	var cfg zap.Config
	if pretty {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	base, err := cfg.Build(
		zap.AddStacktrace(zapcore.FatalLevel), // stack traces only for Fatal
	)
	if err != nil {
		return nil, err
	}
	return &zapLogger{sugared: base.Sugar()}, nil
}

// FromZap wraps an existing zap logger in the Logger interface, for callers
// that already carry their own zap configuration.
func FromZap(l *zap.Logger) Logger {
	return &zapLogger{sugared: l.Sugar()}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *zapLogger) Debugf(format string, args ...any) { l.sugared.Debugf(format, args...) }
func (l *zapLogger) Infof(format string, args ...any)  { l.sugared.Infof(format, args...) }
func (l *zapLogger) Warnf(format string, args ...any)  { l.sugared.Warnf(format, args...) }
func (l *zapLogger) Errorf(format string, args ...any) { l.sugared.Errorf(format, args...) }
