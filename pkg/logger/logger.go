package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging port every layer depends on. Error and
// Fatal take the error separately so call sites never forget the field.
type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, err error, fields ...zap.Field)
	Fatal(msg string, err error, fields ...zap.Field)
	With(fields ...zap.Field) Logger
	Named(name string) Logger
	Sync()
}

type Options struct {
	Env string
	// Level is one of debug, info, warn, error. Empty picks the env default.
	Level   string
	Service string
}

// New builds a JSON logger for production and a console logger otherwise.
func New(opts Options) (Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if opts.Env == "production" {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.DisableStacktrace = true
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if opts.Level != "" {
		lvl, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("can't initialize zap logger: %w", err)
	}
	if opts.Service != "" {
		z = z.With(zap.String("service", opts.Service))
	}
	return Wrap(z), nil
}

// Wrap adapts an existing zap logger, e.g. one backed by zaptest/observer.
func Wrap(z *zap.Logger) Logger {
	return &zapLogger{z: z}
}

func NewNop() Logger {
	return Wrap(zap.NewNop())
}

type zapLogger struct {
	z *zap.Logger
}

func withErr(fields []zap.Field, err error) []zap.Field {
	if err == nil {
		return fields
	}
	return append(fields, zap.Error(err))
}

func (l *zapLogger) Debug(msg string, fields ...zap.Field) { l.z.Debug(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...zap.Field)  { l.z.Info(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...zap.Field)  { l.z.Warn(msg, fields...) }

func (l *zapLogger) Error(msg string, err error, fields ...zap.Field) {
	l.z.Error(msg, withErr(fields, err)...)
}

func (l *zapLogger) Fatal(msg string, err error, fields ...zap.Field) {
	l.z.Fatal(msg, withErr(fields, err)...)
}

func (l *zapLogger) With(fields ...zap.Field) Logger {
	return &zapLogger{z: l.z.With(fields...)}
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{z: l.z.Named(name)}
}

// Sync flushes buffered entries; stderr sync errors are not actionable.
func (l *zapLogger) Sync() {
	_ = l.z.Sync()
}
