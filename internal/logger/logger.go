package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ServiceName is attached to every log entry
const ServiceName = "storefront"

// New creates a structured logger writing to stdout. Production logs are JSON;
// every other env gets a colored console encoder. level defaults to debug in
// development and info elsewhere.
func New(env, level string) (*zap.Logger, error) {
	return NewWithSink(env, level, zapcore.Lock(os.Stdout))
}

// NewWithSink builds the same logger as New over an arbitrary sink
func NewWithSink(env, level string, sink zapcore.WriteSyncer) (*zap.Logger, error) {
	minLevel := zapcore.InfoLevel
	if env != "production" {
		minLevel = zapcore.DebugLevel
	}
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		minLevel = parsed
	}

	core := zapcore.NewCore(newEncoder(env), sink, minLevel)

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	).With(zap.String("service", ServiceName)), nil
}

func newEncoder(env string) zapcore.Encoder {
	if env == "production" {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "timestamp"
		cfg.MessageKey = "message"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeDuration = zapcore.MillisDurationEncoder
		return zapcore.NewJSONEncoder(cfg)
	}

	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}
