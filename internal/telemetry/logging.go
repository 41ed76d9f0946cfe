package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates the service logger: JSON on stdout, trace-correlated
// through otelzap.
func NewLogger(level string) (*otelzap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(parseLevel(level))
	config.Encoding = "json"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	return build(config)
}

// NewCLILogger creates a human-readable logger on stderr for one-shot
// commands, leaving stdout for command output.
func NewCLILogger(level string) (*otelzap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(parseLevel(level))
	config.OutputPaths = []string{"stderr"}
	config.DisableStacktrace = true
	return build(config)
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *otelzap.Logger {
	return otelzap.New(zap.NewNop())
}

func build(config zap.Config) (*otelzap.Logger, error) {
	zapLogger, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return otelzap.New(zapLogger, otelzap.WithMinLevel(config.Level.Level())), nil
}

// parseLevel maps LOG_LEVEL to a zap level; unknown values mean info.
func parseLevel(level string) zapcore.Level {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}
