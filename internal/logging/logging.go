// Package logging builds the zap loggers used across the scheduling engine
// (§ ambient stack, grounded on the teacher's zap usage throughout
// reimplement/internal/service).
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewProductionLogger builds a JSON-encoded, info-level-and-above logger
// suitable for the running server.
func NewProductionLogger() (*zap.SugaredLogger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// NewDevelopmentLogger builds a human-readable, debug-level logger for local
// runs.
func NewDevelopmentLogger() (*zap.SugaredLogger, error) {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
