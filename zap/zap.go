// Package zap builds the application logger and logs monitoring rounds to the
// console.
package zap

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds a sugared logger writing to stderr at the given level. A
// development logger uses the human-readable console encoding.
func NewLogger(level string, development bool) (*zap.SugaredLogger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
