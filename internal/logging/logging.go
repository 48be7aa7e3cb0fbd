// Package logging builds the node's zap.Logger with an atomic level that
// util.updateLogLevel can swap at runtime without restarting anything.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-style zap.Logger at the given initial level,
// returning both the logger and the AtomicLevel backing it so callers can
// hand the level to the RPC util module for live reconfiguration.
func New(initialLevel string) (*zap.Logger, *zap.AtomicLevel, error) {
	var lvl zapcore.Level
	if initialLevel == "" {
		initialLevel = "info"
	}
	if err := lvl.UnmarshalText([]byte(initialLevel)); err != nil {
		return nil, nil, fmt.Errorf("logging: %q is not a recognized log level", initialLevel)
	}

	atom := zap.NewAtomicLevelAt(lvl)
	cfg := zap.NewProductionConfig()
	cfg.Level = atom
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("logging: building logger: %w", err)
	}
	return log, &atom, nil
}
