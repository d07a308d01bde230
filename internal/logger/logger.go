// Package logger builds the process-wide zap logger for the bridge daemon:
// JSON output, ISO8601 timestamps, level taken from configuration, and every
// entry tagged with the service name.
package logger

import (
	"fmt"

	"github.com/smallbiznis/nwcd/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the logger from application configuration and replaces the zap
// globals. Unknown levels are rejected rather than silently downgraded.
func New(cfg config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Encoding = "json"
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	level := cfg.Logger.Level
	if level == "" {
		level = "info"
	}
	if err := zcfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	log, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	if cfg.AppName != "" {
		log = log.With(zap.String("service", cfg.AppName))
	}

	zap.ReplaceGlobals(log)
	return log, nil
}
