package cmd

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/ByLCY/docflow/config"
)

// newLogger builds a console (development) or JSON (production) logger.
// --verbose forces debug level.
func newLogger(cfg config.LogConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if cfg.Format == "json" {
		zc = zap.NewProductionConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	if verbose {
		level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	zc.Level = level
	zc.DisableStacktrace = !verbose
	return zc.Build()
}
