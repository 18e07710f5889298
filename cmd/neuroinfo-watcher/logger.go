package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dgnsrekt/neuroinfo-watcher/internal/config"
)

// loggerOptions selects the zap preset and outputs for the CLI logger.
type loggerOptions struct {
	// Verbose selects the development preset at debug level and ignores
	// the configured level.
	Verbose bool
	Logging *config.LoggingConfig
	Now     func() time.Time
}

func (o loggerOptions) zapConfig() (zap.Config, error) {
	var zc zap.Config
	if o.Verbose {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.DisableStacktrace = true
	}

	if o.Logging == nil {
		return zc, nil
	}

	if o.Logging.Level != "" && !o.Verbose {
		level, err := zapcore.ParseLevel(o.Logging.Level)
		if err != nil {
			return zc, fmt.Errorf("parsing logging.level: %w", err)
		}
		zc.Level = zap.NewAtomicLevelAt(level)
	}

	if o.Logging.Enabled {
		if err := os.MkdirAll(o.Logging.Directory, 0o755); err != nil {
			return zc, fmt.Errorf("creating logs directory: %w", err)
		}
		zc.OutputPaths = append(zc.OutputPaths, o.logFile())
	}
	return zc, nil
}

func (o loggerOptions) logFile() string {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	name := fmt.Sprintf("neuroinfo-watcher_%s.log", now().Format("2006-01-02_15-04-05"))
	return filepath.Join(o.Logging.Directory, name)
}

func (o loggerOptions) build() (*zap.Logger, error) {
	zc, err := o.zapConfig()
	if err != nil {
		return nil, err
	}
	return zc.Build()
}
