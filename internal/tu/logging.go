package tu

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a structured logger from config. Errors fall back
// to a no-op logger rather than aborting the process.
func NewLogger(cfg LogConfig) *zap.Logger {
	level := zapcore.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var zcfg zap.Config
	if strings.ToLower(cfg.Format) == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	output := strings.ToLower(cfg.Output)
	switch output {
	case "", "stderr":
		zcfg.OutputPaths = []string{"stderr"}
	case "stdout":
		zcfg.OutputPaths = []string{"stdout"}
	default:
		zcfg.OutputPaths = []string{cfg.Output}
	}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
