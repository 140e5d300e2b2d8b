package common

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/clipv/clipv/internal/config"
)

// NewLogger builds the zap logger described by the log config. Level
// strings that fail to parse fall back to info.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	encoding := cfg.Log.Format
	if encoding != "json" {
		encoding = "console"
	}

	zcfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       false,
		DisableStacktrace: true,
		Encoding:          encoding,
		EncoderConfig:     encoderConfig(encoding),
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}

	return zcfg.Build()
}

func encoderConfig(encoding string) zapcore.EncoderConfig {
	if encoding == "json" {
		return zap.NewProductionEncoderConfig()
	}
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return ec
}
