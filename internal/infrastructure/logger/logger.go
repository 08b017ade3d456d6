// Package logger builds the service's zap loggers and carries request-scoped
// loggers through context and gin.
package logger

import (
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	Output     string // stdout, stderr, or file path
	TimeFormat string
}

const defaultTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// New creates a zap logger. Production always logs json and samples repeated
// entries; an output that cannot be opened falls back to stdout.
func New(cfg Config, env string) *zap.Logger {
	production := env == "production"
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = defaultTimeFormat
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(cfg.TimeFormat)
	encCfg.EncodeDuration = zapcore.MillisDurationEncoder

	var enc zapcore.Encoder
	if cfg.Format == "console" && !production {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	out, _, err := zap.Open(outputPath(cfg.Output))
	if err != nil {
		out = zapcore.Lock(os.Stdout)
	}

	core := zapcore.NewCore(enc, out, ParseLevel(cfg.Level))
	if production {
		core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 100)
	}
	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	)
}

// ParseLevel converts a configured level name, defaulting to info
func ParseLevel(level string) zapcore.Level {
	name := strings.ToLower(strings.TrimSpace(level))
	if name == "warning" {
		name = "warn"
	}
	lvl, err := zapcore.ParseLevel(name)
	if err != nil || name == "" {
		return zapcore.InfoLevel
	}
	return lvl
}

func outputPath(output string) string {
	if output == "" {
		return "stdout"
	}
	return output
}
