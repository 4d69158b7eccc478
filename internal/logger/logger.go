// Package logger builds the zap loggers used by the wayfarer binaries and carries them through contexts.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// presets maps an environment name to its base zap config.
var presets = map[string]func() zap.Config{
	"prod": zap.NewProductionConfig,
	"local": func() zap.Config {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return cfg
	},
	"dev":    zap.NewDevelopmentConfig,
	"docker": zap.NewDevelopmentConfig,
	"test": func() zap.Config {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		return cfg
	},
}

// New creates the logger for one binary. component names the binary (wayfarer, wayfarerctl)
// and is attached to every entry together with env.
// Output always goes to stderr: stdout carries CLI results and MCP stdio frames.
// A non-empty level (debug, info, warn, error) replaces the preset level.
func New(component, env, level string) (*zap.Logger, error) {
	preset, ok := presets[env]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q for logger", env)
	}
	cfg := preset()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l.With(zap.String("component", component), zap.String("env", env)), nil
}
