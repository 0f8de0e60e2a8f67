// Package logging builds the process logger and records per-turn decisions.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// #region config
// Config selects log level, console format, and the optional rotated file.
type Config struct {
	Level      string    `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format     string    `yaml:"format" validate:"omitempty,oneof=console json"`
	File       string    `yaml:"file"` // empty disables the file core
	MaxSizeMB  int       `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int       `yaml:"max_backups" validate:"gte=0"`
	MaxAgeDays int       `yaml:"max_age_days" validate:"gte=0"`
	Console    io.Writer `yaml:"-"` // defaults to stderr
}

// DefaultConfig logs info and above to the console only.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "console",
		MaxSizeMB:  10,
		MaxBackups: 5,
		MaxAgeDays: 30,
	}
}
// #endregion config

// #region new
// New builds a zap logger that tees the console and, when File is set, a
// JSON file rotated by lumberjack.
func New(cfg Config) (*zap.Logger, error) {
	d := DefaultConfig()
	if cfg.Level == "" {
		cfg.Level = d.Level
	}
	if cfg.MaxSizeMB == 0 {
		cfg.MaxSizeMB = d.MaxSizeMB
	}
	if cfg.MaxBackups == 0 {
		cfg.MaxBackups = d.MaxBackups
	}
	if cfg.MaxAgeDays == 0 {
		cfg.MaxAgeDays = d.MaxAgeDays
	}
	if cfg.Console == nil {
		cfg.Console = os.Stderr
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	jsonEncoder := zapcore.NewJSONEncoder(encoderConfig)

	consoleEncoder := jsonEncoder
	if cfg.Format != "json" {
		consoleEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder, zapcore.Lock(zapcore.AddSync(cfg.Console)), level),
	}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(jsonEncoder, zapcore.AddSync(rotator), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}
// #endregion new
