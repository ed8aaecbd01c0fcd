// Package logger provides opinionated logging for ChatSphere.
package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a console logger writing to stdout.
func NewLogger(debug bool) *zap.Logger {
	return newLogger(debug, zapcore.AddSync(os.Stdout), zapcore.CapitalColorLevelEncoder)
}

// NewWriterLogger returns a logger writing uncolored lines to w.
// The terminal UI owns stdout, so it logs through this instead.
func NewWriterLogger(debug bool, w io.Writer) *zap.Logger {
	return newLogger(debug, zapcore.AddSync(w), zapcore.CapitalLevelEncoder)
}

// NewFileLogger opens (or creates) path for appending and logs to it.
// An empty path yields a no-op logger.
func NewFileLogger(debug bool, path string) (*zap.Logger, func() error, error) {
	if path == "" {
		return zap.NewNop(), func() error { return nil }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return NewWriterLogger(debug, f), f.Close, nil
}

func newLogger(debug bool, sink zapcore.WriteSyncer, levelEncoder zapcore.LevelEncoder) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = levelEncoder

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		sink,
		level,
	)

	return zap.New(core, zap.AddCaller())
}

// Truncate shortens s for log previews, flattening newlines.
func Truncate(s string, maxLen int) string {
	runes := []rune(s)
	for i, r := range runes {
		if r == '\n' {
			runes[i] = ' '
		}
	}
	if len(runes) <= maxLen {
		return string(runes)
	}
	return string(runes[:maxLen]) + "..."
}
