// Package logging builds the process logger: zap to stderr, optionally teed
// into a size-rotated file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"videoapi/internal/config"
)

// New builds a logger from the config's debug flag and [log] section.
// The returned closer flushes and closes the log file; it is never nil.
func New(cfg *config.Config) (*zap.Logger, io.Closer, error) {
	level := zapcore.InfoLevel
	if cfg.Debug {
		level = zapcore.DebugLevel
	}

	cores := []zapcore.Core{
		zapcore.NewCore(consoleEncoder(term.IsTerminal(int(os.Stderr.Fd()))), zapcore.Lock(os.Stderr), level),
	}

	var closer io.Closer = nopCloser{}
	if cfg.Log.File != "" {
		path, err := config.ExpandPath(cfg.Log.File)
		if err != nil {
			return nil, nil, fmt.Errorf("resolving log file: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, nil, fmt.Errorf("creating log dir: %w", err)
		}
		file := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    cfg.Log.MaxSize,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAge,
			Compress:   cfg.Log.Compress,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(file),
			level,
		))
		closer = file
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return logger, closer, nil
}

// consoleEncoder is human-readable on a terminal and JSON otherwise.
func consoleEncoder(tty bool) zapcore.Encoder {
	if tty {
		enc := zap.NewDevelopmentEncoderConfig()
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(enc)
	}
	return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
