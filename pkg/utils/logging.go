package utils

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the process logger: JSON to stdout, teed to LOG_FILE when
// set, at LOG_LEVEL (info by default).
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		logger = NewLogger(os.Getenv("LOG_FILE"), os.Getenv("LOG_LEVEL"))
	})
	return logger
}

// NewLogger builds a logger writing to stdout and, if logFile is not
// empty, appending to that file too. An unreadable level falls back to info.
func NewLogger(logFile, level string) *zap.Logger {
	lvl := zapcore.InfoLevel
	if level != "" {
		if l, err := zapcore.ParseLevel(level); err == nil {
			lvl = l
		}
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	consoleCore := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl)
	if logFile == "" {
		return zap.New(consoleCore)
	}

	_ = os.MkdirAll(filepath.Dir(logFile), 0o755)
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zap.New(consoleCore)
	}
	fileCore := zapcore.NewCore(enc, zapcore.AddSync(f), lvl)
	return zap.New(zapcore.NewTee(fileCore, consoleCore))
}
