// Package observability owns the process-wide structured logger.
package observability

import (
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lijinlar/handsfree-windows/internal/config"
)

var (
	// globalLogger stores the global logger instance safely across goroutines.
	globalLogger atomic.Pointer[zap.Logger]
	once         sync.Once
)

// Initialize sets up the global zap logger from configuration. Console
// output goes to stderr so command output on stdout stays machine-parseable;
// an optional JSON file sink is rotated by lumberjack. Safe to call more
// than once; only the first call wins.
func Initialize(cfg config.LoggerConfig) {
	once.Do(func() {
		level := zap.NewAtomicLevel()
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			level.SetLevel(zap.InfoLevel)
		}

		consoleCore := zapcore.NewCore(newEncoder(cfg), zapcore.Lock(os.Stderr), level)
		cores := []zapcore.Core{consoleCore}

		if cfg.LogFile != "" {
			fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
			fileWriter := zapcore.AddSync(&lumberjack.Logger{
				Filename:   cfg.LogFile,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
				Compress:   cfg.Compress,
			})
			cores = append(cores, zapcore.NewCore(fileEncoder, fileWriter, level))
		}

		logger := zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zap.ErrorLevel))
		globalLogger.Store(logger)
	})
}

func newEncoder(cfg config.LoggerConfig) zapcore.Encoder {
	encCfg := zap.NewDevelopmentEncoderConfig()
	if cfg.Color {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	if cfg.Format == "json" {
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}
	return zapcore.NewConsoleEncoder(encCfg)
}

// Logger returns the global logger, initializing a default one if Initialize
// was never called.
func Logger() *zap.Logger {
	if l := globalLogger.Load(); l != nil {
		return l
	}
	Initialize(config.Default().Log)
	return globalLogger.Load()
}

// Sync flushes buffered log entries. Called on process exit.
func Sync() {
	if l := globalLogger.Load(); l != nil {
		_ = l.Sync()
	}
}
