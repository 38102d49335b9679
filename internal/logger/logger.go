// Package logger holds the process-wide structured logger of the CLI and
// build pipeline. It is a no-op until Initialize is called, so library
// code may log unconditionally.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the global logger instance.
var Logger = zap.NewNop().Sugar()

// Initialize replaces the global logger. verbose lowers the level to debug;
// jsonOutput switches to the production JSON encoder for machine
// consumption.
func Initialize(verbose, jsonOutput bool) error {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		config.OutputPaths = []string{"stderr"}
		zl, err := config.Build()
		if err != nil {
			return err
		}
		Logger = zl.Sugar()
		return nil
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:          "",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalColorLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
	Logger = zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		level,
	)).Sugar()
	return nil
}

// Sync flushes buffered entries. Errors from syncing a terminal are
// ignored.
func Sync() {
	_ = Logger.Sync()
}
