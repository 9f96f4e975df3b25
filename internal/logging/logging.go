// Package logging builds the CLI logger and adapts it to bootloader.Logger.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a console logger writing to w at the given level.
func New(w io.Writer, level zapcore.Level) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "message",
		EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05.000"),
		EncodeLevel:      zapcore.CapitalColorLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)

	return zap.New(core)
}

// Adapter exposes a zap logger through the key-value Logger interface used
// by the bootloader package.
type Adapter struct {
	sugar *zap.SugaredLogger
}

// NewAdapter wraps logger.
func NewAdapter(logger *zap.Logger) *Adapter {
	return &Adapter{sugar: logger.Sugar()}
}

// Debug logs a debug message with key-value pairs.
func (a *Adapter) Debug(msg string, keysAndValues ...interface{}) {
	a.sugar.Debugw(msg, keysAndValues...)
}

// Info logs an info message with key-value pairs.
func (a *Adapter) Info(msg string, keysAndValues ...interface{}) {
	a.sugar.Infow(msg, keysAndValues...)
}

// Error logs an error message with key-value pairs.
func (a *Adapter) Error(msg string, keysAndValues ...interface{}) {
	a.sugar.Errorw(msg, keysAndValues...)
}
