package utils

import (
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewApplicationLogger constructs a zap logger configured for human-readable console output
// on standard error. Level names are colored when standard error is a terminal.
func NewApplicationLogger(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.Sampling = nil
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if isTerminal(os.Stderr.Fd()) {
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	config.EncoderConfig.TimeKey = ""
	config.EncoderConfig.NameKey = ""
	config.EncoderConfig.CallerKey = ""
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.StacktraceKey = ""
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}

func isTerminal(descriptor uintptr) bool {
	return isatty.IsTerminal(descriptor) || isatty.IsCygwinTerminal(descriptor)
}
