// Package logging wires go.uber.org/zap for the command-line edges of this
// module: diagnostics rendered at internal/core are plain values, and only
// cmd/pdbtbx passes them through a structured logger, the same split the
// teacher repo draws between its core packages and its CLI entrypoint.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"pdbtbx/internal/core"
)

// New builds a zap.Logger writing human-readable console output at Info
// level, or Debug level when verbose is true.
func New(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

// LogDiagnostics emits one log line per accumulated Diagnostic, at a level
// derived from its ErrorLevel.
func LogDiagnostics(log *zap.Logger, diags core.Diagnostics, strictness core.StrictnessLevel) {
	for _, d := range diags {
		fields := []zap.Field{
			zap.String("kind", d.Kind.String()),
			zap.Bool("fatal", d.IsError(strictness)),
		}
		switch d.Level {
		case core.BreakingError, core.InvalidatingError:
			log.Error(d.Message, fields...)
		case core.StrictWarning:
			log.Warn(d.Message, fields...)
		default:
			log.Info(d.Message, fields...)
		}
	}
}
