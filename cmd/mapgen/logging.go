package main

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/toyz/mapgen/internal/utils"
)

// newLogger builds a console logger writing to w at the named level
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), lvl)
	return zap.New(core).Named("mapgen"), nil
}

// newDiagnostics picks the human-facing output level from the global flags
func newDiagnostics(g Globals, stdout, stderr io.Writer) *utils.DiagnosticSystem {
	var d *utils.DiagnosticSystem
	switch {
	case g.Quiet:
		d = utils.NewQuietDiagnostics()
	case g.Verbose:
		d = utils.NewVerboseDiagnostics()
	default:
		d = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	if stdout != os.Stdout || stderr != os.Stderr {
		d.SetOutput(stdout, stderr)
	}
	return d
}
