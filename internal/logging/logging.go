// Package logging wraps zap with the console setup used by the CLI.
package logging

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sugared zap logger shared by commands and the pipeline
type Logger struct {
	*zap.SugaredLogger
}

// NewLogger writes to stderr at info level, or debug when verbose is set.
// Levels are colored when stderr is a terminal.
func NewLogger(verbose bool) *Logger {
	fd := os.Stderr.Fd()
	color := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	return New(os.Stderr, verbose, color)
}

// New builds a console logger on w.
func New(w io.Writer, verbose, color bool) *Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if color {
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if !verbose {
		cfg.CallerKey = zapcore.OmitKey
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), level)
	opts := []zap.Option{}
	if verbose {
		opts = append(opts, zap.AddCaller())
	}
	return &Logger{zap.New(core, opts...).Sugar()}
}

// Nop discards everything; used by tests and library callers.
func Nop() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}
