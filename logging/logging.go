// Package logging sets up the zap logger used by the catalog tools.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures Setup.
type Options struct {
	IsProduction bool
	Level        string
	// File receives JSON logs. Empty disables file logging.
	File string
	// Console receives human readable warnings in development. Defaults to
	// os.Stderr so menu output on stdout stays clean.
	Console io.Writer
}

// nopSync adapts a plain writer to zapcore.WriteSyncer. Syncing a terminal
// often fails with EINVAL, which is not worth reporting.
type nopSync struct {
	io.Writer
}

func (nopSync) Sync() error { return nil }

func encoderConfig(prod bool) zapcore.EncoderConfig {
	var zapConfig zapcore.EncoderConfig
	if prod {
		zapConfig = zap.NewProductionEncoderConfig()
	} else {
		zapConfig = zap.NewDevelopmentEncoderConfig()
	}
	zapConfig.TimeKey = "ts"
	zapConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.LevelKey = "lvl"
	zapConfig.NameKey = "name"
	zapConfig.MessageKey = "msg"
	zapConfig.CallerKey = "caller"
	zapConfig.StacktraceKey = "skt"
	return zapConfig
}

// Setup builds the logger. In production all logs go to the file as JSON.
// In development the file gets the same JSON and the console gets warnings
// and errors. The returned closer flushes the logger and closes the file.
func Setup(opts Options) (*zap.Logger, func() error, error) {
	level, err := zapcore.ParseLevel(opts.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	if opts.Console == nil {
		opts.Console = os.Stderr
	}

	var (
		cores   []zapcore.Core
		logFile *os.File
	)
	if opts.File != "" {
		if dir := filepath.Dir(opts.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create log dir: %w", err)
			}
		}
		logFile, err = os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		fileEncoder := zapcore.NewJSONEncoder(encoderConfig(opts.IsProduction))
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(logFile), level))
	}
	if !opts.IsProduction {
		consoleLevel := level
		if consoleLevel < zapcore.WarnLevel {
			consoleLevel = zapcore.WarnLevel
		}
		consoleEncoder := zapcore.NewConsoleEncoder(encoderConfig(false))
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.Lock(nopSync{opts.Console}), consoleLevel))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.FatalLevel))

	closer := func() error {
		err := logger.Sync()
		if logFile != nil {
			if cerr := logFile.Close(); cerr != nil && err == nil {
				err = cerr
			}
		}
		if err != nil {
			return fmt.Errorf("[flush logs]: %w", err)
		}
		return nil
	}
	return logger, closer, nil
}
