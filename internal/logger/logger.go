package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the application logger.
type Options struct {
	JSON  bool
	Debug bool
	// File enables an additional rotated log file when set.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey: "step",

		LevelKey:    "level",
		EncodeLevel: zapcore.LowercaseLevelEncoder,

		TimeKey:    "time",
		EncodeTime: zapcore.RFC3339TimeEncoder,

		CallerKey:    "caller",
		EncodeCaller: zapcore.ShortCallerEncoder,
	}
}

func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	encoding := "console"

	if opts.JSON {
		encoding = "json"
	}

	if opts.Debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    encoderConfig(),
	}

	file := strings.TrimSpace(opts.File)
	if file == "" {
		logger, err := cfg.Build()
		if err != nil {
			return nil, err
		}
		return logger, nil
	}

	// The rotated file is always JSON.
	rotator := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    orDefault(opts.MaxSizeMB, 50),
		MaxBackups: orDefault(opts.MaxBackups, 3),
		MaxAge:     orDefault(opts.MaxAgeDays, 28),
		Compress:   true,
	}

	var stdoutEncoder zapcore.Encoder
	if opts.JSON {
		stdoutEncoder = zapcore.NewJSONEncoder(encoderConfig())
	} else {
		stdoutEncoder = zapcore.NewConsoleEncoder(encoderConfig())
	}

	errSink, _, err := zap.Open("stderr")
	if err != nil {
		return nil, fmt.Errorf("open error output: %w", err)
	}

	core := zapcore.NewTee(
		zapcore.NewCore(stdoutEncoder, zapcore.Lock(os.Stdout), level),
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(rotator), level),
	)

	return zap.New(core, zap.AddCaller(), zap.ErrorOutput(errSink)), nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
