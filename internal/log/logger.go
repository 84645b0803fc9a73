package log

import (
	"os"
	"strings"

	"github.com/telarpress/contact-relay/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds the service logger: a console core on stdout and, when a
// log file is configured, a JSON core writing through a rotating file.
func NewLogger(opts *config.Options) *zap.Logger {
	var rotationLog *lumberjack.Logger
	if opts.LogFile != "" {
		rotationLog = &lumberjack.Logger{
			Filename:   opts.LogFile,
			MaxSize:    opts.LogFileMaxSize, // megabytes
			MaxBackups: opts.LogFileMaxBackups,
			MaxAge:     opts.LogFileMaxAge, // days
			Compress:   opts.LogCompress,
		}
	}

	return newZap(zapcore.AddSync(os.Stdout), rotationLog, ParseLevel(opts.LogLevel))
}

// ParseLevel maps a configured level name to a zap level. Unknown names fall
// back to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func newZap(console zapcore.WriteSyncer, rotationLog *lumberjack.Logger, level zapcore.Level) *zap.Logger {
	encodeConfig := zap.NewProductionEncoderConfig()
	encodeConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encodeConfig), console, level)
	if rotationLog == nil {
		return zap.New(consoleCore, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	}

	rotationCore := zapcore.NewCore(zapcore.NewJSONEncoder(encodeConfig), zapcore.AddSync(rotationLog), level)
	core := zapcore.NewTee(consoleCore, rotationCore)

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}
