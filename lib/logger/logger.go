// Package logger provides the ambient structured logger for THE CORE
// event loop, its command dispatcher, and the surrounding cmd/ process.
//
// The teacher rolled its own async logger: a hand-written channel plus
// sync.Pool feeding a stdlib log.Logger, with its own time-stamped file
// rotation in files.go. That hand-rolled stack is replaced here with
// go.uber.org/zap (structured, allocation-conscious logging — the same
// choice packetd-packetd makes for its agent) writing through
// gopkg.in/natefinch/lumberjack.v2 for size-based rotation, the pairing
// packetd-packetd's cmd/agent.go wires up via zapcore.AddSync(lumberjack).
// The public surface the rest of this module depends on — Settings,
// Setup, and the leveled package functions — is kept so callers never
// needed to change.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Settings configures where and how log output is written. Path/Name/Ext
// retain the teacher's field names; MaxSizeMB, MaxBackups, MaxAgeDays,
// and Compress are lumberjack's rotation knobs, surfaced the way
// packetd-packetd's own logging config extends its base fields.
type Settings struct {
	Path       string `yaml:"path"`
	Name       string `yaml:"name"`
	Ext        string `yaml:"ext"`
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAgeDays int    `yaml:"max-age-days"`
	Compress   bool   `yaml:"compress"`
	Level      string `yaml:"level"`
	Console    bool   `yaml:"console"`
}

// DefaultLogger is the package-level sugared logger every exported
// function below writes through. It starts as a console-only logger at
// debug level so a process that never calls Setup still logs something
// sensible before its configuration is loaded.
var DefaultLogger = newConsoleLogger()

func newConsoleLogger() *zap.SugaredLogger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	return l.Sugar()
}

// Setup replaces DefaultLogger with one that writes JSON-encoded
// records through a size-rotated file (and, if settings.Console is set,
// also to stderr), per §10.1.
func Setup(settings *Settings) {
	level := parseLevel(settings.Level)

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(newRotator(settings)),
		level,
	)

	cores := []zapcore.Core{fileCore}
	if settings.Console {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig()),
			zapcore.Lock(zapcore.AddSync(os.Stderr)),
			level,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1))
	DefaultLogger = logger.Sugar()
}

func newRotator(settings *Settings) *lumberjack.Logger {
	name := settings.Name
	if settings.Ext != "" {
		name = name + "." + settings.Ext
	}
	return &lumberjack.Logger{
		Filename:   settings.Path + string(os.PathSeparator) + name,
		MaxSize:    orDefault(settings.MaxSizeMB, 100),
		MaxBackups: settings.MaxBackups,
		MaxAge:     settings.MaxAgeDays,
		Compress:   settings.Compress,
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "ts"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

func parseLevel(s string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Debug logs at debug level through DefaultLogger.
func Debug(args ...interface{}) { DefaultLogger.Debug(args...) }

// Debugf logs a formatted message at debug level through DefaultLogger.
func Debugf(format string, args ...interface{}) { DefaultLogger.Debugf(format, args...) }

// Info logs at info level through DefaultLogger.
func Info(args ...interface{}) { DefaultLogger.Info(args...) }

// Infof logs a formatted message at info level through DefaultLogger.
func Infof(format string, args ...interface{}) { DefaultLogger.Infof(format, args...) }

// Warn logs at warn level through DefaultLogger.
func Warn(args ...interface{}) { DefaultLogger.Warn(args...) }

// Warnf logs a formatted message at warn level through DefaultLogger.
func Warnf(format string, args ...interface{}) { DefaultLogger.Warnf(format, args...) }

// Error logs at error level through DefaultLogger.
func Error(args ...interface{}) { DefaultLogger.Error(args...) }

// Errorf logs a formatted message at error level through DefaultLogger.
func Errorf(format string, args ...interface{}) { DefaultLogger.Errorf(format, args...) }

// Fatal logs at fatal level through DefaultLogger, then calls os.Exit(1).
func Fatal(args ...interface{}) { DefaultLogger.Fatal(args...) }

// Fatalf logs a formatted message at fatal level through DefaultLogger,
// then calls os.Exit(1).
func Fatalf(format string, args ...interface{}) { DefaultLogger.Fatalf(format, args...) }
