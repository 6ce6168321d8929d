package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.SugaredLogger

// SetupLogger configures the global structured logger from the
// logging.* config keys: level (debug|info|warn|error), format
// (json|console) and output (stdout|file|both). File output falls back
// to ./logs/zerotrace.log when the configured path is not writable.
func SetupLogger() error {
	level := strings.ToLower(viper.GetString("logging.level"))
	format := strings.ToLower(viper.GetString("logging.format"))
	output := strings.ToLower(viper.GetString("logging.output"))
	logFile := viper.GetString("logging.file")

	if format == "" {
		format = "json"
	}
	if output == "" {
		output = "stdout"
	}
	if logFile == "" {
		logFile = "/var/log/zerotrace.log"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if format == "console" {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	var sink zapcore.WriteSyncer
	switch output {
	case "file":
		file, err := openLogFile(&logFile)
		if err != nil {
			return err
		}
		sink = zapcore.AddSync(file)
	case "both":
		file, err := openLogFile(&logFile)
		if err != nil {
			return err
		}
		sink = zapcore.NewMultiWriteSyncer(zapcore.AddSync(os.Stdout), zapcore.AddSync(file))
	default:
		sink = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(enc, sink, zapLevel)
	logger = zap.New(core, zap.AddCaller()).Sugar()
	logger.Infow("logging configured", "level", zapLevel.String(), "format", format, "output", output)
	return nil
}

func openLogFile(path *string) (*os.File, error) {
	dir := filepath.Dir(*path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		*path = "./logs/zerotrace.log"
		if err := os.MkdirAll(filepath.Dir(*path), 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(*path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// L returns the global logger, initializing a stdout default if
// SetupLogger has not run (tests, tooling).
func L() *zap.SugaredLogger {
	if logger == nil {
		z, _ := zap.NewProduction()
		logger = z.Sugar()
	}
	return logger
}
