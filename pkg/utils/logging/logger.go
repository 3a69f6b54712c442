package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const appName = "volunteer-hub"

// Options tune InitLogger. The zero value gives the CLI defaults.
type Options struct {
	// LogsDir is where the JSON log file is written, "logs" when empty
	LogsDir string
	// Verbose lowers the console level to Debug
	Verbose bool
	// JSONConsole writes JSON to stdout instead of the colored console format,
	// used when running as a server
	JSONConsole bool
}

// InitLogger initializes a zap logger with console and file outputs
// env is used to prefix the log file name
func InitLogger(env string) (*zap.Logger, error) {
	return InitLoggerWithOptions(env, Options{})
}

// InitLoggerWithOptions initializes a zap logger with console and file outputs
func InitLoggerWithOptions(env string, opts Options) (*zap.Logger, error) {
	logsDir := opts.LogsDir
	if logsDir == "" {
		logsDir = "logs"
	}
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logFileName := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", fileEnv(env), timestamp))
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	fileEncoderConfig := zap.NewProductionEncoderConfig()
	fileEncoderConfig.TimeKey = "timestamp"
	fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	fileEncoder := zapcore.NewJSONEncoder(fileEncoderConfig)

	var consoleEncoder zapcore.Encoder
	if opts.JSONConsole {
		consoleEncoder = zapcore.NewJSONEncoder(fileEncoderConfig)
	} else {
		consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
		consoleEncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		consoleEncoder = zapcore.NewConsoleEncoder(consoleEncoderConfig)
	}

	// Info for console, Debug for file
	consoleLevel := zapcore.InfoLevel
	if opts.Verbose {
		consoleLevel = zapcore.DebugLevel
	}
	fileLevel := zapcore.DebugLevel

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), consoleLevel),
		zapcore.NewCore(fileEncoder, zapcore.AddSync(logFile), fileLevel),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("app", appName), zap.String("env", fileEnv(env)))

	return logger, nil
}

func fileEnv(env string) string {
	if env == "" {
		return "default"
	}
	return env
}
