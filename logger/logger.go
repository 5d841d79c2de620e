package logger

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global logger instance
	logger *zap.Logger
	// Global sugared logger instance
	sugar *zap.SugaredLogger
	// Log file opened by Init, closed by Sync
	logFile *os.File
	// Ensure initialization happens only once
	once sync.Once
)

// Init initializes the process-wide logger with the given log level.
// Valid levels: debug, info, warn, error, dpanic, panic, fatal.
// Entries are written to stdout and, when filePath is not empty, appended to filePath.
// Only the first call has an effect.
func Init(level, filePath string) {
	once.Do(func() {
		var err error
		logger, logFile, err = New(level, filePath)
		if err != nil {
			// Keep logging to stdout if the log file can't be opened
			logger, logFile, _ = New(level, "")
			logger.Warn("Failed to open log file, logging to stdout only", zap.String("file", filePath), zap.Error(err))
		}
		sugar = logger.Sugar()
	})
}

// New builds a logger writing to stdout and to filePath, if given.
// The returned file is nil when no file sink is used.
func New(level, filePath string) (*zap.Logger, *os.File, error) {
	// Parse log level
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zap.InfoLevel // Default to info level
	}

	encoder := zapcore.NewJSONEncoder(encoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zapLevel),
	}

	var file *os.File
	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		cores = append(cores, zapcore.NewCore(encoder.Clone(), zapcore.AddSync(f), zapLevel))
	}

	l := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	return l, file, nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// Sugar returns the global sugared logger
func Sugar() *zap.SugaredLogger {
	if sugar == nil {
		// If logger hasn't been initialized, initialize with info level on stdout
		Init("info", "")
	}
	return sugar
}

// GetLogger returns the global zap logger
func GetLogger() *zap.Logger {
	if logger == nil {
		Init("info", "")
	}
	return logger
}

// Sync flushes any buffered log entries and closes the log file
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// Debug logs a message at debug level
func Debug(args ...interface{}) {
	Sugar().Debug(args...)
}

// Info logs a message at info level
func Info(args ...interface{}) {
	Sugar().Info(args...)
}

// Warn logs a message at warn level
func Warn(args ...interface{}) {
	Sugar().Warn(args...)
}

// Error logs a message at error level
func Error(args ...interface{}) {
	Sugar().Error(args...)
}

// Debugf logs a formatted message at debug level
func Debugf(template string, args ...interface{}) {
	Sugar().Debugf(template, args...)
}

// Infof logs a formatted message at info level
func Infof(template string, args ...interface{}) {
	Sugar().Infof(template, args...)
}

// Warnf logs a formatted message at warn level
func Warnf(template string, args ...interface{}) {
	Sugar().Warnf(template, args...)
}

// Errorf logs a formatted message at error level
func Errorf(template string, args ...interface{}) {
	Sugar().Errorf(template, args...)
}

// Debugw logs a message with key-value pairs at debug level
func Debugw(msg string, keysAndValues ...interface{}) {
	Sugar().Debugw(msg, keysAndValues...)
}

// Infow logs a message with key-value pairs at info level
func Infow(msg string, keysAndValues ...interface{}) {
	Sugar().Infow(msg, keysAndValues...)
}

// Warnw logs a message with key-value pairs at warn level
func Warnw(msg string, keysAndValues ...interface{}) {
	Sugar().Warnw(msg, keysAndValues...)
}

// Errorw logs a message with key-value pairs at error level
func Errorw(msg string, keysAndValues ...interface{}) {
	Sugar().Errorw(msg, keysAndValues...)
}
