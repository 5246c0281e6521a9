package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel type alias for log level constants
type LogLevel string

// Log levels
const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

// Config contains logger configuration options
type Config struct {
	// Level is the minimum level to log
	Level string
	// JSON enables JSON formatting instead of console text
	JSON bool
	// Output is where logs will be written (defaults to os.Stderr)
	Output io.Writer
	// AddSource adds caller information to logs
	AddSource bool
	// File, when set, sends logs to a rotating file instead of Output
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DefaultConfig returns a default logger configuration
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		JSON:       true,
		Output:     os.Stderr,
		AddSource:  false,
		MaxSizeMB:  100,
		MaxBackups: 7,
		MaxAgeDays: 30,
	}
}

// Logger wraps a zap SugaredLogger with key/value helpers
type Logger struct {
	z      *zap.SugaredLogger
	config Config
}

// global is the package-level logger instance
var global *Logger

// New creates a new logger with the given configuration
func New(config Config) *Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.MessageKey = "msg"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
	encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	var encoder zapcore.Encoder
	if config.JSON {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, writeSyncer(config), zap.NewAtomicLevelAt(parseLevel(config.Level)))

	opts := []zap.Option{zap.AddCallerSkip(1)}
	if config.AddSource {
		opts = append(opts, zap.AddCaller())
	}

	logger := &Logger{
		z:      zap.New(core, opts...).Sugar(),
		config: config,
	}

	// Set this as global if no global logger exists yet
	if global == nil {
		global = logger
	}

	return logger
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{z: zap.NewNop().Sugar()}
}

// SetGlobal sets the global logger instance
func SetGlobal(logger *Logger) {
	global = logger
}

// GetGlobal returns the global logger instance
func GetGlobal() *Logger {
	if global == nil {
		return Nop()
	}
	return global
}

func (l *Logger) Debug(msg string, args ...any) { l.z.Debugw(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.z.Infow(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.z.Warnw(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.z.Errorw(msg, args...) }

// With returns a child logger carrying the given key/value pairs
func (l *Logger) With(args ...any) *Logger {
	return &Logger{z: l.z.With(args...), config: l.config}
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.z.Sync()
}

// LogError logs an error with context information
func (l *Logger) LogError(err error, msg string, args ...any) {
	l.Error(msg, append([]any{"error", err.Error()}, args...)...)
}

// WithRequestID adds a request ID to the logger's context
func (l *Logger) WithRequestID(requestID string) *Logger {
	if requestID == "" {
		return l
	}
	return l.With("request_id", requestID)
}

// WithInfluencerID adds an influencer ID to the logger's context
func (l *Logger) WithInfluencerID(influencerID string) *Logger {
	if influencerID == "" {
		return l
	}
	return l.With("influencer_id", influencerID)
}

// LogRequest logs details about an HTTP request
func (l *Logger) LogRequest(method, path string, status int, latency time.Duration) {
	l.Info("request completed",
		"method", method,
		"path", path,
		"status", status,
		"latency_ms", latency.Milliseconds(),
	)
}

func parseLevel(level string) zapcore.Level {
	switch LogLevel(strings.ToLower(strings.TrimSpace(level))) {
	case LevelDebug:
		return zap.DebugLevel
	case LevelWarn:
		return zap.WarnLevel
	case LevelError:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func writeSyncer(config Config) zapcore.WriteSyncer {
	if config.File != "" {
		return zapcore.AddSync(&lumberjack.Logger{
			Filename:   config.File,
			MaxSize:    positiveOr(config.MaxSizeMB, 100),
			MaxBackups: positiveOr(config.MaxBackups, 7),
			MaxAge:     positiveOr(config.MaxAgeDays, 30),
			Compress:   true,
		})
	}
	if config.Output == nil {
		return zapcore.AddSync(os.Stderr)
	}
	return zapcore.AddSync(config.Output)
}

func positiveOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}
