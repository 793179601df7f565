/**
 * Structured Logging for the Resilience Framework
 *
 * Thin wrapper over zerolog. The recovery packages depend on a small
 * logging interface; this package provides the production implementation
 * with leveled output, child loggers, and context propagation.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-12
 */

package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with key-value pair convenience methods.
type Logger struct {
	logger zerolog.Logger
	config *Config
}

// Config configures the logger behavior.
type Config struct {
	Output     io.Writer
	Fields     map[string]interface{}
	Level      string
	TimeFormat string
	Pretty     bool
}

// DefaultConfig provides sensible defaults.
var DefaultConfig = &Config{
	Level:      "info",
	Output:     os.Stdout,
	Pretty:     false,
	Fields:     make(map[string]interface{}),
	TimeFormat: time.RFC3339,
}

// contextKey is used for storing logger in context.
type contextKey struct{}

var loggerKey = contextKey{}

// New creates a new logger instance.
func New(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig
	}

	zerolog.TimeFieldFormat = config.TimeFormat

	var output = config.Output
	if output == nil {
		output = os.Stdout
	}
	if config.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: config.TimeFormat,
			NoColor:    false,
		}
	}

	level, err := zerolog.ParseLevel(config.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	for k, v := range config.Fields {
		logger = logger.With().Interface(k, v).Logger()
	}

	return &Logger{
		logger: logger,
		config: config,
	}
}

// FromLevel creates a logger with the given level and format ("json" or
// "text"). It is the bridge from the application configuration layer.
func FromLevel(level, format string) *Logger {
	return New(&Config{
		Level:      level,
		Output:     os.Stdout,
		Pretty:     format == "text",
		Fields:     make(map[string]interface{}),
		TimeFormat: time.RFC3339,
	})
}

// WithContext adds the logger to context.
func (l *Logger) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext retrieves logger from context.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerKey).(*Logger); ok {
		return l
	}
	return New(DefaultConfig)
}

// With creates a child logger with additional fields, given as
// alternating key-value pairs.
func (l *Logger) With(fields ...interface{}) *Logger {
	newLogger := l.logger.With()

	for i := 0; i < len(fields)-1; i += 2 {
		if key, ok := fields[i].(string); ok {
			newLogger = newLogger.Interface(key, fields[i+1])
		}
	}

	return &Logger{
		logger: newLogger.Logger(),
		config: l.config,
	}
}

// WithField creates a child logger with an additional field.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{
		logger: l.logger.With().Interface(key, value).Logger(),
		config: l.config,
	}
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.logEvent(l.logger.Debug(), msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...interface{}) {
	l.logEvent(l.logger.Info(), msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.logEvent(l.logger.Warn(), msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(err error, msg string, fields ...interface{}) {
	event := l.logger.Error()
	if err != nil {
		event = event.Err(err)
	}
	l.logEvent(event, msg, fields...)
}

// Fatal logs a fatal message and exits.
func (l *Logger) Fatal(err error, msg string, fields ...interface{}) {
	event := l.logger.Fatal()
	if err != nil {
		event = event.Err(err)
	}
	l.logEvent(event, msg, fields...)
}

// logEvent processes field pairs and sends the log event.
func (l *Logger) logEvent(event *zerolog.Event, msg string, fields ...interface{}) {
	for i := 0; i < len(fields)-1; i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		event = event.Interface(key, fields[i+1])
	}

	event.Msg(msg)
}

// LogOperation logs the start and end of an operation.
func (l *Logger) LogOperation(op string, fn func() error) error {
	start := time.Now()
	l.Info("operation started", "operation", op)

	err := fn()

	duration := time.Since(start)
	if err != nil {
		l.Error(err, "operation failed",
			"operation", op,
			"duration", duration,
		)
	} else {
		l.Info("operation completed",
			"operation", op,
			"duration", duration,
		)
	}

	return err
}

// SetLevel changes the logger level dynamically.
func (l *Logger) SetLevel(level string) error {
	parsedLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}

	l.logger = l.logger.Level(parsedLevel)
	return nil
}
