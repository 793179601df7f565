/**
 * Logger Tests
 *
 * Unit tests for the zerolog-based logger implementation to ensure
 * proper logging functionality and configuration.
 *
 * Author: Roshni Games Team
 * Created: 2026-08-12
 */

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test logger creation and configuration.
func TestLoggerCreation(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		log := New(nil)
		assert.NotNil(t, log)
		assert.NotNil(t, log.config)
	})

	t.Run("CustomConfig", func(t *testing.T) {
		buf := &bytes.Buffer{}
		config := &Config{
			Level:  "debug",
			Output: buf,
			Pretty: false,
			Fields: map[string]interface{}{
				"app": "resilience",
				"env": "test",
			},
		}

		log := New(config)
		assert.NotNil(t, log)

		log.Info("test message")

		var output map[string]interface{}
		err := json.Unmarshal(buf.Bytes(), &output)
		require.NoError(t, err)

		assert.Equal(t, "info", output["level"])
		assert.Equal(t, "test message", output["message"])
		assert.Equal(t, "resilience", output["app"])
		assert.Equal(t, "test", output["env"])
	})
}

// Test logging methods.
func TestLoggingMethods(t *testing.T) {
	testCases := []struct {
		name    string
		logFunc func(*Logger, string, ...interface{})
		level   string
	}{
		{"Debug", func(l *Logger, msg string, fields ...interface{}) { l.Debug(msg, fields...) }, "debug"},
		{"Info", func(l *Logger, msg string, fields ...interface{}) { l.Info(msg, fields...) }, "info"},
		{"Warn", func(l *Logger, msg string, fields ...interface{}) { l.Warn(msg, fields...) }, "warn"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			log := New(&Config{
				Level:  "debug",
				Output: buf,
			})

			tc.logFunc(log, "test message", "key1", "value1", "key2", 123)

			var output map[string]interface{}
			err := json.Unmarshal(buf.Bytes(), &output)
			require.NoError(t, err)

			assert.Equal(t, tc.level, output["level"])
			assert.Equal(t, "test message", output["message"])
			assert.Equal(t, "value1", output["key1"])
			assert.Equal(t, float64(123), output["key2"])
		})
	}
}

// Test error logging.
func TestErrorLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{
		Level:  "debug",
		Output: buf,
	})

	testErr := errors.New("test error")
	log.Error(testErr, "error occurred", "operation", "test_op")

	var output map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &output)
	require.NoError(t, err)

	assert.Equal(t, "error", output["level"])
	assert.Equal(t, "error occurred", output["message"])
	assert.Equal(t, "test error", output["error"])
	assert.Equal(t, "test_op", output["operation"])
}

// Test error logging with a nil error.
func TestErrorLoggingNilError(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{
		Level:  "debug",
		Output: buf,
	})

	log.Error(nil, "no underlying error")

	var output map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &output)
	require.NoError(t, err)

	assert.Equal(t, "error", output["level"])
	assert.Equal(t, "no underlying error", output["message"])
	_, hasErr := output["error"]
	assert.False(t, hasErr)
}

// Test context integration.
func TestContextIntegration(t *testing.T) {
	log := New(&Config{Level: "debug"})

	// Add logger to context
	ctx := log.WithContext(context.Background())

	// Retrieve logger from context
	retrieved := FromContext(ctx)
	assert.Same(t, log, retrieved)

	// Test with empty context
	emptyLog := FromContext(context.Background())
	assert.NotNil(t, emptyLog)
}

// Test child loggers with fields.
func TestChildLoggers(t *testing.T) {
	buf := &bytes.Buffer{}
	parent := New(&Config{
		Level:  "debug",
		Output: buf,
	})

	t.Run("WithField", func(t *testing.T) {
		buf.Reset()
		child := parent.WithField("error_id", "12345")
		child.Info("child log")

		var output map[string]interface{}
		err := json.Unmarshal(buf.Bytes(), &output)
		require.NoError(t, err)

		assert.Equal(t, "12345", output["error_id"])
	})

	t.Run("With", func(t *testing.T) {
		buf.Reset()
		child := parent.With(
			"user_id", "user123",
			"strategy", "network_retry",
		)
		child.Info("child log")

		var output map[string]interface{}
		err := json.Unmarshal(buf.Bytes(), &output)
		require.NoError(t, err)

		assert.Equal(t, "user123", output["user_id"])
		assert.Equal(t, "network_retry", output["strategy"])
	})

	t.Run("ParentUnchanged", func(t *testing.T) {
		buf.Reset()
		parent.Info("parent log")

		var output map[string]interface{}
		err := json.Unmarshal(buf.Bytes(), &output)
		require.NoError(t, err)

		_, hasField := output["error_id"]
		assert.False(t, hasField)
	})
}

// Test log operation.
func TestLogOperation(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{
		Level:  "debug",
		Output: buf,
	})

	t.Run("Success", func(t *testing.T) {
		buf.Reset()
		err := log.LogOperation("test_operation", func() error {
			time.Sleep(10 * time.Millisecond)
			return nil
		})

		assert.NoError(t, err)

		logs := strings.Split(strings.TrimSpace(buf.String()), "\n")
		assert.Equal(t, 2, len(logs))

		// Check start log
		var startLog map[string]interface{}
		json.Unmarshal([]byte(logs[0]), &startLog)
		assert.Equal(t, "operation started", startLog["message"])
		assert.Equal(t, "test_operation", startLog["operation"])

		// Check completion log
		var endLog map[string]interface{}
		json.Unmarshal([]byte(logs[1]), &endLog)
		assert.Equal(t, "operation completed", endLog["message"])
		assert.Equal(t, "test_operation", endLog["operation"])
		assert.NotNil(t, endLog["duration"])
	})

	t.Run("Failure", func(t *testing.T) {
		buf.Reset()
		testErr := errors.New("operation failed")
		err := log.LogOperation("failing_operation", func() error {
			return testErr
		})

		assert.Equal(t, testErr, err)

		logs := strings.Split(strings.TrimSpace(buf.String()), "\n")
		assert.Equal(t, 2, len(logs))

		// Check failure log
		var failLog map[string]interface{}
		json.Unmarshal([]byte(logs[1]), &failLog)
		assert.Equal(t, "error", failLog["level"])
		assert.Equal(t, "operation failed", failLog["message"])
		assert.Equal(t, "operation failed", failLog["error"])
	})
}

// Test level changes.
func TestSetLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{
		Level:  "info",
		Output: buf,
	})

	// Debug should not log at info level
	log.Debug("debug message")
	assert.Empty(t, buf.String())

	// Change to debug level
	err := log.SetLevel("debug")
	assert.NoError(t, err)

	// Now debug should log
	buf.Reset()
	log.Debug("debug message")
	assert.NotEmpty(t, buf.String())

	// Test invalid level
	err = log.SetLevel("invalid")
	assert.Error(t, err)
}

// Test the configuration bridge.
func TestFromLevel(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		log := FromLevel("debug", "json")
		require.NotNil(t, log)
		assert.Equal(t, "debug", log.config.Level)
		assert.False(t, log.config.Pretty)
	})

	t.Run("Text", func(t *testing.T) {
		log := FromLevel("warn", "text")
		require.NotNil(t, log)
		assert.True(t, log.config.Pretty)
	})

	t.Run("InvalidLevelFallsBack", func(t *testing.T) {
		log := FromLevel("nonsense", "json")
		assert.NotNil(t, log)
	})
}

// Test pretty printing.
func TestPrettyLogging(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{
		Level:  "info",
		Output: buf,
		Pretty: true,
	})

	log.Info("pretty message", "key", "value")

	output := buf.String()
	assert.Contains(t, output, "INF")
	assert.Contains(t, output, "pretty message")
	assert.Contains(t, output, "value")
	// console format, not JSON
	assert.False(t, strings.HasPrefix(strings.TrimSpace(output), "{"))
}
