package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobal rebuilds the global viper baseline. Load's initViper runs at
// most once per process, so tests restore defaults explicitly.
func resetGlobal() {
	viper.Reset()
	ApplyDefaults()
}

func TestLoadDefaults(t *testing.T) {
	resetGlobal()

	cfg, err := Load(filepath.Join(t.TempDir(), "non_existent_config.yaml"))
	require.NoError(t, err, "Load() with a non-existent path should not error")
	require.NotNil(t, cfg)

	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 1000, cfg.Retry.BaseDelayMs)
	assert.Equal(t, 30000, cfg.Retry.MaxDelayMs)
	assert.Equal(t, 2.0, cfg.Retry.Multiplier)
	assert.False(t, cfg.Retry.Jitter)

	assert.Equal(t, 5, cfg.Circuit.FailureThreshold)
	assert.Equal(t, 30000, cfg.Circuit.RecoveryTimeoutMs)
	assert.Equal(t, 60000, cfg.Circuit.MonitoringPeriodMs)

	assert.Equal(t, 0.1, cfg.Adaptive.LearningRate)
	assert.Equal(t, 0.3, cfg.Adaptive.MinConfidence)

	assert.Equal(t, 4, cfg.RateLimit.MaxAttempts)
	assert.Equal(t, 1.0, cfg.RateLimit.RetriesPerSec)
	assert.Equal(t, 2, cfg.RateLimit.Burst)

	assert.Equal(t, "memory", cfg.Cache.Backend)
	assert.Equal(t, "localhost:6379", cfg.Cache.Addr)
	assert.Equal(t, 300000, cfg.Cache.MaxAgeMs)

	assert.Equal(t, 256, cfg.Events.BufferSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "1.0.0", cfg.Version)
}

func TestLoadFromFile(t *testing.T) {
	resetGlobal()

	tempConfigFile := filepath.Join(t.TempDir(), "test_config.yaml")
	configContent := `
log:
  level: "debug"
retry:
  max_attempts: 5
  base_delay_ms: 250
cache:
  backend: "sqlite"
`
	require.NoError(t, os.WriteFile(tempConfigFile, []byte(configContent), 0600))

	viper.SetConfigFile(tempConfigFile)
	require.NoError(t, viper.ReadInConfig())

	cfg, err := Load()
	require.NoError(t, err)

	// values from the file override defaults
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 250, cfg.Retry.BaseDelayMs)
	assert.Equal(t, "sqlite", cfg.Cache.Backend)

	// keys absent from the file keep their defaults
	assert.Equal(t, 30000, cfg.Retry.MaxDelayMs)
	assert.Equal(t, 5, cfg.Circuit.FailureThreshold)
}

func TestDurationHelpers(t *testing.T) {
	retry := RetryConfig{BaseDelayMs: 1500, MaxDelayMs: 45000}
	assert.Equal(t, 1500*time.Millisecond, retry.BaseDelay())
	assert.Equal(t, 45*time.Second, retry.MaxDelay())

	circuit := CircuitConfig{RecoveryTimeoutMs: 30000, MonitoringPeriodMs: 60000}
	assert.Equal(t, 30*time.Second, circuit.RecoveryTimeout())
	assert.Equal(t, time.Minute, circuit.MonitoringPeriod())

	ratelimit := RateLimitConfig{BaseDelayMs: 2000}
	assert.Equal(t, 2*time.Second, ratelimit.BaseDelay())

	cache := CacheConfig{MaxAgeMs: 300000}
	assert.Equal(t, 5*time.Minute, cache.MaxAge())
}

func TestSave(t *testing.T) {
	resetGlobal()

	tempSavePath := filepath.Join(t.TempDir(), "saved_config.yaml")
	viper.Set("log.level", "error")
	viper.Set("retry.max_attempts", 7)
	viper.SetConfigFile(tempSavePath)

	require.NoError(t, Save())

	_, err := os.Stat(tempSavePath)
	require.NoError(t, err, "saved config file should exist")

	reader := viper.New()
	reader.SetConfigFile(tempSavePath)
	require.NoError(t, reader.ReadInConfig())

	assert.Equal(t, "error", reader.GetString("log.level"))
	assert.Equal(t, 7, reader.GetInt("retry.max_attempts"))
	// defaults are persisted too
	assert.Equal(t, 5, reader.GetInt("circuit.failure_threshold"))
}

func TestConfigPath(t *testing.T) {
	viper.Reset()

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".resilience", "config.yaml"), ConfigPath())

	customPath := filepath.Join(t.TempDir(), "custom_config.yaml")
	viper.SetConfigFile(customPath)
	_ = viper.ReadInConfig() // ConfigFileUsed is only set after a read attempt
	assert.Equal(t, customPath, ConfigPath())

	resetGlobal()
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("RESILIENCE_TESTKEY", "from_env")

	v := viper.New()
	v.SetEnvPrefix("RESILIENCE")
	v.AutomaticEnv()
	assert.Equal(t, "from_env", v.GetString("testkey"))
}

func TestGetReturnsLoaded(t *testing.T) {
	resetGlobal()

	cfg, err := Load()
	require.NoError(t, err)
	assert.Same(t, cfg, Get())
}
