package config

import (
  "fmt"
  "os"
  "path/filepath"
  "sync"
  "time"

  "github.com/spf13/viper"
)

var (
  once   sync.Once
  config *Config
)

// Config represents the framework configuration
type Config struct {
  // Retry policies
  Retry RetryConfig `mapstructure:"retry"`

  // Circuit breaker policies
  Circuit CircuitConfig `mapstructure:"circuit"`

  // Adaptive strategy tuning
  Adaptive AdaptiveConfig `mapstructure:"adaptive"`

  // Rate limited retry pacing
  RateLimit RateLimitConfig `mapstructure:"ratelimit"`

  // Cache / offline store settings
  Cache CacheConfig `mapstructure:"cache"`

  // Event stream settings
  Events EventsConfig `mapstructure:"events"`

  // Logging
  Log LogConfig `mapstructure:"log"`

  // Application
  Version string `mapstructure:"version"`
}

// RetryConfig contains retry strategy settings
type RetryConfig struct {
  MaxAttempts int     `mapstructure:"max_attempts"`
  BaseDelayMs int     `mapstructure:"base_delay_ms"`
  MaxDelayMs  int     `mapstructure:"max_delay_ms"`
  Multiplier  float64 `mapstructure:"multiplier"`
  Jitter      bool    `mapstructure:"jitter"`
}

// BaseDelay returns the base delay as a duration
func (c RetryConfig) BaseDelay() time.Duration {
  return time.Duration(c.BaseDelayMs) * time.Millisecond
}

// MaxDelay returns the max delay as a duration
func (c RetryConfig) MaxDelay() time.Duration {
  return time.Duration(c.MaxDelayMs) * time.Millisecond
}

// CircuitConfig contains circuit breaker settings
type CircuitConfig struct {
  MaxAttempts        int `mapstructure:"max_attempts"`
  FailureThreshold   int `mapstructure:"failure_threshold"`
  RecoveryTimeoutMs  int `mapstructure:"recovery_timeout_ms"`
  MonitoringPeriodMs int `mapstructure:"monitoring_period_ms"`
}

// RecoveryTimeout returns the recovery timeout as a duration
func (c CircuitConfig) RecoveryTimeout() time.Duration {
  return time.Duration(c.RecoveryTimeoutMs) * time.Millisecond
}

// MonitoringPeriod returns the monitoring period as a duration
func (c CircuitConfig) MonitoringPeriod() time.Duration {
  return time.Duration(c.MonitoringPeriodMs) * time.Millisecond
}

// AdaptiveConfig contains adaptive strategy settings
type AdaptiveConfig struct {
  MaxAttempts   int     `mapstructure:"max_attempts"`
  LearningRate  float64 `mapstructure:"learning_rate"`
  MinConfidence float64 `mapstructure:"min_confidence"`
}

// RateLimitConfig contains rate limited retry settings
type RateLimitConfig struct {
  MaxAttempts   int     `mapstructure:"max_attempts"`
  BaseDelayMs   int     `mapstructure:"base_delay_ms"`
  RetriesPerSec float64 `mapstructure:"retries_per_sec"`
  Burst         int     `mapstructure:"burst"`
}

// BaseDelay returns the base delay as a duration
func (c RateLimitConfig) BaseDelay() time.Duration {
  return time.Duration(c.BaseDelayMs) * time.Millisecond
}

// CacheConfig contains cache / offline store settings
type CacheConfig struct {
  Backend  string `mapstructure:"backend"` // memory, sqlite, redis
  Path     string `mapstructure:"path"`    // sqlite database file
  Addr     string `mapstructure:"addr"`    // redis address
  Password string `mapstructure:"password"`
  DB       int    `mapstructure:"db"`
  MaxAgeMs int    `mapstructure:"max_age_ms"`
}

// MaxAge returns the cache freshness bound as a duration
func (c CacheConfig) MaxAge() time.Duration {
  return time.Duration(c.MaxAgeMs) * time.Millisecond
}

// EventsConfig contains event stream settings
type EventsConfig struct {
  BufferSize int `mapstructure:"buffer_size"`
}

// LogConfig contains logging settings
type LogConfig struct {
  Level  string `mapstructure:"level"`  // debug, info, warn, error
  Format string `mapstructure:"format"` // json, text
}

// Load initializes and loads the configuration
func Load(cfgFile ...string) (*Config, error) {
  once.Do(func() {
    configFile := ""
    if len(cfgFile) > 0 {
      configFile = cfgFile[0]
    }
    initViper(configFile)
  })

  config = &Config{}
  if err := viper.Unmarshal(config); err != nil {
    return nil, fmt.Errorf("failed to unmarshal config: %w", err)
  }

  return config, nil
}

// Get returns the current configuration
func Get() *Config {
  if config == nil {
    config, _ = Load("")
  }
  return config
}

// Save writes the current configuration to file
func Save() error {
  configFile := viper.ConfigFileUsed()
  if configFile == "" {
    home, _ := os.UserHomeDir()
    configFile = filepath.Join(home, ".resilience", "config.yaml")
  }

  dir := filepath.Dir(configFile)
  if err := os.MkdirAll(dir, 0755); err != nil {
    return fmt.Errorf("failed to create config directory: %w", err)
  }

  return viper.WriteConfigAs(configFile)
}

// ApplyDefaults installs the default values into viper. Used after a
// viper.Reset to rebuild the baseline configuration.
func ApplyDefaults() {
  setViperDefaults()
}

// initViper sets up viper configuration
func initViper(cfgFile string) {
  if cfgFile != "" {
    viper.SetConfigFile(cfgFile)
  } else {
    home, _ := os.UserHomeDir()
    configDir := filepath.Join(home, ".resilience")

    viper.AddConfigPath(configDir)
    viper.SetConfigType("yaml")
    viper.SetConfigName("config")
  }

  // Environment variables
  viper.SetEnvPrefix("RESILIENCE")
  viper.AutomaticEnv()

  setViperDefaults()

  viper.ReadInConfig()
}

// setViperDefaults sets default values in viper
func setViperDefaults() {
  home, _ := os.UserHomeDir()

  // Retry defaults
  viper.SetDefault("retry.max_attempts", 3)
  viper.SetDefault("retry.base_delay_ms", 1000)
  viper.SetDefault("retry.max_delay_ms", 30000)
  viper.SetDefault("retry.multiplier", 2.0)
  viper.SetDefault("retry.jitter", false)

  // Circuit breaker defaults
  viper.SetDefault("circuit.max_attempts", 3)
  viper.SetDefault("circuit.failure_threshold", 5)
  viper.SetDefault("circuit.recovery_timeout_ms", 30000)
  viper.SetDefault("circuit.monitoring_period_ms", 60000)

  // Adaptive defaults
  viper.SetDefault("adaptive.max_attempts", 3)
  viper.SetDefault("adaptive.learning_rate", 0.1)
  viper.SetDefault("adaptive.min_confidence", 0.3)

  // Rate limit defaults
  viper.SetDefault("ratelimit.max_attempts", 4)
  viper.SetDefault("ratelimit.base_delay_ms", 2000)
  viper.SetDefault("ratelimit.retries_per_sec", 1.0)
  viper.SetDefault("ratelimit.burst", 2)

  // Cache defaults
  viper.SetDefault("cache.backend", "memory")
  viper.SetDefault("cache.path", filepath.Join(home, ".resilience", "cache.db"))
  viper.SetDefault("cache.addr", "localhost:6379")
  viper.SetDefault("cache.db", 0)
  viper.SetDefault("cache.max_age_ms", 300000)

  // Events defaults
  viper.SetDefault("events.buffer_size", 256)

  // Log defaults
  viper.SetDefault("log.level", "info")
  viper.SetDefault("log.format", "text")

  // Version
  viper.SetDefault("version", "1.0.0")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
  configFile := viper.ConfigFileUsed()
  if configFile == "" {
    home, _ := os.UserHomeDir()
    configFile = filepath.Join(home, ".resilience", "config.yaml")
  }
  return configFile
}
