package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration
type Config struct {
	Monitor MonitorConfig `mapstructure:"monitor"`
	Risk    RiskConfig    `mapstructure:"risk"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MonitorConfig defines the violation engine's tunables
type MonitorConfig struct {
	MaxViolations    int    `mapstructure:"max_violations"`
	EnableWarnings   bool   `mapstructure:"enable_warnings"`
	SettleDelay      string `mapstructure:"settle_delay"`
	VisibilityWindow string `mapstructure:"visibility_window"`
	FocusWindow      string `mapstructure:"focus_window"`
	JournalCapacity  int    `mapstructure:"journal_capacity"`
}

// RiskConfig defines the summary risk grading thresholds. Thresholds must be
// total-ordered: medium_at < high_at.
type RiskConfig struct {
	MediumAt int `mapstructure:"medium_at"`
	HighAt   int `mapstructure:"high_at"`
}

// StorageConfig defines storage backend settings
type StorageConfig struct {
	Type  string      `mapstructure:"type"`
	Path  string      `mapstructure:"path"`
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig defines Redis connection settings
type RedisConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
	DialTimeout  string `mapstructure:"dial_timeout"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
}

// LoggingConfig defines logging behavior
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig defines the metrics endpoint settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetEnvPrefix("EXAMWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
		// Config file not found, use defaults and environment variables
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Monitor defaults
	v.SetDefault("monitor.max_violations", 2)
	v.SetDefault("monitor.enable_warnings", true)
	v.SetDefault("monitor.settle_delay", "2s")
	v.SetDefault("monitor.visibility_window", "1500ms")
	v.SetDefault("monitor.focus_window", "3s")
	v.SetDefault("monitor.journal_capacity", 50)

	// Risk defaults
	v.SetDefault("risk.medium_at", 1)
	v.SetDefault("risk.high_at", 3)

	// Storage defaults
	v.SetDefault("storage.type", "bolt")
	v.SetDefault("storage.path", "/var/lib/examwatch/examwatch.bolt")
	v.SetDefault("storage.redis.host", "127.0.0.1")
	v.SetDefault("storage.redis.port", 6379)
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.pool_size", 10)
	v.SetDefault("storage.redis.min_idle_conns", 2)
	v.SetDefault("storage.redis.dial_timeout", "5s")
	v.SetDefault("storage.redis.read_timeout", "3s")
	v.SetDefault("storage.redis.write_timeout", "3s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", "127.0.0.1:9091")
}

// validate validates the configuration
func validate(cfg *Config) error {
	if cfg.Monitor.MaxViolations < 1 {
		return fmt.Errorf("monitor.max_violations must be at least 1, got %d", cfg.Monitor.MaxViolations)
	}

	durations := map[string]string{
		"monitor.settle_delay":      cfg.Monitor.SettleDelay,
		"monitor.visibility_window": cfg.Monitor.VisibilityWindow,
		"monitor.focus_window":      cfg.Monitor.FocusWindow,
	}
	for key, value := range durations {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s is not a valid duration: %w", key, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", key, value)
		}
	}

	if cfg.Risk.MediumAt < 1 {
		return fmt.Errorf("risk.medium_at must be at least 1, got %d", cfg.Risk.MediumAt)
	}
	if cfg.Risk.HighAt <= cfg.Risk.MediumAt {
		return fmt.Errorf("risk thresholds must be ordered: high_at (%d) must exceed medium_at (%d)",
			cfg.Risk.HighAt, cfg.Risk.MediumAt)
	}

	switch cfg.Storage.Type {
	case "bolt":
		if cfg.Storage.Path == "" {
			return fmt.Errorf("storage path is required for bolt storage")
		}
		storageDir := filepath.Dir(cfg.Storage.Path)
		if err := os.MkdirAll(storageDir, 0755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	case "redis":
		if cfg.Storage.Redis.Host == "" {
			return fmt.Errorf("redis host is required for redis storage")
		}
	case "":
		cfg.Storage.Type = "bolt"
	default:
		return fmt.Errorf("unsupported storage type: %s (must be 'bolt' or 'redis')", cfg.Storage.Type)
	}

	return nil
}
