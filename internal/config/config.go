// Package config loads the client and collector configuration using viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g.
// NETZONE_COLLECTOR_URL overrides collector.url.
const EnvPrefix = "NETZONE"

const (
	OnFailureFatal = "fatal"
	OnFailureRetry = "retry"
)

// Config is the top-level configuration.
type Config struct {
	Collector CollectorConfig `mapstructure:"collector" yaml:"collector"`
	Flush     FlushConfig     `mapstructure:"flush" yaml:"flush"`
	Capture   CaptureConfig   `mapstructure:"capture" yaml:"capture"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
}

// CollectorConfig selects how batches leave the process, and where the
// reference collector listens.
type CollectorConfig struct {
	Type       string           `mapstructure:"type" yaml:"type"`
	URL        string           `mapstructure:"url" yaml:"url"`
	Timeout    time.Duration    `mapstructure:"timeout" yaml:"timeout"`
	Codec      string           `mapstructure:"codec" yaml:"codec"`
	NATSURL    string           `mapstructure:"nats_url" yaml:"nats_url"`
	Subject    string           `mapstructure:"subject" yaml:"subject"`
	Listen     string           `mapstructure:"listen" yaml:"listen"`
	ClickHouse ClickHouseConfig `mapstructure:"clickhouse" yaml:"clickhouse"`
}

// ClickHouseConfig holds the connection details for the clickhouse sender.
type ClickHouseConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Database string `mapstructure:"database" yaml:"database"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
	Table    string `mapstructure:"table" yaml:"table"`
}

// FlushConfig controls when the store is flushed and what happens when the
// transfer fails.
type FlushConfig struct {
	BatchFrames int           `mapstructure:"batch_frames" yaml:"batch_frames"`
	OnFailure   string        `mapstructure:"on_failure" yaml:"on_failure"`
	MaxRetries  int           `mapstructure:"max_retries" yaml:"max_retries"`
	Backoff     time.Duration `mapstructure:"backoff" yaml:"backoff"`
}

type CaptureConfig struct {
	Snaplen     int           `mapstructure:"snaplen" yaml:"snaplen"`
	Promiscuous bool          `mapstructure:"promiscuous" yaml:"promiscuous"`
	Timeout     time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type LogConfig struct {
	Level   string        `mapstructure:"level" yaml:"level"`
	Format  string        `mapstructure:"format" yaml:"format"`
	Pattern string        `mapstructure:"pattern" yaml:"pattern"`
	Time    string        `mapstructure:"time" yaml:"time"`
	File    LogFileConfig `mapstructure:"file" yaml:"file"`
}

// LogFileConfig configures the rotated log file.
type LogFileConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Path       string `mapstructure:"path" yaml:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen"`
}

// Load builds the configuration from defaults, the optional YAML file at path,
// NETZONE_* environment variables and overrides, in increasing priority.
// Override keys use the dotted form, e.g. "collector.url".
func Load(path string, overrides map[string]any) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for key, val := range overrides {
		v.Set(key, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Default returns the configuration used when no file or environment is given.
func Default() *Config {
	cfg, err := Load("", nil)
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("collector.type", "http")
	v.SetDefault("collector.url", "http://[::]:3000/new")
	v.SetDefault("collector.timeout", "0s")
	v.SetDefault("collector.codec", "json")
	v.SetDefault("collector.nats_url", "nats://127.0.0.1:4222")
	v.SetDefault("collector.subject", "netzone.flows")
	v.SetDefault("collector.listen", ":3000")
	v.SetDefault("collector.clickhouse.host", "127.0.0.1")
	v.SetDefault("collector.clickhouse.port", 9000)
	v.SetDefault("collector.clickhouse.database", "default")
	v.SetDefault("collector.clickhouse.username", "default")
	v.SetDefault("collector.clickhouse.password", "")
	v.SetDefault("collector.clickhouse.table", "zone_flows")

	v.SetDefault("flush.batch_frames", 100)
	v.SetDefault("flush.on_failure", OnFailureFatal)
	v.SetDefault("flush.max_retries", 3)
	v.SetDefault("flush.backoff", "500ms")

	v.SetDefault("capture.snaplen", 1600)
	v.SetDefault("capture.promiscuous", true)
	v.SetDefault("capture.timeout", "1s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "pattern")
	v.SetDefault("log.pattern", "%time [%level] %msg %field")
	v.SetDefault("log.time", "2006-01-02 15:04:05")
	v.SetDefault("log.file.enabled", false)
	v.SetDefault("log.file.path", "nz-client.log")
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.max_age_days", 30)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", ":9091")
}

// Validate checks the values that have no sensible fallback.
func (c *Config) Validate() error {
	var errs []error

	if c.Collector.Type == "" {
		errs = append(errs, errors.New("collector.type must not be empty"))
	}
	switch strings.ToLower(c.Collector.Codec) {
	case "", "json", "proto", "protobuf":
	default:
		errs = append(errs, fmt.Errorf("collector.codec %q is not supported", c.Collector.Codec))
	}
	if c.Collector.Timeout < 0 {
		errs = append(errs, errors.New("collector.timeout must not be negative"))
	}

	if c.Flush.BatchFrames <= 0 {
		errs = append(errs, fmt.Errorf("flush.batch_frames must be positive, got %d", c.Flush.BatchFrames))
	}
	switch c.Flush.OnFailure {
	case OnFailureFatal, OnFailureRetry:
	default:
		errs = append(errs, fmt.Errorf("flush.on_failure must be %q or %q, got %q", OnFailureFatal, OnFailureRetry, c.Flush.OnFailure))
	}
	if c.Flush.MaxRetries < 0 {
		errs = append(errs, errors.New("flush.max_retries must not be negative"))
	}

	if c.Capture.Snaplen <= 0 {
		errs = append(errs, fmt.Errorf("capture.snaplen must be positive, got %d", c.Capture.Snaplen))
	}

	switch c.Log.Format {
	case "pattern", "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not supported", c.Log.Format))
	}
	if c.Log.File.Enabled && c.Log.File.Path == "" {
		errs = append(errs, errors.New("log.file.path is required when log.file.enabled is set"))
	}

	return errors.Join(errs...)
}

// Dump renders the effective configuration as YAML.
func (c *Config) Dump() ([]byte, error) {
	return yaml.Marshal(c)
}
