package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Viewer    ViewerConfig    `toml:"viewer"`
	Control   ControlConfig   `toml:"control"`
	Journal   JournalConfig   `toml:"journal"`
	Blob      BlobConfig      `toml:"blob"`
	Scripting ScriptingConfig `toml:"scripting"`
	Metrics   MetricsConfig   `toml:"metrics"`
	Logging   LoggingConfig   `toml:"logging"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

type ViewerConfig struct {
	Name         string        `toml:"name"`
	Model        string        `toml:"model"`     // blob key loaded at start, optional
	Materials    string        `toml:"materials"` // shared material table, optional
	HistoryLimit int           `toml:"history_limit"`
	Highlight    [4]float32    `toml:"highlight"` // RGBA used when no script provides one
	Watch        bool          `toml:"watch"`     // reload the model when its file changes (fs driver)
	TickRate     time.Duration `toml:"tick_rate"`
	StartTime    int64         // set at boot, not from config
}

type ControlConfig struct {
	BindAddress       string        `toml:"bind_address"`
	InQueueSize       int           `toml:"in_queue_size"`
	OutQueueSize      int           `toml:"out_queue_size"`
	MaxPacketsPerTick int           `toml:"max_packets_per_tick"`
	WriteTimeout      time.Duration `toml:"write_timeout"`
	ReadTimeout       time.Duration `toml:"read_timeout"`
	PasswordHash      string        `toml:"password_hash"` // bcrypt; empty disables auth
	Charset           string        `toml:"charset"`       // string encoding on the wire
}

type JournalConfig struct {
	Driver          string        `toml:"driver"` // "none", "postgres" or "sqlite"
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	FlushInterval   time.Duration `toml:"flush_interval"`
}

type BlobConfig struct {
	Driver          string `toml:"driver"` // "fs" or "s3"
	Root            string `toml:"root"`
	Bucket          string `toml:"bucket"`
	Prefix          string `toml:"prefix"`
	Region          string `toml:"region"`
	Endpoint        string `toml:"endpoint"`
	PathStyle       bool   `toml:"path_style"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
}

type ScriptingConfig struct {
	Dir   string `toml:"dir"`
	Watch bool   `toml:"watch"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	BindAddress string `toml:"bind_address"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type RateLimitConfig struct {
	Enabled               bool `toml:"enabled"`
	AuthAttemptsPerMinute int  `toml:"auth_attempts_per_minute"`
	PacketsPerSecond      int  `toml:"packets_per_second"`
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Viewer.StartTime = time.Now().Unix()
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Journal.Driver {
	case "", "none", "postgres", "sqlite":
	default:
		return fmt.Errorf("journal.driver: unknown driver %q", c.Journal.Driver)
	}
	switch c.Blob.Driver {
	case "fs", "s3", "memory":
	default:
		return fmt.Errorf("blob.driver: unknown driver %q", c.Blob.Driver)
	}
	if c.Blob.Driver == "s3" && c.Blob.Bucket == "" {
		return fmt.Errorf("blob.bucket: required for s3")
	}
	if c.Viewer.TickRate <= 0 {
		return fmt.Errorf("viewer.tick_rate: must be positive")
	}
	if c.Viewer.HistoryLimit < 0 {
		return fmt.Errorf("viewer.history_limit: must not be negative")
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Viewer: ViewerConfig{
			Name:         "ifcview",
			HistoryLimit: 100,
			Highlight:    [4]float32{0.98, 0.98, 0.10, 0.9},
			TickRate:     50 * time.Millisecond,
		},
		Control: ControlConfig{
			BindAddress:       "127.0.0.1:7311",
			InQueueSize:       128,
			OutQueueSize:      256,
			MaxPacketsPerTick: 32,
			WriteTimeout:      10 * time.Second,
			ReadTimeout:       5 * time.Minute,
			Charset:           "utf-8",
		},
		Journal: JournalConfig{
			Driver:          "none",
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
			FlushInterval:   2 * time.Second,
		},
		Blob: BlobConfig{
			Driver: "fs",
			Root:   "./models",
		},
		Scripting: ScriptingConfig{
			Dir: "./scripts",
		},
		Metrics: MetricsConfig{
			BindAddress: "127.0.0.1:9311",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		RateLimit: RateLimitConfig{
			Enabled:               true,
			AuthAttemptsPerMinute: 10,
			PacketsPerSecond:      120,
		},
	}
}
