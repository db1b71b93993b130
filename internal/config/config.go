// Package config loads and validates the server configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Session   SessionConfig   `mapstructure:"session"`
	Streaming StreamingConfig `mapstructure:"streaming"`
	Assistant AssistantConfig `mapstructure:"assistant"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	Mode               string        `mapstructure:"mode"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	MaxRequestBodySize int           `mapstructure:"max_request_body_size"`
}

// LogConfig holds the logging settings.
type LogConfig struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"`
	Output    string `mapstructure:"output"`
	FilePath  string `mapstructure:"file_path"`
	AddSource bool   `mapstructure:"add_source"`
}

// SessionConfig holds session lifetime settings.
type SessionConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`              // inactivity window
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"` // janitor period, 0 disables
}

// StreamingConfig holds the chunking and heartbeat policy.
type StreamingConfig struct {
	ChunkSize         int           `mapstructure:"chunk_size"`
	Pacing            time.Duration `mapstructure:"pacing"`
	HeartbeatCount    int           `mapstructure:"heartbeat_count"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
}

// AssistantConfig holds the generation backend settings.
type AssistantConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads the configuration file, applies WEATHER_* environment
// overrides, and validates the result.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("WEATHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("session.ttl", "30m")
	v.SetDefault("session.cleanup_interval", "5m")
	v.SetDefault("streaming.chunk_size", 50)
	v.SetDefault("streaming.pacing", "50ms")
	v.SetDefault("streaming.heartbeat_count", 5)
	v.SetDefault("streaming.heartbeat_interval", "1s")
	v.SetDefault("assistant.timeout", "60s")
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server mode: %s, must be 'debug' or 'release'", c.Server.Mode)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s, must be 'json' or 'text'", c.Log.Format)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	if c.Streaming.ChunkSize <= 0 {
		return fmt.Errorf("streaming.chunk_size must be positive")
	}
	if c.Streaming.HeartbeatCount <= 0 {
		return fmt.Errorf("streaming.heartbeat_count must be positive")
	}

	if c.Assistant.BaseURL == "" {
		return fmt.Errorf("assistant.base_url is required")
	}
	if c.Assistant.APIKey == "" {
		return fmt.Errorf("assistant.api_key is required")
	}

	return nil
}

// GetServerAddr returns the host:port listen address.
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
