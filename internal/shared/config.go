package shared

import (
	_ "embed"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Transform TransformConfig `toml:"transform"`
	Previews  PreviewsConfig  `toml:"previews"`
	Log       LogConfig       `toml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host              string  `toml:"host"`
	Port              int     `toml:"port"`
	MaxUploadMB       int64   `toml:"max_upload_mb"`
	RateLimit         float64 `toml:"rate_limit"`
	RateBurst         int     `toml:"rate_burst"`
	SessionTTLMinutes int     `toml:"session_ttl_minutes"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// TransformConfig controls the simulated progress advance.
type TransformConfig struct {
	IntervalMS int `toml:"interval_ms"`
	Step       int `toml:"step"`
}

// PreviewsConfig controls where preview locators store uploaded bytes.
type PreviewsConfig struct {
	Dir string `toml:"dir"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// Addr returns the host:port pair the HTTP server listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// MaxUploadBytes returns the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}

// TickInterval returns the period of the progress advance.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Transform.IntervalMS) * time.Millisecond
}

// SessionTTL returns how long an idle session survives.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Server.SessionTTLMinutes) * time.Minute
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port < 0 || c.Server.Port > 65535:
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	case c.Server.MaxUploadMB <= 0:
		return fmt.Errorf("%w: server.max_upload_mb must be positive", ErrInvalidConfig)
	case c.Transform.IntervalMS <= 0:
		return fmt.Errorf("%w: transform.interval_ms must be positive", ErrInvalidConfig)
	case c.Transform.Step <= 0 || c.Transform.Step > 100:
		return fmt.Errorf("%w: transform.step must be within 1..100", ErrInvalidConfig)
	case c.Previews.Dir == "":
		return fmt.Errorf("%w: previews.dir is required", ErrInvalidConfig)
	}
	return nil
}

// ApplyEnv overrides settings from VIDSTYLE_* environment variables.
//
// Callers load an optional .env file first so overrides can live beside config.toml.
func (c *Config) ApplyEnv() {
	c.Server.Host = getEnv("VIDSTYLE_HOST", c.Server.Host)
	c.Server.Port = getEnvInt("VIDSTYLE_PORT", c.Server.Port)
	c.Database.Path = getEnv("VIDSTYLE_DB_PATH", c.Database.Path)
	c.Previews.Dir = getEnv("VIDSTYLE_PREVIEW_DIR", c.Previews.Dir)
	c.Log.Level = getEnv("VIDSTYLE_LOG_LEVEL", c.Log.Level)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ResolveConfig loads path when it exists and falls back to [DefaultConfig] otherwise.
func ResolveConfig(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// ExampleConfig returns the embedded configuration template.
func ExampleConfig() string {
	return string(exampleConf)
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
