// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Model   ModelConfig   `mapstructure:"model" yaml:"model"`
	Agent   AgentConfig   `mapstructure:"agent" yaml:"agent"`
	Store   StoreConfig   `mapstructure:"store" yaml:"store"`
}

// LoggerConfig controls the global zap logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"` // "console" or "json"
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"` // megabytes
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"` // days
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// ServerConfig controls the HTTP entrypoint.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// BrowserConfig controls the chromedp surface.
type BrowserConfig struct {
	Headless          bool          `mapstructure:"headless" yaml:"headless"`
	Width             int           `mapstructure:"width" yaml:"width"`
	Height            int           `mapstructure:"height" yaml:"height"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
}

// ModelConfig controls the Gemini computer-use client.
type ModelConfig struct {
	APIKey          string        `mapstructure:"api_key" yaml:"api_key"`
	Model           string        `mapstructure:"model" yaml:"model"`
	Temperature     float32       `mapstructure:"temperature" yaml:"temperature"`
	TopP            float32       `mapstructure:"top_p" yaml:"top_p"`
	TopK            int           `mapstructure:"top_k" yaml:"top_k"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens" yaml:"max_output_tokens"`
	MaxRetries      int           `mapstructure:"max_retries" yaml:"max_retries"`
	BaseRetryDelay  time.Duration `mapstructure:"base_retry_delay" yaml:"base_retry_delay"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// AgentConfig controls the action loop itself.
type AgentConfig struct {
	// MaxTurns bounds the number of model consultations in one run.
	MaxTurns int `mapstructure:"max_turns" yaml:"max_turns"`
	// MaxRecentScreenshots is how many observation turns keep their screenshot
	// payload when the history is replayed to the model.
	MaxRecentScreenshots int `mapstructure:"max_recent_screenshots" yaml:"max_recent_screenshots"`
	// SettleDelay is the fixed pause after every non-wait action.
	SettleDelay time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
	// IdleTimeout bounds the best-effort wait-until-idle step.
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	// StartURL is the page loaded when a task does not name one.
	StartURL string `mapstructure:"start_url" yaml:"start_url"`
	// SearchURL is where the "search" action takes the browser.
	SearchURL string `mapstructure:"search_url" yaml:"search_url"`
}

// StoreConfig controls the optional Postgres run audit log.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	DSN     string `mapstructure:"dsn" yaml:"dsn"`
}

// SetDefaults registers every default on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.service_name", "browserd")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.read_timeout", 30*time.Second)
	// A run can legitimately take minutes; the write timeout must outlast it.
	v.SetDefault("server.write_timeout", 15*time.Minute)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.width", 1440)
	v.SetDefault("browser.height", 900)
	v.SetDefault("browser.navigation_timeout", 60*time.Second)

	v.SetDefault("model.model", "gemini-2.5-computer-use-preview-10-2025")
	v.SetDefault("model.temperature", 1.0)
	v.SetDefault("model.top_p", 0.95)
	v.SetDefault("model.top_k", 40)
	v.SetDefault("model.max_output_tokens", 8192)
	v.SetDefault("model.max_retries", 5)
	v.SetDefault("model.base_retry_delay", time.Second)
	v.SetDefault("model.request_timeout", 2*time.Minute)

	v.SetDefault("agent.max_turns", 10)
	v.SetDefault("agent.max_recent_screenshots", 3)
	v.SetDefault("agent.settle_delay", 500*time.Millisecond)
	v.SetDefault("agent.idle_timeout", 10*time.Second)
	v.SetDefault("agent.start_url", "https://www.google.com")
	v.SetDefault("agent.search_url", "https://www.google.com")

	v.SetDefault("store.enabled", false)
}

// Load reads configuration from the given file (or ./config.yaml when empty),
// the BROWSERD_ environment, and the registered defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("BROWSERD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file; defaults and env vars carry the day.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the loop cannot safely run with.
func (c *Config) Validate() error {
	if c.Agent.MaxTurns <= 0 {
		return fmt.Errorf("agent.max_turns must be positive, got %d", c.Agent.MaxTurns)
	}
	if c.Browser.Width <= 0 || c.Browser.Height <= 0 {
		return fmt.Errorf("browser viewport must be positive, got %dx%d", c.Browser.Width, c.Browser.Height)
	}
	if c.Store.Enabled && c.Store.DSN == "" {
		return fmt.Errorf("store.dsn is required when store.enabled is true")
	}
	return nil
}
