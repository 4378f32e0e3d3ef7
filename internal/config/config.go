// Package config loads and saves the application configuration via viper:
// a YAML file under the user's config directory with BONGTV_-prefixed
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"

	"github.com/tvheim/bongtv/internal/bong"
)

// Config holds all application configuration
type Config struct {
	Provider ProviderConfig `mapstructure:"provider"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Playback PlaybackConfig `mapstructure:"playback"`
	Guide    GuideConfig    `mapstructure:"guide"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ProviderConfig holds the provider endpoint and call pacing
type ProviderConfig struct {
	Host      string        `mapstructure:"host"`       // e.g. "http://bong.tv"
	Timeout   time.Duration `mapstructure:"timeout"`    // per-call timeout
	CallDelay time.Duration `mapstructure:"call_delay"` // minimum interval between calls
	CookieDir string        `mapstructure:"cookie_dir"` // session cookie cache directory
}

// AuthConfig holds the account credentials or a pre-baked session cookie
type AuthConfig struct {
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	Cookie     string `mapstructure:"cookie"`      // used instead of credentials when set
	CookieFile string `mapstructure:"cookie_file"` // file holding a session cookie, read on each run
}

// PlaybackConfig holds playback preferences
type PlaybackConfig struct {
	PreferredQualities string `mapstructure:"preferred_qualities"` // e.g. "HQ,HD"
}

// GuideConfig holds EPG preferences
type GuideConfig struct {
	Days          int    `mapstructure:"days"`           // schedule days to fetch
	TVShowPattern string `mapstructure:"tvshow_pattern"` // regexp matching well-known series titles
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Host:      "http://bong.tv",
			Timeout:   bong.DefaultTimeout,
			CallDelay: bong.DefaultCallDelay,
			CookieDir: filepath.Join(DataDir(), "cookies"),
		},
		Playback: PlaybackConfig{
			PreferredQualities: "NQ,HQ,HD",
		},
		Guide: GuideConfig{
			Days: 7,
		},
		Logging: LoggingConfig{
			File:  filepath.Join(DataDir(), "bongtv.log"),
			Level: "INFO",
		},
	}
}

// DataDir returns the application data directory for the current OS
func DataDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "bongtv")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "bongtv")
	}
}

// defaultConfigPath returns the default config file path for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "bongtv")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "bongtv")
	}
}

// LoadConfig loads configuration from file and environment
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultConfigPath())
	viper.AddConfigPath(".")

	// Environment variable overrides
	viper.SetEnvPrefix("BONGTV")
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the current configuration to file
func SaveConfig(cfg *Config) error {
	configPath := defaultConfigPath()

	// Ensure config directory exists
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Set fields individually to ensure correct key names (snake_case)
	viper.Set("provider.host", cfg.Provider.Host)
	viper.Set("provider.timeout", cfg.Provider.Timeout)
	viper.Set("provider.call_delay", cfg.Provider.CallDelay)
	viper.Set("provider.cookie_dir", cfg.Provider.CookieDir)

	viper.Set("auth.username", cfg.Auth.Username)
	viper.Set("auth.password", cfg.Auth.Password)
	viper.Set("auth.cookie", cfg.Auth.Cookie)
	viper.Set("auth.cookie_file", cfg.Auth.CookieFile)

	viper.Set("playback.preferred_qualities", cfg.Playback.PreferredQualities)

	viper.Set("guide.days", cfg.Guide.Days)
	viper.Set("guide.tvshow_pattern", cfg.Guide.TVShowPattern)

	viper.Set("logging.file", cfg.Logging.File)
	viper.Set("logging.level", cfg.Logging.Level)

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveCredentials updates just the account credentials in the configuration
func SaveCredentials(username, password string) error {
	viper.Set("auth.username", username)
	viper.Set("auth.password", password)

	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// IsConfigured returns true if either credentials or a session cookie are set
func (c *Config) IsConfigured() bool {
	if c.Auth.Cookie != "" || c.Auth.CookieFile != "" {
		return true
	}
	return c.Auth.Username != "" && c.Auth.Password != ""
}
