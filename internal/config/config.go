// Package config loads dialogrt's configuration via Viper, layering
// defaults, an optional YAML file, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the resolved configuration for a dialogrt invocation.
type Config struct {
	AgentsFile   string   `mapstructure:"agents_file"`
	AllowMention []string `mapstructure:"allow_mention"`
	RenderWidth  int      `mapstructure:"render_width"`
	ReplayDB     string   `mapstructure:"replay_db"`
	Debug        bool     `mapstructure:"debug"`
}

// defaultConfigDir returns ~/.config/dialogrt (or $XDG_CONFIG_HOME/dialogrt).
func defaultConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "dialogrt"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve home dir: %w", err)
	}
	return filepath.Join(home, ".config", "dialogrt"), nil
}

// Load reads dialogrt's config.yaml from the XDG config directory (if
// present), layering in DIALOGRT_-prefixed environment overrides, and
// returns the result with built-in defaults applied.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DIALOGRT")
	v.AutomaticEnv()

	v.SetDefault("render_width", 100)
	v.SetDefault("replay_db", "dialogrt.db")
	v.SetDefault("agents_file", "")
	v.SetDefault("debug", false)

	dir, err := defaultConfigDir()
	if err == nil {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, fmt.Errorf("config: read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return &cfg, nil
}
