package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level flowwatch configuration.
type Config struct {
	Window    Window    `mapstructure:"window"`
	Buffers   Buffers   `mapstructure:"buffers"`
	Attention Attention `mapstructure:"attention"`
	Output    Output    `mapstructure:"output"`
}

// Window configures the aggregation window.
type Window struct {
	// PeriodSeconds is the aggregation cadence.
	PeriodSeconds int `mapstructure:"period_seconds"`

	// PointerNorm divides the raw pointer path distance per window.
	PointerNorm float64 `mapstructure:"pointer_norm"`
}

// Period returns the aggregation period as a duration.
func (w Window) Period() time.Duration {
	return time.Duration(w.PeriodSeconds) * time.Second
}

// Buffers configures the bounded sample stores.
type Buffers struct {
	KeyTimes       int `mapstructure:"key_times"`
	PointerSamples int `mapstructure:"pointer_samples"`
	History        int `mapstructure:"history"`
}

// Attention configures the engagement estimator.
type Attention struct {
	Enabled         bool    `mapstructure:"enabled"`
	SmoothingFactor float64 `mapstructure:"smoothing_factor"`
	NoiseScale      float64 `mapstructure:"noise_scale"`
	Exponent        float64 `mapstructure:"exponent"`
	TickSeconds     float64 `mapstructure:"tick_seconds"`
	ViewportWidth   float64 `mapstructure:"viewport_width"`
	ViewportHeight  float64 `mapstructure:"viewport_height"`
}

// Tick returns the smoothing cadence as a duration.
func (a Attention) Tick() time.Duration {
	return time.Duration(a.TickSeconds * float64(time.Second))
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("window.period_seconds", DefaultWindow.PeriodSeconds)
	v.SetDefault("window.pointer_norm", DefaultWindow.PointerNorm)
	v.SetDefault("buffers.key_times", DefaultBuffers.KeyTimes)
	v.SetDefault("buffers.pointer_samples", DefaultBuffers.PointerSamples)
	v.SetDefault("buffers.history", DefaultBuffers.History)
	v.SetDefault("attention.enabled", DefaultAttention.Enabled)
	v.SetDefault("attention.smoothing_factor", DefaultAttention.SmoothingFactor)
	v.SetDefault("attention.noise_scale", DefaultAttention.NoiseScale)
	v.SetDefault("attention.exponent", DefaultAttention.Exponent)
	v.SetDefault("attention.tick_seconds", DefaultAttention.TickSeconds)
	v.SetDefault("attention.viewport_width", DefaultAttention.ViewportWidth)
	v.SetDefault("attention.viewport_height", DefaultAttention.ViewportHeight)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		configDir := expandPath(DefaultConfigDir)
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DBPath returns the full path to the SQLite database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
