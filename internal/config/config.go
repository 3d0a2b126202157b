// Package config loads application settings from an optional YAML file and
// environment variables, with defaults that match recorded-macro semantics.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// AppDirName is the per-user state directory under the home directory.
const AppDirName = ".handsfree-windows"

// LoggerConfig controls the zap logger setup.
type LoggerConfig struct {
	Level      string `mapstructure:"level"       yaml:"level"`
	Format     string `mapstructure:"format"      yaml:"format"` // "console" or "json"
	Color      bool   `mapstructure:"color"       yaml:"color"`
	LogFile    string `mapstructure:"log_file"    yaml:"log_file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress"    yaml:"compress"`
}

// ReplayConfig controls macro replay timing.
type ReplayConfig struct {
	// DelayCapMs caps recorded delay_before pauses so a macro recorded
	// with long human pauses cannot stall replay indefinitely. Explicit
	// sleep steps are not capped.
	DelayCapMs int `mapstructure:"delay_cap_ms" yaml:"delay_cap_ms"`
}

// RecorderConfig controls the passive recorder.
type RecorderConfig struct {
	// IdleFlushMs is how long a typing run may sit idle before it is
	// committed as a type step.
	IdleFlushMs int `mapstructure:"idle_flush_ms" yaml:"idle_flush_ms"`
	// PollMs is the idle-detection poll interval.
	PollMs int `mapstructure:"poll_ms" yaml:"poll_ms"`
}

// FindConfig controls classic ad hoc control matching.
type FindConfig struct {
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	RetryMs    int `mapstructure:"retry_ms"    yaml:"retry_ms"`
}

// BrowserConfig controls the chromedp page driver.
type BrowserConfig struct {
	Headless   bool   `mapstructure:"headless"    yaml:"headless"`
	ProfileDir string `mapstructure:"profile_dir" yaml:"profile_dir"`
	StateFile  string `mapstructure:"state_file"  yaml:"state_file"`
	NavTimeoutSec int `mapstructure:"nav_timeout_sec" yaml:"nav_timeout_sec"`
}

// Config is the full application configuration.
type Config struct {
	Log      LoggerConfig   `mapstructure:"log"      yaml:"log"`
	Replay   ReplayConfig   `mapstructure:"replay"   yaml:"replay"`
	Recorder RecorderConfig `mapstructure:"recorder" yaml:"recorder"`
	Find     FindConfig     `mapstructure:"find"     yaml:"find"`
	Browser  BrowserConfig  `mapstructure:"browser"  yaml:"browser"`
}

// AppDir returns the per-user state directory, creating it if needed.
func AppDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	dir := filepath.Join(home, AppDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create app directory: %w", err)
	}
	return dir, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.color", true)
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("log.compress", true)

	v.SetDefault("replay.delay_cap_ms", 5000)

	v.SetDefault("recorder.idle_flush_ms", 1500)
	v.SetDefault("recorder.poll_ms", 250)

	v.SetDefault("find.timeout_sec", 20)
	v.SetDefault("find.retry_ms", 500)

	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.nav_timeout_sec", 30)
}

// Load reads config.yaml from the app directory (if present) and applies
// HANDSFREE_* environment overrides on top of the defaults.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("HANDSFREE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if dir, err := AppDir(); err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Paths that depend on the app directory are resolved late so the
	// defaults above stay static.
	if cfg.Browser.ProfileDir == "" || cfg.Browser.StateFile == "" {
		dir, err := AppDir()
		if err != nil {
			return nil, err
		}
		if cfg.Browser.ProfileDir == "" {
			cfg.Browser.ProfileDir = filepath.Join(dir, "browser-profiles")
		}
		if cfg.Browser.StateFile == "" {
			cfg.Browser.StateFile = filepath.Join(dir, "browser-state.json")
		}
	}

	return &cfg, nil
}

// Default returns the built-in configuration without touching the
// filesystem or environment. Used by tests and as a fallback.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}
