package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gtkup/logging"

	"github.com/pelletier/go-toml"
)

const (
	// DefaultConfigFile is looked up in the working directory when no path is given
	DefaultConfigFile = "gtkup.toml"
	// EnvConfigPath overrides the configuration file location
	EnvConfigPath = "GTKUP_CONFIG_PATH"
	// DefaultUserAgent is sent with every download request
	DefaultUserAgent = "gtkup/1.0"
)

// GeneralConfig holds general configuration parameters
type GeneralConfig struct {
	LogLevel        string `toml:"log_level"`
	LogPath         string `toml:"log_path"`
	TempDir         string `toml:"temp_dir"`
	KeepDownloads   bool   `toml:"keep_downloads"`
	HTTPTimeout     string `toml:"http_timeout"` // Go duration, empty or "0" disables the timeout
	UserAgent       string `toml:"user_agent"`
	Progress        bool   `toml:"progress"`
	SkipDiskCheck   bool   `toml:"skip_disk_check"`
	ShellConfigPath string `toml:"shell_config_path"`
}

// InputsConfig provides fallbacks for the action inputs
type InputsConfig struct {
	Arch   string `toml:"arch"`
	GTKDir string `toml:"gtk_dir"`
}

// Config represents the main configuration structure
type Config struct {
	General GeneralConfig `toml:"general"`
	Inputs  InputsConfig  `toml:"inputs"`

	// Source is the file the configuration was read from, empty for built-in defaults
	Source string `toml:"-"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel:  "info",
			UserAgent: DefaultUserAgent,
		},
	}
}

// ExpandTilde expands ~ to the user's home directory
func ExpandTilde(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadConfig loads and parses the configuration file.
// Priority: cliPath > GTKUP_CONFIG_PATH env var > ./gtkup.toml > built-in defaults.
// Only the implicit ./gtkup.toml may be missing.
func LoadConfig(cliPath string) (*Config, error) {
	configPath := cliPath
	explicit := true
	if configPath == "" {
		if envPath := os.Getenv(EnvConfigPath); envPath != "" {
			configPath = envPath
		} else {
			configPath = DefaultConfigFile
			explicit = false
		}
	}

	logging.PreLog("DEBUG", "📂 Loading configuration from: %s", configPath)

	file, err := os.ReadFile(configPath)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			logging.PreLog("DEBUG", "ℹ️  No %s found, using built-in defaults", configPath)
			cfg := Default()
			return cfg, cfg.Validate()
		}
		logging.PreLog("ERROR", "❌ Failed to read config file: %v", err)
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(file)
	if err != nil {
		logging.PreLog("ERROR", "❌ Failed to parse config file '%s': %v", configPath, err)
		return nil, err
	}
	cfg.Source = configPath

	logging.SetPreLogLevel(cfg.General.LogLevel)
	logging.PreLog("DEBUG", "🔍 Decoded Config: %+v", *cfg)

	if err := cfg.Validate(); err != nil {
		logging.PreLog("ERROR", "❌ Configuration validation failed: %v", err)
		return nil, err
	}

	logging.PreLog("DEBUG", "✅ Configuration successfully loaded and validated.")
	return cfg, nil
}

// Parse decodes TOML data on top of the built-in defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Field: "toml", Err: err}
	}

	defaults := Default()
	if cfg.General.LogLevel == "" {
		cfg.General.LogLevel = defaults.General.LogLevel
	}
	if cfg.General.UserAgent == "" {
		cfg.General.UserAgent = defaults.General.UserAgent
	}
	return &cfg, nil
}

// Validate checks the configuration validity and normalizes paths
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.General.LogLevel); err != nil {
		return &Error{Field: "log_level", Err: err}
	}

	if _, err := c.Timeout(); err != nil {
		return &Error{Field: "http_timeout", Err: err}
	}

	for _, p := range []*string{&c.General.LogPath, &c.General.TempDir, &c.General.ShellConfigPath} {
		if *p == "" {
			continue
		}
		expanded, err := ExpandTilde(*p)
		if err != nil {
			return &Error{Field: "path", Err: err}
		}
		*p = expanded
	}

	return nil
}

// Timeout returns the HTTP timeout; zero means downloads never time out
func (c *Config) Timeout() (time.Duration, error) {
	raw := strings.TrimSpace(c.General.HTTPTimeout)
	if raw == "" || raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %q", raw)
	}
	return d, nil
}

// WorkRoot returns the directory under which temporary downloads are created.
// Priority: temp_dir > RUNNER_TEMP > the OS temp directory.
func (c *Config) WorkRoot(getenv func(string) string) string {
	if c.General.TempDir != "" {
		return c.General.TempDir
	}
	if runnerTemp := getenv("RUNNER_TEMP"); runnerTemp != "" {
		return runnerTemp
	}
	return os.TempDir()
}

// Error reports an invalid configuration value
type Error struct {
	Field string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid configuration (%s): %v", e.Field, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
