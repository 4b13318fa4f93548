package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ResendConfig holds settings for the Resend API client.
type ResendConfig struct {
	// BaseURL overrides the API endpoint; used for testing against a
	// local stub. Empty means the production endpoint.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	// DataDir is where the SQLite database lives.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`

	// AttachmentsDir is the base directory for stored attachment files.
	AttachmentsDir string `mapstructure:"attachments_dir" yaml:"attachments_dir"`

	Resend  ResendConfig  `mapstructure:"resend" yaml:"resend"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// DatabasePath returns the path of the SQLite database file.
func (c *AppConfig) DatabasePath() string {
	return filepath.Join(c.DataDir, "justsend.db")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/justsend/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "justsend", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration rooted in the
// user's home directory.
func defaultAppConfig() *AppConfig {
	dataDir := filepath.Join(".", "justsend")
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".local", "share", "justsend")
	}
	return &AppConfig{
		DataDir:        dataDir,
		AttachmentsDir: filepath.Join(dataDir, "attachments"),
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	defaults := defaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("data_dir", defaults.DataDir)
	v.SetDefault("attachments_dir", defaults.AttachmentsDir)
	v.SetDefault("resend.base_url", "")
	v.SetDefault("display.theme", "default")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaults, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("data_dir", cfg.DataDir)
	v.Set("attachments_dir", cfg.AttachmentsDir)
	v.Set("resend", map[string]string{"base_url": cfg.Resend.BaseURL})
	v.Set("display", map[string]string{"theme": cfg.Display.Theme})

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
