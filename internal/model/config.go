package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DatabaseConfig locates the local SQLite file.
type DatabaseConfig struct {
	// Path is the SQLite database file. ":memory:" is accepted for tests.
	Path string `mapstructure:"path" yaml:"path"`
}

// OperatorConfig names the subject used when no login is remembered.
type OperatorConfig struct {
	Handle      string `mapstructure:"handle" yaml:"handle"`
	DisplayName string `mapstructure:"display_name" yaml:"display_name"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	File       string `mapstructure:"file" yaml:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	// Console mirrors log output to stderr. The TUI turns this off.
	Console bool `mapstructure:"console" yaml:"console"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme              string `mapstructure:"theme" yaml:"theme"`
	RefreshIntervalSec int    `mapstructure:"refresh_interval_sec" yaml:"refresh_interval_sec"`
}

// ReportConfig controls where exported reports land.
type ReportConfig struct {
	Dir    string `mapstructure:"dir" yaml:"dir"`
	Format string `mapstructure:"format" yaml:"format"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Operator OperatorConfig `mapstructure:"operator" yaml:"operator"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Display  DisplayConfig  `mapstructure:"display" yaml:"display"`
	Reports  ReportConfig   `mapstructure:"reports" yaml:"reports"`
}

// EnvPrefix is prepended to environment overrides, e.g. TRACKER_DATABASE_PATH.
const EnvPrefix = "TRACKER"

// ConfigDir returns ~/.config/tracker, falling back to the working directory.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "tracker")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/tracker/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	dir := ConfigDir()
	return &AppConfig{
		Database: DatabaseConfig{Path: filepath.Join(dir, "tracker.db")},
		Operator: OperatorConfig{Handle: "operator", DisplayName: "Operator"},
		Log: LogConfig{
			Level:      "info",
			File:       filepath.Join(dir, "logs", "tracker.log"),
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
		},
		Display: DisplayConfig{Theme: "default", RefreshIntervalSec: 5},
		Reports: ReportConfig{Dir: filepath.Join(dir, "reports"), Format: "json"},
	}
}

func setDefaults(v *viper.Viper, d *AppConfig) {
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("operator.handle", d.Operator.Handle)
	v.SetDefault("operator.display_name", d.Operator.DisplayName)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.max_size_mb", d.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age_days", d.Log.MaxAgeDays)
	v.SetDefault("log.console", d.Log.Console)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("display.refresh_interval_sec", d.Display.RefreshIntervalSec)
	v.SetDefault("reports.dir", d.Reports.Dir)
	v.SetDefault("reports.format", d.Reports.Format)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with TRACKER_ override file values.
// If the file does not exist, defaults (plus overrides) are returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultAppConfig())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Display.RefreshIntervalSec <= 0 {
		cfg.Display.RefreshIntervalSec = 5
	}
	cfg.Reports.Format = strings.ToLower(cfg.Reports.Format)

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

	v.Set("database", cfg.Database)
	v.Set("operator", cfg.Operator)
	v.Set("log", cfg.Log)
	v.Set("display", cfg.Display)
	v.Set("reports", cfg.Reports)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
