package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// StorageConfig locates the on-disk state.
type StorageConfig struct {
	// DBPath is the SQLite database holding task entries.
	DBPath string `mapstructure:"db_path" yaml:"db_path"`

	// PrefsPath is the preferences file holding the list name registry.
	PrefsPath string `mapstructure:"prefs_path" yaml:"prefs_path"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	// DefaultList is the list filter the UI opens with.
	DefaultList string `mapstructure:"default_list" yaml:"default_list"`

	// RolloverCheckSec is how often (in seconds) the UI checks for a
	// change of calendar day to re-bucket entries.
	RolloverCheckSec int `mapstructure:"rollover_check_sec" yaml:"rollover_check_sec"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

// ShareConfig holds the settings used when sharing an entry by mail.
type ShareConfig struct {
	From         string `mapstructure:"from" yaml:"from"`
	To           string `mapstructure:"to" yaml:"to"`
	IMAPHost     string `mapstructure:"imap_host" yaml:"imap_host"`
	IMAPPort     string `mapstructure:"imap_port" yaml:"imap_port"`
	IMAPUsername string `mapstructure:"imap_username" yaml:"imap_username"`
	IMAPTLS      bool   `mapstructure:"imap_tls" yaml:"imap_tls"`
	Mailbox      string `mapstructure:"mailbox" yaml:"mailbox"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Share   ShareConfig   `mapstructure:"share" yaml:"share"`
}

// envPrefix scopes environment overrides, e.g. TODO_STORAGE_DB_PATH.
const envPrefix = "TODO"

// DataDir returns ~/.local/share/todolist, falling back to the working directory.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "todolist")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/todolist/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "todolist", "config.yaml")
}

func setDefaults(v *viper.Viper) {
	dir := DataDir()
	v.SetDefault("storage.db_path", filepath.Join(dir, "todo.db"))
	v.SetDefault("storage.prefs_path", filepath.Join(dir, "prefs.yaml"))
	v.SetDefault("display.default_list", ListAll)
	v.SetDefault("display.rollover_check_sec", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", filepath.Join(dir, "todo.log"))
	v.SetDefault("share.imap_port", "993")
	v.SetDefault("share.imap_tls", true)
	v.SetDefault("share.mailbox", "Drafts")
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A .env file in the working directory and TODO_* environment variables
// override file values. If the file does not exist, defaults are used.
func LoadConfig(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

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
	if cfg.Display.RolloverCheckSec <= 0 {
		cfg.Display.RolloverCheckSec = 60
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

	v.Set("storage", cfg.Storage)
	v.Set("display", cfg.Display)
	v.Set("log", cfg.Log)
	v.Set("share", cfg.Share)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
