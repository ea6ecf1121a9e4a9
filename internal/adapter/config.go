package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	UI      UIConfig      `mapstructure:"ui"`
	Storage StorageConfig `mapstructure:"storage"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// APIConfig holds remote API settings
type APIConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // Requests per second, 0 = unlimited
	RateBurst int           `mapstructure:"rate_burst"`
}

// AuthConfig holds identity API settings
type AuthConfig struct {
	ExpiresInMins int `mapstructure:"expires_in_mins"` // Requested access token lifetime
}

// CatalogConfig holds product listing settings
type CatalogConfig struct {
	PageSize int  `mapstructure:"page_size"`
	Offline  bool `mapstructure:"offline"` // Use the built-in demo catalog instead of the API
}

// UIConfig holds terminal UI timing
type UIConfig struct {
	SearchDebounce time.Duration `mapstructure:"search_debounce"`
	NotifyDuration time.Duration `mapstructure:"notify_duration"`
}

// StorageConfig holds the durable credential store location
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File   string `mapstructure:"file"`
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

// MetricsConfig holds the optional Prometheus endpoint
type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // e.g. "127.0.0.1:9464"; empty disables
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "https://dummyjson.com",
			Timeout:   30 * time.Second,
			RateLimit: 5,
			RateBurst: 5,
		},
		Auth: AuthConfig{
			ExpiresInMins: 5,
		},
		Catalog: CatalogConfig{
			PageSize: 10,
		},
		UI: UIConfig{
			SearchDebounce: 500 * time.Millisecond,
			NotifyDuration: 3 * time.Second,
		},
		Storage: StorageConfig{
			Path: filepath.Join(defaultDataPath(), "kiosk.db"),
		},
		Logging: LoggingConfig{
			File:   filepath.Join(defaultDataPath(), "kiosk.log"),
			Level:  "INFO",
			Format: "json",
		},
	}
}

// Validate rejects settings the controllers cannot work with
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.API.BaseURL) == "" && !c.Catalog.Offline {
		errs = append(errs, errors.New("api.base_url is required"))
	}
	if c.API.Timeout < 0 {
		errs = append(errs, errors.New("api.timeout must not be negative"))
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, errors.New("api.rate_limit must not be negative"))
	}
	if c.Catalog.PageSize <= 0 {
		errs = append(errs, errors.New("catalog.page_size must be positive"))
	}
	if c.UI.SearchDebounce < 0 || c.UI.NotifyDuration < 0 {
		errs = append(errs, errors.New("ui durations must not be negative"))
	}
	return errors.Join(errs...)
}

// defaultDataPath returns the directory for the log file and credential store
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "kiosk")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "kiosk")
	}
}

// DefaultConfigPath returns the default config directory for the current OS
func DefaultConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" && runtime.GOOS != "windows" {
		return filepath.Join(dir, "kiosk")
	}
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "kiosk")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "kiosk")
	}
}

// LoadConfig loads configuration from the default locations and environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigPath(), ".")
}

// LoadConfigFrom loads config.yaml from the first directory that has one.
// KIOSK_* environment variables override file values (KIOSK_API_BASE_URL, ...).
func LoadConfigFrom(dirs ...string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}
	setDefaults(v, cfg)

	// Environment variable overrides
	v.SetEnvPrefix("KIOSK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as config.yaml into dir
func SaveConfig(cfg *Config, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	setDefaults(v, cfg)

	configFile := filepath.Join(dir, "config.yaml")
	if err := v.WriteConfigAs(configFile); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return configFile, nil
}

// setDefaults registers every key so env overrides and writes see them
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.timeout", cfg.API.Timeout.String())
	v.SetDefault("api.rate_limit", cfg.API.RateLimit)
	v.SetDefault("api.rate_burst", cfg.API.RateBurst)

	v.SetDefault("auth.expires_in_mins", cfg.Auth.ExpiresInMins)

	v.SetDefault("catalog.page_size", cfg.Catalog.PageSize)
	v.SetDefault("catalog.offline", cfg.Catalog.Offline)

	v.SetDefault("ui.search_debounce", cfg.UI.SearchDebounce.String())
	v.SetDefault("ui.notify_duration", cfg.UI.NotifyDuration.String())

	v.SetDefault("storage.path", cfg.Storage.Path)

	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("metrics.addr", cfg.Metrics.Addr)
}
