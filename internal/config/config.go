package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/quaksai/marketsview/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	Markets    MarketsConfig    `mapstructure:"markets"`
	Dashboards DashboardsConfig `mapstructure:"dashboards"`
	Directory  DirectoryConfig  `mapstructure:"directory"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Mode        string        `mapstructure:"mode"` // "debug" or "release"
	APIKey      string        `mapstructure:"api_key"`
	AppOrigin   string        `mapstructure:"app_origin"`
	MaxSessions int           `mapstructure:"max_sessions"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// MarketsConfig holds markets API and view defaults.
type MarketsConfig struct {
	APIBaseURL          string        `mapstructure:"api_base_url"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	DefaultIndex        string        `mapstructure:"default_index"`
	DefaultIntervalDays int           `mapstructure:"default_interval_days"`
	NewsPageSize        int           `mapstructure:"news_page_size"`
	StaleResults        string        `mapstructure:"stale_results"` // "drop" or "accept"
}

// DashboardsConfig describes the embedded analytics dashboards.
type DashboardsConfig struct {
	BaseURL          string            `mapstructure:"base_url"`
	AuthProviderHint string            `mapstructure:"auth_provider_hint"`
	DefaultTab       string            `mapstructure:"default_tab"`
	RefreshInterval  time.Duration     `mapstructure:"refresh_interval"`
	IDs              map[string]string `mapstructure:"ids"`
}

// DirectoryConfig selects where the ticker directory is loaded from.
type DirectoryConfig struct {
	Source string   `mapstructure:"source"` // "http", "localfs" or "s3"
	URL    string   `mapstructure:"url"`    // For http; defaults to the markets API
	Path   string   `mapstructure:"path"`   // For localfs
	Key    string   `mapstructure:"key"`    // Snapshot path inside localfs/s3
	S3     S3Config `mapstructure:"s3"`     // For s3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from an optional .env file, the config file at
// path (skipped when empty) and SECTION_KEY environment overrides,
// layered over Defaults.
func Load(path string) (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, Defaults())

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// viper replaces map defaults wholesale; keep default ids the file omits
	if cfg.Dashboards.IDs == nil {
		cfg.Dashboards.IDs = make(map[string]string)
	}
	for tab, id := range Defaults().Dashboards.IDs {
		if _, ok := cfg.Dashboards.IDs[tab]; !ok {
			cfg.Dashboards.IDs[tab] = id
		}
	}

	return &cfg, nil
}

// setDefaults registers every leaf so env overrides apply without a file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.api_key", d.Server.APIKey)
	v.SetDefault("server.app_origin", d.Server.AppOrigin)
	v.SetDefault("server.max_sessions", d.Server.MaxSessions)
	v.SetDefault("server.session_ttl", d.Server.SessionTTL)

	v.SetDefault("log.level", d.Log.Level)

	v.SetDefault("markets.api_base_url", d.Markets.APIBaseURL)
	v.SetDefault("markets.request_timeout", d.Markets.RequestTimeout)
	v.SetDefault("markets.default_index", d.Markets.DefaultIndex)
	v.SetDefault("markets.default_interval_days", d.Markets.DefaultIntervalDays)
	v.SetDefault("markets.news_page_size", d.Markets.NewsPageSize)
	v.SetDefault("markets.stale_results", d.Markets.StaleResults)

	v.SetDefault("dashboards.base_url", d.Dashboards.BaseURL)
	v.SetDefault("dashboards.auth_provider_hint", d.Dashboards.AuthProviderHint)
	v.SetDefault("dashboards.default_tab", d.Dashboards.DefaultTab)
	v.SetDefault("dashboards.refresh_interval", d.Dashboards.RefreshInterval)
	v.SetDefault("dashboards.ids", d.Dashboards.IDs)

	v.SetDefault("directory.source", d.Directory.Source)
	v.SetDefault("directory.url", d.Directory.URL)
	v.SetDefault("directory.path", d.Directory.Path)
	v.SetDefault("directory.key", d.Directory.Key)
	v.SetDefault("directory.s3.bucket", d.Directory.S3.Bucket)
	v.SetDefault("directory.s3.endpoint", d.Directory.S3.Endpoint)
	v.SetDefault("directory.s3.region", d.Directory.S3.Region)
	v.SetDefault("directory.s3.access_key", d.Directory.S3.AccessKey)
	v.SetDefault("directory.s3.secret_key", d.Directory.S3.SecretKey)
	v.SetDefault("directory.s3.prefix", d.Directory.S3.Prefix)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			Mode:        "release",
			MaxSessions: 1000,
			SessionTTL:  30 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
		Markets: MarketsConfig{
			APIBaseURL:          "https://api.quaks.ai",
			RequestTimeout:      10 * time.Second,
			DefaultIndex:        "nasdaq_100",
			DefaultIntervalDays: 90,
			NewsPageSize:        10,
			StaleResults:        "drop",
		},
		Dashboards: DashboardsConfig{
			BaseURL:          "https://kibana.quaks.ai/app/dashboards",
			AuthProviderHint: "anonymous1",
			DefaultTab:       "stock_price",
			RefreshInterval:  60 * time.Second,
			IDs: map[string]string{
				"stock_price":   "827cced8-7899-40de-93c0-0515755f221b",
				"indicator_ema": "33ff269e-ace7-4d90-aeb1-976c5e76fedb",
			},
		},
		Directory: DirectoryConfig{
			Source: "http",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxSessions < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_sessions must be positive, got %d", c.Server.MaxSessions))
	}
	if c.Server.SessionTTL <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("session_ttl must be positive, got %s", c.Server.SessionTTL))
	}

	// Markets validation
	if c.Markets.APIBaseURL == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("markets api_base_url is required"))
	}
	if c.Markets.DefaultIntervalDays < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("default_interval_days must be positive, got %d", c.Markets.DefaultIntervalDays))
	}
	if c.Markets.NewsPageSize < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("news_page_size must be positive, got %d", c.Markets.NewsPageSize))
	}
	switch c.Markets.StaleResults {
	case "", "drop", "accept":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("stale_results must be drop or accept, got %q", c.Markets.StaleResults))
	}

	// Dashboard validation
	if c.Dashboards.BaseURL == "" {
		return core.WrapError(core.ErrConfigMissing,
			fmt.Errorf("dashboards base_url is required"))
	}
	if _, ok := c.Dashboards.IDs[c.Dashboards.DefaultTab]; !ok {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("default_tab %q has no dashboard id", c.Dashboards.DefaultTab))
	}

	// Directory validation - if source set, check its settings exist
	switch c.Directory.Source {
	case "", "http":
	case "localfs":
		if c.Directory.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("directory path required when source is localfs"))
		}
	case "s3":
		if c.Directory.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("directory s3 bucket required when source is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown directory source %q", c.Directory.Source))
	}

	return nil
}
