package main

import (
	"fmt"

	"github.com/quaksai/marketsview/internal/cache"
	"github.com/quaksai/marketsview/internal/config"
	"github.com/quaksai/marketsview/internal/dashboard"
	"github.com/quaksai/marketsview/internal/directory"
	"github.com/quaksai/marketsview/internal/logger"
	"github.com/quaksai/marketsview/internal/markets"
	"github.com/quaksai/marketsview/internal/storage/archive"
	"github.com/quaksai/marketsview/internal/viewstate"
	"go.uber.org/zap"
)

// loadConfig reads and validates the configuration. Without --config only
// defaults, .env and environment overrides apply.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Log.Level
	if logLevel != "" {
		level = logLevel
	}
	return logger.New(debug || cfg.Server.Mode == "debug", level)
}

func newDescriptor(cfg *config.Config) (*dashboard.Descriptor, error) {
	d := cfg.Dashboards
	return dashboard.NewDescriptor(d.BaseURL, d.AuthProviderHint, dashboard.Tab(d.DefaultTab), d.IDs, d.RefreshInterval)
}

func newDeriver(cfg *config.Config) viewstate.Deriver {
	return viewstate.NewDeriver(cfg.Markets.DefaultIndex, cfg.Markets.DefaultIntervalDays)
}

func newMarketsClient(cfg *config.Config, log *zap.Logger) *markets.Client {
	return markets.New(markets.Config{
		BaseURL:      cfg.Markets.APIBaseURL,
		Timeout:      cfg.Markets.RequestTimeout,
		DirectoryURL: cfg.Directory.URL,
	}, log.Named("markets"))
}

func newCacheOptions(cfg *config.Config, log *zap.Logger, rec cache.StaleRecorder) (cache.Options, error) {
	policy, err := cache.ParseStalePolicy(cfg.Markets.StaleResults)
	if err != nil {
		return cache.Options{}, err
	}
	return cache.Options{Logger: log.Named("cache"), Policy: policy, Recorder: rec}, nil
}

// newArchive opens the archive store selected by the directory source.
func newArchive(cfg config.DirectoryConfig) (archive.Store, error) {
	switch cfg.Source {
	case "localfs":
		return archive.NewLocalFS(cfg.Path)
	case "s3":
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	default:
		return nil, fmt.Errorf("directory source %q has no archive store", cfg.Source)
	}
}

func snapshotPath(cfg config.DirectoryConfig) string {
	if cfg.Key != "" {
		return cfg.Key
	}
	return directory.DefaultSnapshotPath
}

// newDirectorySource returns the configured ticker directory source.
func newDirectorySource(cfg config.DirectoryConfig, client *markets.Client) (directory.Source, error) {
	switch cfg.Source {
	case "", "http":
		return directory.NewHTTPSource(client), nil
	default:
		store, err := newArchive(cfg)
		if err != nil {
			return nil, fmt.Errorf("opening directory archive: %w", err)
		}
		return directory.NewArchiveSource(store, snapshotPath(cfg)), nil
	}
}
