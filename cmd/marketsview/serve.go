package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quaksai/marketsview/internal/api"
	"github.com/quaksai/marketsview/internal/api/session"
	"github.com/quaksai/marketsview/internal/directory"
	"github.com/quaksai/marketsview/internal/metrics"
	"github.com/quaksai/marketsview/internal/page"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the marketsview server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("starting marketsview server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("markets_api", cfg.Markets.APIBaseURL),
	)

	reg := metrics.NewRegistry()

	client := newMarketsClient(cfg, log)
	client.SetRecorder(reg)

	descriptor, err := newDescriptor(cfg)
	if err != nil {
		return fmt.Errorf("building dashboard descriptor: %w", err)
	}

	src, err := newDirectorySource(cfg.Directory, client)
	if err != nil {
		return err
	}
	dir := directory.New(src, log.Named("directory"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Company names are cosmetic; a missing directory must not block startup.
	if err := dir.Load(ctx); err != nil {
		log.Warn("ticker directory unavailable", zap.Error(err))
	} else {
		log.Info("ticker directory loaded", zap.Int("tickers", dir.Len()))
	}

	cacheOpts, err := newCacheOptions(cfg, log, reg)
	if err != nil {
		return err
	}

	deriver := newDeriver(cfg)
	pageDeps := page.Deps{
		Stats:        client,
		News:         client,
		Tickers:      dir,
		Descriptor:   descriptor,
		Deriver:      deriver,
		AppOrigin:    cfg.Server.AppOrigin,
		NewsPageSize: cfg.Markets.NewsPageSize,
		CacheOptions: cacheOpts,
		Recorder:     reg,
		Logger:       log.Named("page"),
	}

	sessions := session.NewStore(cfg.Server.MaxSessions, cfg.Server.SessionTTL, func(id string) *page.Controller {
		return page.NewController(id, pageDeps)
	}, log.Named("sessions"))
	sessions.SetRecorder(reg)
	defer sessions.Close()

	go sessions.Run(ctx, time.Minute)

	server, err := api.NewServer(api.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		APIKey:         cfg.Server.APIKey,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
	}, api.Dependencies{
		Sessions:   sessions,
		Descriptor: descriptor,
		Deriver:    deriver,
		PageDeps:   pageDeps,
		Tickers:    dir,
		Metrics:    reg,
	}, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down marketsview server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
