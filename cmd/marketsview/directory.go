package main

import (
	"context"
	"fmt"
	"time"

	"github.com/quaksai/marketsview/internal/directory"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var directoryCmd = &cobra.Command{
	Use:   "directory",
	Short: "Ticker directory operations",
}

var directoryPublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Fetch the ticker directory from the markets API and store it in the archive",
	Long: `Fetches the ticker directory over HTTP and writes it to the archive store
configured under directory (localfs or s3), where serve can load it from.`,
	RunE: runDirectoryPublish,
}

var directoryShowCmd = &cobra.Command{
	Use:   "show <keyTicker>",
	Short: "Look up one ticker in the configured directory source",
	Args:  cobra.ExactArgs(1),
	RunE:  runDirectoryShow,
}

func init() {
	rootCmd.AddCommand(directoryCmd)
	directoryCmd.AddCommand(directoryPublishCmd)
	directoryCmd.AddCommand(directoryShowCmd)
}

func runDirectoryPublish(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := newArchive(cfg.Directory)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := newMarketsClient(cfg, log)
	path := snapshotPath(cfg.Directory)
	n, err := directory.Publish(ctx, directory.NewHTTPSource(client), store, path)
	if err != nil {
		return err
	}

	log.Info("ticker directory published",
		zap.String("source", cfg.Directory.Source),
		zap.String("path", path),
		zap.Int("tickers", n),
	)
	fmt.Printf("Published %d tickers to %s\n", n, path)
	return nil
}

func runDirectoryShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	src, err := newDirectorySource(cfg.Directory, newMarketsClient(cfg, log))
	if err != nil {
		return err
	}
	dir := directory.New(src, log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := dir.Load(ctx); err != nil {
		return err
	}

	t, err := dir.Find(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Ticker: %s\n", t.KeyTicker)
	fmt.Printf("Index:  %s\n", t.Index)
	fmt.Printf("Name:   %s\n", t.Name)
	return nil
}
