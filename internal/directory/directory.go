// Package directory holds the indexed ticker list used to resolve a ticker
// key to its index and display name.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/quaksai/marketsview/internal/core"
	"github.com/quaksai/marketsview/internal/storage/archive"
	"go.uber.org/zap"
)

// DefaultSnapshotPath is where snapshots are published in archive storage.
const DefaultSnapshotPath = "directory/indexed_key_ticker_list.json"

// Source produces the full ticker list.
type Source interface {
	Tickers(ctx context.Context) ([]core.IndexedKeyTicker, error)
}

// Fetcher is satisfied by markets.Client.
type Fetcher interface {
	TickerDirectory(ctx context.Context) ([]core.IndexedKeyTicker, error)
}

// HTTPSource reads the directory from the markets API.
type HTTPSource struct {
	fetcher Fetcher
}

func NewHTTPSource(f Fetcher) *HTTPSource {
	return &HTTPSource{fetcher: f}
}

func (s *HTTPSource) Tickers(ctx context.Context) ([]core.IndexedKeyTicker, error) {
	return s.fetcher.TickerDirectory(ctx)
}

// ArchiveSource reads a published JSON snapshot from archive storage.
type ArchiveSource struct {
	store archive.Store
	path  string
}

func NewArchiveSource(store archive.Store, path string) *ArchiveSource {
	if path == "" {
		path = DefaultSnapshotPath
	}
	return &ArchiveSource{store: store, path: path}
}

func (s *ArchiveSource) Tickers(ctx context.Context) ([]core.IndexedKeyTicker, error) {
	data, err := s.store.Read(ctx, s.path)
	if err != nil {
		return nil, fmt.Errorf("reading directory snapshot: %w", err)
	}
	var tickers []core.IndexedKeyTicker
	if err := json.Unmarshal(data, &tickers); err != nil {
		return nil, fmt.Errorf("decoding directory snapshot: %w", err)
	}
	return tickers, nil
}

// Publish copies the list from src into store at path and returns the
// number of entries written.
func Publish(ctx context.Context, src Source, store archive.Store, path string) (int, error) {
	if path == "" {
		path = DefaultSnapshotPath
	}
	tickers, err := src.Tickers(ctx)
	if err != nil {
		return 0, err
	}
	data, err := json.Marshal(tickers)
	if err != nil {
		return 0, fmt.Errorf("encoding directory snapshot: %w", err)
	}
	if err := store.Write(ctx, path, data); err != nil {
		return 0, fmt.Errorf("writing directory snapshot: %w", err)
	}
	return len(tickers), nil
}

// Directory is loaded once and then queried read-only.
type Directory struct {
	src    Source
	logger *zap.Logger

	mu      sync.RWMutex
	tickers []core.IndexedKeyTicker
	loaded  bool
}

func New(src Source, logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{src: src, logger: logger}
}

// Load fetches the list. Subsequent calls are no-ops once a load succeeded.
func (d *Directory) Load(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loaded {
		return nil
	}

	tickers, err := d.src.Tickers(ctx)
	if err != nil {
		return err
	}
	d.tickers = tickers
	d.loaded = true
	d.logger.Info("ticker directory loaded", zap.Int("tickers", len(tickers)))
	return nil
}

// Loaded reports whether Load has succeeded.
func (d *Directory) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

// Len returns the number of entries.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.tickers)
}

// Find returns the first entry whose key equals keyTicker exactly.
func (d *Directory) Find(keyTicker string) (core.IndexedKeyTicker, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, t := range d.tickers {
		if t.KeyTicker == keyTicker {
			return t, nil
		}
	}
	return core.IndexedKeyTicker{}, core.WrapError(core.ErrTickerNotFound,
		fmt.Errorf("ticker %q", keyTicker))
}
