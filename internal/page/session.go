package page

import (
	"github.com/quaksai/marketsview/internal/cache"
	"github.com/quaksai/marketsview/internal/core"
	"github.com/quaksai/marketsview/internal/dashboard"
	"github.com/quaksai/marketsview/internal/interval"
	"github.com/quaksai/marketsview/internal/markets"
	"github.com/quaksai/marketsview/internal/sharelink"
	"github.com/quaksai/marketsview/internal/viewstate"
	"go.uber.org/zap"
)

// ShareRecorder counts share link publications.
type ShareRecorder interface {
	RecordShareLinkUpdate(page string)
}

// TickerLookup resolves a ticker key to its directory entry.
type TickerLookup interface {
	Find(keyTicker string) (core.IndexedKeyTicker, error)
}

// Deps are the collaborators shared by every session.
type Deps struct {
	Stats      markets.StatsFetcher
	News       markets.NewsFetcher
	Tickers    TickerLookup // optional
	Descriptor *dashboard.Descriptor
	Injector   *dashboard.StyleInjector
	Router     *viewstate.Router
	Pages      map[string]Page
	Deriver    viewstate.Deriver
	Clock      interval.Clock
	AppOrigin  string

	NewsPageSize int
	CacheOptions cache.Options
	Recorder     ShareRecorder // optional
	Logger       *zap.Logger
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Clock == nil {
		d.Clock = interval.SystemClock{}
	}
	if d.Descriptor == nil {
		d.Descriptor = dashboard.DefaultDescriptor()
	}
	if d.Injector == nil {
		d.Injector = dashboard.NewStyleInjector(dashboard.Stylesheet, d.Logger)
	}
	if d.Router == nil {
		d.Router = viewstate.NewRouter(viewstate.DefaultRoutes())
	}
	if d.Pages == nil {
		d.Pages = DefaultPages(d.Descriptor.DefaultTab())
	}
	if d.Deriver == (viewstate.Deriver{}) {
		d.Deriver = viewstate.NewDeriver("", 0)
	}
	if d.CacheOptions.Logger == nil {
		d.CacheOptions.Logger = d.Logger
	}
	return d
}

// Session is the per-viewer context: every page mounted in it shares one
// share link registry, one view state store and one set of data caches.
type Session struct {
	ID       string
	Registry *sharelink.Registry
	Store    *viewstate.Store
	Stats    *cache.StatsCache
	News     *cache.NewsCache
}

// NewSession wires a fresh context object.
func NewSession(id string, deps Deps) *Session {
	deps = deps.withDefaults()
	logger := deps.Logger.With(zap.String("session", id))
	opts := deps.CacheOptions
	opts.Logger = logger

	return &Session{
		ID:       id,
		Registry: sharelink.NewRegistry(logger),
		Store:    viewstate.NewStore(viewstate.ViewParams{}),
		Stats:    cache.NewStatsCache(deps.Stats, opts),
		News:     cache.NewNewsCache(deps.News, deps.NewsPageSize, opts),
	}
}

// Wait blocks until in-flight fetches have been stored or dropped.
func (s *Session) Wait() {
	s.Stats.Wait()
	s.News.Wait()
}

// Close stops both caches from accepting results.
func (s *Session) Close() {
	s.Stats.Close()
	s.News.Close()
}
