package page

import (
	"context"
	"fmt"
	"sync"

	"github.com/quaksai/marketsview/internal/cache"
	"github.com/quaksai/marketsview/internal/core"
	"github.com/quaksai/marketsview/internal/dashboard"
	"github.com/quaksai/marketsview/internal/interval"
	"github.com/quaksai/marketsview/internal/sharelink"
	"github.com/quaksai/marketsview/internal/viewstate"
	"go.uber.org/zap"
)

// State is a read-only snapshot of a session.
type State struct {
	SessionID   string               `json:"session_id"`
	Page        string               `json:"page,omitempty"`
	Location    string               `json:"location,omitempty"`
	Title       string               `json:"title,omitempty"`
	Params      viewstate.ViewParams `json:"params"`
	Interval    interval.Encoding    `json:"interval,omitempty"`
	CompanyName string               `json:"company_name,omitempty"`
	ShareLink   sharelink.Link       `json:"share_link"`
	EmbedURL    dashboard.TrustedURL `json:"embed_url,omitempty"`
	Stats       core.StatsClose      `json:"stats"`
	News        core.NewsList        `json:"news"`
}

// Controller mounts pages into a Session and runs their reactions.
type Controller struct {
	session *Session
	deps    Deps
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// op serializes public operations; mu guards the fields below.
	op sync.Mutex
	mu sync.Mutex

	page      Page
	lease     *sharelink.Lease
	snap      viewstate.Snapshot
	sel       viewstate.Selection
	lastLink  sharelink.Link
	lastStats *cache.StatsKey
	lastNews  *cache.NewsKey
	embed     dashboard.TrustedURL
	surface   *dashboard.Surface
	closed    bool

	unsubscribe []func()
}

// NewController creates a session with id and subscribes to its state.
func NewController(id string, deps Deps) *Controller {
	deps = deps.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		session: NewSession(id, deps),
		deps:    deps,
		logger:  deps.Logger.With(zap.String("session", id)),
		ctx:     ctx,
		cancel:  cancel,
	}
	c.unsubscribe = []func(){
		c.session.Store.Subscribe(c.react),
		c.session.News.Slot().Subscribe(c.onNews),
	}
	return c
}

// Session returns the controller's context object.
func (c *Controller) Session() *Session {
	return c.session
}

// ID returns the session id.
func (c *Controller) ID() string {
	return c.session.ID
}

// Mount tears down the current page, if any, and mounts p at snap.
func (c *Controller) Mount(p Page, snap viewstate.Snapshot) error {
	c.op.Lock()
	defer c.op.Unlock()
	return c.mount(p, snap)
}

// Navigate resolves location and either updates the mounted page, when the
// route maps to the same page kind, or mounts a new one. An unmatched
// location unmounts the current page.
func (c *Controller) Navigate(location string) error {
	c.op.Lock()
	defer c.op.Unlock()

	snap, err := c.deps.Router.Resolve(location)
	if err != nil {
		c.unmount()
		return err
	}
	p, ok := c.deps.Pages[snap.Kind]
	if !ok {
		c.unmount()
		return core.WrapError(core.ErrRouteNotFound, fmt.Errorf("no page for kind %q", snap.Kind))
	}

	c.mu.Lock()
	same := c.page != nil && c.page.Kind() == p.Kind() && !c.closed
	if same {
		c.snap = snap
	}
	c.mu.Unlock()

	if !same {
		return c.mount(p, snap)
	}
	c.apply()
	return nil
}

// SetIntervalDays selects a relative window. Explicit dates in the location
// still take precedence.
func (c *Controller) SetIntervalDays(days int) error {
	if days < 1 {
		return core.WrapError(core.ErrInvalidRequest, fmt.Errorf("interval days must be positive, got %d", days))
	}
	return c.updateSelection(func(sel *viewstate.Selection) { sel.Days = days })
}

// SetTab selects a dashboard tab. Unknown tabs render the default dashboard.
func (c *Controller) SetTab(tab string) error {
	return c.updateSelection(func(sel *viewstate.Selection) { sel.Tab = tab })
}

func (c *Controller) updateSelection(fn func(*viewstate.Selection)) error {
	c.op.Lock()
	defer c.op.Unlock()

	c.mu.Lock()
	if c.page == nil || c.closed {
		c.mu.Unlock()
		return core.WrapError(core.ErrInvalidRequest, fmt.Errorf("no page mounted"))
	}
	fn(&c.sel)
	c.mu.Unlock()

	c.apply()
	return nil
}

// NextNews requests the page after the current news cursor. It reports
// false when the page shows no news list or the feed is exhausted.
func (c *Controller) NextNews() bool {
	c.op.Lock()
	defer c.op.Unlock()

	c.mu.Lock()
	p := c.page
	c.mu.Unlock()
	if p == nil || !p.Reactions().Has(ReactNews) {
		return false
	}

	cursor := c.session.News.Value().Cursor
	if cursor == "" {
		return false
	}
	params := c.session.Store.Get()
	c.refreshNews(cache.NewsKey{IndexName: params.IndexName, Ticker: params.TickerKey, Cursor: cursor})
	return true
}

// EmbedLoaded is called once the embedded dashboard finished loading and
// pushes the cosmetic stylesheet into it. Failures are logged, not returned.
func (c *Controller) EmbedLoaded(ctx context.Context) bool {
	c.mu.Lock()
	surface := c.surface
	c.mu.Unlock()
	if surface == nil {
		return false
	}
	return c.deps.Injector.Inject(ctx, surface)
}

// Unmount tears down the current page and resets the share link.
func (c *Controller) Unmount() {
	c.op.Lock()
	defer c.op.Unlock()
	c.unmount()
}

// Close unmounts and releases the session. In-flight results are dropped.
func (c *Controller) Close() {
	c.op.Lock()
	defer c.op.Unlock()

	c.unmount()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	for _, cancel := range c.unsubscribe {
		cancel()
	}
	c.cancel()
	c.session.Close()
}

// Wait blocks until in-flight fetches have landed.
func (c *Controller) Wait() {
	c.session.Wait()
}

// State returns the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	p, snap, embed := c.page, c.snap, c.embed
	c.mu.Unlock()

	st := State{
		SessionID: c.session.ID,
		Params:    c.session.Store.Get(),
		ShareLink: c.session.Registry.Current(),
		Stats:     c.session.Stats.Value(),
		News:      c.session.News.Value(),
	}
	if p == nil {
		return st
	}

	st.Page = p.Kind()
	st.Location = snap.Location
	st.Title = snap.Title
	st.Interval = interval.ToEncoding(c.deps.Clock, st.Params.Interval)
	st.EmbedURL = embed
	if c.deps.Tickers != nil && st.Params.TickerKey != "" {
		if t, err := c.deps.Tickers.Find(st.Params.TickerKey); err == nil {
			st.CompanyName = t.Name
		}
	}
	return st
}

func (c *Controller) mount(p Page, snap viewstate.Snapshot) error {
	c.unmount()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return core.WrapError(core.ErrSessionNotFound, fmt.Errorf("session %s is closed", c.session.ID))
	}
	c.page = p
	c.lease = c.session.Registry.Acquire(p.Kind())
	c.snap = snap
	c.sel = viewstate.Selection{Tab: p.DefaultTab()}
	c.mu.Unlock()

	c.logger.Debug("page mounted",
		zap.String("page", p.Kind()),
		zap.String("location", snap.Location),
	)
	c.apply()
	return nil
}

func (c *Controller) unmount() {
	c.mu.Lock()
	p, lease := c.page, c.lease
	c.page = nil
	c.lease = nil
	c.lastLink = sharelink.Link{}
	c.lastStats = nil
	c.lastNews = nil
	c.embed = ""
	c.surface = nil
	c.mu.Unlock()

	if lease != nil {
		lease.Release()
		c.logger.Debug("page unmounted", zap.String("page", p.Kind()))
	}
}

// apply derives params and stores them. Reactions run through the store
// subscription, or directly when the value did not change so a freshly
// mounted page still gets its effects.
func (c *Controller) apply() {
	c.mu.Lock()
	params := c.deps.Deriver.Derive(c.snap, c.sel)
	c.mu.Unlock()

	if !c.session.Store.Set(params) {
		c.react(params)
	}
}

func (c *Controller) react(params viewstate.ViewParams) {
	c.mu.Lock()
	p, lease, snap := c.page, c.lease, c.snap
	if p == nil || c.closed {
		c.mu.Unlock()
		return
	}
	r := p.Reactions()
	if r.Has(ReactEmbed) {
		src := c.deps.Descriptor.BuildEmbedURL(params.TickerKey, params, dashboard.Tab(params.SelectedTab))
		if src != c.embed {
			c.embed = src
			c.surface = dashboard.NewSurface(c.deps.AppOrigin, src)
		}
	}
	c.mu.Unlock()

	if r.Has(ReactShareLink) {
		c.publish(p, lease, View{
			RouteTitle: snap.Title,
			Location:   snap.Location,
			Params:     params,
			Clock:      c.deps.Clock,
		})
	}
	if r.Has(ReactStats) {
		c.refreshStats(cache.StatsKey{
			IndexName: params.IndexName,
			Ticker:    params.TickerKey,
			Interval:  interval.ToEncoding(c.deps.Clock, params.Interval),
		})
	}
	if r.Has(ReactNews) {
		c.refreshNews(cache.NewsKey{IndexName: params.IndexName, Ticker: params.TickerKey})
	}
	if r.Has(ReactNewsItem) {
		c.refreshNews(cache.NewsKey{IndexName: params.IndexName, ItemID: snap.Param(viewstate.ParamNewsItemID)})
	}
}

func (c *Controller) onNews(list core.NewsList) {
	c.mu.Lock()
	p, lease, snap := c.page, c.lease, c.snap
	c.mu.Unlock()
	if p == nil || !p.Reactions().Has(ReactShareOnNews) {
		return
	}

	c.publish(p, lease, View{
		RouteTitle: snap.Title,
		Location:   snap.Location,
		Params:     c.session.Store.Get(),
		News:       list,
		Clock:      c.deps.Clock,
	})
}

func (c *Controller) publish(p Page, lease *sharelink.Lease, v View) {
	link := p.ShareLink(v)

	c.mu.Lock()
	if lease != c.lease || link == c.lastLink {
		c.mu.Unlock()
		return
	}
	c.lastLink = link
	c.mu.Unlock()

	if lease.Update(link) && c.deps.Recorder != nil {
		c.deps.Recorder.RecordShareLinkUpdate(p.Kind())
	}
}

// refreshStats skips keys already requested for the mounted page.
func (c *Controller) refreshStats(key cache.StatsKey) {
	c.mu.Lock()
	if c.lastStats != nil && *c.lastStats == key {
		c.mu.Unlock()
		return
	}
	c.lastStats = &key
	c.mu.Unlock()

	c.session.Stats.Refresh(c.ctx, key)
}

func (c *Controller) refreshNews(key cache.NewsKey) {
	c.mu.Lock()
	if c.lastNews != nil && *c.lastNews == key {
		c.mu.Unlock()
		return
	}
	c.lastNews = &key
	c.mu.Unlock()

	c.session.News.Refresh(c.ctx, key)
}
