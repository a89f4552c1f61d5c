// Package dashboard builds embeddable analytics dashboard URLs from view state.
package dashboard

import (
	"fmt"
	"time"

	"github.com/quaksai/marketsview/internal/core"
)

// Tab identifies an indicator tab on the stock dashboard.
type Tab string

const (
	TabStockPrice     Tab = "stock_price"
	TabIndicatorEMA   Tab = "indicator_ema"
	TabIndicatorAD    Tab = "indicator_ad"
	TabIndicatorADX   Tab = "indicator_adx"
	TabIndicatorCCI   Tab = "indicator_cci"
	TabIndicatorMACD  Tab = "indicator_macd"
	TabIndicatorOBV   Tab = "indicator_obv"
	TabIndicatorRSI   Tab = "indicator_rsi"
	TabIndicatorStoch Tab = "indicator_stoch"
)

// Tabs lists every known tab in display order.
var Tabs = []Tab{
	TabStockPrice,
	TabIndicatorEMA,
	TabIndicatorAD,
	TabIndicatorADX,
	TabIndicatorCCI,
	TabIndicatorMACD,
	TabIndicatorOBV,
	TabIndicatorRSI,
	TabIndicatorStoch,
}

const (
	DefaultBaseURL          = "https://kibana.quaks.ai/app/dashboards"
	DefaultAuthProviderHint = "anonymous1"
	DefaultRefreshInterval  = 60 * time.Second
)

// Descriptor maps tabs to dashboard identifiers on the embedding host.
// It is immutable once built.
type Descriptor struct {
	baseURL          string
	authProviderHint string
	defaultTab       Tab
	dashboards       map[Tab]string
	refreshInterval  time.Duration
}

// NewDescriptor validates and copies the mapping. The default tab must be mapped.
func NewDescriptor(baseURL, authProviderHint string, defaultTab Tab, ids map[string]string, refresh time.Duration) (*Descriptor, error) {
	if baseURL == "" {
		return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("dashboard base_url"))
	}
	if refresh <= 0 {
		refresh = DefaultRefreshInterval
	}

	dashboards := make(map[Tab]string, len(ids))
	for tab, id := range ids {
		if id == "" {
			return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("empty dashboard id for tab %q", tab))
		}
		dashboards[Tab(tab)] = id
	}

	if _, ok := dashboards[defaultTab]; !ok {
		return nil, core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("default tab %q has no dashboard id", defaultTab))
	}

	return &Descriptor{
		baseURL:          baseURL,
		authProviderHint: authProviderHint,
		defaultTab:       defaultTab,
		dashboards:       dashboards,
		refreshInterval:  refresh,
	}, nil
}

// DefaultDashboardIDs returns the production dashboard identifiers.
func DefaultDashboardIDs() map[string]string {
	return map[string]string{
		string(TabStockPrice):   "827cced8-7899-40de-93c0-0515755f221b",
		string(TabIndicatorEMA): "33ff269e-ace7-4d90-aeb1-976c5e76fedb",
	}
}

// DefaultDescriptor returns the production descriptor.
func DefaultDescriptor() *Descriptor {
	d, err := NewDescriptor(DefaultBaseURL, DefaultAuthProviderHint, TabStockPrice, DefaultDashboardIDs(), DefaultRefreshInterval)
	if err != nil {
		panic(err)
	}
	return d
}

// DefaultTab returns the tab unknown identifiers fall back to.
func (d *Descriptor) DefaultTab() Tab {
	return d.defaultTab
}

// Resolve returns the dashboard id for tab and the tab actually used.
// Unknown tabs silently resolve to the default.
func (d *Descriptor) Resolve(tab Tab) (string, Tab) {
	if id, ok := d.dashboards[tab]; ok {
		return id, tab
	}
	return d.dashboards[d.defaultTab], d.defaultTab
}

// Has reports whether tab has its own dashboard.
func (d *Descriptor) Has(tab Tab) bool {
	_, ok := d.dashboards[tab]
	return ok
}
