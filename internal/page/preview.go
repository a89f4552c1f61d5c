package page

import (
	"fmt"

	"github.com/quaksai/marketsview/internal/core"
	"github.com/quaksai/marketsview/internal/dashboard"
	"github.com/quaksai/marketsview/internal/sharelink"
	"github.com/quaksai/marketsview/internal/viewstate"
)

// Preview is what a page would show for a location, computed without
// mounting it or fetching data.
type Preview struct {
	Page      string               `json:"page"`
	Params    viewstate.ViewParams `json:"params"`
	ShareLink sharelink.Link       `json:"share_link"`
	EmbedURL  dashboard.TrustedURL `json:"embed_url,omitempty"`
}

// Preview resolves location and derives its view state under sel. A zero
// selection tab falls back to the page's default tab.
func (d Deps) Preview(location string, sel viewstate.Selection) (Preview, error) {
	d = d.withDefaults()

	snap, err := d.Router.Resolve(location)
	if err != nil {
		return Preview{}, err
	}
	p, ok := d.Pages[snap.Kind]
	if !ok {
		return Preview{}, core.WrapError(core.ErrRouteNotFound, fmt.Errorf("no page for kind %q", snap.Kind))
	}
	if sel.Tab == "" {
		sel.Tab = p.DefaultTab()
	}

	params := d.Deriver.Derive(snap, sel)
	out := Preview{
		Page:   p.Kind(),
		Params: params,
		ShareLink: p.ShareLink(View{
			RouteTitle: snap.Title,
			Location:   snap.Location,
			Params:     params,
			Clock:      d.Clock,
		}),
	}
	if p.Reactions().Has(ReactEmbed) {
		out.EmbedURL = d.Descriptor.BuildEmbedURL(params.TickerKey, params, dashboard.Tab(params.SelectedTab))
	}
	return out, nil
}
