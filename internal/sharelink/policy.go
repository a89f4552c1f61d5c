package sharelink

import (
	"strings"

	"github.com/quaksai/marketsview/internal/interval"
	"github.com/quaksai/marketsview/internal/viewstate"
)

// Policy decides how a page turns its location into a share URL.
type Policy int

const (
	// PolicyAnchorInterval keeps an explicit-interval location verbatim and
	// anchors a relative view to absolute dates at share time.
	PolicyAnchorInterval Policy = iota

	// PolicyExplicitOrPath keeps an explicit-interval location verbatim and
	// otherwise drops the query string.
	PolicyExplicitOrPath

	// PolicyPathOnly always drops the query string.
	PolicyPathOnly
)

func (p Policy) String() string {
	switch p {
	case PolicyAnchorInterval:
		return "anchor_interval"
	case PolicyExplicitOrPath:
		return "explicit_or_path"
	case PolicyPathOnly:
		return "path_only"
	default:
		return "unknown"
	}
}

// URL builds the share URL for location under p.
func (p Policy) URL(location string, params viewstate.ViewParams, clock interval.Clock) string {
	switch p {
	case PolicyPathOnly:
		return StripQuery(location)
	case PolicyExplicitOrPath:
		if params.UseExplicitDates() {
			return location
		}
		return StripQuery(location)
	default:
		return BuildURL(location, params, clock)
	}
}

// BuildURL returns location unchanged when explicit dates are active, so the
// link reproduces the exact query. Otherwise it appends the relative window
// converted to absolute dates.
func BuildURL(location string, params viewstate.ViewParams, clock interval.Clock) string {
	if params.UseExplicitDates() {
		return location
	}
	enc := interval.ToEncoding(clock, params.Interval)
	return StripQuery(location) + "?" + viewstate.QueryInterval + "=" + string(enc)
}

// StripQuery removes everything from the first '?' or '#'.
func StripQuery(location string) string {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		return location[:i]
	}
	return location
}
