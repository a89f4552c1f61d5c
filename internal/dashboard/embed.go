package dashboard

import (
	"fmt"
	"strings"

	"github.com/quaksai/marketsview/internal/viewstate"
)

// TrustedURL is a URL produced by this package and safe to hand to an
// embedding surface. Other packages cannot build one from arbitrary input
// without an explicit conversion.
type TrustedURL string

func (u TrustedURL) String() string { return string(u) }

// BuildEmbedURL computes the embed URL for ticker under params and tab.
// It performs no I/O.
func (d *Descriptor) BuildEmbedURL(ticker string, params viewstate.ViewParams, tab Tab) TrustedURL {
	dashboardID, _ := d.Resolve(tab)

	embedParams := []queryParam{
		{"embed", "true"},
		{"show-time-filter", "false"},
		{"hide-filter-bar", "true"},
		{"_g", fmt.Sprintf("(refreshInterval:(pause:!t,value:%d),%s)",
			d.refreshInterval.Milliseconds(), timeRange(params))},
		{"_a", fmt.Sprintf("(query:(language:kuery,query:'key_ticker:%s'))",
			encodeComponent(ticker))},
	}
	hint := []queryParam{{"auth_provider_hint", d.authProviderHint}}

	return TrustedURL(fmt.Sprintf("%s?%s#/view/%s?%s",
		d.baseURL, encodeQuery(hint), dashboardID, encodeQuery(embedParams)))
}

type queryParam struct {
	key, value string
}

// encodeQuery serializes params in order using form encoding: only
// alphanumerics and "*-._" stay literal, space becomes "+".
func encodeQuery(params []queryParam) string {
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(escape(p.key, formSafe, true))
		b.WriteByte('=')
		b.WriteString(escape(p.value, formSafe, true))
	}
	return b.String()
}

// timeRange is absolute for explicit dates and relative to the host's own
// "now" otherwise, so a relative embed keeps refreshing up to date.
func timeRange(params viewstate.ViewParams) string {
	if params.UseExplicitDates() {
		from, to := params.Interval.Dates.Split()
		return fmt.Sprintf("time:(from:'%s',to:'%s')", from, to)
	}
	return fmt.Sprintf("time:(from:now-%dd,to:now)", params.Interval.Days)
}

// encodeComponent percent-encodes s as a URI component: alphanumerics and
// "-_.!~*'()" stay literal.
func encodeComponent(s string) string {
	return escape(s, componentSafe, false)
}

func isAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

func formSafe(c byte) bool {
	return isAlnum(c) || strings.IndexByte("*-._", c) >= 0
}

func componentSafe(c byte) bool {
	return isAlnum(c) || strings.IndexByte("-_.!~*'()", c) >= 0
}

func escape(s string, safe func(byte) bool, spaceAsPlus bool) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case safe(c):
			b.WriteByte(c)
		case c == ' ' && spaceAsPlus:
			b.WriteByte('+')
		default:
			b.WriteByte('%')
			b.WriteByte(hex[c>>4])
			b.WriteByte(hex[c&15])
		}
	}
	return b.String()
}
