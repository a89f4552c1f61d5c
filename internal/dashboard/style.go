package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Stylesheet hides embedding-host chrome that cannot be disabled via URL parameters.
const Stylesheet = `
  html, body {
    overflow:hidden;
    background-color: #0B1628;
    scrollbar-width: none !important;
    -ms-overflow-style: none !important;
  }
  html::-webkit-scrollbar {
    display: none !important;
  }
  .euiHorizontalRule {
    display: none !important;
  }
  .embPanel__hoverActions{
    display: none !important;
  }
  .kbnGrid {
    margin-top: 3vh;
  }
`

// StyleTarget is an embedding surface that accepts a style sheet.
type StyleTarget interface {
	InjectStyle(ctx context.Context, css string) error
}

// StyleInjector pushes Stylesheet into loaded embedding surfaces.
// Failures are cosmetic and never propagate.
type StyleInjector struct {
	css    string
	logger *zap.Logger
}

// NewStyleInjector creates an injector for css, or Stylesheet when css is empty.
func NewStyleInjector(css string, logger *zap.Logger) *StyleInjector {
	if css == "" {
		css = Stylesheet
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StyleInjector{css: css, logger: logger}
}

// Inject applies the style sheet and reports whether it took effect.
func (i *StyleInjector) Inject(ctx context.Context, target StyleTarget) bool {
	if err := target.InjectStyle(ctx, i.css); err != nil {
		i.logger.Warn("error injecting styles into embedded dashboard", zap.Error(err))
		return false
	}
	return true
}

// ErrCrossOrigin is returned when the surface's document is not reachable
// from the application origin.
var ErrCrossOrigin = errors.New("embedded document is cross-origin")

// Surface models an embedding frame. Styles can only be injected when the
// embedded document shares the application's origin.
type Surface struct {
	appOrigin string
	src       TrustedURL

	mu    sync.Mutex
	style string
}

// NewSurface creates a surface for src hosted inside appOrigin.
func NewSurface(appOrigin string, src TrustedURL) *Surface {
	return &Surface{appOrigin: appOrigin, src: src}
}

// Src returns the embedded URL.
func (s *Surface) Src() TrustedURL {
	return s.src
}

// Style returns the injected style sheet, or "".
func (s *Surface) Style() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.style
}

// InjectStyle implements StyleTarget.
func (s *Surface) InjectStyle(ctx context.Context, css string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	srcOrigin, err := origin(string(s.src))
	if err != nil {
		return fmt.Errorf("parsing embed url: %w", err)
	}
	appOrigin, err := origin(s.appOrigin)
	if err != nil {
		return fmt.Errorf("parsing app origin: %w", err)
	}
	if srcOrigin != appOrigin {
		return fmt.Errorf("%w: %s vs %s", ErrCrossOrigin, srcOrigin, appOrigin)
	}

	s.mu.Lock()
	s.style = css
	s.mu.Unlock()
	return nil
}

func origin(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), nil
}
