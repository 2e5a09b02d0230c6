package navigation

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/embedhost/webbridge/internal/bridge"
	"github.com/embedhost/webbridge/internal/logging"
	"github.com/embedhost/webbridge/internal/resilience"
	"github.com/embedhost/webbridge/internal/security"
)

var (
	// ErrBlocked indicates the target host is outside the navigation whitelist.
	ErrBlocked = errors.New("navigation blocked by policy")
	// ErrBadURL indicates the target could not be parsed.
	ErrBadURL = errors.New("invalid navigation target")
)

// ActionPoster receives the actions the loader emits while navigating.
// *bridge.Instance satisfies it.
type ActionPoster interface {
	Post(action bridge.Action)
}

// Page is a loaded, sanitized document ready for a content surface.
type Page struct {
	URL    string
	Title  string
	HTML   string
	Status int
}

// Loader fetches pages on behalf of a content surface. Every target is
// checked against the security gate before any network traffic; failures and
// policy blocks surface as LoadFailed actions, since the user must be told
// why the page did not appear.
type Loader struct {
	gate    *security.Gate
	client  *resty.Client
	breaker *resilience.Breaker
	limiter *rate.Limiter
	log     *logging.Logger
}

// NewLoader creates a navigation loader.
func NewLoader(gate *security.Gate, log *logging.Logger) *Loader {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.9")

	return &Loader{
		gate:   gate,
		client: client,
		breaker: resilience.New("navigation", resilience.Settings{
			MaxRequests: 2,
			Interval:    60 * time.Second,
			Timeout:     30 * time.Second,
		}),
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		log:     log,
	}
}

// Load navigates to rawURL for the surface behind poster. On success the
// sanitized page is returned and progress reaches 1; on any failure a
// LoadFailed action is posted and the error returned.
func (l *Loader) Load(ctx context.Context, rawURL string, poster ActionPoster) (*Page, error) {
	target, err := url.Parse(rawURL)
	if err != nil || target.Host == "" {
		poster.Post(bridge.LoadFailed{Message: fmt.Sprintf("invalid url: %s", rawURL)})
		return nil, ErrBadURL
	}

	host := target.Hostname()
	if !l.gate.IsNavigationAllowed(&host) {
		poster.Post(bridge.LoadFailed{Message: fmt.Sprintf("navigation to %s is not allowed", host)})
		l.log.Warn("navigation blocked", zap.String("host", host))
		return nil, ErrBlocked
	}

	poster.Post(bridge.ProgressChanged{Progress: 0})

	if err := l.limiter.Wait(ctx); err != nil {
		poster.Post(bridge.LoadFailed{Message: "navigation cancelled"})
		return nil, err
	}

	resp, err := l.fetch(ctx, target.String())
	if err != nil {
		poster.Post(bridge.LoadFailed{Message: err.Error()})
		return nil, err
	}

	page, err := Sanitize(resp.String(), target)
	if err != nil {
		poster.Post(bridge.LoadFailed{Message: fmt.Sprintf("failed to process page: %v", err)})
		return nil, err
	}
	page.URL = target.String()
	page.Status = resp.StatusCode()

	poster.Post(bridge.ProgressChanged{Progress: 1})
	return page, nil
}

// fetch runs the HTTP request through the circuit breaker. Any status >= 400
// counts as a transport failure.
func (l *Loader) fetch(ctx context.Context, target string) (*resty.Response, error) {
	result, err := l.breaker.Execute(func() (interface{}, error) {
		resp, err := l.client.R().SetContext(ctx).Get(target)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		if resp.StatusCode() >= 400 {
			return nil, fmt.Errorf("HTTP %d loading %s", resp.StatusCode(), target)
		}
		return resp, nil
	})
	if err == resilience.ErrCircuitOpen {
		return nil, fmt.Errorf("navigation unavailable: too many recent failures")
	}
	if err != nil {
		return nil, err
	}
	return result.(*resty.Response), nil
}
