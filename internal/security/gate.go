package security

import (
	"net/url"
	"strings"
)

// Config holds the static trust policy. The lists are fixed for the life of
// the process; there is no reload path.
type Config struct {
	// NavigationHosts are domain suffixes the surface may navigate to.
	NavigationHosts []string
	// TrustedOrigins are domain suffixes (or the local scheme name) whose
	// bridge messages are accepted.
	TrustedOrigins []string
	// LocalScheme is the scheme used by bundled offline content.
	LocalScheme string
	// AllowLocalScheme gates whether bundled content may use the bridge at all.
	AllowLocalScheme bool
}

// Gate answers origin-trust and navigation-policy questions. It is immutable
// after construction and safe for concurrent use.
type Gate struct {
	navigation  []string
	trusted     []string
	localScheme string
	allowLocal  bool
}

// New builds a gate from the injected policy. Entries are lowercased once so
// matching stays allocation-free.
func New(cfg Config) *Gate {
	return &Gate{
		navigation:  lowerAll(cfg.NavigationHosts),
		trusted:     lowerAll(cfg.TrustedOrigins),
		localScheme: strings.ToLower(cfg.LocalScheme),
		allowLocal:  cfg.AllowLocalScheme,
	}
}

// IsNavigationAllowed reports whether host falls under the navigation
// whitelist. A nil or empty host is never allowed.
func (g *Gate) IsNavigationAllowed(host *string) bool {
	if host == nil || *host == "" {
		return false
	}
	h := strings.ToLower(*host)
	for _, d := range g.navigation {
		if hostMatches(h, d) {
			return true
		}
	}
	return false
}

// IsBridgeOriginTrusted reports whether a bridge message from origin may be
// processed. Local-scheme content is trusted only when the scheme is both
// enabled and explicitly listed; everything else matches by host suffix.
func (g *Gate) IsBridgeOriginTrusted(origin *url.URL) bool {
	if origin == nil {
		return false
	}
	scheme := strings.ToLower(origin.Scheme)
	if g.localScheme != "" && scheme == g.localScheme {
		if !g.allowLocal {
			return false
		}
		for _, d := range g.trusted {
			if d == g.localScheme {
				return true
			}
		}
		return false
	}

	host := strings.ToLower(origin.Hostname())
	if host == "" {
		return false
	}
	for _, d := range g.trusted {
		if hostMatches(host, d) {
			return true
		}
	}
	return false
}

// hostMatches applies the suffix rule: a registered label matches itself or
// any dotted subdomain of itself. "notapple.com" does not match "apple.com".
func hostMatches(host, domain string) bool {
	if domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}
