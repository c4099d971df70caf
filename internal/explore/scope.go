// File: internal/explore/scope.go
package explore

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Scope decides whether a resolved link stays inside the session boundary.
type Scope interface {
	// InScope reports whether the URL may be harvested.
	InScope(u *url.URL) bool
	// Origin returns the scheme://host the scope was built from.
	Origin() string
}

// NewScope builds the scope for a start URL. The default is strict
// same-origin; includeSubdomains widens it to every host under the start
// URL's registrable domain.
func NewScope(startURL string, includeSubdomains bool) (Scope, error) {
	parsed, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL %q: %w", startURL, err)
	}
	if parsed.Scheme == "" || parsed.Hostname() == "" {
		return nil, fmt.Errorf("start URL %q must be absolute with a host", startURL)
	}
	origin := parsed.Scheme + "://" + parsed.Host

	if !includeSubdomains {
		return &strictOriginScope{origin: origin, scheme: parsed.Scheme, host: parsed.Host}, nil
	}

	root, err := publicsuffix.EffectiveTLDPlusOne(parsed.Hostname())
	if err != nil {
		return nil, fmt.Errorf("cannot determine registrable domain of %q: %w", parsed.Hostname(), err)
	}
	return &registrableDomainScope{origin: origin, root: root}, nil
}

// strictOriginScope admits only URLs sharing the start URL's full origin,
// scheme included.
type strictOriginScope struct {
	origin string
	scheme string
	host   string
}

func (s *strictOriginScope) InScope(u *url.URL) bool {
	return strings.EqualFold(u.Scheme, s.scheme) && strings.EqualFold(u.Host, s.host)
}

func (s *strictOriginScope) Origin() string { return s.origin }

// registrableDomainScope admits the registrable domain of the start URL and
// every subdomain of it.
type registrableDomainScope struct {
	origin string
	root   string
}

func (s *registrableDomainScope) InScope(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	root := strings.ToLower(s.root)
	return host == root || strings.HasSuffix(host, "."+root)
}

func (s *registrableDomainScope) Origin() string { return s.origin }
