// File: internal/explore/links.go
package explore

import (
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/mkaresz/locascope/api/schemas"
)

// skippedPrefixes disqualify an href before any URL resolution happens.
var skippedPrefixes = []string{"#", "mailto:", "tel:", "javascript:"}

// LinkDiscoverer harvests same-scope navigation targets from rendered pages.
// It only collects candidate paths into the session state; it never
// navigates.
type LinkDiscoverer struct {
	logger        *zap.Logger
	state         *State
	scope         Scope
	maxPathLength int
}

// NewLinkDiscoverer builds a discoverer bound to one session.
func NewLinkDiscoverer(state *State, scope Scope, maxPathLength int, logger *zap.Logger) *LinkDiscoverer {
	return &LinkDiscoverer{
		logger:        logger.Named("links"),
		state:         state,
		scope:         scope,
		maxPathLength: maxPathLength,
	}
}

// Harvest collects candidate paths from every anchor on the current page.
// Harvesting is idempotent: re-running it over the same page adds nothing
// new. Per-anchor failures (stale handles, unparseable hrefs) are skipped,
// never fatal.
func (d *LinkDiscoverer) Harvest(page schemas.Page) error {
	anchors, err := page.QueryAll("a[href]")
	if err != nil {
		return err
	}

	added := 0
	for _, anchor := range anchors {
		href, err := anchor.Attribute("href")
		if err != nil || href == "" {
			continue
		}
		path, ok := d.resolve(href)
		if !ok {
			continue
		}
		if d.state.AddDiscovered(path) {
			added++
		}
	}

	d.logger.Debug("Harvested page links",
		zap.Int("anchors", len(anchors)),
		zap.Int("new_paths", added),
		zap.Int("total_discovered", d.state.DiscoveredCount()),
	)
	return nil
}

// resolve applies the harvest filters and reduces an href to an
// origin-relative path. The filters discard fragments, mail/tel/javascript
// pseudo-links, out-of-scope hosts, query-carrying URLs (likely dynamic) and
// very long paths.
func (d *LinkDiscoverer) resolve(href string) (string, bool) {
	trimmed := strings.TrimSpace(href)
	for _, prefix := range skippedPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return "", false
		}
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", false
	}
	if !parsed.IsAbs() {
		base, err := url.Parse(d.scope.Origin() + "/")
		if err != nil {
			return "", false
		}
		parsed = base.ResolveReference(parsed)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", false
	}
	if !d.scope.InScope(parsed) {
		return "", false
	}
	if parsed.RawQuery != "" {
		return "", false
	}
	path := parsed.Path
	if path == "" || len(path) > d.maxPathLength {
		return "", false
	}
	return path, true
}
