package explore

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewScope(t *testing.T) {
	testCases := []struct {
		name              string
		startURL          string
		includeSubdomains bool
		checkURL          string
		expectInScope     bool
		expectErr         bool
	}{
		{
			name:          "strict scope admits same host",
			startURL:      "https://app.example.com",
			checkURL:      "https://app.example.com/rooms",
			expectInScope: true,
		},
		{
			name:          "strict scope rejects sibling subdomain",
			startURL:      "https://app.example.com",
			checkURL:      "https://cdn.example.com/asset.css",
			expectInScope: false,
		},
		{
			name:          "strict scope rejects scheme downgrade on the same host",
			startURL:      "https://app.example.com",
			checkURL:      "http://app.example.com/rooms",
			expectInScope: false,
		},
		{
			name:              "subdomain scope admits sibling subdomain",
			startURL:          "https://app.example.com",
			includeSubdomains: true,
			checkURL:          "https://cdn.example.com/asset.css",
			expectInScope:     true,
		},
		{
			name:              "subdomain scope admits registrable domain itself",
			startURL:          "https://app.example.com",
			includeSubdomains: true,
			checkURL:          "https://example.com/",
			expectInScope:     true,
		},
		{
			name:              "subdomain scope rejects unrelated domain",
			startURL:          "https://app.example.com",
			includeSubdomains: true,
			checkURL:          "https://evil-example.com/",
			expectInScope:     false,
		},
		{
			name:      "relative start URL is rejected",
			startURL:  "/just/a/path",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			scope, err := NewScope(tc.startURL, tc.includeSubdomains)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			parsed, err := url.Parse(tc.checkURL)
			require.NoError(t, err)
			assert.Equal(t, tc.expectInScope, scope.InScope(parsed))
		})
	}
}

func TestLinkDiscovererHarvest(t *testing.T) {
	testCases := []struct {
		name     string
		hrefs    []string
		expected []string
	}{
		{
			name:     "relative and absolute same-origin paths are kept",
			hrefs:    []string{"/rooms", "https://app.example.com/spa"},
			expected: []string{"/rooms", "/spa"},
		},
		{
			name:     "fragment mailto tel and javascript links are skipped",
			hrefs:    []string{"#top", "mailto:hi@example.com", "tel:+3612345678", "javascript:void(0)", "/dining"},
			expected: []string{"/dining"},
		},
		{
			name:     "out-of-scope hosts are skipped",
			hrefs:    []string{"https://other.example.org/page", "/rooms"},
			expected: []string{"/rooms"},
		},
		{
			name:     "scheme-downgraded links are skipped",
			hrefs:    []string{"http://app.example.com/insecure", "/rooms"},
			expected: []string{"/rooms"},
		},
		{
			name:     "query-carrying URLs are skipped",
			hrefs:    []string{"/search?q=pool", "/rooms"},
			expected: []string{"/rooms"},
		},
		{
			name:     "empty and duplicate paths collapse",
			hrefs:    []string{"/rooms", "/rooms", ""},
			expected: []string{"/rooms"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			scope, err := NewScope("https://app.example.com", false)
			require.NoError(t, err)
			state := NewState(scope.Origin())
			discoverer := NewLinkDiscoverer(state, scope, 100, zap.NewNop())

			page := newFakePage("https://app.example.com/")
			for _, href := range tc.hrefs {
				page.queryResults["a[href]"] = append(page.queryResults["a[href]"], anchor(href))
			}

			require.NoError(t, discoverer.Harvest(page))
			assert.Equal(t, tc.expected, state.NextUnvisited(100))
		})
	}
}

func TestLinkDiscovererPathLengthLimit(t *testing.T) {
	scope, err := NewScope("https://app.example.com", false)
	require.NoError(t, err)
	state := NewState(scope.Origin())
	discoverer := NewLinkDiscoverer(state, scope, 10, zap.NewNop())

	page := newFakePage("https://app.example.com/")
	page.queryResults["a[href]"] = []*fakeElement{
		anchor("/short"),
		anchor("/a/very/long/path/that/keeps/going"),
	}

	require.NoError(t, discoverer.Harvest(page))
	assert.Equal(t, []string{"/short"}, state.NextUnvisited(10))
}

func TestLinkDiscovererHarvestIsIdempotent(t *testing.T) {
	scope, err := NewScope("https://app.example.com", false)
	require.NoError(t, err)
	state := NewState(scope.Origin())
	discoverer := NewLinkDiscoverer(state, scope, 100, zap.NewNop())

	page := newFakePage("https://app.example.com/")
	page.queryResults["a[href]"] = []*fakeElement{anchor("/rooms"), anchor("/spa")}

	require.NoError(t, discoverer.Harvest(page))
	require.NoError(t, discoverer.Harvest(page))
	assert.Equal(t, 2, state.DiscoveredCount())
}
