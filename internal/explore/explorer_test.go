package explore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/mkaresz/locascope/api/schemas"
	"github.com/mkaresz/locascope/internal/config"
)

func newTestExplorer(t *testing.T, page schemas.Page, extractor schemas.TextExtractor, classifier TextClassifier, cfg config.ExploreConfig) *Explorer {
	t.Helper()
	explorer, err := New("https://app.example.com", page, extractor, classifier, cfg, 0.5, zap.NewNop())
	require.NoError(t, err)
	explorer.modals.sleep = func(time.Duration) {}
	return explorer
}

func TestProcessPagePipeline(t *testing.T) {
	page := newFakePage("https://app.example.com/")
	page.queryResults["a[href]"] = []*fakeElement{anchor("/rooms"), anchor("/spa")}

	extractor := &fakeExtractor{blocks: map[string][]schemas.TextBlock{
		"shots/Home_0.png": {
			{Text: "Welcome to our hotel", Confidence: 0.95},
			{Text: "Bienvenue", Confidence: 0.95},
			{Text: "Low quality noise", Confidence: 0.2},
		},
	}}
	classifier := &fakeClassifier{flagged: map[string]string{
		"Welcome to our hotel": "en",
		"Low quality noise":    "en",
	}}

	explorer := newTestExplorer(t, page, extractor, classifier, config.ExploreConfig{
		MaxAutoPages:     0,
		MaxModalsPerPage: 5,
		MaxPathLength:    100,
	})

	result := explorer.ProcessPage(context.Background(), config.PageConfig{Name: "Home", URL: "/"})

	assert.True(t, result.Success)
	assert.Equal(t, "shots/Home_0.png", result.ScreenshotPath)
	assert.Empty(t, result.Error)

	// Only the confidently-read English block becomes an issue; the low
	// confidence block sits below the OCR floor.
	issues := explorer.results["Home"][schemas.SectionMain]
	require.Len(t, issues, 1)
	assert.Equal(t, "Welcome to our hotel", issues[0].Text)
	assert.Equal(t, "en", issues[0].Language)
	assert.Equal(t, schemas.IssueTypeMissingTranslation, issues[0].IssueType)

	// Links were harvested along the way.
	assert.Equal(t, 2, explorer.state.DiscoveredCount())
	assert.True(t, explorer.state.PageVisited("/"))
}

func TestProcessPageNavigationFailure(t *testing.T) {
	page := newFakePage("https://app.example.com/")
	page.navErr["https://app.example.com/broken"] = errors.New("net::ERR_CONNECTION_REFUSED")

	explorer := newTestExplorer(t, page, &fakeExtractor{}, &fakeClassifier{}, config.ExploreConfig{
		MaxModalsPerPage: 5,
		MaxPathLength:    100,
	})

	result := explorer.ProcessPage(context.Background(), config.PageConfig{Name: "Broken", URL: "/broken"})
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "ERR_CONNECTION_REFUSED")
	assert.Empty(t, page.screenshots)
}

func TestProcessPageConfiguredModals(t *testing.T) {
	page := newFakePage("https://app.example.com/")
	page.queryResults["#promo"] = []*fakeElement{{visible: true}}

	extractor := &fakeExtractor{blocks: map[string][]schemas.TextBlock{
		"shots/modals/Promo_1.png": {
			{Text: "Special offer", Confidence: 0.9},
		},
	}}
	classifier := &fakeClassifier{flagged: map[string]string{"Special offer": "en"}}

	explorer := newTestExplorer(t, page, extractor, classifier, config.ExploreConfig{
		MaxModalsPerPage: 5,
		MaxPathLength:    100,
	})

	result := explorer.ProcessPage(context.Background(), config.PageConfig{
		Name:   "Home",
		URL:    "/",
		Modals: []config.ModalConfig{{Name: "Promo", Selector: "#promo"}},
	})

	require.Len(t, result.Modals, 1)
	assert.True(t, result.Modals[0].Success)

	// The flagged modal text lands in the modal's own section, not main.
	issues := explorer.results["Home"]["Promo"]
	require.Len(t, issues, 1)
	assert.Equal(t, "Special offer", issues[0].Text)
	assert.Equal(t, "Promo", issues[0].ModalName)
	assert.Empty(t, explorer.results["Home"][schemas.SectionMain])
}

func TestAutoDiscoverRespectsPageBudget(t *testing.T) {
	page := newFakePage("https://app.example.com/")
	page.queryResults["a[href]"] = []*fakeElement{
		anchor("/dining"), anchor("/rooms"), anchor("/spa"),
	}

	explorer := newTestExplorer(t, page, &fakeExtractor{}, &fakeClassifier{}, config.ExploreConfig{
		MaxAutoPages:     2,
		MaxModalsPerPage: 5,
		MaxPathLength:    100,
	})

	explorer.ProcessPage(context.Background(), config.PageConfig{Name: "Home", URL: "/"})
	results := explorer.AutoDiscover(context.Background())

	require.Len(t, results, 2)
	assert.Equal(t, "dining", results[0].PageName)
	assert.Equal(t, "rooms", results[1].PageName)
	assert.True(t, explorer.state.PageVisited("/dining"))
	assert.True(t, explorer.state.PageVisited("/rooms"))
	assert.False(t, explorer.state.PageVisited("/spa"))
}

func TestRunSeedsStartPageWhenNothingConfigured(t *testing.T) {
	// A full run must not leave stray goroutines behind.
	defer goleak.VerifyNone(t)

	page := newFakePage("https://app.example.com/")

	explorer := newTestExplorer(t, page, &fakeExtractor{}, &fakeClassifier{}, config.ExploreConfig{
		MaxModalsPerPage: 5,
		MaxPathLength:    100,
	})

	envelope, err := explorer.Run(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, envelope.Pages, 1)
	assert.Equal(t, "StartPage", envelope.Pages[0].PageName)
	assert.Equal(t, explorer.SessionID(), envelope.SessionID)
	assert.Equal(t, "fr", envelope.TargetLanguage)
	assert.Equal(t, 1, envelope.Stats.PagesVisited)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	page := newFakePage("https://app.example.com/")

	explorer := newTestExplorer(t, page, &fakeExtractor{}, &fakeClassifier{}, config.ExploreConfig{
		MaxModalsPerPage: 5,
		MaxPathLength:    100,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := explorer.Run(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, page.navigated)
}

func TestAwaitManualLogin(t *testing.T) {
	testCases := []struct {
		name           string
		urlAfterLogin  string
		expectLoggedIn bool
	}{
		{
			name:           "URL change signals success",
			urlAfterLogin:  "https://app.example.com/dashboard",
			expectLoggedIn: true,
		},
		{
			name:           "unchanged URL signals failure",
			expectLoggedIn: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			page := newFakePage("https://app.example.com/")
			if tc.urlAfterLogin != "" {
				page.onNavigate = func(string) { page.url = tc.urlAfterLogin }
			}
			page.queryResults["a[href]"] = []*fakeElement{anchor("/account")}

			explorer := newTestExplorer(t, page, &fakeExtractor{}, &fakeClassifier{}, config.ExploreConfig{
				MaxModalsPerPage: 5,
				MaxPathLength:    100,
			})

			var out strings.Builder
			loggedIn, err := explorer.AwaitManualLogin(strings.NewReader("\n"), &out)
			require.NoError(t, err)
			assert.Equal(t, tc.expectLoggedIn, loggedIn)
			assert.Contains(t, out.String(), "press Enter")
			// The landing page's links are harvested either way.
			assert.Equal(t, 1, explorer.state.DiscoveredCount())
		})
	}
}

func TestPageNameFromPath(t *testing.T) {
	testCases := []struct {
		path     string
		ordinal  int
		expected string
	}{
		{"/rooms", 1, "rooms"},
		{"/rooms/suites", 2, "rooms_suites"},
		{"/", 3, "DiscoveredPage_3"},
		{"///", 4, "DiscoveredPage_4"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, pageNameFromPath(tc.path, tc.ordinal))
		})
	}
}

func TestResolveURL(t *testing.T) {
	explorer := newTestExplorer(t, newFakePage(""), &fakeExtractor{}, &fakeClassifier{}, config.ExploreConfig{
		MaxModalsPerPage: 5,
		MaxPathLength:    100,
	})

	assert.Equal(t, "https://app.example.com/rooms", explorer.resolveURL("/rooms"))
	assert.Equal(t, "https://app.example.com/rooms", explorer.resolveURL("rooms"))
	assert.Equal(t, "https://other.example.com/x", explorer.resolveURL("https://other.example.com/x"))
}
