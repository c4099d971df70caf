// File: internal/explore/explorer.go

// Package explore implements the autonomous exploration pipeline: page
// discovery, modal discovery and the per-page capture/analyze loop that
// turns screenshots into localization issues.
package explore

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mkaresz/locascope/api/schemas"
	"github.com/mkaresz/locascope/internal/config"
	"github.com/mkaresz/locascope/internal/langid"
)

// TextClassifier is the language-verdict capability the explorer needs.
type TextClassifier interface {
	Classify(text string) langid.Verdict
	TargetLanguage() string
}

// Explorer drives a full exploration session over one application. It owns
// the session state and the accumulated results; both are discarded when the
// run ends.
type Explorer struct {
	logger *zap.Logger
	cfg    config.ExploreConfig

	page       schemas.Page
	extractor  schemas.TextExtractor
	classifier TextClassifier

	scope  Scope
	state  *State
	links  *LinkDiscoverer
	modals *ModalDiscoverer

	ocrConfidenceFloor float64
	startURL           string
	sessionID          string

	results     schemas.Results
	pageResults []schemas.PageResult
}

// New wires an Explorer for a single run against the given start URL.
func New(
	startURL string,
	page schemas.Page,
	extractor schemas.TextExtractor,
	classifier TextClassifier,
	cfg config.ExploreConfig,
	ocrConfidenceFloor float64,
	logger *zap.Logger,
) (*Explorer, error) {
	scope, err := NewScope(startURL, cfg.IncludeSubdomains)
	if err != nil {
		return nil, err
	}
	state := NewState(scope.Origin())
	logger = logger.Named("explorer")

	return &Explorer{
		logger:             logger,
		cfg:                cfg,
		page:               page,
		extractor:          extractor,
		classifier:         classifier,
		scope:              scope,
		state:              state,
		links:              NewLinkDiscoverer(state, scope, cfg.MaxPathLength, logger),
		modals:             NewModalDiscoverer(state, cfg, logger),
		ocrConfidenceFloor: ocrConfidenceFloor,
		startURL:           startURL,
		sessionID:          uuid.New().String(),
		results:            make(schemas.Results),
	}, nil
}

// SessionID returns the unique identifier of this run.
func (e *Explorer) SessionID() string { return e.sessionID }

// AwaitManualLogin navigates to the start URL and blocks until the operator
// confirms on stdin that they have logged in. A changed URL is the (crude)
// success signal; either way the landing page's links are harvested so
// discovery starts from the authenticated state.
func (e *Explorer) AwaitManualLogin(in io.Reader, out io.Writer) (bool, error) {
	loginURL := e.resolveURL(e.startURL)
	e.logger.Info("Navigating to login page", zap.String("url", loginURL))
	if err := e.page.Navigate(loginURL); err != nil {
		return false, fmt.Errorf("failed to open login page: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 80))
	fmt.Fprintln(out, "Please log in manually and press Enter when ready...")
	fmt.Fprintln(out, strings.Repeat("=", 80))

	scanner := bufio.NewScanner(in)
	scanner.Scan()

	currentURL, err := e.page.CurrentURL()
	if err != nil {
		return false, fmt.Errorf("failed to read URL after login: %w", err)
	}
	loggedIn := currentURL != loginURL
	if loggedIn {
		e.logger.Info("Login appears to be successful", zap.String("url", currentURL))
	} else {
		e.logger.Warn("Login may not have been successful (URL did not change)")
	}
	if err := e.links.Harvest(e.page); err != nil {
		e.logger.Warn("Failed to harvest links after login", zap.Error(err))
	}
	return loggedIn, nil
}

// Run executes the full session: explicitly configured pages first, then
// bounded autonomous discovery, then the report envelope.
func (e *Explorer) Run(ctx context.Context, pages []config.PageConfig) (*schemas.ReportEnvelope, error) {
	e.logger.Info("Starting exploration session",
		zap.String("session_id", e.sessionID),
		zap.String("start_url", e.startURL),
		zap.Int("configured_pages", len(pages)),
	)

	if len(pages) == 0 {
		// Nothing configured: seed discovery from the start URL itself.
		pages = []config.PageConfig{{Name: startPageName(e.startURL), URL: e.startURL}}
	}

	for _, pageCfg := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result := e.ProcessPage(ctx, pageCfg)
		e.pageResults = append(e.pageResults, result)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.pageResults = append(e.pageResults, e.AutoDiscover(ctx)...)

	stats := e.state.Stats()
	e.logger.Info("Exploration session finished",
		zap.String("session_id", e.sessionID),
		zap.Int("pages_visited", stats.PagesVisited),
		zap.Int("modals_visited", stats.ModalsVisited),
		zap.Int("pages_discovered", stats.PagesDiscovered),
		zap.Int("issues", e.results.Total()),
	)

	return &schemas.ReportEnvelope{
		SessionID:      e.sessionID,
		GeneratedAt:    time.Now().UTC(),
		TargetLanguage: e.classifier.TargetLanguage(),
		StartURL:       e.startURL,
		Pages:          e.pageResults,
		Issues:         e.results,
		Stats:          stats,
	}, nil
}

// ProcessPage runs the full pipeline over one page: navigate, harvest links,
// capture and analyze the main view, probe modals, analyze each modal
// capture, and finally re-navigate so the next page starts clean. Failures
// are contained to the page; the session carries on.
func (e *Explorer) ProcessPage(ctx context.Context, pageCfg config.PageConfig) schemas.PageResult {
	result := schemas.PageResult{PageName: pageCfg.Name, URL: pageCfg.URL}

	pageURL := e.resolveURL(pageCfg.URL)
	if err := e.page.Navigate(pageURL); err != nil {
		e.logger.Error("Failed to navigate to page",
			zap.String("page", pageCfg.Name),
			zap.String("url", pageURL),
			zap.Error(err),
		)
		result.Error = err.Error()
		return result
	}
	e.state.MarkPageVisited(pageCfg.URL)

	if err := e.links.Harvest(e.page); err != nil {
		e.logger.Warn("Link harvest failed", zap.String("page", pageCfg.Name), zap.Error(err))
	}

	shot, err := e.page.Screenshot(pageCfg.Name, false)
	if err != nil {
		e.logger.Error("Failed to capture page",
			zap.String("page", pageCfg.Name),
			zap.Error(err),
		)
		result.Error = err.Error()
		return result
	}
	result.ScreenshotPath = shot
	result.Success = true
	e.analyzeCapture(ctx, shot, pageCfg.Name, "")

	if len(pageCfg.Modals) > 0 {
		for _, modalCfg := range pageCfg.Modals {
			modalResult := e.modals.ProbeConfigured(ctx, e.page, modalCfg)
			result.Modals = append(result.Modals, modalResult)
			if modalResult.Success {
				e.analyzeCapture(ctx, modalResult.ScreenshotPath, pageCfg.Name, modalResult.Name)
			}
			// Clean state for the next modal.
			if err := e.page.Navigate(pageURL); err != nil {
				e.logger.Warn("Failed to re-navigate after modal", zap.Error(err))
			}
		}
	} else {
		for _, modalResult := range e.modals.Probe(ctx, e.page) {
			result.Modals = append(result.Modals, modalResult)
			if modalResult.Success {
				e.analyzeCapture(ctx, modalResult.ScreenshotPath, pageCfg.Name, modalResult.Name)
			}
		}
		// Clean up anything the probing left open.
		if err := e.page.Navigate(pageURL); err != nil {
			e.logger.Warn("Failed to re-navigate after modal probing", zap.Error(err))
		}
	}

	return result
}

// AutoDiscover visits a bounded batch of harvested-but-unvisited pages.
func (e *Explorer) AutoDiscover(ctx context.Context) []schemas.PageResult {
	var results []schemas.PageResult

	batch := e.state.NextUnvisited(e.cfg.MaxAutoPages)
	if len(batch) == 0 {
		return results
	}
	e.logger.Info("Auto-discovering pages", zap.Int("count", len(batch)))

	for i, path := range batch {
		if ctx.Err() != nil {
			e.logger.Warn("Auto-discovery aborted", zap.Error(ctx.Err()))
			return results
		}
		pageCfg := config.PageConfig{Name: pageNameFromPath(path, i+1), URL: path}
		results = append(results, e.ProcessPage(ctx, pageCfg))
	}
	return results
}

// analyzeCapture extracts text from a screenshot and records every block the
// classifier flags. OCR failures cost the capture its analysis, not the run.
func (e *Explorer) analyzeCapture(ctx context.Context, screenshotPath, pageName, modalName string) {
	blocks, err := e.extractor.Extract(ctx, screenshotPath)
	if err != nil {
		e.logger.Error("Text extraction failed",
			zap.String("screenshot", screenshotPath),
			zap.Error(err),
		)
		return
	}

	section := schemas.SectionMain
	if modalName != "" {
		section = modalName
	}

	flagged := 0
	for _, block := range blocks {
		if block.Confidence < e.ocrConfidenceFloor {
			continue
		}
		verdict := e.classifier.Classify(block.Text)
		if !verdict.MissingTranslation {
			continue
		}
		flagged++
		e.results.Add(pageName, section, schemas.Issue{
			Text:           block.Text,
			Language:       verdict.Language,
			Confidence:     block.Confidence,
			BBox:           block.BBox,
			PageName:       pageName,
			ModalName:      modalName,
			ScreenshotPath: screenshotPath,
			IssueType:      schemas.IssueTypeMissingTranslation,
		})
	}
	if flagged > 0 {
		e.logger.Warn("Missing translations detected",
			zap.String("page", pageName),
			zap.String("section", section),
			zap.Int("count", flagged),
		)
	}
}

// resolveURL turns a configured path into an absolute URL within the session
// origin. Absolute URLs pass through untouched.
func (e *Explorer) resolveURL(raw string) string {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return strings.TrimRight(e.scope.Origin(), "/") + "/" + strings.TrimLeft(raw, "/")
}

// pageNameFromPath derives a page name from its path, falling back to an
// ordinal when the path reduces to nothing.
func pageNameFromPath(path string, ordinal int) string {
	name := strings.Trim(strings.ReplaceAll(path, "/", "_"), "_")
	if name == "" {
		return fmt.Sprintf("DiscoveredPage_%d", ordinal)
	}
	return name
}

// startPageName names the implicit seed page for runs with no configured
// pages.
func startPageName(startURL string) string {
	parsed, err := url.Parse(startURL)
	if err != nil || strings.Trim(parsed.Path, "/") == "" {
		return "StartPage"
	}
	return pageNameFromPath(parsed.Path, 1)
}
