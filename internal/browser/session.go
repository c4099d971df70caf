// File: internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/mkaresz/locascope/api/schemas"
	"github.com/mkaresz/locascope/internal/config"
)

// keyMap translates friendly key names to the codes chromedp understands.
var keyMap = map[string]string{
	"Escape": kb.Escape,
	"Enter":  kb.Enter,
	"Tab":    kb.Tab,
}

// Session is one browser tab. It implements schemas.Page.
type Session struct {
	logger *zap.Logger
	cfg    config.BrowserConfig

	ctx    context.Context
	cancel context.CancelFunc

	screenshotDir string

	closeOnce sync.Once
	done      func()
}

var _ schemas.Page = (*Session)(nil)

// run executes chromedp actions against the tab under the navigation
// timeout.
func (s *Session) run(actions ...chromedp.Action) error {
	runCtx := s.ctx
	if s.cfg.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, s.cfg.NavigationTimeout)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads the URL, waits for the document body, then gives client
// side rendering a configured moment to settle.
func (s *Session) Navigate(url string) error {
	s.logger.Info("Navigating", zap.String("url", url))

	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	if s.cfg.PostLoadWait > 0 {
		actions = append(actions, chromedp.Sleep(s.cfg.PostLoadWait))
	}
	if err := s.run(actions...); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// CurrentURL returns the URL the tab is currently showing.
func (s *Session) CurrentURL() (string, error) {
	var location string
	if err := s.run(chromedp.Location(&location)); err != nil {
		return "", fmt.Errorf("failed to read location: %w", err)
	}
	return location, nil
}

// QueryAll returns element handles for every match of the CSS selector. No
// matches is an empty slice, not an error.
func (s *Session) QueryAll(selector string) ([]schemas.Element, error) {
	var nodes []*cdp.Node
	err := s.run(chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("query %q failed: %w", selector, err)
	}

	elements := make([]schemas.Element, 0, len(nodes))
	for _, node := range nodes {
		elements = append(elements, &element{sess: s, node: node, xpath: node.FullXPath()})
	}
	return elements, nil
}

// Screenshot captures the full page into the session's screenshot directory
// and returns the file path. Modal captures land in a "modals" subdirectory.
func (s *Session) Screenshot(name string, modal bool) (string, error) {
	dir := s.screenshotDir
	if modal {
		dir = filepath.Join(dir, "modals")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.png", sanitizeFilename(name), time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, filename)

	var buf []byte
	if err := s.run(chromedp.FullScreenshot(&buf, 90)); err != nil {
		return "", fmt.Errorf("failed to capture %s: %w", name, err)
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return "", fmt.Errorf("failed to write screenshot: %w", err)
	}

	s.logger.Info("Screenshot saved", zap.String("name", name), zap.String("path", path))
	return path, nil
}

// KeyPress sends a single key to the focused document.
func (s *Session) KeyPress(key string) error {
	code, ok := keyMap[key]
	if !ok {
		code = key
	}
	if err := s.run(chromedp.KeyEvent(code)); err != nil {
		return fmt.Errorf("key press %q failed: %w", key, err)
	}
	return nil
}

// Close tears down the tab. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		if s.done != nil {
			s.done()
		}
	})
}

// sanitizeFilename reduces a capture name to filesystem-safe characters.
func sanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}
