// File: internal/explore/modals.go
package explore

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/mkaresz/locascope/api/schemas"
	"github.com/mkaresz/locascope/internal/config"
)

// maxNameTextLength bounds how long a trigger's text may be before it stops
// being a usable modal name.
const maxNameTextLength = 30

// ModalDiscoverer probes a page for modal dialogs by clicking plausible
// trigger elements and watching for a container-visibility flip or a URL
// change. Every probe ends with a restoration attempt so the page is back in
// a usable state for the next candidate.
type ModalDiscoverer struct {
	logger *zap.Logger
	state  *State

	triggers   []string
	containers []string
	closers    []string

	maxCandidates int
	settleWait    time.Duration
	closeWait     time.Duration

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

// NewModalDiscoverer builds a discoverer bound to one session, using the
// default selector tables.
func NewModalDiscoverer(state *State, cfg config.ExploreConfig, logger *zap.Logger) *ModalDiscoverer {
	return &ModalDiscoverer{
		logger:        logger.Named("modals"),
		state:         state,
		triggers:      DefaultTriggerSelectors,
		containers:    DefaultContainerSelectors,
		closers:       DefaultCloseSelectors,
		maxCandidates: cfg.MaxModalsPerPage,
		settleWait:    cfg.ModalSettleWait,
		closeWait:     cfg.CloseSettleWait,
		sleep:         time.Sleep,
	}
}

// Probe examines the current page for modals. It never returns an error:
// per-candidate failures are logged, restoration is attempted, and the loop
// moves on. The slice holds one entry per modal that actually opened.
func (d *ModalDiscoverer) Probe(ctx context.Context, page schemas.Page) []schemas.ModalResult {
	var results []schemas.ModalResult

	combined := joinSelectors(d.triggers)
	candidates, err := page.QueryAll(combined)
	if err != nil {
		d.logger.Warn("Failed to query modal triggers", zap.Error(err))
		return results
	}
	if len(candidates) == 0 {
		d.logger.Info("No potential modal triggers found")
		return results
	}
	d.logger.Info("Found potential modal triggers", zap.Int("count", len(candidates)))

	count := len(candidates)
	if count > d.maxCandidates {
		count = d.maxCandidates
	}

	// Baseline before any clicking: is some container already visible?
	baselineVisible := d.containerVisible(page)

	originalURL, err := page.CurrentURL()
	if err != nil {
		d.logger.Warn("Failed to read current URL before probing", zap.Error(err))
		return results
	}

	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			d.logger.Warn("Modal probing aborted", zap.Error(ctx.Err()))
			return results
		}
		if result, opened := d.probeCandidate(page, i, baselineVisible, originalURL); opened {
			results = append(results, result)
		}
	}
	return results
}

// probeCandidate clicks the i-th trigger candidate and reports whether a
// modal opened. Element handles go stale as the page re-renders, so the
// trigger list is re-queried fresh for every candidate.
func (d *ModalDiscoverer) probeCandidate(page schemas.Page, index int, baselineVisible bool, originalURL string) (schemas.ModalResult, bool) {
	candidateURL, err := page.CurrentURL()
	if err != nil {
		d.logger.Warn("Failed to read URL for candidate", zap.Int("candidate", index), zap.Error(err))
		return schemas.ModalResult{}, false
	}

	triggers, err := page.QueryAll(joinSelectors(d.triggers))
	if err != nil || index >= len(triggers) {
		return schemas.ModalResult{}, false
	}
	trigger := triggers[index]

	name := d.deriveName(trigger, index)
	if d.state.ModalVisited(name) {
		return schemas.ModalResult{}, false
	}

	d.logger.Info("Attempting to open modal", zap.String("modal", name))

	if err := trigger.Click(); err != nil {
		d.logger.Warn("Failed to click modal trigger",
			zap.String("modal", name),
			zap.Error(err),
		)
		d.restore(page, originalURL)
		return schemas.ModalResult{}, false
	}
	d.sleep(d.settleWait)

	urlNow, err := page.CurrentURL()
	if err != nil {
		d.restore(page, originalURL)
		return schemas.ModalResult{}, false
	}
	modalAppeared := d.containerVisible(page) != baselineVisible
	urlChanged := urlNow != candidateURL
	if !modalAppeared && !urlChanged {
		// A click that opened nothing can still have left focus traps or a
		// half-open overlay behind; restore before the next candidate.
		d.restore(page, candidateURL)
		return schemas.ModalResult{}, false
	}

	d.logger.Info("Modal or page change detected", zap.String("modal", name))

	result := schemas.ModalResult{
		Name:         name,
		SelectorHint: fmt.Sprintf("auto-discovered trigger #%d", index+1),
	}
	shot, err := page.Screenshot(name, true)
	if err != nil {
		d.logger.Warn("Failed to capture modal screenshot",
			zap.String("modal", name),
			zap.Error(err),
		)
	} else {
		result.Success = true
		result.ScreenshotPath = shot
		d.state.MarkModalVisited(name)
	}

	d.restore(page, candidateURL)
	return result, true
}

// ProbeConfigured opens one explicitly configured modal via its selector,
// captures it, and restores the page.
func (d *ModalDiscoverer) ProbeConfigured(ctx context.Context, page schemas.Page, modal config.ModalConfig) schemas.ModalResult {
	result := schemas.ModalResult{Name: modal.Name, SelectorHint: modal.Selector}
	if ctx.Err() != nil {
		return result
	}

	elements, err := page.QueryAll(modal.Selector)
	if err != nil || len(elements) == 0 {
		d.logger.Warn("Configured modal selector matched nothing",
			zap.String("modal", modal.Name),
			zap.String("selector", modal.Selector),
		)
		return result
	}
	target := elements[0]
	if visible, err := target.IsVisible(); err != nil || !visible {
		d.logger.Warn("Configured modal trigger is not visible",
			zap.String("modal", modal.Name),
			zap.String("selector", modal.Selector),
		)
		return result
	}

	originalURL, err := page.CurrentURL()
	if err != nil {
		return result
	}
	if err := target.Click(); err != nil {
		d.logger.Warn("Failed to click configured modal trigger",
			zap.String("modal", modal.Name),
			zap.Error(err),
		)
		return result
	}
	// Extra time for modal animations.
	d.sleep(2 * d.settleWait)

	shot, err := page.Screenshot(modal.Name, true)
	if err != nil {
		d.logger.Warn("Failed to capture configured modal",
			zap.String("modal", modal.Name),
			zap.Error(err),
		)
	} else {
		result.Success = true
		result.ScreenshotPath = shot
		d.state.MarkModalVisited(modal.Name)
	}

	d.restore(page, originalURL)
	return result
}

// containerVisible reports whether any known modal container is currently
// visible. Errors count as not visible.
func (d *ModalDiscoverer) containerVisible(page schemas.Page) bool {
	containers, err := page.QueryAll(joinSelectors(d.containers))
	if err != nil {
		return false
	}
	for _, container := range containers {
		if visible, err := container.IsVisible(); err == nil && visible {
			return true
		}
	}
	return false
}

// restore brings the page back to its pre-click state. Escalation order:
// Escape key, then the close-selector table, then a forced re-navigation to
// the original URL. Runs unconditionally after every click, whether or not a
// modal was detected.
func (d *ModalDiscoverer) restore(page schemas.Page, originalURL string) {
	if err := page.KeyPress("Escape"); err == nil {
		d.sleep(d.closeWait)
		if d.restored(page, originalURL) {
			return
		}
	}

	for _, selector := range d.closers {
		buttons, err := page.QueryAll(selector)
		if err != nil || len(buttons) == 0 {
			continue
		}
		button := buttons[0]
		if visible, err := button.IsVisible(); err != nil || !visible {
			continue
		}
		if err := button.Click(); err != nil {
			continue
		}
		d.sleep(d.closeWait)
		if d.restored(page, originalURL) {
			return
		}
	}

	urlNow, err := page.CurrentURL()
	if err != nil || urlNow != originalURL {
		if err := page.Navigate(originalURL); err != nil {
			d.logger.Error("Failed to restore page after modal",
				zap.String("url", originalURL),
				zap.Error(err),
			)
		}
	}
}

// restored reports whether no modal container is visible and the page is
// back on the original URL.
func (d *ModalDiscoverer) restored(page schemas.Page, originalURL string) bool {
	if d.containerVisible(page) {
		return false
	}
	urlNow, err := page.CurrentURL()
	return err == nil && urlNow == originalURL
}

// deriveName names a modal after its trigger. Preference order: visible
// text, aria-label, title, id, then the candidate ordinal. Distinct triggers
// can collapse onto the same name; the session dedup then keeps the first.
func (d *ModalDiscoverer) deriveName(trigger schemas.Element, index int) string {
	text, err := trigger.Text()
	if err == nil {
		text = strings.TrimSpace(text)
		if text != "" && len([]rune(text)) < maxNameTextLength {
			return sanitizeModalName("Modal_" + text)
		}
	}
	for _, attr := range []string{"aria-label", "title", "id"} {
		if value, err := trigger.Attribute(attr); err == nil && value != "" {
			return sanitizeModalName("Modal_" + value)
		}
	}
	return fmt.Sprintf("Modal_%d", index+1)
}

// sanitizeModalName reduces a derived name to letters, digits and
// underscores, with runs of underscores collapsed.
func sanitizeModalName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	lastUnderscore := false
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteRune('_')
			lastUnderscore = true
		}
	}
	return b.String()
}
