// File: internal/explore/rules.go
package explore

import "strings"

// The selector tables below drive autonomous modal discovery. They are plain
// ordered data: tuning the heuristics means editing a list, not the probe
// logic. Order matters for close selectors, which are tried first to last.

// DefaultTriggerSelectors match elements that plausibly open a modal when
// clicked.
var DefaultTriggerSelectors = []string{
	`button`,
	`a[role="button"]`,
	`[data-testid*="modal"]`,
	`[aria-haspopup="dialog"]`,
	`.modal-trigger`,
	`[class*="modal"]`,
	`[class*="button"]`,
	`[class*="btn"]`,
	`[aria-label*="settings"]`,
	`[aria-label*="options"]`,
	`[aria-label*="menu"]`,
	`a[href="#"][class*="icon"]`,
	`[data-bs-toggle="modal"]`,
}

// DefaultContainerSelectors match elements that hold modal content once one
// is open. A visibility flip across this set is the modal-appeared signal.
var DefaultContainerSelectors = []string{
	`.modal`,
	`[role="dialog"]`,
	`[aria-modal="true"]`,
	`.dialog`,
	`.popup`,
	`[class*="modal"]`,
	`[class*="dialog"]`,
	`[class*="overlay"]`,
	`[class*="popup"]`,
}

// DefaultCloseSelectors match common dismiss controls, tried in order when
// Escape does not close an open modal.
var DefaultCloseSelectors = []string{
	`.modal-close`,
	`.close`,
	`[aria-label="Close"]`,
	`[data-dismiss="modal"]`,
	`button.close`,
	`.modal button`,
	`[class*="close"]`,
	`[class*="cancel"]`,
	`button:has([aria-label="close"])`,
}

// joinSelectors combines a selector table into a single CSS selector list.
func joinSelectors(selectors []string) string {
	return strings.Join(selectors, ", ")
}
