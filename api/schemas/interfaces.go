// File: api/schemas/interfaces.go
package schemas

import "context"

// Element is a narrow handle onto a rendered DOM element. Handles are
// snapshots: they can go stale when the page re-renders, in which case every
// method returns an error and the caller should re-query.
type Element interface {
	// Text returns the element's rendered inner text, trimmed.
	Text() (string, error)
	// Attribute returns the value of the named attribute, or "" when absent.
	Attribute(name string) (string, error)
	// IsVisible reports whether the element currently occupies layout space
	// and is not hidden via CSS.
	IsVisible() (bool, error)
	// Click dispatches a mouse click on the element.
	Click() error
}

// Page is the browser capability surface consumed by exploration. It is
// deliberately small so the discovery logic stays testable without a real
// browser behind it.
type Page interface {
	// Navigate loads the URL and waits for the document to become ready.
	Navigate(url string) error
	// CurrentURL returns the URL the page is currently showing.
	CurrentURL() (string, error)
	// QueryAll returns handles for every element matching the CSS selector.
	// A selector that matches nothing returns an empty slice, not an error.
	QueryAll(selector string) ([]Element, error)
	// Screenshot captures the full viewport and returns the file path it was
	// written to. Modal captures land in a separate subdirectory.
	Screenshot(name string, modal bool) (string, error)
	// KeyPress sends a single key (e.g. "Escape") to the focused document.
	KeyPress(key string) error
}

// TextExtractor is the OCR capability: it turns a screenshot on disk into
// positioned text blocks.
type TextExtractor interface {
	Extract(ctx context.Context, imagePath string) ([]TextBlock, error)
}
