// File: internal/browser/element.go
package browser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/mkaresz/locascope/api/schemas"
)

// element is a handle over one DOM node, addressed by the XPath captured at
// query time. Handles go stale when the page re-renders; callers re-query.
type element struct {
	sess  *Session
	node  *cdp.Node
	xpath string
}

var _ schemas.Element = (*element)(nil)

// textJS returns the element's rendered text, or null when the node is gone.
const textJS = `(function(p) {
	const n = document.evaluate(p, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	if (!n) return null;
	return n.innerText !== undefined ? n.innerText : n.textContent;
})(%s)`

// visibleJS mirrors the usual visibility heuristics: attached, not
// display:none / visibility:hidden / opacity:0, and occupying layout space.
const visibleJS = `(function(p) {
	const n = document.evaluate(p, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	if (!n || !(n instanceof Element)) return false;
	const s = window.getComputedStyle(n);
	if (s.display === 'none' || s.visibility === 'hidden' || parseFloat(s.opacity) === 0) return false;
	const r = n.getBoundingClientRect();
	return r.width > 0 && r.height > 0;
})(%s)`

// Text returns the element's rendered inner text, trimmed.
func (e *element) Text() (string, error) {
	var text *string
	script := fmt.Sprintf(textJS, strconv.Quote(e.xpath))
	if err := e.sess.run(chromedp.Evaluate(script, &text)); err != nil {
		return "", fmt.Errorf("failed to read element text: %w", err)
	}
	if text == nil {
		return "", fmt.Errorf("element %s is no longer attached", e.xpath)
	}
	return strings.TrimSpace(*text), nil
}

// Attribute returns the named attribute as captured at query time, or ""
// when the attribute is absent.
func (e *element) Attribute(name string) (string, error) {
	return e.node.AttributeValue(name), nil
}

// IsVisible reports whether the element currently occupies layout space.
func (e *element) IsVisible() (bool, error) {
	var visible bool
	script := fmt.Sprintf(visibleJS, strconv.Quote(e.xpath))
	if err := e.sess.run(chromedp.Evaluate(script, &visible)); err != nil {
		return false, fmt.Errorf("failed to check element visibility: %w", err)
	}
	return visible, nil
}

// Click dispatches a mouse click on the node.
func (e *element) Click() error {
	if err := e.sess.run(chromedp.MouseClickNode(e.node)); err != nil {
		return fmt.Errorf("failed to click element %s: %w", e.xpath, err)
	}
	return nil
}
