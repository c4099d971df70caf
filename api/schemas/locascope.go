// File: api/schemas/locascope.go
package schemas

import "time"

// Point is a single corner of an OCR bounding quadrilateral, in pixel
// coordinates relative to the screenshot.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox is the quadrilateral reported by the OCR engine, in reading
// order: top-left, top-right, bottom-right, bottom-left.
type BoundingBox [4]Point

// TextBlock is one piece of text the OCR engine extracted from a screenshot.
type TextBlock struct {
	Text       string      `json:"text"`
	BBox       BoundingBox `json:"bbox"`
	Confidence float64     `json:"confidence"`
}

// IssueTypeMissingTranslation marks text rendered in the comparison language
// on a page that should be fully localized.
const IssueTypeMissingTranslation = "missing_translation"

// SectionMain is the section key for issues found on the page itself, as
// opposed to inside a modal overlay.
const SectionMain = "main"

// Issue records one suspected missing translation.
type Issue struct {
	Text           string      `json:"text"`
	Language       string      `json:"language"`
	Confidence     float64     `json:"confidence"`
	BBox           BoundingBox `json:"bbox"`
	PageName       string      `json:"page_name"`
	ModalName      string      `json:"modal_name,omitempty"`
	ScreenshotPath string      `json:"screenshot_path,omitempty"`
	IssueType      string      `json:"issue_type"`
}

// Results groups issues by page name, then by section. The section key is
// either SectionMain or a modal name. This mapping is the only contract
// between exploration and reporting.
type Results map[string]map[string][]Issue

// Add appends issues under the given page and section, creating the nested
// maps as needed.
func (r Results) Add(page, section string, issues ...Issue) {
	if len(issues) == 0 {
		return
	}
	sections, ok := r[page]
	if !ok {
		sections = make(map[string][]Issue)
		r[page] = sections
	}
	sections[section] = append(sections[section], issues...)
}

// Total returns the number of issues across all pages and sections.
func (r Results) Total() int {
	total := 0
	for _, sections := range r {
		for _, issues := range sections {
			total += len(issues)
		}
	}
	return total
}

// PageTotal returns the number of issues recorded for a single page.
func (r Results) PageTotal(page string) int {
	total := 0
	for _, issues := range r[page] {
		total += len(issues)
	}
	return total
}

// ModalResult describes a single modal that was opened during exploration.
type ModalResult struct {
	Name           string `json:"name"`
	SelectorHint   string `json:"selector_hint,omitempty"`
	Success        bool   `json:"success"`
	ScreenshotPath string `json:"screenshot_path,omitempty"`
}

// PageResult describes the outcome of processing one page.
type PageResult struct {
	PageName       string        `json:"page_name"`
	URL            string        `json:"url"`
	Success        bool          `json:"success"`
	Error          string        `json:"error,omitempty"`
	ScreenshotPath string        `json:"screenshot_path,omitempty"`
	Modals         []ModalResult `json:"modals,omitempty"`
}

// SessionStats summarizes what a finished exploration session has seen.
type SessionStats struct {
	PagesVisited    int      `json:"pages_visited"`
	ModalsVisited   int      `json:"modals_visited"`
	PagesDiscovered int      `json:"pages_discovered"`
	Pages           []string `json:"pages"`
	Modals          []string `json:"modals"`
}

// ReportEnvelope is the serializable result of a full run. The JSON report
// writes it verbatim; the report subcommand re-renders other formats from it.
type ReportEnvelope struct {
	SessionID      string       `json:"session_id"`
	GeneratedAt    time.Time    `json:"generated_at"`
	TargetLanguage string       `json:"target_language"`
	StartURL       string       `json:"start_url"`
	Pages          []PageResult `json:"pages"`
	Issues         Results      `json:"issues"`
	Stats          SessionStats `json:"stats"`
}
