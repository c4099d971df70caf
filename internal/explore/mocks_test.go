package explore

import (
	"context"
	"fmt"

	"github.com/mkaresz/locascope/api/schemas"
	"github.com/mkaresz/locascope/internal/langid"
)

// -- Mocks and Test Helpers --

// fakeElement is a scriptable schemas.Element.
type fakeElement struct {
	text    string
	attrs   map[string]string
	visible bool

	textErr  error
	clickErr error
	// onClick lets a test flip page state (e.g. make a container visible).
	onClick func()

	clicks int
}

func (e *fakeElement) Text() (string, error) {
	if e.textErr != nil {
		return "", e.textErr
	}
	return e.text, nil
}

func (e *fakeElement) Attribute(name string) (string, error) {
	return e.attrs[name], nil
}

func (e *fakeElement) IsVisible() (bool, error) {
	return e.visible, nil
}

func (e *fakeElement) Click() error {
	e.clicks++
	if e.clickErr != nil {
		return e.clickErr
	}
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

// fakePage is a scriptable schemas.Page. Query results are keyed by the
// exact selector string; selectors with no entry return an empty slice,
// matching the real implementation.
type fakePage struct {
	url string

	queryResults map[string][]*fakeElement
	queryErr     map[string]error

	navigated  []string
	navErr     map[string]error
	onNavigate func(url string)

	screenshots   []string
	screenshotErr error

	keys  []string
	onKey func(key string)
}

func newFakePage(url string) *fakePage {
	return &fakePage{
		url:          url,
		queryResults: make(map[string][]*fakeElement),
		queryErr:     make(map[string]error),
		navErr:       make(map[string]error),
	}
}

func (p *fakePage) Navigate(url string) error {
	p.navigated = append(p.navigated, url)
	if err := p.navErr[url]; err != nil {
		return err
	}
	p.url = url
	if p.onNavigate != nil {
		p.onNavigate(url)
	}
	return nil
}

func (p *fakePage) CurrentURL() (string, error) {
	return p.url, nil
}

func (p *fakePage) QueryAll(selector string) ([]schemas.Element, error) {
	if err := p.queryErr[selector]; err != nil {
		return nil, err
	}
	elements := p.queryResults[selector]
	out := make([]schemas.Element, 0, len(elements))
	for _, e := range elements {
		out = append(out, e)
	}
	return out, nil
}

func (p *fakePage) Screenshot(name string, modal bool) (string, error) {
	if p.screenshotErr != nil {
		return "", p.screenshotErr
	}
	path := fmt.Sprintf("shots/%s_%d.png", name, len(p.screenshots))
	if modal {
		path = fmt.Sprintf("shots/modals/%s_%d.png", name, len(p.screenshots))
	}
	p.screenshots = append(p.screenshots, path)
	return path, nil
}

func (p *fakePage) KeyPress(key string) error {
	p.keys = append(p.keys, key)
	if p.onKey != nil {
		p.onKey(key)
	}
	return nil
}

// anchor builds a fakeElement carrying an href.
func anchor(href string) *fakeElement {
	return &fakeElement{attrs: map[string]string{"href": href}, visible: true}
}

// fakeExtractor returns canned text blocks per screenshot path.
type fakeExtractor struct {
	blocks map[string][]schemas.TextBlock
	err    error
	calls  []string
}

func (f *fakeExtractor) Extract(_ context.Context, imagePath string) ([]schemas.TextBlock, error) {
	f.calls = append(f.calls, imagePath)
	if f.err != nil {
		return nil, f.err
	}
	return f.blocks[imagePath], nil
}

// fakeClassifier flags any text found in its flagged set.
type fakeClassifier struct {
	flagged map[string]string // text -> detected language
}

func (f *fakeClassifier) Classify(text string) langid.Verdict {
	if lang, ok := f.flagged[text]; ok {
		return langid.Verdict{MissingTranslation: true, Language: lang}
	}
	return langid.Verdict{MissingTranslation: false, Language: "fr"}
}

func (f *fakeClassifier) TargetLanguage() string { return "fr" }
