// File: internal/reporting/html.go
package reporting

import (
	"fmt"
	"html/template"
	"io"

	"github.com/mkaresz/locascope/api/schemas"
)

// HTMLReporter renders a self-contained report page with summary counts,
// per-page issue tables and links to the captured screenshots.
type HTMLReporter struct {
	writer io.WriteCloser
}

// NewHTMLReporter creates the HTML reporter. It takes ownership of the
// writer.
func NewHTMLReporter(w io.WriteCloser) *HTMLReporter {
	return &HTMLReporter{writer: w}
}

type htmlPage struct {
	Summary  pageSummary
	Sections []htmlSection
	Result   *schemas.PageResult
}

type htmlSection struct {
	Name   string
	Issues []schemas.Issue
}

type htmlData struct {
	Envelope    *schemas.ReportEnvelope
	TotalIssues int
	TotalPages  int
	Pages       []htmlPage
}

// Write renders the report.
func (r *HTMLReporter) Write(envelope *schemas.ReportEnvelope) error {
	data := htmlData{
		Envelope:    envelope,
		TotalIssues: envelope.Issues.Total(),
		TotalPages:  len(envelope.Issues),
	}

	pageResults := make(map[string]*schemas.PageResult, len(envelope.Pages))
	for i := range envelope.Pages {
		pageResults[envelope.Pages[i].PageName] = &envelope.Pages[i]
	}

	for _, summary := range summarize(envelope.Issues) {
		page := htmlPage{Summary: summary, Result: pageResults[summary.PageName]}
		sections := envelope.Issues[summary.PageName]
		for _, name := range orderedSections(sections) {
			page.Sections = append(page.Sections, htmlSection{Name: name, Issues: sections[name]})
		}
		data.Pages = append(data.Pages, page)
	}

	if err := reportTemplate.Execute(r.writer, data); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}
	return nil
}

// Close releases the underlying writer.
func (r *HTMLReporter) Close() error { return r.writer.Close() }

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Localization Report {{.Envelope.SessionID}}</title>
<style>
  body { font-family: Arial, Helvetica, sans-serif; margin: 2em; color: #222; }
  h1 { border-bottom: 2px solid #444; padding-bottom: 0.3em; }
  .meta { color: #666; margin-bottom: 1.5em; }
  .stats { display: flex; gap: 2em; margin-bottom: 2em; }
  .stat { background: #f4f4f4; border-radius: 6px; padding: 1em 2em; text-align: center; }
  .stat .value { font-size: 2em; font-weight: bold; }
  .page-header { background: #2c3e50; color: #fff; padding: 0.5em 1em; border-radius: 4px; margin-top: 2em; }
  .section-header { background: #e8e8e8; padding: 0.3em 1em; margin-top: 1em; font-weight: bold; }
  table { border-collapse: collapse; width: 100%; margin-top: 0.5em; }
  th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }
  th { background: #f0f0f0; }
  .screenshot { color: #888; font-size: 0.9em; margin-top: 0.3em; }
  .clean { color: #2e7d32; font-weight: bold; }
</style>
</head>
<body>
<h1>Localization Report</h1>
<div class="meta">
  Session {{.Envelope.SessionID}} &middot; generated {{.Envelope.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}
  &middot; target language <strong>{{.Envelope.TargetLanguage}}</strong>
  &middot; start URL {{.Envelope.StartURL}}
</div>
<div class="stats">
  <div class="stat"><div class="value">{{.TotalIssues}}</div><div>missing translations</div></div>
  <div class="stat"><div class="value">{{.TotalPages}}</div><div>pages with issues</div></div>
  <div class="stat"><div class="value">{{.Envelope.Stats.PagesVisited}}</div><div>pages visited</div></div>
  <div class="stat"><div class="value">{{.Envelope.Stats.ModalsVisited}}</div><div>modals visited</div></div>
</div>
{{if not .Pages}}<p class="clean">No missing translations detected.</p>{{end}}
{{range .Pages}}
<div class="page-header">{{.Summary.PageName}} &mdash; {{.Summary.TotalIssues}} issue(s)</div>
{{if .Result}}{{if .Result.ScreenshotPath}}<div class="screenshot">Screenshot: {{.Result.ScreenshotPath}}</div>{{end}}{{end}}
{{range .Sections}}
<div class="section-header">{{.Name}}</div>
<table>
  <tr><th>Text</th><th>Detected Language</th><th>Confidence</th><th>Screenshot</th></tr>
  {{range .Issues}}
  <tr><td>{{.Text}}</td><td>{{.Language}}</td><td>{{printf "%.2f" .Confidence}}</td><td>{{.ScreenshotPath}}</td></tr>
  {{end}}
</table>
{{end}}
{{end}}
</body>
</html>
`))
