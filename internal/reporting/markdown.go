// File: internal/reporting/markdown.go
package reporting

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/mkaresz/locascope/api/schemas"
)

// MarkdownReporter renders a Markdown summary suitable for pasting into an
// issue tracker.
type MarkdownReporter struct {
	writer io.WriteCloser
}

// NewMarkdownReporter creates the Markdown reporter. It takes ownership of
// the writer.
func NewMarkdownReporter(w io.WriteCloser) *MarkdownReporter {
	return &MarkdownReporter{writer: w}
}

// Write renders the report.
func (r *MarkdownReporter) Write(envelope *schemas.ReportEnvelope) error {
	md := markdown.NewMarkdown(r.writer)

	md.H1("Localization Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Session", "`" + envelope.SessionID + "`"},
			{"Generated", envelope.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Target Language", envelope.TargetLanguage},
			{"Start URL", envelope.StartURL},
			{"Pages Visited", strconv.Itoa(envelope.Stats.PagesVisited)},
			{"Modals Visited", strconv.Itoa(envelope.Stats.ModalsVisited)},
		},
	})
	md.PlainText("")

	totalIssues := envelope.Issues.Total()
	if totalIssues == 0 {
		md.Tip("No missing translations detected.")
		return md.Build()
	}
	md.Warningf("%d missing translation(s) detected across %d page(s).", totalIssues, len(envelope.Issues))
	md.PlainText("")

	md.H2("Issues by Page")
	md.PlainText("")
	summaryRows := make([][]string, 0, len(envelope.Issues))
	for _, summary := range summarize(envelope.Issues) {
		summaryRows = append(summaryRows, []string{
			summary.PageName,
			strconv.Itoa(summary.TotalIssues),
			strconv.Itoa(summary.MainIssues),
			strconv.Itoa(summary.ModalIssues),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Page", "Total", "Main", "Modals"},
		Rows:   summaryRows,
	})
	md.PlainText("")

	md.H2("Findings")
	md.PlainText("")
	for _, page := range orderedPages(envelope.Issues) {
		sections := envelope.Issues[page]
		md.H3(page)
		md.PlainText("")
		for _, section := range orderedSections(sections) {
			rows := make([][]string, 0, len(sections[section]))
			for _, issue := range sections[section] {
				rows = append(rows, []string{
					"`" + issue.Text + "`",
					issue.Language,
					fmt.Sprintf("%.2f", issue.Confidence),
				})
			}
			md.PlainText("**" + section + "**")
			md.PlainText("")
			md.Table(markdown.TableSet{
				Header: []string{"Text", "Detected Language", "Confidence"},
				Rows:   rows,
			})
			md.PlainText("")
		}
	}

	return md.Build()
}

// Close releases the underlying writer.
func (r *MarkdownReporter) Close() error { return r.writer.Close() }
