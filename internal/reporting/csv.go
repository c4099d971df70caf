// File: internal/reporting/csv.go
package reporting

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mkaresz/locascope/api/schemas"
)

// CSVReporter writes one row per issue.
type CSVReporter struct {
	writer io.WriteCloser
}

// NewCSVReporter creates the detail CSV reporter. It takes ownership of the
// writer.
func NewCSVReporter(w io.WriteCloser) *CSVReporter {
	return &CSVReporter{writer: w}
}

// Write renders every issue, grouped by page and section.
func (r *CSVReporter) Write(envelope *schemas.ReportEnvelope) error {
	cw := csv.NewWriter(r.writer)
	header := []string{"Page", "Section", "Text", "Detected Language", "Expected Language", "Confidence"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, page := range orderedPages(envelope.Issues) {
		sections := envelope.Issues[page]
		for _, section := range orderedSections(sections) {
			for _, issue := range sections[section] {
				row := []string{
					page,
					section,
					issue.Text,
					issue.Language,
					envelope.TargetLanguage,
					strconv.FormatFloat(issue.Confidence, 'f', 2, 64),
				}
				if err := cw.Write(row); err != nil {
					return fmt.Errorf("failed to write CSV row: %w", err)
				}
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// Close releases the underlying writer.
func (r *CSVReporter) Close() error { return r.writer.Close() }

// SummaryReporter writes one row per page with issue counts, pages with the
// most issues first.
type SummaryReporter struct {
	writer io.WriteCloser
}

// NewSummaryReporter creates the summary CSV reporter. It takes ownership of
// the writer.
func NewSummaryReporter(w io.WriteCloser) *SummaryReporter {
	return &SummaryReporter{writer: w}
}

// Write renders per-page totals with a main/modal split.
func (r *SummaryReporter) Write(envelope *schemas.ReportEnvelope) error {
	cw := csv.NewWriter(r.writer)
	header := []string{"Page", "Total Issues", "Main Page Issues", "Modal Issues", "Details"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write summary header: %w", err)
	}

	for _, summary := range summarize(envelope.Issues) {
		details := make([]string, 0, len(summary.Sections))
		for _, section := range summary.Sections {
			details = append(details, fmt.Sprintf("%s: %d", section.Name, section.Count))
		}
		detailCell := "N/A"
		if len(details) > 0 {
			detailCell = strings.Join(details, ", ")
		}
		row := []string{
			summary.PageName,
			strconv.Itoa(summary.TotalIssues),
			strconv.Itoa(summary.MainIssues),
			strconv.Itoa(summary.ModalIssues),
			detailCell,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Close releases the underlying writer.
func (r *SummaryReporter) Close() error { return r.writer.Close() }
