// File: internal/reporting/reporter.go

// Package reporting renders a finished exploration session into the
// supported report formats. Every reporter consumes the same envelope, so
// any format can be re-rendered later from a saved JSON report.
package reporting

import (
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/mkaresz/locascope/api/schemas"
)

// Reporter defines the interface for writing session results to an output.
type Reporter interface {
	// Write renders the envelope.
	Write(envelope *schemas.ReportEnvelope) error
	// Close finalizes the report and releases the underlying writer.
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error { return nil }

// New creates a reporter for the given format. An empty or "stdout" path
// writes to standard output.
func New(format, outputPath string, logger *zap.Logger) (Reporter, error) {
	var writer io.WriteCloser
	isStdout := outputPath == "" || outputPath == "stdout"

	if isStdout {
		writer = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}

	cleanup := func() {
		if !isStdout {
			writer.Close()
		}
	}

	switch format {
	case "csv":
		return NewCSVReporter(writer), nil
	case "summary":
		return NewSummaryReporter(writer), nil
	case "json":
		return NewJSONReporter(writer), nil
	case "html":
		return NewHTMLReporter(writer), nil
	case "markdown":
		return NewMarkdownReporter(writer), nil
	default:
		cleanup()
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Extension returns the conventional file extension for a format.
func Extension(format string) string {
	switch format {
	case "csv", "summary":
		return ".csv"
	case "json":
		return ".json"
	case "html":
		return ".html"
	case "markdown":
		return ".md"
	default:
		return ""
	}
}

// pageSummary is a per-page issue count used by the summary, HTML and
// markdown renderers.
type pageSummary struct {
	PageName    string
	TotalIssues int
	MainIssues  int
	ModalIssues int
	// Sections holds section names other than "main", ordered.
	Sections []sectionCount
}

type sectionCount struct {
	Name  string
	Count int
}

// summarize flattens the results mapping into per-page counts, pages with
// the most issues first.
func summarize(results schemas.Results) []pageSummary {
	summaries := make([]pageSummary, 0, len(results))
	for pageName, sections := range results {
		summary := pageSummary{PageName: pageName}
		sectionNames := make([]string, 0, len(sections))
		for name := range sections {
			sectionNames = append(sectionNames, name)
		}
		sort.Strings(sectionNames)
		for _, name := range sectionNames {
			count := len(sections[name])
			summary.TotalIssues += count
			if name == schemas.SectionMain {
				summary.MainIssues = count
				continue
			}
			summary.ModalIssues += count
			summary.Sections = append(summary.Sections, sectionCount{Name: name, Count: count})
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].TotalIssues != summaries[j].TotalIssues {
			return summaries[i].TotalIssues > summaries[j].TotalIssues
		}
		return summaries[i].PageName < summaries[j].PageName
	})
	return summaries
}

// orderedPages returns the page names of the results mapping sorted for
// stable iteration.
func orderedPages(results schemas.Results) []string {
	pages := make([]string, 0, len(results))
	for page := range results {
		pages = append(pages, page)
	}
	sort.Strings(pages)
	return pages
}

// orderedSections returns a page's section names with "main" first.
func orderedSections(sections map[string][]schemas.Issue) []string {
	names := make([]string, 0, len(sections))
	for name := range sections {
		if name != schemas.SectionMain {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := sections[schemas.SectionMain]; ok {
		names = append([]string{schemas.SectionMain}, names...)
	}
	return names
}
