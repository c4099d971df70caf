// File: cmd/report.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mkaresz/locascope/internal/observability"
	"github.com/mkaresz/locascope/internal/reporting"
)

// newReportCmd creates and configures the `report` command. It re-renders
// any supported format from a previously saved JSON report, so a scan only
// needs to run once.
func newReportCmd() *cobra.Command {
	var inputPath string
	var outputPath string
	var format string

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Re-render a report from a saved JSON report file",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := observability.GetLogger()
			return runReport(logger, inputPath, outputPath, format)
		},
	}

	reportCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Path to a JSON report produced by a scan (required)")
	_ = reportCmd.MarkFlagRequired("input")
	reportCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path. If unset, the report is printed to stdout.")
	reportCmd.Flags().StringVarP(&format, "format", "f", "summary", "Format for the output report (csv, summary, json, html, markdown)")

	return reportCmd
}

// runReport contains the core, testable logic for re-rendering a report.
func runReport(logger *zap.Logger, inputPath, outputPath, format string) error {
	logger.Info("Re-rendering report",
		zap.String("input", inputPath),
		zap.String("format", format),
	)

	envelope, err := reporting.LoadEnvelope(inputPath)
	if err != nil {
		return err
	}

	reporter, err := reporting.New(format, outputPath, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize reporter: %w", err)
	}
	defer func() {
		if err := reporter.Close(); err != nil {
			logger.Warn("Failed to close reporter cleanly.", zap.Error(err))
		}
	}()

	if err := reporter.Write(envelope); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if outputPath != "" {
		logger.Info("Report successfully written", zap.String("path", outputPath))
	}
	return nil
}
