// File: cmd/scan.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mkaresz/locascope/api/schemas"
	"github.com/mkaresz/locascope/internal/browser"
	"github.com/mkaresz/locascope/internal/config"
	"github.com/mkaresz/locascope/internal/explore"
	"github.com/mkaresz/locascope/internal/langid"
	"github.com/mkaresz/locascope/internal/observability"
	"github.com/mkaresz/locascope/internal/ocr"
	"github.com/mkaresz/locascope/internal/reporting"
)

// newScanCmd creates and configures the `scan` command.
func newScanCmd() *cobra.Command {
	var manualLogin bool

	scanCmd := &cobra.Command{
		Use:   "scan [start-url]",
		Short: "Explores a web application and reports non-localized text",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their Viper keys so command-line values override
			// the config file and environment with the right precedence.
			if err := viper.BindPFlag("explore.max_auto_pages", cmd.Flags().Lookup("max-pages")); err != nil {
				return err
			}
			if err := viper.BindPFlag("classifier.target_language", cmd.Flags().Lookup("target-lang")); err != nil {
				return err
			}
			if err := viper.BindPFlag("output.report_dir", cmd.Flags().Lookup("output-dir")); err != nil {
				return err
			}
			if err := viper.BindPFlag("output.formats", cmd.Flags().Lookup("format")); err != nil {
				return err
			}
			if err := viper.BindPFlag("browser.headless", cmd.Flags().Lookup("headless")); err != nil {
				return err
			}
			return viper.BindPFlag("scope", cmd.Flags().Lookup("scope"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}

			// Map the scope flag onto the discovery setting.
			switch strings.ToLower(viper.GetString("scope")) {
			case "subdomain":
				cfg.Explore.IncludeSubdomains = true
			case "strict", "":
				cfg.Explore.IncludeSubdomains = false
			default:
				logger.Warn("Invalid scope value provided, defaulting to 'strict'",
					zap.String("scope", viper.GetString("scope")))
				cfg.Explore.IncludeSubdomains = false
			}

			startURL := args[0]
			if !strings.HasPrefix(startURL, "http://") && !strings.HasPrefix(startURL, "https://") {
				startURL = "https://" + startURL
			}

			return runScan(ctx, logger, cfg, startURL, manualLogin)
		},
	}

	scanCmd.Flags().BoolVar(&manualLogin, "manual-login", false, "Open the start URL and wait for a manual login before exploring")
	scanCmd.Flags().Int("max-pages", 0, "Maximum number of auto-discovered pages to visit. (Overrides config/env)")
	scanCmd.Flags().String("target-lang", "", "Target language the application should be rendered in. (Overrides config/env)")
	scanCmd.Flags().StringP("output-dir", "o", "", "Directory for generated reports. (Overrides config/env)")
	scanCmd.Flags().StringSliceP("format", "f", nil, "Report formats to generate (csv, summary, json, html, markdown)")
	scanCmd.Flags().Bool("headless", true, "Run the browser headless. Disable for --manual-login sessions")
	scanCmd.Flags().String("scope", "strict", "Link harvest scope ('strict' or 'subdomain')")

	return scanCmd
}

// runScan wires the components and drives a full exploration session.
func runScan(ctx context.Context, logger *zap.Logger, cfg *config.Config, startURL string, manualLogin bool) error {
	logger.Info("Starting localization scan",
		zap.String("start_url", startURL),
		zap.String("target_language", cfg.Classifier.TargetLanguage),
		zap.Int("max_auto_pages", cfg.Explore.MaxAutoPages),
		zap.Bool("manual_login", manualLogin),
	)

	classifier, err := langid.New(cfg.Classifier, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize classifier: %w", err)
	}

	extractor, err := ocr.New(cfg.OCR, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OCR engine: %w", err)
	}

	manager, err := browser.NewManager(ctx, cfg.Browser, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize browser manager: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := manager.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Error during browser manager shutdown", zap.Error(err))
		}
	}()

	session, err := manager.NewSession(cfg.Output.ScreenshotDir)
	if err != nil {
		return fmt.Errorf("failed to open browser session: %w", err)
	}
	defer session.Close()

	explorer, err := explore.New(startURL, session, extractor, classifier, cfg.Explore, cfg.OCR.ConfidenceThreshold, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize explorer: %w", err)
	}

	if manualLogin {
		loggedIn, err := explorer.AwaitManualLogin(os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
		if !loggedIn {
			logger.Warn("Proceeding without a confirmed login")
		}
	}

	envelope, err := explorer.Run(ctx, cfg.Pages)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("Scan aborted gracefully", zap.String("session_id", explorer.SessionID()))
			return fmt.Errorf("scan aborted by user signal")
		}
		logger.Error("Scan failed", zap.Error(err), zap.String("session_id", explorer.SessionID()))
		return err
	}

	if err := writeReports(cfg.Output, envelope, logger); err != nil {
		return err
	}

	printSummary(envelope)
	return nil
}

// writeReports renders every configured format into the report directory.
func writeReports(out config.OutputConfig, envelope *schemas.ReportEnvelope, logger *zap.Logger) error {
	if len(out.Formats) == 0 {
		return nil
	}
	if err := os.MkdirAll(out.ReportDir, 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	for _, format := range out.Formats {
		name := fmt.Sprintf("localization_report_%s_%s%s", format, envelope.SessionID, reporting.Extension(format))
		path := filepath.Join(out.ReportDir, name)

		reporter, err := reporting.New(format, path, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize %s reporter: %w", format, err)
		}
		writeErr := reporter.Write(envelope)
		closeErr := reporter.Close()
		if writeErr != nil {
			return fmt.Errorf("failed to write %s report: %w", format, writeErr)
		}
		if closeErr != nil {
			return fmt.Errorf("failed to close %s report: %w", format, closeErr)
		}
		logger.Info("Report generated", zap.String("format", format), zap.String("path", path))
	}
	return nil
}

// printSummary renders the per-page issue counts to the console.
func printSummary(envelope *schemas.ReportEnvelope) {
	fmt.Printf("\nScan complete. Session ID: %s\n", envelope.SessionID)
	fmt.Printf("Pages visited: %d, modals visited: %d, pages discovered: %d\n\n",
		envelope.Stats.PagesVisited,
		envelope.Stats.ModalsVisited,
		envelope.Stats.PagesDiscovered,
	)

	if envelope.Issues.Total() == 0 {
		fmt.Println("No missing translations detected.")
		return
	}

	writeSummaryTable(os.Stdout, envelope.Issues)
}

// writeSummaryTable renders the per-page issue counts as a console table.
func writeSummaryTable(w io.Writer, issues schemas.Results) {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{PerColumn: []tw.Align{tw.AlignLeft, tw.AlignCenter}},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{Borders: tw.BorderNone}),
	)
	table.Header("Page", "Issues")

	pages := make([]string, 0, len(issues))
	for page := range issues {
		pages = append(pages, page)
	}
	sort.Strings(pages)

	total := 0
	for _, page := range pages {
		count := issues.PageTotal(page)
		_ = table.Append(page, strconv.Itoa(count))
		total += count
	}
	table.Footer("Total", strconv.Itoa(total))
	_ = table.Render()
}
