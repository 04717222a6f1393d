package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChaseHampton/graver/internal/db"
	"github.com/ChaseHampton/graver/internal/export"
	"github.com/ChaseHampton/graver/internal/memorial"
	"github.com/ChaseHampton/graver/internal/processor"
)

func newScrapeURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape-url URL",
		Short: "Scrape a specific memorial URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			_, u := memorial.NormalizeURL(args[0], app.Config.Site.BaseURL)
			if !memorial.IsMemorialURL(u) {
				return fmt.Errorf("invalid or non-memorial URL: [%s]", args[0])
			}

			store, err := app.Store(cmd.Context())
			if err != nil {
				return err
			}
			p := processor.NewProcessor(app.Memorials, store, nil, app.Config.Site.BaseURL, app.Config.Scrape, app.Logger)
			m, err := p.ScrapeURL(cmd.Context(), u)
			if err != nil {
				return err
			}
			return export.WriteJSON(cmd.OutOrStdout(), m)
		},
	}
}

func newScrapeFileCmd() *cobra.Command {
	var (
		skipExisting bool
		format       string
	)

	cmd := &cobra.Command{
		Use:   "scrape-file FILE",
		Short: "Scrape memorial URLs listed in a file, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			app, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			lines, err := readLines(args[0])
			if err != nil {
				return err
			}
			app.Logger.Debug("read input file", zap.String("file", args[0]), zap.Int("lines", len(lines)))

			store, err := app.Store(cmd.Context())
			if err != nil {
				return err
			}
			cache := db.NewMemorialCache()
			if skipExisting {
				if _, err := cache.LoadFromStore(cmd.Context(), store); err != nil {
					return err
				}
				app.Logger.Info("skipping stored memorials", zap.Int("count", cache.Size()))
			}

			p := processor.NewProcessor(app.Memorials, store, cache, app.Config.Site.BaseURL, app.Config.Scrape, app.Logger)
			report := p.ProcessURLs(cmd.Context(), lines)

			logReport(app.Logger, report)
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			return writeMemorials(cmd.OutOrStdout(), format, report.Memorials)
		},
	}

	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "skip memorials already in the database")
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json or csv")
	return cmd
}

func logReport(logger *zap.Logger, report processor.Report) {
	logger.Info("successfully scraped",
		zap.Int("succeeded", report.Succeeded),
		zap.Int("total", report.Total),
		zap.Int("skipped", report.Skipped),
	)
	if len(report.Failed) > 0 {
		logger.Warn("failed URLs", zap.Strings("urls", report.Failed))
	}
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	return lines, nil
}
