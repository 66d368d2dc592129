package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/baxromumarov/upfolio/internal/ai"
	"github.com/baxromumarov/upfolio/internal/config"
	"github.com/baxromumarov/upfolio/internal/content"
	"github.com/baxromumarov/upfolio/internal/httpx"
	"github.com/baxromumarov/upfolio/internal/scraper"
	"github.com/baxromumarov/upfolio/internal/urlutil"
)

const previewChars = 600

var (
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).
			Padding(0, 1).
			Width(88)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
)

var scrapeJSON bool

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Extract a job posting from a URL",
	Long:  "Runs the full scraper, AI fallback included, against one URL and prints what it found.",
	Args:  cobra.ExactArgs(1),
	RunE:  runScrape,
}

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ResolveAIKey(logger)

	blocked, err := urlutil.NewHostMatcher(cfg.Scraper.BlockedHosts)
	if err != nil {
		return err
	}
	aiClient := ai.NewClient(cfg.AI.ClientConfig(), logger)
	s := scraper.New(httpx.NewPageFetcher(cfg.Scraper.UserAgent, cfg.Scraper.Timeout), aiClient, blocked, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := s.Scrape(ctx, args[0])
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), errorStyle.Render(scraper.UserMessage(err)))
		return err
	}

	if scrapeJSON {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderResult(res))
	return nil
}

func writeJSON(w io.Writer, res scraper.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func renderResult(res scraper.Result) string {
	job := res.Job
	title := job.Title
	if title == "" {
		title = "(untitled)"
	}

	lines := []string{titleStyle.Render(title)}
	for _, field := range []struct{ label, value string }{
		{"company", job.Company},
		{"location", job.Location},
		{"method", res.Method},
		{"url", res.URL},
	} {
		if field.value == "" {
			continue
		}
		lines = append(lines, labelStyle.Render(field.label+":")+" "+field.value)
	}

	desc := content.Truncate(job.Description, previewChars)
	if content.CharCount(job.Description) > previewChars {
		desc += "…"
	}
	lines = append(lines, "", desc)
	return boxStyle.Render(strings.Join(lines, "\n"))
}
