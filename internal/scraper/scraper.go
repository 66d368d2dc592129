package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/baxromumarov/upfolio/internal/content"
	"github.com/baxromumarov/upfolio/internal/httpx"
	"github.com/baxromumarov/upfolio/internal/observability"
	"github.com/baxromumarov/upfolio/internal/urlutil"
)

type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*httpx.Page, error)
}

// redirectGuard is implemented by fetchers that can refuse redirects to
// blocked hosts.
type redirectGuard interface {
	GuardRedirects(blocked *urlutil.HostMatcher)
}

// Scraper turns a job URL into a ScrapedJob: validate, fetch, parse,
// sanitize, then run the cascade. It keeps no state between calls.
type Scraper struct {
	fetcher PageFetcher
	cascade *Cascade
	blocked *urlutil.HostMatcher
	logger  *slog.Logger
}

func New(fetcher PageFetcher, extractor JobInfoExtractor, blocked *urlutil.HostMatcher, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.Default()
	}
	if g, ok := fetcher.(redirectGuard); ok {
		g.GuardRedirects(blocked)
	}
	return &Scraper{
		fetcher: fetcher,
		cascade: NewCascade(DefaultStrategies(), NewAIFallback(extractor), logger),
		blocked: blocked,
		logger:  logger,
	}
}

func (s *Scraper) Scrape(ctx context.Context, rawURL string) (Result, error) {
	start := time.Now()
	observability.IncScrape()

	res, err := s.scrape(ctx, rawURL)
	observability.ObserveScrapeDuration(time.Since(start).Seconds())
	if err != nil {
		kind := observability.ClassifyScrapeError(err)
		observability.IncError(kind, "scraper")
		s.logger.Warn("scrape failed", "url", rawURL, "error_type", kind, "error", err)
		return Result{}, err
	}

	observability.IncStrategyWin(res.Method)
	if res.Method == MethodAI {
		observability.IncAIFallback()
	}
	return res, nil
}

func (s *Scraper) scrape(ctx context.Context, rawURL string) (Result, error) {
	target, err := s.blocked.CheckURL(rawURL)
	if err != nil {
		return Result{}, err
	}

	page, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		return Result{}, err
	}

	doc, err := content.Parse(page.HTML)
	if err != nil {
		return Result{}, &ExtractionFailedError{URL: target, Cause: fmt.Errorf("parse page: %w", err)}
	}
	// JSON-LD lives in <script>, which Sanitize removes.
	posting, _ := content.FindJobPosting(doc.Nodes[0])
	content.Sanitize(doc)

	return s.cascade.RunWithPosting(ctx, doc, target, posting)
}
