package scraper

import (
	"context"
	"log/slog"

	"github.com/PuerkitoBio/goquery"

	"github.com/baxromumarov/upfolio/internal/content"
)

// MethodAI names the AI fallback in Result.Method.
const MethodAI = "ai"

// Result is an accepted posting and the method that produced it.
type Result struct {
	Job    ScrapedJob `json:"job"`
	Method string     `json:"method"`
	URL    string     `json:"url,omitempty"`
}

// Cascade runs strategies in order and stops at the first accepted result.
type Cascade struct {
	strategies []Strategy
	fallback   *AIFallback
	logger     *slog.Logger
}

func NewCascade(strategies []Strategy, fallback *AIFallback, logger *slog.Logger) *Cascade {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cascade{strategies: strategies, fallback: fallback, logger: logger}
}

// postingAware is implemented by strategies that can use the JobPosting
// read from the page's JSON-LD before scripts were stripped.
type postingAware interface {
	ExtractWithPosting(doc *goquery.Document, sourceURL string, posting content.JobPosting) ScrapedJob
}

// Run expects doc to be sanitized already.
func (c *Cascade) Run(ctx context.Context, doc *goquery.Document, sourceURL string) (Result, error) {
	return c.RunWithPosting(ctx, doc, sourceURL, content.JobPosting{})
}

// RunWithPosting is Run with the page's JSON-LD JobPosting, if it had one.
func (c *Cascade) RunWithPosting(ctx context.Context, doc *goquery.Document, sourceURL string, posting content.JobPosting) (Result, error) {
	for _, s := range c.strategies {
		var job ScrapedJob
		if pa, ok := s.(postingAware); ok {
			job = pa.ExtractWithPosting(doc, sourceURL, posting)
		} else {
			job = s.Extract(doc, sourceURL)
		}
		if job.Accepted() {
			c.logger.Info("job extracted", "url", sourceURL, "strategy", s.Name())
			return Result{Job: job, Method: s.Name(), URL: sourceURL}, nil
		}
		c.logger.Debug("strategy rejected", "url", sourceURL, "strategy", s.Name(),
			"has_title", job.Title != "", "description_chars", content.CharCount(job.Description))
	}

	c.logger.Warn("no strategy matched, falling back to ai", "url", sourceURL)
	job, err := c.fallback.Extract(ctx, content.BodyText(doc))
	if err != nil {
		return Result{}, &ExtractionFailedError{URL: sourceURL, Cause: err}
	}
	return Result{Job: job, Method: MethodAI, URL: sourceURL}, nil
}
