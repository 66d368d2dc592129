package content

import (
	"bytes"
	"context"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/gocolly/colly/v2"

	"github.com/baxromumarov/upfolio/internal/httpx"
)

const maxPreviewText = 500

// LinkPreview summarises a page linked from a chat message.
type LinkPreview struct {
	URL         string      `json:"url"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	SiteName    string      `json:"site_name,omitempty"`
	Text        string      `json:"text,omitempty"`
	JobPosting  *JobPosting `json:"job_posting,omitempty"`
}

// FetchPreview visits rawURL with the polite colly fetcher and collects the
// title, meta description, site name, a text sample and any JobPosting
// structured data.
func FetchPreview(ctx context.Context, fetcher *httpx.CollyFetcher, rawURL string) (LinkPreview, error) {
	preview := LinkPreview{URL: rawURL}
	if fetcher == nil {
		fetcher = httpx.NewCollyFetcher("", 0)
	}

	err := fetcher.Fetch(ctx, rawURL, func(c *colly.Collector) {
		c.OnResponse(func(r *colly.Response) {
			root, err := htmlquery.Parse(bytes.NewReader(r.Body))
			if err != nil {
				return
			}
			if job, ok := FindJobPosting(root); ok {
				job.Description = Truncate(job.Description, maxPreviewText)
				preview.JobPosting = &job
			}
		})
		c.OnHTML("title", func(e *colly.HTMLElement) {
			if preview.Title == "" {
				preview.Title = CleanText(e.Text)
			}
		})
		c.OnHTML("meta[property='og:title']", func(e *colly.HTMLElement) {
			if title := CleanText(e.Attr("content")); title != "" {
				preview.Title = title
			}
		})
		c.OnHTML("meta[name='description'], meta[property='og:description']", func(e *colly.HTMLElement) {
			if preview.Description == "" {
				preview.Description = CleanText(e.Attr("content"))
			}
		})
		c.OnHTML("meta[property='og:site_name']", func(e *colly.HTMLElement) {
			preview.SiteName = CleanText(e.Attr("content"))
		})
		c.OnHTML("body", func(e *colly.HTMLElement) {
			if preview.Text != "" {
				return
			}
			e.DOM.Find(NoiseSelector).Remove()
			preview.Text = Truncate(Text(e.DOM), maxPreviewText)
		})
	})
	if err != nil {
		return preview, err
	}
	preview.Title = strings.TrimSpace(preview.Title)
	return preview, nil
}
