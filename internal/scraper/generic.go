package scraper

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/baxromumarov/upfolio/internal/content"
)

// GenericContentSelectors lists where a posting body usually lives, most
// specific container first.
var GenericContentSelectors = []string{
	"main",
	"article",
	`[role="main"]`,
	`[class*="description"]`,
	`[id*="description"]`,
	`[class*="job-desc"]`,
	`[id*="job-desc"]`,
	`[class*="job-details"]`,
	`[class*="posting"]`,
	`[class*="content"]`,
}

type genericStrategy struct {
	fields fieldSelectors
}

// Generic works on any page: JSON-LD, headings and meta tags for the header
// fields, the first sizeable content container (or the whole body) for the
// description.
func Generic() Strategy {
	return genericStrategy{fields: fieldSelectors{
		title: []candidate{
			text("h1"),
			attr(`meta[property="og:title"]`, "content"),
			text("title"),
		},
		company: []candidate{
			attr(`meta[property="og:site_name"]`, "content"),
			text(`[itemprop="hiringOrganization"]`),
			text(`[class*="company-name"]`),
			text(`[class*="companyName"]`),
		},
		location: []candidate{
			text(`[itemprop="jobLocation"]`),
			text(`[class*="job-location"]`),
			text(`[class*="location"]`),
		},
	}}
}

func (genericStrategy) Name() string {
	return "generic"
}

func (g genericStrategy) Extract(doc *goquery.Document, sourceURL string) ScrapedJob {
	return g.ExtractWithPosting(doc, sourceURL, content.JobPosting{})
}

// ExtractWithPosting prefers the JSON-LD header fields over the page markup.
func (g genericStrategy) ExtractWithPosting(doc *goquery.Document, _ string, posting content.JobPosting) ScrapedJob {
	return ScrapedJob{
		Title:       orMatch(posting.Title, doc, g.fields.title),
		Company:     orMatch(posting.Company, doc, g.fields.company),
		Description: genericDescription(doc),
		Location:    orMatch(posting.Location, doc, g.fields.location),
	}
}

func orMatch(structured string, doc *goquery.Document, candidates []candidate) string {
	if v := content.CleanText(structured); v != "" {
		return v
	}
	return firstMatch(doc, candidates)
}

func genericDescription(doc *goquery.Document) string {
	for _, selector := range GenericContentSelectors {
		var found string
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if t := content.Text(s); content.CharCount(t) > GenericContentMinChars {
				found = t
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return content.BodyText(doc)
}
