package scraper

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/baxromumarov/upfolio/internal/content"
)

const (
	// MinDescriptionChars is the length a description must exceed for a
	// strategy's result to be accepted.
	MinDescriptionChars = 50

	// GenericContentMinChars is the length a content block must exceed before
	// the generic strategy prefers it over the whole body.
	GenericContentMinChars = 200

	// MinBodyTextChars is the shortest sanitized body text handed to AI.
	MinBodyTextChars = 100

	// AIInputMaxChars caps the text sent to the AI extractor.
	AIInputMaxChars = 8000
)

// ScrapedJob is the normalized result of extracting a posting from a page.
type ScrapedJob struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
	Location    string `json:"location,omitempty"`
}

// Accepted reports whether a strategy produced a usable posting.
func (j ScrapedJob) Accepted() bool {
	return j.Title != "" && j.Description != "" && content.CharCount(j.Description) > MinDescriptionChars
}

// Strategy extracts a posting from an already sanitized document. Missing
// fields come back empty; a strategy never fails.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document, sourceURL string) ScrapedJob
}

// DefaultStrategies returns the strategies in cascade order.
func DefaultStrategies() []Strategy {
	return []Strategy{
		LinkedIn(),
		Indeed(),
		Greenhouse(),
		Lever(),
		Workday(),
		Generic(),
	}
}
