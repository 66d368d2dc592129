package scraper

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/baxromumarov/upfolio/internal/content"
)

// candidate is one place a field may live: the text of selector, or the
// value of attr on it.
type candidate struct {
	selector string
	attr     string
}

func text(selector string) candidate {
	return candidate{selector: selector}
}

func attr(selector, name string) candidate {
	return candidate{selector: selector, attr: name}
}

// firstMatch returns the first non-empty value among the candidates, trying
// them in order and each candidate's elements in document order.
func firstMatch(doc *goquery.Document, cands []candidate) string {
	for _, c := range cands {
		var found string
		doc.Find(c.selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if c.attr == "" {
				found = content.Text(s)
			} else {
				v, _ := s.Attr(c.attr)
				found = content.CleanText(v)
			}
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

type fieldSelectors struct {
	title       []candidate
	company     []candidate
	description []candidate
	location    []candidate
}

// selectorStrategy covers boards whose markup is stable enough to describe
// with selector lists alone.
type selectorStrategy struct {
	name   string
	fields fieldSelectors
}

func (s selectorStrategy) Name() string {
	return s.name
}

func (s selectorStrategy) Extract(doc *goquery.Document, _ string) ScrapedJob {
	return ScrapedJob{
		Title:       firstMatch(doc, s.fields.title),
		Company:     firstMatch(doc, s.fields.company),
		Description: firstMatch(doc, s.fields.description),
		Location:    firstMatch(doc, s.fields.location),
	}
}
