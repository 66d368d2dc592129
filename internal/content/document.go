package content

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/kennygrant/sanitize"
	"golang.org/x/net/html"
)

// NoiseSelector lists the elements that never carry posting content.
const NoiseSelector = "script, style, nav, header, footer, iframe, noscript"

var blockElements = map[string]struct{}{
	"address": {}, "article": {}, "aside": {}, "blockquote": {}, "br": {},
	"dd": {}, "div": {}, "dl": {}, "dt": {}, "h1": {}, "h2": {}, "h3": {},
	"h4": {}, "h5": {}, "h6": {}, "hr": {}, "li": {}, "main": {}, "ol": {},
	"p": {}, "pre": {}, "section": {}, "table": {}, "td": {}, "th": {},
	"tr": {}, "ul": {},
}

// Parse builds a queryable document from an HTML string.
func Parse(src string) (*goquery.Document, error) {
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// Sanitize removes NoiseSelector elements in place. Running it twice leaves
// the document unchanged.
func Sanitize(doc *goquery.Document) {
	doc.Find(NoiseSelector).Remove()
}

// BodyText returns the whitespace-collapsed text of the document body.
func BodyText(doc *goquery.Document) string {
	return Text(doc.Find("body"))
}

// Text returns the whitespace-collapsed text of every node in sel, with block
// boundaries turned into spaces.
func Text(sel *goquery.Selection) string {
	var sb strings.Builder
	for _, n := range sel.Nodes {
		sb.WriteString(ExtractText(n))
		sb.WriteByte(' ')
	}
	return CleanText(sb.String())
}

// ExtractText concatenates the text nodes below n.
func ExtractText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	_, block := blockElements[n.Data]
	if n.Type == html.ElementNode && block {
		sb.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(ExtractText(c))
	}
	if n.Type == html.ElementNode && block {
		sb.WriteByte(' ')
	}
	return sb.String()
}

// CleanText collapses runs of whitespace to a single space and trims.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripHTML turns user-pasted markup into plain collapsed text.
func StripHTML(s string) string {
	return CleanText(html.UnescapeString(sanitize.HTML(s)))
}

// PlainLines strips markup like StripHTML but keeps one line per
// non-empty input line.
func PlainLines(s string) string {
	// sanitize.HTML folds newlines, so strip each line on its own.
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if line = StripHTML(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// CharCount counts characters as Unicode code points.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate keeps the first max characters of s.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
