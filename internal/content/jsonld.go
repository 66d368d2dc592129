package content

import (
	"encoding/json"
	"strings"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// JobPosting holds the schema.org JobPosting fields we care about.
type JobPosting struct {
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

const jsonLDXPath = `//script[@type="application/ld+json"]`

// FindJobPosting returns the first JobPosting declared in the page's JSON-LD
// blocks. It must run before Sanitize, which drops scripts.
func FindJobPosting(root *html.Node) (JobPosting, bool) {
	for _, n := range htmlquery.Find(root, jsonLDXPath) {
		if job, ok := parseJobPosting(htmlquery.InnerText(n)); ok {
			return job, true
		}
	}
	return JobPosting{}, false
}

func parseJobPosting(raw string) (JobPosting, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return JobPosting{}, false
	}
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return JobPosting{}, false
	}
	return findJobPosting(payload)
}

func findJobPosting(payload any) (JobPosting, bool) {
	switch t := payload.(type) {
	case map[string]any:
		if isJobPostingType(t["@type"]) {
			job := JobPosting{
				Title:       stringField(t["title"]),
				Company:     orgName(t["hiringOrganization"]),
				Location:    parseLocation(t["jobLocation"]),
				Description: StripHTML(stringField(t["description"])),
			}
			if job.Title != "" || job.Description != "" {
				return job, true
			}
		}
		if graph, ok := t["@graph"].([]any); ok {
			return findJobPosting(graph)
		}
	case []any:
		for _, item := range t {
			if job, ok := findJobPosting(item); ok {
				return job, true
			}
		}
	}
	return JobPosting{}, false
}

func isJobPostingType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "JobPosting"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "JobPosting" {
				return true
			}
		}
	}
	return false
}

func stringField(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		if val, ok := t["@value"].(string); ok {
			return strings.TrimSpace(val)
		}
	}
	return ""
}

func orgName(v any) string {
	if name := stringField(v); name != "" {
		return name
	}
	if org, ok := v.(map[string]any); ok {
		return stringField(org["name"])
	}
	return ""
}

func parseLocation(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		for _, item := range t {
			if loc := parseLocation(item); loc != "" {
				return loc
			}
		}
	case map[string]any:
		if addr, ok := t["address"].(map[string]any); ok {
			return joinParts(
				stringField(addr["addressLocality"]),
				stringField(addr["addressRegion"]),
				stringField(addr["addressCountry"]),
			)
		}
		if name := stringField(t["name"]); name != "" {
			return name
		}
	}
	return ""
}

func joinParts(parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
