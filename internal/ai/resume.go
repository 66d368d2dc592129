package ai

import (
	"fmt"
	"strings"
)

// ResumeData is the structured résumé stored per version and rendered on
// public profiles.
type ResumeData struct {
	Name       string       `json:"name"`
	Headline   string       `json:"headline,omitempty"`
	Email      string       `json:"email,omitempty"`
	Location   string       `json:"location,omitempty"`
	Summary    string       `json:"summary,omitempty"`
	Skills     []string     `json:"skills,omitempty"`
	Experience []Experience `json:"experience,omitempty"`
	Education  []Education  `json:"education,omitempty"`
	Projects   []Project    `json:"projects,omitempty"`
	Links      []string     `json:"links,omitempty"`
}

type Experience struct {
	Company    string   `json:"company"`
	Role       string   `json:"role"`
	Start      string   `json:"start,omitempty"`
	End        string   `json:"end,omitempty"`
	Highlights []string `json:"highlights,omitempty"`
}

type Education struct {
	School string `json:"school"`
	Degree string `json:"degree,omitempty"`
	Year   string `json:"year,omitempty"`
}

type Project struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Render formats the résumé as plain text for prompts.
func (r ResumeData) Render() string {
	var sb strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&sb, format+"\n", args...)
	}

	line("Name: %s", r.Name)
	if r.Headline != "" {
		line("Headline: %s", r.Headline)
	}
	if r.Location != "" {
		line("Location: %s", r.Location)
	}
	if r.Summary != "" {
		line("Summary: %s", r.Summary)
	}
	if len(r.Skills) > 0 {
		line("Skills: %s", strings.Join(r.Skills, ", "))
	}
	if len(r.Experience) > 0 {
		line("Experience:")
		for _, e := range r.Experience {
			period := strings.Trim(e.Start+" - "+e.End, " -")
			line("- %s at %s (%s)", e.Role, e.Company, period)
			for _, h := range e.Highlights {
				line("  * %s", h)
			}
		}
	}
	if len(r.Projects) > 0 {
		line("Projects:")
		for _, p := range r.Projects {
			line("- %s: %s", p.Name, p.Description)
		}
	}
	if len(r.Education) > 0 {
		line("Education:")
		for _, e := range r.Education {
			line("- %s, %s %s", e.School, e.Degree, e.Year)
		}
	}
	return strings.TrimSpace(sb.String())
}
