package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var (
	// separatorRe splits "Role at Company" / "Role - Company" / "Role | Company".
	separatorRe = regexp.MustCompile(`(?i)^(.{2,80}?)\s+(?:at|[-–—|@])\s+(.{2,60})$`)
	emailRe     = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	skillsRe    = regexp.MustCompile(`(?im)^\s*skills\s*[:\-]\s*(.+)$`)
)

// MockClient answers deterministically without any network access. It is
// used when no provider key is configured.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) ExtractJobInfo(ctx context.Context, text string) (JobInfo, error) {
	first := firstLine(text)
	if match := separatorRe.FindStringSubmatch(first); match != nil {
		return JobInfo{Title: strings.TrimSpace(match[1]), Company: strings.TrimSpace(match[2])}, nil
	}
	return JobInfo{Title: truncateWords(first, 8)}, nil
}

func (m *MockClient) ScoreFit(ctx context.Context, resume ResumeData, job JobPosting) (FitReport, error) {
	desc := strings.ToLower(job.Title + " " + job.Description)
	var matched, missing []string
	for _, skill := range resume.Skills {
		s := strings.TrimSpace(skill)
		if s == "" {
			continue
		}
		if strings.Contains(desc, strings.ToLower(s)) {
			matched = append(matched, s)
		} else {
			missing = append(missing, s)
		}
	}

	score := 50
	if total := len(matched) + len(missing); total > 0 {
		score = 40 + 60*len(matched)/total
	}
	report := FitReport{
		Score:     score,
		Summary:   fmt.Sprintf("%d of %d listed skills appear in the posting.", len(matched), len(matched)+len(missing)),
		Strengths: limit(matched, 5),
		Gaps:      []string{},
	}
	if len(matched) == 0 {
		report.Gaps = append(report.Gaps, "None of the listed skills are mentioned in the posting")
	}
	return report, nil
}

func (m *MockClient) GenerateDocuments(ctx context.Context, resume ResumeData, job JobPosting, opts DocumentOptions) (Documents, error) {
	var docs Documents
	if opts.Resume {
		docs.TailoredResume = fmt.Sprintf("# %s\n\n%s\n\nTarget role: %s\n\n%s", resume.Name, resume.Headline, job.Title, resume.Render())
	}
	if opts.CoverLetter {
		company := job.Company
		if company == "" {
			company = "your team"
		}
		docs.CoverLetter = fmt.Sprintf("Dear Hiring Manager,\n\nI am excited to apply for the %s role at %s. %s\n\nSincerely,\n%s",
			job.Title, company, resume.Summary, resume.Name)
	}
	return docs, nil
}

func (m *MockClient) ParseResume(ctx context.Context, text string) (ResumeData, error) {
	data := ResumeData{Name: firstLine(text)}
	if email := emailRe.FindString(text); email != "" {
		data.Email = email
	}
	if match := skillsRe.FindStringSubmatch(text); match != nil {
		for _, s := range strings.Split(match[1], ",") {
			if s = strings.TrimSpace(s); s != "" {
				data.Skills = append(data.Skills, s)
			}
		}
	}
	return data, nil
}

func (m *MockClient) Chat(ctx context.Context, req ChatRequest) (string, error) {
	name := req.OwnerName
	if name == "" {
		name = req.Resume.Name
	}
	reply := fmt.Sprintf("Thanks for your interest in %s.", name)
	if req.Resume.Headline != "" {
		reply += " " + req.Resume.Headline + "."
	}
	if len(req.Resume.Skills) > 0 {
		reply += " Key skills: " + strings.Join(limit(req.Resume.Skills, 5), ", ") + "."
	}
	return reply, nil
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

func truncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

func limit(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
