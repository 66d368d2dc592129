package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/baxromumarov/upfolio/internal/urlutil"
)

type workdayStrategy struct {
	selectorStrategy
}

// Workday pages rarely name the employer, so the company falls back to the
// tenant in the host (acme.wd5.myworkdayjobs.com -> Acme).
func Workday() Strategy {
	return workdayStrategy{selectorStrategy{
		name: "workday",
		fields: fieldSelectors{
			title: []candidate{
				text(`[data-automation-id="jobPostingHeader"]`),
				text(`[data-automation-id="jobTitle"]`),
			},
			company: []candidate{
				text(`[data-automation-id="company"]`),
				attr(`meta[property="og:site_name"]`, "content"),
			},
			description: []candidate{
				text(`[data-automation-id="jobPostingDescription"]`),
				text(`[data-automation-id="job-posting-details"]`),
			},
			location: []candidate{
				text(`[data-automation-id="locations"] dd`),
				text(`[data-automation-id="locations"]`),
				text(`[data-automation-id="location"]`),
			},
		},
	}}
}

func (w workdayStrategy) Extract(doc *goquery.Document, sourceURL string) ScrapedJob {
	job := w.selectorStrategy.Extract(doc, sourceURL)
	if job.Company == "" {
		job.Company = tenantCompany(sourceURL)
	}
	return job
}

func tenantCompany(sourceURL string) string {
	tenant := urlutil.WorkdayTenant(urlutil.Host(sourceURL))
	if tenant == "" {
		return ""
	}
	tenant = strings.NewReplacer("-", " ", "_", " ").Replace(tenant)
	return cases.Title(language.Und).String(tenant)
}
