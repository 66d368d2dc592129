package scraper

func Indeed() Strategy {
	return selectorStrategy{
		name: "indeed",
		fields: fieldSelectors{
			title: []candidate{
				text("h1.jobsearch-JobInfoHeader-title"),
				text(`[data-testid="jobsearch-JobInfoHeader-title"]`),
				text(`[data-testid="simpler-jobTitle"]`),
			},
			company: []candidate{
				text(`[data-testid="inlineHeader-companyName"]`),
				text(`[data-company-name="true"]`),
				text(".jobsearch-CompanyInfoContainer a"),
			},
			description: []candidate{
				text("#jobDescriptionText"),
				text(".jobsearch-jobDescriptionText"),
				text(`[data-testid="jobDescriptionText"]`),
			},
			location: []candidate{
				text(`[data-testid="inlineHeader-companyLocation"]`),
				text(`[data-testid="job-location"]`),
				text(".jobsearch-JobInfoHeader-subtitle > div:last-child"),
			},
		},
	}
}
