package scraper

// Greenhouse handles both the classic boards.greenhouse.io layout and the
// newer job-boards markup.
func Greenhouse() Strategy {
	return selectorStrategy{
		name: "greenhouse",
		fields: fieldSelectors{
			title: []candidate{
				text(".app-title"),
				text(".job__title h1"),
				text("h1.section-header"),
			},
			company: []candidate{
				text(".company-name"),
				text(".job__company-name"),
				attr(".logo img", "alt"),
			},
			description: []candidate{
				text("#content"),
				text(".job__description"),
				text(".job-post-content"),
			},
			location: []candidate{
				text(".location"),
				text(".job__location"),
			},
		},
	}
}
