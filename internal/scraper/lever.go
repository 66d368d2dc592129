package scraper

func Lever() Strategy {
	return selectorStrategy{
		name: "lever",
		fields: fieldSelectors{
			title: []candidate{
				text(".posting-headline h2"),
				text(".posting-header h2"),
				text(`[data-qa="posting-name"]`),
			},
			company: []candidate{
				attr(".main-header-logo img", "alt"),
				text(".main-header-text"),
			},
			description: []candidate{
				text(`[data-qa="job-description"]`),
				text(".posting-page .section-wrapper .section.page-centered"),
				text(".content .section-wrapper"),
			},
			location: []candidate{
				text(".posting-categories .location"),
				text(".posting-category.location"),
				text(".sort-by-location"),
			},
		},
	}
}
