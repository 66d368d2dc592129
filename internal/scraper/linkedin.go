package scraper

// LinkedIn reads public /jobs/view pages and the signed-in job details pane.
func LinkedIn() Strategy {
	return selectorStrategy{
		name: "linkedin",
		fields: fieldSelectors{
			title: []candidate{
				text(".top-card-layout__title"),
				text(".topcard__title"),
				text(".job-details-jobs-unified-top-card__job-title"),
			},
			company: []candidate{
				text(".topcard__org-name-link"),
				text(".top-card-layout__second-subline .topcard__flavor a"),
				text(".job-details-jobs-unified-top-card__company-name"),
			},
			description: []candidate{
				text(".show-more-less-html__markup"),
				text(".description__text"),
				text(".jobs-description__content"),
				text("#job-details"),
			},
			location: []candidate{
				text(".topcard__flavor--bullet"),
				text(".job-details-jobs-unified-top-card__bullet"),
				text(".job-details-jobs-unified-top-card__primary-description-container .tvm__text"),
			},
		},
	}
}
