package sites

import (
	"newsarchive/internal/extract"
)

var reformerFilter = extract.ParagraphFilter{
	ShortSkip:    []string{"copyright", "subscribe", "sign up", "print", "email", "click here"},
	ShortSkipMax: 50,
}

func init() {
	Register("reformer", func(env Env) Scraper {
		return newBloxScraper(env, bloxQuery{
			slug:      "reformer",
			base:      "https://www.reformer.com",
			searchURL: "https://www.reformer.com/search/",
			referer:   "https://www.reformer.com/local-news/",
			category:  "local-news",
			limit:     50,
		}, reformerFilter)
	})
}
