package sites

import (
	"newsarchive/internal/extract"
)

// One-line "Subscribe"/"Print" style links in the CMS body HTML; real
// sentences mentioning these words run longer than the length bound.
var keenesentinelFilter = extract.ParagraphFilter{
	ShortSkip:    []string{"copyright", "subscribe", "sign up", "print", "email"},
	ShortSkipMax: 50,
}

func init() {
	Register("keenesentinel", func(env Env) Scraper {
		return newBloxScraper(env, bloxQuery{
			slug:      "keenesentinel",
			base:      "https://www.keenesentinel.com",
			searchURL: "https://www.keenesentinel.com/search/",
			referer:   "https://www.keenesentinel.com/news/local/",
			category:  "news/local",
			limit:     100,
		}, keenesentinelFilter)
	})
}
