package types

import (
	"time"
)

// Article is a single scraped news story. Articles exist only in memory
// between a site scrape and the archive write; the on-disk text file is the
// durable form.
type Article struct {
	// URL is the absolute source URL. It is the de-duplication key for the
	// manifest.
	URL string

	// Title is the extracted headline, "Untitled" when no title could be
	// resolved.
	Title string

	// Published is the resolved publication date, normalized to midnight UTC.
	// Adapters substitute the target date when the page carries no usable
	// date, so this is never zero for an article that reaches the writer.
	Published time.Time

	// Paragraphs is the article body in order, boilerplate removed. An
	// article with no paragraphs is dropped by its adapter and never
	// persisted.
	Paragraphs []string
}

// NewArticle creates an Article with the fallback title applied.
func NewArticle(url, title string, published time.Time) *Article {
	if title == "" {
		title = "Untitled"
	}
	return &Article{
		URL:       url,
		Title:     title,
		Published: Day(published),
	}
}

// HasBody reports whether the article carries at least one body paragraph.
func (a *Article) HasBody() bool {
	return len(a.Paragraphs) > 0
}

// Day truncates a time to its calendar date at midnight UTC. All date
// comparisons in the pipeline go through this normalization.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two times fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// ISODate formats a time as YYYY-MM-DD, the directory and manifest date form.
func ISODate(t time.Time) string {
	return t.Format("2006-01-02")
}
