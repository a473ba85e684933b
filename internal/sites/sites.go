// Package sites holds one scraper per news source. Each scraper shares the
// same contract — given a target date, return the articles published on that
// date — but the internals differ per site: some carry the date in the URL
// path, some only in the page text, and two speak the BLOX CMS JSON API.
package sites

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newsarchive/internal/fetcher"
	"newsarchive/internal/types"
)

// Scraper discovers and extracts the articles a site published on a date.
//
// Scrape never returns an error for expected per-article failures (bad
// candidate URL, missing title, filtered content); those are skipped. It
// errors only when the site-level run cannot proceed, e.g. the listing page
// itself is unreachable. Every returned article has Published equal to the
// target date and at least one paragraph.
type Scraper interface {
	Slug() string
	Scrape(ctx context.Context, target time.Time) ([]*types.Article, error)
}

// Env carries the shared dependencies a scraper is built with.
type Env struct {
	Client *fetcher.Client
	Logger *slog.Logger

	// Cookies maps site slug to an externally supplied session cookie.
	// Only the BLOX CMS sites consult it.
	Cookies map[string]string
}

// Factory builds a scraper from its environment.
type Factory func(env Env) Scraper

var registry = map[string]Factory{}

// Register adds a scraper factory under its slug. Called from init.
func Register(slug string, f Factory) {
	registry[strings.ToLower(slug)] = f
}

// New builds the scraper registered under slug.
func New(slug string, env Env) (Scraper, bool) {
	f, ok := registry[strings.ToLower(slug)]
	if !ok {
		return nil, false
	}
	return f(env), true
}

// Registered reports whether a scraper exists for slug.
func Registered(slug string) bool {
	_, ok := registry[strings.ToLower(slug)]
	return ok
}

// Slugs returns all registered slugs, sorted.
func Slugs() []string {
	out := make([]string, 0, len(registry))
	for slug := range registry {
		out = append(out, slug)
	}
	sort.Strings(out)
	return out
}

// links collects unique anchor targets from a listing page, normalizing
// relative hrefs against base and keeping only same-origin URLs that pass
// the keep filter.
func links(doc *goquery.Document, base string, keep func(href string) bool) []string {
	seen := make(map[string]bool)
	var out []string

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if href == "" {
			return
		}
		if strings.HasPrefix(href, "/") {
			href = base + href
		}
		if !strings.HasPrefix(href, base) {
			return
		}
		if seen[href] {
			return
		}
		if keep != nil && !keep(href) {
			return
		}
		seen[href] = true
		out = append(out, href)
	})

	return out
}

// politeSleep waits the politeness delay between candidate fetches, bailing
// early if the context is cancelled.
func politeSleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
