// Package pipeline drives a scrape run: each requested site is scraped in
// turn, its articles saved to the archive, and the results optionally
// recorded in the run index. Sites are isolated from each other; one site
// failing never stops the rest of the run.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"newsarchive/internal/archive"
	"newsarchive/internal/config"
	"newsarchive/internal/fetcher"
	"newsarchive/internal/index"
	"newsarchive/internal/sites"
	"newsarchive/internal/types"
)

// SiteResult is the outcome of scraping one site.
type SiteResult struct {
	Slug     string
	Articles int
	Saved    []string
	Err      error
}

// Driver runs scrape jobs across the registered site scrapers.
type Driver struct {
	cfg    *config.Config
	client *fetcher.Client
	writer *archive.Writer
	idx    *index.Index // nil when indexing is disabled
	logger *slog.Logger
}

// NewDriver wires a Driver from its parts. idx may be nil.
func NewDriver(cfg *config.Config, client *fetcher.Client, writer *archive.Writer, idx *index.Index, logger *slog.Logger) *Driver {
	return &Driver{
		cfg:    cfg,
		client: client,
		writer: writer,
		idx:    idx,
		logger: logger.With("component", "pipeline"),
	}
}

// Run scrapes each slug for the target date, in order. Disabled sites are
// skipped. Every slug gets a SiteResult; a failed site carries its error and
// the run continues with the next one.
func (d *Driver) Run(ctx context.Context, slugs []string, target time.Time) []SiteResult {
	target = types.Day(target)
	results := make([]SiteResult, 0, len(slugs))

	for _, slug := range slugs {
		if err := ctx.Err(); err != nil {
			results = append(results, SiteResult{Slug: slug, Err: err})
			continue
		}
		results = append(results, d.runSite(ctx, slug, target))
	}

	var total, failed int
	for _, res := range results {
		total += res.Articles
		if res.Err != nil {
			failed++
		}
	}
	d.logger.Info("scrape run complete",
		"date", types.ISODate(target),
		"sites", len(results),
		"failed", failed,
		"articles", total)
	return results
}

func (d *Driver) runSite(ctx context.Context, slug string, target time.Time) SiteResult {
	res := SiteResult{Slug: slug}

	site := d.cfg.Site(slug)
	if !site.Enabled {
		d.logger.Info("site disabled, skipping", "site", slug)
		return res
	}

	scraper, ok := sites.New(slug, sites.Env{
		Client:  d.client,
		Logger:  d.logger,
		Cookies: d.cookies(),
	})
	if !ok {
		res.Err = fmt.Errorf("%w: %s", types.ErrUnknownSite, slug)
		return res
	}

	d.logger.Info("scraping site", "site", slug, "date", types.ISODate(target))
	articles, err := scraper.Scrape(ctx, target)
	if err != nil {
		d.logger.Error("site scrape failed", "site", slug, "error", err)
		res.Err = err
		return res
	}
	res.Articles = len(articles)

	saved, err := d.writer.Save(slug, target, articles)
	if err != nil {
		d.logger.Error("archive save failed", "site", slug, "error", err)
		res.Err = err
		return res
	}
	for _, s := range saved {
		res.Saved = append(res.Saved, s.Filename)
	}

	if err := d.idx.RecordRun(ctx, slug, target, saved); err != nil {
		// Indexing is best effort; the archive already has the stories.
		d.logger.Warn("index record failed", "site", slug, "error", err)
	}
	return res
}

func (d *Driver) cookies() map[string]string {
	cookies := make(map[string]string, len(d.cfg.Sites))
	for slug, sc := range d.cfg.Sites {
		if sc.Cookie != "" {
			cookies[slug] = sc.Cookie
		}
	}
	return cookies
}
