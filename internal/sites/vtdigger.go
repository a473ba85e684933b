package sites

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"newsarchive/internal/dateparse"
	"newsarchive/internal/extract"
	"newsarchive/internal/types"
)

const vtdiggerBase = "https://vtdigger.org"

var vtdiggerFilter = extract.ParagraphFilter{
	HardStops: []string{
		"have something to say? submit a commentary here",
		"vermont's newsletter",
		"request a correction",
	},
	Skip: []string{"reader donations"},
	SkipExact: []string{
		"vtdigger",
		"news in pursuit of truth",
	},
}

// Content types that are never local news.
var vtdiggerBlockedContent = []string{
	"young writers project",
	"giving tuesday",
}

type vtdiggerScraper struct {
	env Env
	log *slog.Logger
}

func init() {
	Register("vtdigger", func(env Env) Scraper {
		return &vtdiggerScraper{env: env, log: env.Logger.With("site", "vtdigger")}
	})
}

func (s *vtdiggerScraper) Slug() string { return "vtdigger" }

func (s *vtdiggerScraper) Scrape(ctx context.Context, target time.Time) ([]*types.Article, error) {
	s.log.Info("fetching urls", "date", types.ISODate(target))
	body, err := s.env.Client.Get(ctx, vtdiggerBase)
	if err != nil {
		return nil, err
	}
	doc, err := extract.Document(body)
	if err != nil {
		return nil, &types.ParseError{URL: vtdiggerBase, Err: err}
	}

	// VTDigger encodes the publication date in the URL path, so candidates
	// can be filtered to the target date before any article fetch.
	urls := links(doc, vtdiggerBase, func(href string) bool {
		d, ok := dateparse.FromURLPath(href)
		return ok && types.SameDay(d, target)
	})
	if max := s.env.Client.MaxCandidates(); len(urls) > max {
		urls = urls[:max]
	}
	s.log.Info("matching urls found", "count", len(urls))

	var out []*types.Article
	for i, u := range urls {
		s.log.Info("scraping article", "n", i+1, "total", len(urls), "url", u)
		art, err := s.article(ctx, u, target)
		if err != nil {
			s.log.Error("failed to scrape article", "url", u, "error", err)
			continue
		}
		if art != nil && art.HasBody() && types.SameDay(art.Published, target) {
			out = append(out, art)
		}
		politeSleep(ctx, s.env.Client.Delay())
	}
	return out, nil
}

// article fetches and parses one story page. Returns (nil, nil) for
// placeholder pages, promotional pieces, commentary, obituaries, and blocked
// content types.
func (s *vtdiggerScraper) article(ctx context.Context, url string, fallback time.Time) (*types.Article, error) {
	body, err := s.env.Client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := extract.Document(body)
	if err != nil {
		return nil, &types.ParseError{URL: url, Err: err}
	}

	title := extract.FirstHeading(doc)
	if title == "" {
		title = "Untitled"
	}

	cleaned := strings.ToLower(strings.TrimSpace(title))
	if cleaned == "vtdigger" || cleaned == "vtdiggers" {
		s.log.Info("skipping placeholder title", "title", title)
		return nil, nil
	}
	if strings.Contains(cleaned, "vtdigger announces") || strings.Contains(cleaned, "giving tuesday") {
		s.log.Info("skipping promotional title", "title", title)
		return nil, nil
	}

	published, ok := dateparse.FromURLPath(url)
	if !ok {
		published, ok = dateparse.FindInText(extract.PageText(doc))
	}
	if !ok {
		published = fallback
	}

	paragraphs := extract.Paragraphs(doc, vtdiggerFilter)

	if len(paragraphs) > 0 {
		first := paragraphs[0]
		if strings.Contains(strings.ToLower(first), "commentaries are opinion pieces contributed by readers and newsmakers") {
			s.log.Info("skipping commentary piece", "title", title)
			return nil, nil
		}
		// Obituaries open with "Born <date> ...".
		if strings.HasPrefix(first, "Born") {
			s.log.Info("skipping obituary", "title", title)
			return nil, nil
		}
	}
	for _, p := range paragraphs {
		if containsAny(strings.ToLower(p), vtdiggerBlockedContent) {
			s.log.Info("skipping blocked content type", "title", title)
			return nil, nil
		}
	}

	art := types.NewArticle(url, title, published)
	art.Paragraphs = paragraphs
	return art, nil
}
