package sites

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"newsarchive/internal/dateparse"
	"newsarchive/internal/extract"
	"newsarchive/internal/types"
)

const (
	wcaxBase    = "https://www.wcax.com"
	wcaxListing = wcaxBase + "/news/"
)

// Category substrings that count as local coverage. Broad on purpose: a
// narrow list was skipping valid local stories filed under e.g. "Crime".
var wcaxLocalCategories = []string{
	"vermont", "new hampshire", "local", "vt", "nh",
	"news", "crime", "education", "health", "politics", "business",
}

var wcaxExcludeTitles = []string{
	"programming note",
	"this day in history",
	"history",
}

var wcaxFilter = extract.ParagraphFilter{
	SkipAll: [][]string{
		{"copyright", "wcax"},
	},
}

type wcaxScraper struct {
	env Env
	log *slog.Logger
}

func init() {
	Register("wcax", func(env Env) Scraper {
		return &wcaxScraper{env: env, log: env.Logger.With("site", "wcax")}
	})
}

func (s *wcaxScraper) Slug() string { return "wcax" }

func (s *wcaxScraper) Scrape(ctx context.Context, target time.Time) ([]*types.Article, error) {
	s.log.Info("fetching urls", "date", types.ISODate(target))
	body, err := s.env.Client.Get(ctx, wcaxListing)
	if err != nil {
		return nil, err
	}
	doc, err := extract.Document(body)
	if err != nil {
		return nil, &types.ParseError{URL: wcaxListing, Err: err}
	}

	urls := links(doc, wcaxBase, func(href string) bool {
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
// excluded titles and non-local categories.
func (s *wcaxScraper) article(ctx context.Context, url string, fallback time.Time) (*types.Article, error) {
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
	if containsAny(strings.ToLower(title), wcaxExcludeTitles) {
		s.log.Info("skipping excluded title", "title", title)
		return nil, nil
	}

	if category := strings.ToLower(s.category(doc)); category != "" && !containsAny(category, wcaxLocalCategories) {
		s.log.Info("skipping non-local category", "url", url, "category", category)
		return nil, nil
	}

	published, ok := dateparse.FromURLPath(url)
	if !ok {
		published = fallback
	}

	art := types.NewArticle(url, title, published)
	art.Paragraphs = extract.Paragraphs(doc, wcaxFilter)
	return art, nil
}

// category reads the article:section meta tag, falling back to the first
// category link.
func (s *wcaxScraper) category(doc *goquery.Document) string {
	if c := extract.MetaContent(doc, "//meta[@property='article:section']"); c != "" {
		return c
	}
	var category string
	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		class, _ := sel.Attr("class")
		if strings.Contains(strings.ToLower(class), "category") {
			category = extract.Collapse(sel.Text())
			return false
		}
		return true
	})
	return category
}
