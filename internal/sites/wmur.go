package sites

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"newsarchive/internal/dateparse"
	"newsarchive/internal/extract"
	"newsarchive/internal/types"
)

const (
	wmurBase    = "https://www.wmur.com"
	wmurListing = wmurBase + "/local-news"
)

// URL fragments that mark recurring non-news segments.
var wmurNonNewsKeywords = []string{
	"grow-it-green",
	"nh-chronicle",
	"forecast",
	"hour-by-hour",
}

// Trailing site branding, e.g. " - WMUR New Hampshire".
var wmurTitleSuffix = regexp.MustCompile(`(?i)\s*[-|]\s*WMUR.*$`)

var wmurFilter = extract.ParagraphFilter{
	HardStops: []string{
		"subscribe to wmur's youtube channel",
		"hearst television participates",
	},
	SkipAll: [][]string{
		{"download the free wmur app", "wmur"},
		{"get the wmur app", "wmur"},
		{"copyright", "wmur"},
	},
}

type wmurScraper struct {
	env Env
	log *slog.Logger
}

func init() {
	Register("wmur", func(env Env) Scraper {
		return &wmurScraper{env: env, log: env.Logger.With("site", "wmur")}
	})
}

func (s *wmurScraper) Slug() string { return "wmur" }

func (s *wmurScraper) Scrape(ctx context.Context, target time.Time) ([]*types.Article, error) {
	s.log.Info("fetching candidate urls", "listing", wmurListing)
	body, err := s.env.Client.Get(ctx, wmurListing)
	if err != nil {
		return nil, err
	}
	doc, err := extract.Document(body)
	if err != nil {
		return nil, &types.ParseError{URL: wmurListing, Err: err}
	}

	candidates := s.candidates(doc)
	s.log.Info("candidates found", "count", len(candidates))

	var out []*types.Article
	for i, u := range candidates {
		s.log.Info("checking candidate", "n", i+1, "total", len(candidates), "url", u)
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

// candidates returns article URLs from the local-news listing. Anchors
// before the "Local News" section heading are chrome, not stories, so when
// the heading is present only anchors after it (in document order) count.
func (s *wmurScraper) candidates(doc *goquery.Document) []string {
	var heading *html.Node
	doc.Find("h1, h2").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(extract.Collapse(sel.Text())), "local news") {
			heading = sel.Get(0)
			return false
		}
		return true
	})

	var anchors []*html.Node
	if heading != nil {
		anchors, _ = htmlquery.QueryAll(heading, "following::a[@href]")
	} else if root := doc.Get(0); root != nil {
		anchors, _ = htmlquery.QueryAll(root, "//a[@href]")
	}

	seen := make(map[string]bool)
	var urls []string
	for _, a := range anchors {
		href := strings.TrimSpace(htmlquery.SelectAttr(a, "href"))
		if href == "" {
			continue
		}
		if strings.HasPrefix(href, "/") {
			href = wmurBase + href
		}
		if !strings.HasPrefix(href, wmurBase) || !strings.Contains(href, "/article/") {
			continue
		}
		lowered := strings.ToLower(href)
		if containsAny(lowered, wmurNonNewsKeywords) {
			continue
		}
		if seen[href] {
			continue
		}
		seen[href] = true
		urls = append(urls, href)
		if len(urls) >= s.env.Client.MaxCandidates() {
			break
		}
	}
	return urls
}

// article fetches and parses one story page. Returns (nil, nil) when the
// page is a promotional or internal piece.
func (s *wmurScraper) article(ctx context.Context, url string, fallback time.Time) (*types.Article, error) {
	body, err := s.env.Client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := extract.Document(body)
	if err != nil {
		return nil, &types.ParseError{URL: url, Err: err}
	}

	title := s.title(doc)

	// Catches "Help WMUR recognize...", "Hearst Television News...", etc.
	lowered := strings.ToLower(title)
	if strings.Contains(lowered, "wmur") || strings.Contains(lowered, "hearst television news") {
		s.log.Info("skipping promotional title", "title", title)
		return nil, nil
	}

	published, ok := dateparse.FindInText(extract.PageText(doc))
	if !ok {
		published = fallback
	}

	art := types.NewArticle(url, title, published)
	art.Paragraphs = extract.Paragraphs(doc, wmurFilter)
	return art, nil
}

// title resolves the headline: Open Graph, then Twitter card, then first h1.
func (s *wmurScraper) title(doc *goquery.Document) string {
	title := extract.MetaContent(doc, "//meta[@property='og:title']")
	if title == "" {
		title = extract.MetaContent(doc, "//meta[@name='twitter:title']")
	}
	if title == "" {
		title = extract.FirstHeading(doc)
	}
	if title == "" {
		return "Untitled"
	}
	return strings.TrimSpace(wmurTitleSuffix.ReplaceAllString(title, ""))
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
