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

const (
	mykeenenowBase    = "https://mykeenenow.com"
	mykeenenowListing = mykeenenowBase + "/news/"
)

var mykeenenowFilter = extract.ParagraphFilter{
	SkipAll: [][]string{
		{"story ©", "saga communications"},
	},
}

type mykeenenowScraper struct {
	env     Env
	log     *slog.Logger
	base    string
	listing string
}

func init() {
	Register("mykeenenow", func(env Env) Scraper {
		return &mykeenenowScraper{
			env:     env,
			log:     env.Logger.With("site", "mykeenenow"),
			base:    mykeenenowBase,
			listing: mykeenenowListing,
		}
	})
}

func (s *mykeenenowScraper) Slug() string { return "mykeenenow" }

func (s *mykeenenowScraper) Scrape(ctx context.Context, target time.Time) ([]*types.Article, error) {
	s.log.Info("fetching urls (slow scan)", "date", types.ISODate(target))
	urls, err := s.urlsForDate(ctx, target)
	if err != nil {
		return nil, err
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
	}
	return out, nil
}

// urlsForDate fetches recent candidates and checks them one by one for the
// target date. The URLs carry no date, so this is the slow path: every
// candidate costs a fetch, bounded by the candidate cap.
func (s *mykeenenowScraper) urlsForDate(ctx context.Context, target time.Time) ([]string, error) {
	body, err := s.env.Client.Get(ctx, s.listing)
	if err != nil {
		return nil, err
	}
	doc, err := extract.Document(body)
	if err != nil {
		return nil, &types.ParseError{URL: s.listing, Err: err}
	}

	candidates := links(doc, s.base, func(href string) bool {
		return strings.Contains(href, "/news/")
	})

	var valid []string
	for i, u := range candidates {
		if len(valid) >= s.env.Client.MaxCandidates() {
			break
		}
		s.log.Info("date check", "n", i+1, "total", len(candidates), "url", u)

		pageBody, err := s.env.Client.Get(ctx, u)
		if err != nil {
			s.log.Warn("failed to check date", "url", u, "error", err)
			continue
		}
		pageDoc, err := extract.Document(pageBody)
		if err != nil {
			s.log.Warn("failed to parse candidate", "url", u, "error", err)
			continue
		}
		if d, ok := dateparse.FindInText(extract.PageText(pageDoc)); ok && types.SameDay(d, target) {
			valid = append(valid, u)
		}
		politeSleep(ctx, s.env.Client.Delay())
	}
	return valid, nil
}

// article fetches and parses one story page. The date check already fetched
// this URL once; refetching here keeps the two phases independent at the
// cost of one extra request per accepted story.
func (s *mykeenenowScraper) article(ctx context.Context, url string, fallback time.Time) (*types.Article, error) {
	body, err := s.env.Client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := extract.Document(body)
	if err != nil {
		return nil, &types.ParseError{URL: url, Err: err}
	}

	title := extract.FirstHeading(doc)

	published, ok := dateparse.FindInText(extract.PageText(doc))
	if !ok {
		published = fallback
	}

	art := types.NewArticle(url, title, published)
	art.Paragraphs = extract.Paragraphs(doc, mykeenenowFilter)
	return art, nil
}
