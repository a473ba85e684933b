package sites

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"newsarchive/internal/dateparse"
	"newsarchive/internal/extract"
	"newsarchive/internal/types"
)

// bloxQuery describes one site's BLOX CMS search endpoint. The Keene
// Sentinel and the Brattleboro Reformer run the same CMS, so both adapters
// share this scraper and differ only in their query.
type bloxQuery struct {
	slug      string
	base      string
	searchURL string
	referer   string
	category  string
	limit     int
}

type bloxSearchResponse struct {
	Rows []bloxRow `json:"rows"`
}

// bloxRow is one search result. StartTime and the body fields vary in shape
// between CMS versions, so they stay raw until normalized at this boundary.
type bloxRow struct {
	Title     string          `json:"title"`
	URL       string          `json:"url"`
	StartTime json.RawMessage `json:"starttime"`
	Content   json.RawMessage `json:"content"`
	Body      json.RawMessage `json:"body"`
}

// publishedDay normalizes starttime to a calendar date. The field is either
// a plain ISO-8601 string or an object carrying the timestamp under
// iso8601, value, or iso.
func (r *bloxRow) publishedDay() (time.Time, bool) {
	raw := bytes.TrimSpace(r.StartTime)
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}, false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return dateparse.ParseISODay(s)
	}

	var obj struct {
		ISO8601 string `json:"iso8601"`
		Value   string `json:"value"`
		ISO     string `json:"iso"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return time.Time{}, false
	}
	for _, candidate := range []string{obj.ISO8601, obj.Value, obj.ISO} {
		if candidate != "" {
			return dateparse.ParseISODay(candidate)
		}
	}
	return time.Time{}, false
}

// bodyHTML normalizes the article body: the CMS reports it under content or
// body, as either a raw HTML string or a list of HTML fragments.
func (r *bloxRow) bodyHTML() string {
	for _, raw := range []json.RawMessage{r.Content, r.Body} {
		if s := fragmentHTML(raw); s != "" {
			return s
		}
	}
	return ""
}

func fragmentHTML(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var fragments []string
	if err := json.Unmarshal(raw, &fragments); err != nil {
		return ""
	}
	var buf bytes.Buffer
	for _, f := range fragments {
		buf.WriteString(f)
	}
	return buf.String()
}

type bloxScraper struct {
	env    Env
	log    *slog.Logger
	query  bloxQuery
	filter extract.ParagraphFilter
}

func newBloxScraper(env Env, q bloxQuery, filter extract.ParagraphFilter) *bloxScraper {
	return &bloxScraper{
		env:    env,
		log:    env.Logger.With("site", q.slug),
		query:  q,
		filter: filter,
	}
}

func (s *bloxScraper) Slug() string { return s.query.slug }

func (s *bloxScraper) Scrape(ctx context.Context, target time.Time) ([]*types.Article, error) {
	s.log.Info("contacting json api", "date", types.ISODate(target))

	params := url.Values{
		"f":    {"json"},
		"t":    {"article"},
		"c[]":  {s.query.category},
		"l":    {strconv.Itoa(s.query.limit)},
		"sort": {"starttime"},
		"sd":   {"desc"},
	}

	header := http.Header{}
	header.Set("Referer", s.query.referer)
	if cookie := s.env.Cookies[s.query.slug]; cookie != "" {
		header.Set("Cookie", cookie)
	} else {
		s.log.Warn("no session cookie configured, gated stories may be missing")
	}

	var resp bloxSearchResponse
	if err := s.env.Client.GetJSON(ctx, s.query.searchURL, params, header, &resp); err != nil {
		return nil, err
	}
	s.log.Info("api returned rows", "count", len(resp.Rows))

	var out []*types.Article
	for i := range resp.Rows {
		row := &resp.Rows[i]

		published, ok := row.publishedDay()
		if !ok || !types.SameDay(published, target) {
			continue
		}

		rawBody := row.bodyHTML()
		if rawBody == "" {
			continue
		}
		doc, err := extract.Document([]byte(rawBody))
		if err != nil {
			continue
		}
		paragraphs := extract.Paragraphs(doc, s.filter)
		if len(paragraphs) == 0 {
			continue
		}

		art := types.NewArticle(resolveURL(s.query.base, row.URL), row.Title, published)
		art.Paragraphs = paragraphs
		s.log.Info("match", "title", art.Title)
		out = append(out, art)
	}
	return out, nil
}

// resolveURL joins a possibly relative CMS URL against the site base,
// without doubling the domain when the CMS already returns an absolute URL.
func resolveURL(base, ref string) string {
	b, err := url.Parse(base)
	if err != nil {
		return ref
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return b.ResolveReference(r).String()
}
