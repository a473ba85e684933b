package sites

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"newsarchive/internal/config"
	"newsarchive/internal/fetcher"
)

// testEnvWithCap builds an environment with a small candidate cap for
// exercising the slow-scan budget.
func testEnvWithCap(max int) Env {
	cfg := config.DefaultConfig().Fetcher
	cfg.PolitenessDelay = 0
	cfg.MaxCandidates = max
	return Env{Client: fetcher.New(cfg, testLogger), Logger: testLogger}
}

const mykeenenowListingHTML = `<html><body>
	<a href="/news/story-old">Yesterday's story</a>
	<a href="/news/story-a">Story A</a>
	<a href="/news/story-b">Story B</a>
	<a href="/news/story-c">Story C</a>
	<a href="/weather/today">Weather</a>
</body></html>`

func mykeenenowCandidate(date string) string {
	return `<html><body><h1>A Keene story</h1><p>Posted ` + date + `</p><p>Something happened downtown.</p></body></html>`
}

func TestMyKeeneNowURLsForDateCapsCandidates(t *testing.T) {
	var mu sync.Mutex
	hits := make(map[string]int)

	mux := http.NewServeMux()
	pages := map[string]string{
		"/news/":          mykeenenowListingHTML,
		"/news/story-old": mykeenenowCandidate("Nov 28, 2025"),
		"/news/story-a":   mykeenenowCandidate("Nov 29, 2025"),
		"/news/story-b":   mykeenenowCandidate("Nov 29, 2025"),
		"/news/story-c":   mykeenenowCandidate("Nov 29, 2025"),
	}
	for path, body := range pages {
		path, body := path, body
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			hits[r.URL.Path]++
			mu.Unlock()
			w.Write([]byte(body))
		})
	}
	srv := httptest.NewServer(mux)
	defer srv.Close()

	s := &mykeenenowScraper{
		env:     testEnvWithCap(2),
		log:     testLogger,
		base:    srv.URL,
		listing: srv.URL + "/news/",
	}

	got, err := s.urlsForDate(context.Background(), testDate)
	if err != nil {
		t.Fatalf("urlsForDate: %v", err)
	}

	// The wrong-date candidate is excluded and does not count against the
	// cap; the scan stops once two valid URLs are found.
	want := []string{srv.URL + "/news/story-a", srv.URL + "/news/story-b"}
	if len(got) != len(want) {
		t.Fatalf("urls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("urls[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if hits["/news/story-c"] != 0 {
		t.Errorf("candidate past the cap was fetched %d times", hits["/news/story-c"])
	}
	if hits["/news/story-old"] != 1 {
		t.Errorf("wrong-date candidate fetched %d times, want 1", hits["/news/story-old"])
	}
}

func TestMyKeeneNowArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
			<h1>Council sets winter parking ban</h1>
			<p>Posted Nov 29, 2025</p>
			<p>The ban begins Monday night.</p>
			<p>This Story © 2025 Saga Communications, Inc.</p>
		</body></html>`))
	}))
	defer srv.Close()

	s := &mykeenenowScraper{env: testEnv(nil), log: testLogger, base: srv.URL, listing: srv.URL + "/news/"}
	art, err := s.article(context.Background(), srv.URL, testDate)
	if err != nil {
		t.Fatalf("article: %v", err)
	}
	if art == nil {
		t.Fatal("expected an article")
	}
	if art.Title != "Council sets winter parking ban" {
		t.Errorf("title = %q", art.Title)
	}
	if !art.Published.Equal(testDate) {
		t.Errorf("published = %v", art.Published)
	}
	want := []string{
		"Posted Nov 29, 2025",
		"The ban begins Monday night.",
	}
	if len(art.Paragraphs) != len(want) {
		t.Fatalf("paragraphs = %v", art.Paragraphs)
	}
	for i := range want {
		if art.Paragraphs[i] != want[i] {
			t.Errorf("paragraphs[%d] = %q, want %q", i, art.Paragraphs[i], want[i])
		}
	}
}
