package sites

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"newsarchive/internal/extract"
)

const wcaxArticleHTML = `<html><head>
	<meta property="article:section" content="Vermont News">
</head><body>
	<h1>Burlington schools reopen after water main break</h1>
	<p>Classes resumed Monday morning.</p>
	<p>Repairs finished over the weekend.</p>
	<p>Copyright 2025 WCAX. All rights reserved.</p>
</body></html>`

func TestWCAXArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(wcaxArticleHTML))
	}))
	defer srv.Close()

	s := &wcaxScraper{env: testEnv(nil), log: testLogger}
	art, err := s.article(context.Background(), srv.URL, testDate)
	if err != nil {
		t.Fatalf("article: %v", err)
	}
	if art == nil {
		t.Fatal("expected an article")
	}
	if art.Title != "Burlington schools reopen after water main break" {
		t.Errorf("title = %q", art.Title)
	}
	if !art.Published.Equal(testDate) {
		t.Errorf("published = %v", art.Published)
	}
	want := []string{
		"Classes resumed Monday morning.",
		"Repairs finished over the weekend.",
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

func TestWCAXArticleSkipsNonLocalCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head>
			<meta property="article:section" content="National">
		</head><body>
			<h1>Markets rally on jobs report</h1>
			<p>Stocks closed higher across the board.</p>
		</body></html>`))
	}))
	defer srv.Close()

	s := &wcaxScraper{env: testEnv(nil), log: testLogger}
	art, err := s.article(context.Background(), srv.URL, testDate)
	if err != nil {
		t.Fatalf("article: %v", err)
	}
	if art != nil {
		t.Errorf("non-local category should be dropped, got %q", art.Title)
	}
}

func TestWCAXArticleSkipsExcludedTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head>
			<meta property="article:section" content="Vermont News">
		</head><body>
			<h1>Programming Note: Parade coverage moves to 7 p.m.</h1>
			<p>Regular programming resumes after the parade.</p>
		</body></html>`))
	}))
	defer srv.Close()

	s := &wcaxScraper{env: testEnv(nil), log: testLogger}
	art, err := s.article(context.Background(), srv.URL, testDate)
	if err != nil {
		t.Fatalf("article: %v", err)
	}
	if art != nil {
		t.Errorf("excluded title should be dropped, got %q", art.Title)
	}
}

func TestWCAXCategoryFallsBackToLink(t *testing.T) {
	doc, err := extract.Document([]byte(`<html><body>
		<a href="/about/">About</a>
		<a class="story-category-link" href="/entertainment/">Entertainment</a>
		<h1>Concert announcement</h1>
	</body></html>`))
	if err != nil {
		t.Fatal(err)
	}

	s := &wcaxScraper{env: testEnv(nil), log: testLogger}
	if got := s.category(doc); got != "Entertainment" {
		t.Errorf("category = %q, want %q", got, "Entertainment")
	}
}
