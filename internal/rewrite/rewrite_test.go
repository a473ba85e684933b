package rewrite

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"newsarchive/internal/archive"
	"newsarchive/internal/config"
	"newsarchive/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var testDate = time.Date(2025, time.November, 29, 0, 0, 0, 0, time.UTC)

// fakeModel answers every prompt with a fixed rewrite, quotation marks
// included so the quote stripping is exercised end to end.
func fakeModel(t *testing.T) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Prompt string `json:"prompt"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode prompt: %v", err)
		}
		if !strings.Contains(payload.Prompt, "Original article text") {
			t.Error("prompt missing the article body section")
		}
		w.Write([]byte("Fresh Headline\n\nThe official said the town was “ready” for winter."))
	}))
}

func testClient(endpoint string) *Client {
	cfg := config.RewriteConfig{
		Provider: config.ProviderCustom,
		Endpoint: endpoint,
		Model:    "test-model",
	}
	return NewClient(cfg, testLogger)
}

func seedArchive(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	w := archive.NewWriter(root, testLogger)
	art := types.NewArticle("https://example.com/story", "Original Title", testDate)
	art.Paragraphs = []string{"First paragraph.", "Second paragraph."}
	if _, err := w.Save("wmur", testDate, []*types.Article{art}); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestRewriteDate(t *testing.T) {
	srv := fakeModel(t)
	defer srv.Close()

	root := seedArchive(t)
	r := NewRewriter(testClient(srv.URL), root, testLogger)

	stats, err := r.RewriteDate(context.Background(), testDate, Options{})
	if err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if stats.Rewritten != 1 || stats.Errors != 0 {
		t.Fatalf("stats = %+v", stats)
	}

	out := filepath.Join(root, "2025-11-29", "wmur", archive.RewrittenDir, "Original Title.txt")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read rewritten: %v", err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "Fresh Headline\n\n") {
		t.Errorf("rewritten text = %q", text)
	}
	if strings.ContainsAny(text, "\"“”") {
		t.Errorf("quotation marks survived: %q", text)
	}
}

func TestRewriteDateSkipsExisting(t *testing.T) {
	srv := fakeModel(t)
	defer srv.Close()

	root := seedArchive(t)
	r := NewRewriter(testClient(srv.URL), root, testLogger)

	if _, err := r.RewriteDate(context.Background(), testDate, Options{}); err != nil {
		t.Fatal(err)
	}
	stats, err := r.RewriteDate(context.Background(), testDate, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Rewritten != 0 || stats.Skipped != 1 {
		t.Errorf("second run stats = %+v", stats)
	}

	// --force rewrites anyway.
	stats, err = r.RewriteDate(context.Background(), testDate, Options{Force: true})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Rewritten != 1 {
		t.Errorf("forced run stats = %+v", stats)
	}
}

func TestRewriteDateSiteFilter(t *testing.T) {
	srv := fakeModel(t)
	defer srv.Close()

	root := seedArchive(t)
	r := NewRewriter(testClient(srv.URL), root, testLogger)

	stats, err := r.RewriteDate(context.Background(), testDate, Options{Site: "wcax"})
	if err != nil {
		t.Fatal(err)
	}
	if stats.Rewritten != 0 {
		t.Errorf("filtered run stats = %+v", stats)
	}
}

func TestRewriteDateMissingArchive(t *testing.T) {
	srv := fakeModel(t)
	defer srv.Close()

	r := NewRewriter(testClient(srv.URL), t.TempDir(), testLogger)
	stats, err := r.RewriteDate(context.Background(), testDate, Options{})
	if err != nil {
		t.Fatalf("missing date dir should not error: %v", err)
	}
	if stats.Rewritten != 0 {
		t.Errorf("stats = %+v", stats)
	}
}
