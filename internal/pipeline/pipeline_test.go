package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"newsarchive/internal/archive"
	"newsarchive/internal/config"
	"newsarchive/internal/fetcher"
	"newsarchive/internal/sites"
	"newsarchive/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

var testDate = time.Date(2025, time.November, 29, 0, 0, 0, 0, time.UTC)

var errListingDown = errors.New("listing unreachable")

// stubScraper stands in for a site adapter.
type stubScraper struct {
	slug     string
	articles []*types.Article
	err      error
}

func (s *stubScraper) Slug() string { return s.slug }

func (s *stubScraper) Scrape(ctx context.Context, target time.Time) ([]*types.Article, error) {
	return s.articles, s.err
}

func init() {
	sites.Register("stub-ok", func(env sites.Env) sites.Scraper {
		art := types.NewArticle("https://stub.example.com/story", "Stub Story", testDate)
		art.Paragraphs = []string{"Stub paragraph."}
		return &stubScraper{slug: "stub-ok", articles: []*types.Article{art}}
	})
	sites.Register("stub-down", func(env sites.Env) sites.Scraper {
		return &stubScraper{slug: "stub-down", err: errListingDown}
	})
	sites.Register("stub-empty", func(env sites.Env) sites.Scraper {
		return &stubScraper{slug: "stub-empty"}
	})
}

func testDriver(t *testing.T, cfg *config.Config) (*Driver, string) {
	t.Helper()
	root := t.TempDir()
	client := fetcher.New(cfg.Fetcher, testLogger)
	writer := archive.NewWriter(root, testLogger)
	return NewDriver(cfg, client, writer, nil, testLogger), root
}

func TestRunIsolatesSiteFailures(t *testing.T) {
	cfg := config.DefaultConfig()
	d, root := testDriver(t, cfg)

	results := d.Run(context.Background(), []string{"stub-down", "stub-ok", "stub-empty"}, testDate)
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}

	if !errors.Is(results[0].Err, errListingDown) {
		t.Errorf("stub-down err = %v", results[0].Err)
	}
	if results[1].Err != nil || results[1].Articles != 1 {
		t.Errorf("stub-ok result = %+v", results[1])
	}
	if results[2].Err != nil || results[2].Articles != 0 {
		t.Errorf("stub-empty result = %+v", results[2])
	}

	// The failing site must not block the next site's archive write.
	saved := filepath.Join(root, "2025-11-29", "stub-ok", archive.OriginalDir, "Stub Story.txt")
	if _, err := os.Stat(saved); err != nil {
		t.Errorf("stub-ok article not saved: %v", err)
	}
	// An empty site produces no directories at all.
	if _, err := os.Stat(filepath.Join(root, "2025-11-29", "stub-empty")); !os.IsNotExist(err) {
		t.Error("empty site should not create directories")
	}
}

func TestRunSkipsDisabledSites(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Sites["wmur"] = config.SiteConfig{Enabled: false}
	d, root := testDriver(t, cfg)

	results := d.Run(context.Background(), []string{"wmur"}, testDate)
	if len(results) != 1 {
		t.Fatalf("results = %d", len(results))
	}
	if results[0].Err != nil || results[0].Articles != 0 {
		t.Errorf("disabled site result = %+v", results[0])
	}
	if _, err := os.Stat(filepath.Join(root, "2025-11-29")); !os.IsNotExist(err) {
		t.Error("disabled site should not touch the archive")
	}
}

func TestRunUnknownSite(t *testing.T) {
	cfg := config.DefaultConfig()
	d, _ := testDriver(t, cfg)

	results := d.Run(context.Background(), []string{"nosuchsite"}, testDate)
	if !errors.Is(results[0].Err, types.ErrUnknownSite) {
		t.Errorf("err = %v", results[0].Err)
	}
}

func TestRunNormalizesTargetDate(t *testing.T) {
	cfg := config.DefaultConfig()
	d, root := testDriver(t, cfg)

	evening := time.Date(2025, time.November, 29, 22, 15, 0, 0, time.Local)
	d.Run(context.Background(), []string{"stub-ok"}, evening)

	if _, err := os.Stat(filepath.Join(root, "2025-11-29", "stub-ok")); err != nil {
		t.Errorf("expected archive under the normalized date: %v", err)
	}
}
