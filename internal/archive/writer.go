// Package archive owns the on-disk story layout:
//
//	<root>/<YYYY-MM-DD>/<site>/Original/<title>.txt
//	<root>/<YYYY-MM-DD>/<site>/Original/<site>_urls_<YYYY-MM-DD>.json
//	<root>/<YYYY-MM-DD>/<site>/Rewritten/...
//	<root>/Published/<YYYY-MM-DD>/...
//
// The layout and the article text format are contracts shared with the
// rewrite stage and the review dashboard; changing either breaks them.
package archive

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"newsarchive/internal/types"
)

const (
	// OriginalDir holds raw scraped articles.
	OriginalDir = "Original"
	// RewrittenDir holds AI-rewritten drafts.
	RewrittenDir = "Rewritten"
	// PublishedDir holds promoted articles, keyed by date directly under root.
	PublishedDir = "Published"
)

// SavedArticle pairs a persisted article with the filename it landed under.
// The filename can differ from the sanitized title when a collision suffix
// was applied, so consumers must not reconstruct it from the title.
type SavedArticle struct {
	Article  *types.Article
	Filename string
}

// Writer persists scraped articles into the archive.
type Writer struct {
	root   string
	logger *slog.Logger
}

// NewWriter creates a Writer rooted at dir.
func NewWriter(root string, logger *slog.Logger) *Writer {
	return &Writer{
		root:   root,
		logger: logger.With("component", "archive"),
	}
}

// Root returns the archive root directory.
func (w *Writer) Root() string { return w.root }

/// Save persists a site's articles for one date: a sorted, de-duplicated URL
// manifest plus one text file per article. An empty article list is a no-op.
// A single failed article write is logged and skipped; the rest of the batch
// still lands. Returns one entry per article actually written, so a skipped
// write never shifts a later article onto the wrong filename.
func (w *Writer) Save(site string, date time.Time, articles []*types.Article) ([]SavedArticle, error) {
	if len(articles) == 0 {
		w.logger.Info("no articles to save", "site", site, "date", types.ISODate(date))
		return nil, nil
	}

	dir := filepath.Join(w.root, types.ISODate(date), site, OriginalDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &types.StorageError{Path: dir, Err: err}
	}

	if err := w.saveManifest(dir, site, date, articles); err != nil {
		return nil, err
	}

	var saved []SavedArticle
	for _, art := range articles {
		path := resolveCollision(dir, SanitizeTitle(art.Title))
		if err := os.WriteFile(path, renderArticle(art, site), 0o644); err != nil {
			w.logger.Error("failed to save article", "site", site, "file", filepath.Base(path), "error", err)
			continue
		}
		saved = append(saved, SavedArticle{Article: art, Filename: filepath.Base(path)})
		w.logger.Info("saved article", "site", site, "file", filepath.Base(path))
	}
	return saved, nil
}

func (w *Writer) saveManifest(dir, site string, date time.Time, articles []*types.Article) error {
	seen := make(map[string]bool)
	var urls []string
	for _, art := range articles {
		if art.URL == "" || seen[art.URL] {
			continue
		}
		seen[art.URL] = true
		urls = append(urls, art.URL)
	}
	sort.Strings(urls)

	data, err := json.MarshalIndent(urls, "", "  ")
	if err != nil {
		return &types.StorageError{Path: dir, Err: err}
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_urls_%s.json", site, types.ISODate(date)))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &types.StorageError{Path: path, Err: err}
	}
	w.logger.Info("saved url list", "site", site, "path", path)
	return nil
}

/// renderArticle produces the article text format: title line, blank line,
// Site/Published/URL metadata lines, blank line, then paragraphs each
// followed by a blank line. The rewrite stage parses this layout, so field
// order and prefixes are fixed.
func renderArticle(art *types.Article, site string) []byte {
	lines := []string{
		art.Title,
		"",
		"Site: " + strings.ToUpper(site),
	}
	if !art.Published.IsZero() {
		lines = append(lines, "Published: "+types.ISODate(art.Published))
	}
	lines = append(lines, "URL: "+art.URL, "")

	for _, p := range art.Paragraphs {
		p = strings.TrimSpace(p)
		if p != "" {
			lines = append(lines, p, "")
		}
	}

	text := strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"
	return []byte(text)
}

var illegalFilenameChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// SanitizeTitle turns an article title into a filesystem-safe .txt filename:
// illegal characters stripped, whitespace collapsed, length capped at 150
// characters, never an empty stem.
func SanitizeTitle(title string) string {
	cleaned := illegalFilenameChars.ReplaceAllString(title, "")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if cleaned == "" {
		cleaned = "untitled"
	}
	if runes := []rune(cleaned); len(runes) > 150 {
		cleaned = strings.TrimRight(string(runes[:150]), " ")
	}
	return cleaned + ".txt"
}

// resolveCollision returns a free path for name in dir, appending " (2)",
// " (3)", ... before the extension until no existing file is hit.
func resolveCollision(dir, name string) string {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return path
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 2; ; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate
		}
	}
}
