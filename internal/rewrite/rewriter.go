package rewrite

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"newsarchive/internal/archive"
	"newsarchive/internal/types"
)

const maxPromptBody = 12000

// Options filter and bound a rewrite run.
type Options struct {
	Site  string // only this site slug, empty for all
	Force bool   // overwrite existing rewritten files
	Limit int    // stop after this many rewrites, zero for unlimited
}

// Stats summarize a rewrite run.
type Stats struct {
	Rewritten int
	Skipped   int
	Errors    int
}

// Rewriter walks a date's Original directories and writes rewritten drafts.
type Rewriter struct {
	client *Client
	root   string
	logger *slog.Logger
}

// NewRewriter creates a Rewriter over the archive rooted at root.
func NewRewriter(client *Client, root string, logger *slog.Logger) *Rewriter {
	return &Rewriter{
		client: client,
		root:   root,
		logger: logger.With("component", "rewriter"),
	}
}

// RewriteDate rewrites every original article stored under date. Existing
// rewritten files are skipped unless opts.Force is set. Per-article failures
// are logged and counted; the walk continues.
func (r *Rewriter) RewriteDate(ctx context.Context, date time.Time, opts Options) (Stats, error) {
	var stats Stats
	dateDir := filepath.Join(r.root, types.ISODate(date))

	sites, err := os.ReadDir(dateDir)
	if err != nil {
		if os.IsNotExist(err) {
			r.logger.Info("no archive for date", "date", types.ISODate(date))
			return stats, nil
		}
		return stats, &types.StorageError{Path: dateDir, Err: err}
	}

	for _, site := range sites {
		if !site.IsDir() {
			continue
		}
		if opts.Site != "" && site.Name() != opts.Site {
			continue
		}
		done, err := r.rewriteSite(ctx, dateDir, site.Name(), opts, &stats)
		if err != nil {
			return stats, err
		}
		if done {
			break
		}
	}

	r.logger.Info("rewrite run complete",
		"date", types.ISODate(date),
		"rewritten", stats.Rewritten,
		"skipped", stats.Skipped,
		"errors", stats.Errors)
	return stats, nil
}

// rewriteSite processes one site directory. It reports done=true when the
// run's rewrite limit has been reached.
func (r *Rewriter) rewriteSite(ctx context.Context, dateDir, site string, opts Options, stats *Stats) (bool, error) {
	originalDir := filepath.Join(dateDir, site, archive.OriginalDir)
	entries, err := os.ReadDir(originalDir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, &types.StorageError{Path: originalDir, Err: err}
	}

	rewrittenDir := filepath.Join(dateDir, site, archive.RewrittenDir)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".txt") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return true, err
		}

		outPath := filepath.Join(rewrittenDir, e.Name())
		if !opts.Force {
			if _, err := os.Stat(outPath); err == nil {
				stats.Skipped++
				continue
			}
		}

		srcPath := filepath.Join(originalDir, e.Name())
		if err := r.rewriteFile(ctx, srcPath, outPath); err != nil {
			r.logger.Error("rewrite failed", "site", site, "file", e.Name(), "error", err)
			stats.Errors++
			continue
		}
		stats.Rewritten++
		r.logger.Info("rewrote article", "site", site, "file", e.Name())

		if opts.Limit > 0 && stats.Rewritten >= opts.Limit {
			r.logger.Info("hit rewrite limit", "limit", opts.Limit)
			return true, nil
		}
	}
	return false, nil
}

func (r *Rewriter) rewriteFile(ctx context.Context, srcPath, outPath string) error {
	entry, err := archive.ParseArticleFile(srcPath)
	if err != nil {
		return err
	}
	body := strings.Join(entry.Paragraphs, "\n\n")
	if body == "" {
		return fmt.Errorf("no body text in %s", srcPath)
	}

	rewritten, err := r.rewrite(ctx, entry.Title, body)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return &types.StorageError{Path: filepath.Dir(outPath), Err: err}
	}
	if err := os.WriteFile(outPath, []byte(rewritten+"\n"), 0o644); err != nil {
		return &types.StorageError{Path: outPath, Err: err}
	}
	return nil
}

// rewrite asks the LLM for a completely reworded version of the article and
// strips any quotation marks left in the output. The result is the rewritten
// headline, a blank line, then the story body.
func (r *Rewriter) rewrite(ctx context.Context, title, body string) (string, error) {
	if len(body) > maxPromptBody {
		body = body[:maxPromptBody]
	}
	if title == "" {
		title = "N/A"
	}

	prompt := fmt.Sprintf(`You are rewriting a local news article so that it is textually distinct from the original.

Your job:
- Rewrite the article COMPLETELY in your own words.
- Do NOT copy any full sentences or distinctive phrases from the original.
- Do NOT use quotation marks at all. No direct quotes, even short ones.
- Any speech or statements should be converted into indirect speech.
- You MAY keep proper nouns, names, places, dates, and numbers the same, but the surrounding wording and sentence structure must be different.
- Vary sentence structure and vocabulary so it reads like someone else wrote the story from scratch based on the same facts.
- Match roughly the same level of detail and length as the original article.

Output format:
- First line: a strong rewritten headline for the story.
- Then a blank line.
- Then the full rewritten article body.
- Do NOT add any labels, section headings, or commentary.

Original article title: %s

Original article text:
"""%s"""`, title, body)

	out, err := r.client.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return stripQuotes(out), nil
}

var quoteReplacer = strings.NewReplacer(`"`, "", "“", "", "”", "", "‘", "", "’", "")

func stripQuotes(s string) string {
	return quoteReplacer.Replace(s)
}
