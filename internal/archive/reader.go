package archive

import (
	"os"
	"strings"

	"newsarchive/internal/dateparse"
	"newsarchive/internal/types"
)

// Entry is an article read back from the archive.
type Entry struct {
	Title      string
	Site       string
	Published  string // ISO date as stored, empty when absent
	URL        string
	Paragraphs []string
}

// Article converts an Entry back into the scrape-time representation.
// An unparseable Published field leaves the date zero.
func (e *Entry) Article() *types.Article {
	day, _ := dateparse.ParseISODay(e.Published)
	art := types.NewArticle(e.URL, e.Title, day)
	art.Paragraphs = e.Paragraphs
	return art
}

// ParseArticleFile reads an archived article text file: the first non-empty
// line is the title, following "Key: value" lines are metadata, and blank
// line separated blocks after the header are body paragraphs.
func ParseArticleFile(path string) (*Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.StorageError{Path: path, Err: err}
	}
	return parseArticleText(string(data)), nil
}

func parseArticleText(text string) *Entry {
	entry := &Entry{}
	lines := strings.Split(text, "\n")

	i := 0
	for ; i < len(lines); i++ {
		if line := strings.TrimSpace(lines[i]); line != "" {
			entry.Title = line
			i++
			break
		}
	}

	inHeader := true
	var para []string
	flush := func() {
		if len(para) > 0 {
			entry.Paragraphs = append(entry.Paragraphs, strings.Join(para, " "))
			para = nil
		}
	}

	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			flush()
			continue
		}
		if inHeader {
			if key, value, ok := headerField(line); ok {
				switch key {
				case "site":
					entry.Site = value
				case "published":
					entry.Published = value
				case "url":
					entry.URL = value
				}
				continue
			}
			inHeader = false
		}
		para = append(para, line)
	}
	flush()
	return entry
}

func headerField(line string) (key, value string, ok bool) {
	before, after, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	switch key = strings.ToLower(strings.TrimSpace(before)); key {
	case "site", "published", "url":
		return key, strings.TrimSpace(after), true
	}
	return "", "", false
}
