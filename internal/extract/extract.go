// Package extract pulls titles and body paragraphs out of parsed article
// pages. Boilerplate removal is data-driven: each site supplies a
// ParagraphFilter of known noise phrases.
package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
)

// Document parses an HTML page into a goquery document.
func Document(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

// ParagraphFilter describes a site's boilerplate. Matching is
// case-insensitive; phrases must be lowercase.
type ParagraphFilter struct {
	// HardStops truncate the paragraph collection entirely — everything
	// after the first match is footer noise.
	HardStops []string

	// Skip drops a paragraph containing any phrase.
	Skip []string

	// SkipAll drops a paragraph containing every phrase of a group. Used
	// for conjunctions like a copyright notice that also names the station.
	SkipAll [][]string

	// SkipExact drops a paragraph whose whole text equals a phrase.
	SkipExact []string

	// ShortSkip drops a paragraph shorter than ShortSkipMax runes that
	// contains any phrase. Catches one-line "Subscribe"/"Print" links
	// without eating real sentences that mention the same words.
	ShortSkip    []string
	ShortSkipMax int
}

// Paragraphs collects the text of every <p> element, in order, with the
// filter applied. Returned paragraphs keep their original casing.
func Paragraphs(doc *goquery.Document, f ParagraphFilter) []string {
	var out []string

	doc.Find("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := Collapse(sel.Text())
		if text == "" {
			return true
		}
		lowered := strings.ToLower(text)

		for _, stop := range f.HardStops {
			if strings.Contains(lowered, stop) {
				return false
			}
		}
		if skipParagraph(lowered, f) {
			return true
		}

		out = append(out, text)
		return true
	})

	return out
}

func skipParagraph(lowered string, f ParagraphFilter) bool {
	for _, phrase := range f.Skip {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	for _, group := range f.SkipAll {
		all := len(group) > 0
		for _, phrase := range group {
			if !strings.Contains(lowered, phrase) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	for _, phrase := range f.SkipExact {
		if lowered == phrase {
			return true
		}
	}
	if f.ShortSkipMax > 0 && len(lowered) < f.ShortSkipMax {
		for _, phrase := range f.ShortSkip {
			if strings.Contains(lowered, phrase) {
				return true
			}
		}
	}
	return false
}

// MetaContent returns the content attribute of the first meta tag matching
// the XPath expression, e.g. "//meta[@property='og:title']".
func MetaContent(doc *goquery.Document, expr string) string {
	root := doc.Get(0)
	if root == nil {
		return ""
	}
	node, err := htmlquery.Query(root, expr)
	if err != nil || node == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.SelectAttr(node, "content"))
}

// FirstHeading returns the trimmed text of the page's first <h1>, or "".
func FirstHeading(doc *goquery.Document) string {
	return Collapse(doc.Find("h1").First().Text())
}

// PageText flattens the whole document to space-separated text, the input
// for free-text date scanning.
func PageText(doc *goquery.Document) string {
	return Collapse(doc.Text())
}

// Collapse trims a string and collapses runs of whitespace to single spaces.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
