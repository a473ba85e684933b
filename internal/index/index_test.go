package index

import (
	"context"
	"testing"
	"time"

	"newsarchive/internal/archive"
	"newsarchive/internal/types"
)

var testDate = time.Date(2025, time.November, 29, 0, 0, 0, 0, time.UTC)

func TestRunRecordsPairing(t *testing.T) {
	a := types.NewArticle("https://example.com/kept", "Kept Story", testDate)
	a.Paragraphs = []string{"One.", "Two."}
	b := types.NewArticle("https://example.com/renamed", "Kept Story", testDate)
	b.Paragraphs = []string{"Three."}

	// The second article collided on title and landed under a suffixed
	// filename; the record must carry that filename, not the title's.
	saved := []archive.SavedArticle{
		{Article: a, Filename: "Kept Story.txt"},
		{Article: b, Filename: "Kept Story (2).txt"},
	}
	now := time.Date(2025, time.November, 29, 18, 30, 0, 0, time.UTC)

	docs := runRecords("wmur", testDate, saved, now)
	if len(docs) != 2 {
		t.Fatalf("docs = %d, want 2", len(docs))
	}

	for i, doc := range docs {
		rec, ok := doc.(Record)
		if !ok {
			t.Fatalf("docs[%d] is %T", i, doc)
		}
		if rec.Site != "wmur" || rec.Date != "2025-11-29" || !rec.IndexedAt.Equal(now) {
			t.Errorf("docs[%d] = %+v", i, rec)
		}
		if rec.URL != saved[i].Article.URL || rec.Title != saved[i].Article.Title {
			t.Errorf("docs[%d] paired with wrong article: %+v", i, rec)
		}
		if rec.Filename != saved[i].Filename {
			t.Errorf("docs[%d] filename = %q, want %q", i, rec.Filename, saved[i].Filename)
		}
		if rec.Paragraphs != len(saved[i].Article.Paragraphs) {
			t.Errorf("docs[%d] paragraphs = %d", i, rec.Paragraphs)
		}
	}
}

func TestRecordRunNilIndex(t *testing.T) {
	var ix *Index
	saved := []archive.SavedArticle{{Article: types.NewArticle("https://example.com/a", "A", testDate), Filename: "A.txt"}}
	if err := ix.RecordRun(context.Background(), "wmur", testDate, saved); err != nil {
		t.Fatalf("nil index should be a no-op: %v", err)
	}
}
