// Package index records scrape results in MongoDB so runs can be queried
// later without walking the archive tree. It is optional; when disabled the
// pipeline runs with a nil *Index.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"newsarchive/internal/archive"
	"newsarchive/internal/config"
	"newsarchive/internal/types"
)

// Record is one indexed article.
type Record struct {
	Site       string    `bson:"site"`
	Date       string    `bson:"date"`
	URL        string    `bson:"url"`
	Title      string    `bson:"title"`
	Filename   string    `bson:"filename"`
	Paragraphs int       `bson:"paragraphs"`
	IndexedAt  time.Time `bson:"indexed_at"`
}

// Index writes article records to a MongoDB collection.
type Index struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// New connects to MongoDB and returns an Index over the configured
// collection.
func New(cfg config.IndexConfig, logger *slog.Logger) (*Index, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &Index{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		logger:     logger.With("component", "index"),
	}, nil
}

// RecordRun indexes the articles the archive writer actually persisted for
// one site and date. Articles the writer skipped never reach the index. A
// nil Index is a no-op.
func (ix *Index) RecordRun(ctx context.Context, site string, date time.Time, saved []archive.SavedArticle) error {
	if ix == nil || len(saved) == 0 {
		return nil
	}

	docs := runRecords(site, date, saved, time.Now().UTC())

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := ix.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("mongodb insert: %w", err)
	}
	ix.logger.Debug("articles indexed", "site", site, "count", len(docs))
	return nil
}

// runRecords builds one Record per saved article, keeping each article
// paired with the filename the writer reported for it.
func runRecords(site string, date time.Time, saved []archive.SavedArticle, now time.Time) []any {
	docs := make([]any, 0, len(saved))
	for _, s := range saved {
		docs = append(docs, Record{
			Site:       site,
			Date:       types.ISODate(date),
			URL:        s.Article.URL,
			Title:      s.Article.Title,
			Filename:   s.Filename,
			Paragraphs: len(s.Article.Paragraphs),
			IndexedAt:  now,
		})
	}
	return docs
}

// Close disconnects from MongoDB. A nil Index is a no-op.
func (ix *Index) Close() error {
	if ix == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ix.client.Disconnect(ctx)
}
