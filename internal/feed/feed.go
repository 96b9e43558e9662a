// Package feed turns one RSS/Atom feed URL into a list of candidate entries.
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
)

// Entry is a single feed item. Published is nil when the feed carried no
// usable timestamp; nothing downstream is allowed to invent one.
type Entry struct {
	Title     string
	Link      string
	Published *time.Time
}

// Reader fetches and parses feeds. It holds a single gofeed parser, which is
// safe for concurrent use.
type Reader struct {
	parser  *gofeed.Parser
	timeout time.Duration
}

func NewReader(timeout time.Duration) *Reader {
	return &Reader{
		parser:  gofeed.NewParser(),
		timeout: timeout,
	}
}

// Read downloads and parses a feed. On network failure or a malformed
// payload it returns an empty slice and the error; the caller logs it and
// moves on to the next source. Read returns every entry the feed lists;
// capping work per feed is the aggregator's job.
func (r *Reader) Read(ctx context.Context, feedURL string) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	parsed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %s: %w", feedURL, err)
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item.Link == "" {
			continue
		}
		entries = append(entries, Entry{
			Title:     item.Title,
			Link:      item.Link,
			Published: item.PublishedParsed,
		})
	}
	return entries, nil
}
