// Package aggregate drives the per-topic pipeline: feed reading, article
// extraction, and summarization, followed by ranking and quota truncation.
package aggregate

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/elvenpost/chronicle/internal/feed"
	"github.com/elvenpost/chronicle/internal/metrics"
	"github.com/elvenpost/chronicle/internal/ratelimit"
	"github.com/elvenpost/chronicle/internal/report"
)

type Reader interface {
	Read(ctx context.Context, feedURL string) ([]feed.Entry, error)
}

type Extractor interface {
	Extract(ctx context.Context, articleURL string) string
}

type Summarizer interface {
	Summarize(body, topic string) string
}

type Aggregator struct {
	reader     Reader
	extractor  Extractor
	summarizer Summarizer
	throttle   *ratelimit.Throttle

	entriesPerFeed int
	quota          int
}

func New(reader Reader, extractor Extractor, summarizer Summarizer, throttle *ratelimit.Throttle, entriesPerFeed, quota int) *Aggregator {
	return &Aggregator{
		reader:         reader,
		extractor:      extractor,
		summarizer:     summarizer,
		throttle:       throttle,
		entriesPerFeed: entriesPerFeed,
		quota:          quota,
	}
}

// Aggregate gathers articles for one topic. Each feed is processed
// independently: a dead feed contributes nothing and the rest continue.
// Survivors are ranked by summary length, longest first, with stable ties
// on collection order, then truncated to the topic quota. A topic with
// zero reachable feeds yields an empty result, never an error.
func (a *Aggregator) Aggregate(ctx context.Context, topic string, feedURLs []string) report.TopicResult {
	var collected []report.Article

	for _, feedURL := range feedURLs {
		entries, err := a.readFeed(ctx, feedURL)
		if err != nil {
			slog.Warn("feed unavailable", "topic", topic, "feed", feedURL, "error", err)
			metrics.Global.IncrementFeedFailures()
			continue
		}
		metrics.Global.IncrementFeedsFetched()

		if len(entries) > a.entriesPerFeed {
			entries = entries[:a.entriesPerFeed]
		}

		for _, entry := range entries {
			article, ok := a.buildArticle(ctx, topic, entry)
			if !ok {
				continue
			}
			collected = append(collected, article)
		}
	}

	sort.SliceStable(collected, func(i, j int) bool {
		return len(collected[i].Summary) > len(collected[j].Summary)
	})
	if len(collected) > a.quota {
		collected = collected[:a.quota]
	}

	slog.Info("topic aggregated", "topic", topic, "articles", len(collected))
	return report.TopicResult{Topic: topic, Articles: collected}
}

func (a *Aggregator) readFeed(ctx context.Context, feedURL string) ([]feed.Entry, error) {
	if err := a.throttle.Acquire(ctx); err != nil {
		return nil, err
	}
	defer a.throttle.Release()
	return a.reader.Read(ctx, feedURL)
}

// buildArticle extracts and summarizes one entry. An entry whose summary
// comes back empty is not reportable and is dropped here, before ranking.
func (a *Aggregator) buildArticle(ctx context.Context, topic string, entry feed.Entry) (report.Article, bool) {
	if err := a.throttle.Pace(ctx); err != nil {
		return report.Article{}, false
	}
	if err := a.throttle.Acquire(ctx); err != nil {
		return report.Article{}, false
	}
	body := a.extractor.Extract(ctx, entry.Link)
	a.throttle.Release()

	if body == "" {
		metrics.Global.IncrementExtractionFailures()
		return report.Article{}, false
	}
	metrics.Global.IncrementArticlesExtracted()

	summary := a.summarizer.Summarize(body, topic)
	if summary == "" {
		slog.Debug("no usable summary", "topic", topic, "url", entry.Link)
		return report.Article{}, false
	}

	return report.Article{
		Title:     entry.Title,
		Link:      entry.Link,
		Published: formatPublished(entry.Published),
		Summary:   summary,
	}, true
}

func formatPublished(t *time.Time) string {
	if t == nil {
		return "Recently"
	}
	return t.Format("Mon, 02 Jan 2006 15:04 MST")
}
