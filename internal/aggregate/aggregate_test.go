package aggregate

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elvenpost/chronicle/internal/feed"
	"github.com/elvenpost/chronicle/internal/ratelimit"
)

type fakeReader struct {
	entries map[string][]feed.Entry
	errs    map[string]error
}

func (f *fakeReader) Read(_ context.Context, feedURL string) ([]feed.Entry, error) {
	if err := f.errs[feedURL]; err != nil {
		return nil, err
	}
	return f.entries[feedURL], nil
}

type fakeExtractor struct {
	mu     sync.Mutex
	bodies map[string]string
	calls  []string
}

func (f *fakeExtractor) Extract(_ context.Context, articleURL string) string {
	f.mu.Lock()
	f.calls = append(f.calls, articleURL)
	f.mu.Unlock()
	return f.bodies[articleURL]
}

// identitySummarizer returns the body unchanged, so summary length equals
// body length and ranking is easy to stage.
type identitySummarizer struct{}

func (identitySummarizer) Summarize(body, _ string) string { return body }

func entry(link string) feed.Entry {
	return feed.Entry{Title: "story " + link, Link: link}
}

func testThrottle() *ratelimit.Throttle {
	return ratelimit.New(4, 0)
}

func TestAggregate_ScenarioWithQuotaTruncation(t *testing.T) {
	// Feed A yields 3 entries: two extract successfully (lengths 80 and 40),
	// one fails. Feed B yields one entry (length 60). Quota 2 keeps the
	// 80 and 60 articles, in that order.
	reader := &fakeReader{entries: map[string][]feed.Entry{
		"feedA": {entry("a1"), entry("a2"), entry("a3")},
		"feedB": {entry("b1")},
	}}
	extractor := &fakeExtractor{bodies: map[string]string{
		"a1": strings.Repeat("x", 80),
		"a2": strings.Repeat("y", 40),
		"a3": "", // extraction failure
		"b1": strings.Repeat("z", 60),
	}}

	agg := New(reader, extractor, identitySummarizer{}, testThrottle(), 3, 2)
	result := agg.Aggregate(context.Background(), "Science", []string{"feedA", "feedB"})

	if result.Topic != "Science" {
		t.Errorf("topic = %q, want Science", result.Topic)
	}
	if len(result.Articles) != 2 {
		t.Fatalf("got %d articles, want 2: %+v", len(result.Articles), result.Articles)
	}
	if len(result.Articles[0].Summary) != 80 || len(result.Articles[1].Summary) != 60 {
		t.Errorf("ranking wrong: lengths %d, %d; want 80, 60",
			len(result.Articles[0].Summary), len(result.Articles[1].Summary))
	}
}

func TestAggregate_FailedFeedDoesNotBlockSiblings(t *testing.T) {
	reader := &fakeReader{
		entries: map[string][]feed.Entry{
			"healthy1": {entry("h1")},
			"healthy2": {entry("h2")},
		},
		errs: map[string]error{"broken": errors.New("connection refused")},
	}
	extractor := &fakeExtractor{bodies: map[string]string{
		"h1": strings.Repeat("a", 50),
		"h2": strings.Repeat("b", 50),
	}}

	agg := New(reader, extractor, identitySummarizer{}, testThrottle(), 3, 4)
	result := agg.Aggregate(context.Background(), "News", []string{"healthy1", "broken", "healthy2"})

	if len(result.Articles) != 2 {
		t.Fatalf("both healthy feeds must contribute, got %d articles", len(result.Articles))
	}
}

func TestAggregate_ZeroReachableFeeds(t *testing.T) {
	reader := &fakeReader{errs: map[string]error{
		"f1": errors.New("timeout"),
		"f2": errors.New("dns failure"),
	}}

	agg := New(reader, &fakeExtractor{}, identitySummarizer{}, testThrottle(), 3, 4)
	result := agg.Aggregate(context.Background(), "Ghost", []string{"f1", "f2"})

	if result.Topic != "Ghost" {
		t.Errorf("topic label must survive, got %q", result.Topic)
	}
	if len(result.Articles) != 0 {
		t.Errorf("expected empty article list, got %d", len(result.Articles))
	}
}

func TestAggregate_EmptySummaryFiltered(t *testing.T) {
	reader := &fakeReader{entries: map[string][]feed.Entry{
		"f": {entry("kept"), entry("dropped")},
	}}
	extractor := &fakeExtractor{bodies: map[string]string{
		"kept":    strings.Repeat("k", 60),
		"dropped": "", // empty extraction → no summary → not reportable
	}}

	agg := New(reader, extractor, identitySummarizer{}, testThrottle(), 3, 4)
	result := agg.Aggregate(context.Background(), "T", []string{"f"})

	if len(result.Articles) != 1 {
		t.Fatalf("got %d articles, want 1", len(result.Articles))
	}
	if result.Articles[0].Link != "kept" {
		t.Errorf("wrong article survived: %+v", result.Articles[0])
	}
}

func TestAggregate_PerFeedCap(t *testing.T) {
	reader := &fakeReader{entries: map[string][]feed.Entry{
		"f": {entry("e1"), entry("e2"), entry("e3"), entry("e4"), entry("e5")},
	}}
	extractor := &fakeExtractor{bodies: map[string]string{
		"e1": strings.Repeat("a", 30), "e2": strings.Repeat("a", 30),
		"e3": strings.Repeat("a", 30), "e4": strings.Repeat("a", 30),
		"e5": strings.Repeat("a", 30),
	}}

	agg := New(reader, extractor, identitySummarizer{}, testThrottle(), 3, 10)
	agg.Aggregate(context.Background(), "T", []string{"f"})

	if len(extractor.calls) != 3 {
		t.Errorf("extractor called %d times, want 3 (per-feed cap)", len(extractor.calls))
	}
}

func TestAggregate_StableTieOrder(t *testing.T) {
	reader := &fakeReader{entries: map[string][]feed.Entry{
		"f1": {entry("first")},
		"f2": {entry("second")},
	}}
	extractor := &fakeExtractor{bodies: map[string]string{
		"first":  strings.Repeat("a", 50),
		"second": strings.Repeat("b", 50),
	}}

	agg := New(reader, extractor, identitySummarizer{}, testThrottle(), 3, 4)
	result := agg.Aggregate(context.Background(), "T", []string{"f1", "f2"})

	if len(result.Articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(result.Articles))
	}
	if result.Articles[0].Link != "first" || result.Articles[1].Link != "second" {
		t.Errorf("equal-length summaries must keep collection order: %+v", result.Articles)
	}
}

func TestAggregate_PublishedFallback(t *testing.T) {
	ts := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	reader := &fakeReader{entries: map[string][]feed.Entry{
		"f": {
			{Title: "dated", Link: "dated", Published: &ts},
			{Title: "undated", Link: "undated"},
		},
	}}
	extractor := &fakeExtractor{bodies: map[string]string{
		"dated":   strings.Repeat("a", 99),
		"undated": strings.Repeat("b", 40),
	}}

	agg := New(reader, extractor, identitySummarizer{}, testThrottle(), 3, 4)
	result := agg.Aggregate(context.Background(), "T", []string{"f"})

	if len(result.Articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(result.Articles))
	}
	if result.Articles[0].Published == "Recently" {
		t.Errorf("dated entry must show its date, got %q", result.Articles[0].Published)
	}
	if result.Articles[1].Published != "Recently" {
		t.Errorf("undated entry must show Recently, got %q", result.Articles[1].Published)
	}
}
