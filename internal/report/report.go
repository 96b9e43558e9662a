// Package report holds the pure data model handed to the renderer. The
// pipeline rebuilds it from scratch on every run; nothing here survives
// across runs.
package report

import "time"

// Article is the externally visible unit of the chronicle. Summary is
// non-empty only when extraction and summarization both succeeded; articles
// with empty summaries are filtered out before ranking.
type Article struct {
	Title     string
	Link      string
	Published string // human-readable; "Recently" when the feed gave no date
	Summary   string
}

// TopicResult is one topic section, already ranked and truncated to the
// topic's quota.
type TopicResult struct {
	Topic    string
	Articles []Article
}

// Report covers every configured topic, in configured order. Topics that
// yielded nothing keep an empty Articles slice so the renderer can show
// "no news" instead of silently dropping the section.
type Report struct {
	GeneratedAt time.Time
	Topics      []TopicResult
}

// TotalArticles counts articles across all topics.
func (r Report) TotalArticles() int {
	n := 0
	for _, t := range r.Topics {
		n += len(t.Articles)
	}
	return n
}
