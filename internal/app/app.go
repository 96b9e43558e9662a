// Package app wires the pipeline together and orchestrates one full run:
// aggregate every configured topic, assemble the report, render it, and
// hand it to the mailer.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/elvenpost/chronicle/internal/aggregate"
	"github.com/elvenpost/chronicle/internal/config"
	"github.com/elvenpost/chronicle/internal/extract"
	"github.com/elvenpost/chronicle/internal/feed"
	"github.com/elvenpost/chronicle/internal/mail"
	"github.com/elvenpost/chronicle/internal/metrics"
	"github.com/elvenpost/chronicle/internal/mystic"
	"github.com/elvenpost/chronicle/internal/ratelimit"
	"github.com/elvenpost/chronicle/internal/render"
	"github.com/elvenpost/chronicle/internal/report"
	"github.com/elvenpost/chronicle/internal/summarize"
)

type Aggregator interface {
	Aggregate(ctx context.Context, topic string, feedURLs []string) report.TopicResult
}

type Mailer interface {
	Send(ctx context.Context, subject, htmlBody string) error
}

// RenderFunc turns a report plus the decorative readings into the final
// document.
type RenderFunc func(report.Report, mystic.Spread, mystic.Astrology) (string, error)

type App struct {
	topics     []config.Topic
	aggregator Aggregator
	renderFn   RenderFunc
	mailer     Mailer
	oracle     *mystic.Oracle
}

// New assembles the production pipeline from configuration.
func New(cfg *config.Config) *App {
	keywords := make(map[string][]string, len(cfg.Topics))
	for _, t := range cfg.Topics {
		keywords[t.Name] = t.Keywords
	}

	throttle := ratelimit.New(cfg.FetchConcurrency, cfg.ArticleDelay)
	aggregator := aggregate.New(
		feed.NewReader(cfg.RequestTimeout),
		extract.New(cfg.RequestTimeout),
		summarize.New(keywords, cfg.SentencesPerSummary, cfg.MinSentenceLength),
		throttle,
		cfg.EntriesPerFeed,
		cfg.TopicQuota,
	)

	mailer := mail.New(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.FromAddress,
		To:       cfg.Recipient,
		Timeout:  cfg.SMTPTimeout,
	}, cfg.RetryAttempts, cfg.RetryDelay)

	return &App{
		topics:     cfg.Topics,
		aggregator: aggregator,
		renderFn:   render.Render,
		mailer:     mailer,
		oracle:     mystic.NewOracle(time.Now().UnixNano()),
	}
}

// RunOnce executes one complete pipeline pass. Per-topic and per-feed
// failures are contained inside the aggregator; only a render or delivery
// failure surfaces here, and a failed run is simply lost; the next
// scheduled run starts fresh.
func (a *App) RunOnce(ctx context.Context) error {
	start := time.Now()
	defer func() {
		metrics.Global.RecordRunDuration(time.Since(start))
	}()

	slog.Info("gathering news from across the realms", "topics", len(a.topics))

	// Topics share no mutable state, so each gets its own goroutine and an
	// indexed slot, keeping configured order in the report.
	results := make([]report.TopicResult, len(a.topics))
	var wg sync.WaitGroup
	for i, topic := range a.topics {
		wg.Add(1)
		go func(i int, t config.Topic) {
			defer wg.Done()
			results[i] = a.aggregator.Aggregate(ctx, t.Name, t.Feeds)
		}(i, topic)
	}
	wg.Wait()

	rep := report.Report{
		GeneratedAt: time.Now(),
		Topics:      results,
	}
	metrics.Global.AddArticlesReported(rep.TotalArticles())

	htmlBody, err := a.renderFn(rep, a.oracle.DrawSpread(), a.oracle.ReadStars())
	if err != nil {
		metrics.Global.IncrementDeliveryFailures()
		metrics.Global.SetError(err.Error())
		return fmt.Errorf("rendering chronicle: %w", err)
	}

	subject := fmt.Sprintf("🧙‍♂️ The Elven News Chronicle - %s", rep.GeneratedAt.Format("January 02, 2006"))
	if err := a.mailer.Send(ctx, subject, htmlBody); err != nil {
		metrics.Global.IncrementDeliveryFailures()
		metrics.Global.SetError(err.Error())
		return fmt.Errorf("sending chronicle: %w", err)
	}

	metrics.Global.IncrementDigestsSent()
	metrics.Global.SetLastRun()

	for _, t := range rep.Topics {
		slog.Info("delivered", "topic", t.Topic, "articles", len(t.Articles))
	}
	slog.Info("chronicle sent", "articles", rep.TotalArticles(), "duration", time.Since(start))
	return nil
}
