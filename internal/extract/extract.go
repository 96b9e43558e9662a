// Package extract pulls a best-effort plain-text body out of an arbitrary
// article page. Extraction is never fatal: any network, parse, or decoding
// failure is logged and reported as an empty string, and callers must treat
// empty output as an expected outcome.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/elvenpost/chronicle/internal/cache"
)

const (
	// Many news sites reject the default Go client identifier, so requests
	// carry a browser User-Agent.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"

	minBlockLength     = 100 // runes; shorter selector-tier blocks are noise
	minParagraphLength = 50  // runes; paragraph-fallback threshold
	maxContentLength   = 3000

	cacheTTL = time.Hour
)

// contentSelectors are tried in priority order; the first selector matching
// at least one node wins and text is taken from that tier only. Tiers are
// never merged.
var contentSelectors = []string{
	"article",
	"[role='main']",
	".entry-content",
	".post-content",
	".article-body",
	".story-body",
	".content",
	".post-body",
	".article-content",
	".main-content",
	"#content",
	".text",
}

var discardSelectors = "script, style, noscript, iframe"

var whitespaceRe = regexp.MustCompile(`\s+`)

type Extractor struct {
	client *http.Client
	cache  *cache.Cache
}

// New builds an Extractor with a bounded request timeout. The cache lives
// for one process and memoizes by URL, so a story syndicated into several
// feeds of the same run is fetched once.
func New(timeout time.Duration) *Extractor {
	return &Extractor{
		client: &http.Client{Timeout: timeout},
		cache:  cache.New(),
	}
}

// Extract fetches the article page and returns its readable body text,
// possibly empty.
func (e *Extractor) Extract(ctx context.Context, articleURL string) string {
	if body, ok := e.cache.Get(articleURL); ok {
		slog.Debug("extraction cache hit", "url", articleURL)
		return body
	}

	body, err := e.fetch(ctx, articleURL)
	if err != nil {
		slog.Warn("article extraction failed", "url", articleURL, "error", err)
		e.cache.Set(articleURL, "", cacheTTL)
		return ""
	}

	e.cache.Set(articleURL, body, cacheTTL)
	return body
}

func (e *Extractor) fetch(ctx context.Context, articleURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	return FromDocument(doc), nil
}

// FromDocument runs the extraction heuristics over an already-parsed page.
func FromDocument(doc *goquery.Document) string {
	doc.Find(discardSelectors).Remove()

	content := selectorTierText(doc)
	if content == "" {
		content = paragraphFallbackText(doc)
	}

	content = strings.TrimSpace(content)
	if len(content) > maxContentLength {
		cut := content[:maxContentLength]
		// Back off to a rune boundary so truncation never leaves a split
		// multi-byte sequence at the end.
		for len(cut) > 0 && !utf8.ValidString(cut) {
			cut = cut[:len(cut)-1]
		}
		content = cut
	}
	return content
}

// selectorTierText walks the priority selectors and concatenates the text of
// every node matched by the first selector that matches anything. A tier
// whose blocks are all too short yields nothing; the paragraph fallback
// takes over.
func selectorTierText(doc *goquery.Document) string {
	for _, selector := range contentSelectors {
		nodes := doc.Find(selector)
		if nodes.Length() == 0 {
			continue
		}

		var blocks []string
		nodes.Each(func(_ int, s *goquery.Selection) {
			text := normalize(s.Text())
			if utf8.RuneCountInString(text) > minBlockLength {
				blocks = append(blocks, text)
			}
		})
		return strings.Join(blocks, "\n\n")
	}
	return ""
}

// paragraphFallbackText collects every paragraph-level block above the
// minimum length when no structural selector produced anything usable.
func paragraphFallbackText(doc *goquery.Document) string {
	var blocks []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := normalize(s.Text())
		if utf8.RuneCountInString(text) > minParagraphLength {
			blocks = append(blocks, text)
		}
	})
	return strings.Join(blocks, "\n\n")
}

func normalize(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
