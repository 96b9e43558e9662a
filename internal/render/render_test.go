package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elvenpost/chronicle/internal/mystic"
	"github.com/elvenpost/chronicle/internal/report"
)

func testReadings() (mystic.Spread, mystic.Astrology) {
	oracle := mystic.NewOracle(7)
	return oracle.DrawSpread(), oracle.ReadStars()
}

func TestRender_TopicsInReportOrder(t *testing.T) {
	rep := report.Report{
		GeneratedAt: time.Date(2024, 6, 1, 5, 0, 0, 0, time.UTC),
		Topics: []report.TopicResult{
			{Topic: "AI", Articles: []report.Article{
				{Title: "Model breakthrough", Link: "https://example.com/a", Published: "Recently", Summary: "A summary."},
			}},
			{Topic: "Environment", Articles: []report.Article{
				{Title: "Rivers rising", Link: "https://example.com/b", Published: "Recently", Summary: "B summary."},
			}},
		},
	}

	spread, astro := testReadings()
	html, err := Render(rep, spread, astro)
	require.NoError(t, err)

	aiIdx := strings.Index(html, "Realm of Artificial Minds")
	envIdx := strings.Index(html, "Chronicles of Middle-earth")
	require.NotEqual(t, -1, aiIdx)
	require.NotEqual(t, -1, envIdx)
	assert.Less(t, aiIdx, envIdx, "sections must follow report order")

	assert.Contains(t, html, "Model breakthrough")
	assert.Contains(t, html, `href="https://example.com/a"`)
}

func TestRender_EmptyTopicKept(t *testing.T) {
	rep := report.Report{
		GeneratedAt: time.Now(),
		Topics: []report.TopicResult{
			{Topic: "US Politics"}, // zero articles
		},
	}

	spread, astro := testReadings()
	html, err := Render(rep, spread, astro)
	require.NoError(t, err)

	assert.Contains(t, html, "Tales from the White Tower", "empty topic section must still render")
	assert.Contains(t, html, "The scrolls are silent")
}

func TestRender_UnknownTopicUsesPlainHeading(t *testing.T) {
	rep := report.Report{
		GeneratedAt: time.Now(),
		Topics:      []report.TopicResult{{Topic: "Cooking"}},
	}

	spread, astro := testReadings()
	html, err := Render(rep, spread, astro)
	require.NoError(t, err)
	assert.Contains(t, html, "Cooking")
}

func TestRender_MysticPanels(t *testing.T) {
	spread, astro := testReadings()
	rep := report.Report{GeneratedAt: time.Now()}

	html, err := Render(rep, spread, astro)
	require.NoError(t, err)

	assert.Contains(t, html, spread.Past.Name)
	assert.Contains(t, html, spread.Future.Meaning)
	assert.Contains(t, html, astro.MoonPhase)
	assert.Contains(t, html, astro.Planet)
}

func TestRender_EscapesArticleContent(t *testing.T) {
	rep := report.Report{
		GeneratedAt: time.Now(),
		Topics: []report.TopicResult{
			{Topic: "AI", Articles: []report.Article{
				{Title: "<script>alert(1)</script>", Link: "https://example.com", Summary: "safe"},
			}},
		},
	}

	spread, astro := testReadings()
	html, err := Render(rep, spread, astro)
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert(1)</script>")
}
