// Package render turns a Report into the chronicle HTML document. Rendering
// is a pure function of its inputs so it can be swapped or tested without
// touching the pipeline.
package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/elvenpost/chronicle/internal/mystic"
	"github.com/elvenpost/chronicle/internal/report"
)

//go:embed template.html
var chronicleTemplate string

// decoration is the themed dressing for a known topic section.
type decoration struct {
	Heading string
	Flavor  string
	Label   string // link label under each article
}

var decorations = map[string]decoration{
	"AI": {
		Heading: "🤖 Realm of Artificial Minds",
		Flavor:  "The great machines of thought awaken, and their wisdom grows ever deeper...",
		Label:   "📜 Read the full scroll",
	},
	"Environment": {
		Heading: "🌿 Chronicles of Middle-earth",
		Flavor:  "The very stones of the earth cry out, and the trees whisper of changing times...",
		Label:   "🌱 Read the full chronicle",
	},
	"US Politics": {
		Heading: "🏛️ Tales from the White Tower",
		Flavor:  "In the halls of power, great councils convene and the fate of the realm is decided...",
		Label:   "⚖️ Read the full decree",
	},
	"Global Politics": {
		Heading: "🌍 Tidings from Distant Kingdoms",
		Flavor:  "Across the wide world, kingdoms rise and fall, and the great wheel of history turns...",
		Label:   "🌐 Read the full tale",
	},
}

type topicSection struct {
	Heading  string
	Flavor   string
	Label    string
	Articles []report.Article
}

type page struct {
	Date   string
	Topics []topicSection
	Spread mystic.Spread
	Astro  mystic.Astrology
}

var tmpl = template.Must(template.New("chronicle").Parse(chronicleTemplate))

// Render produces the full HTML chronicle. Topics appear in Report order;
// a topic with no articles renders a "no news" line instead of vanishing.
func Render(rep report.Report, spread mystic.Spread, astro mystic.Astrology) (string, error) {
	p := page{
		Date:   rep.GeneratedAt.Format("Monday, January 02, 2006"),
		Spread: spread,
		Astro:  astro,
	}

	for _, t := range rep.Topics {
		dec, ok := decorations[t.Topic]
		if !ok {
			dec = decoration{Heading: t.Topic, Label: "Read the full story"}
		}
		p.Topics = append(p.Topics, topicSection{
			Heading:  dec.Heading,
			Flavor:   dec.Flavor,
			Label:    dec.Label,
			Articles: t.Articles,
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("rendering chronicle: %w", err)
	}
	return buf.String(), nil
}
