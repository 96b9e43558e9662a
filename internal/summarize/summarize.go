// Package summarize produces short extractive summaries by scoring and
// selecting sentences from extracted article text. It is pure and
// deterministic: identical input always yields the identical summary.
package summarize

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// attributionCues mark sentences carrying sourced or quoted claims.
var attributionCues = []string{
	"said", "announced", "reported", "according", "study", "research",
}

// magnitudeRe matches quantified claims: percentages, currency amounts, and
// large counts.
var magnitudeRe = regexp.MustCompile(`\d+%|\$\d+|\d+\s*(million|billion|trillion)`)

type scoredSentence struct {
	text  string
	score int
}

// Summarizer holds the fixed per-topic keyword vocabularies plus the
// sentence selection limits.
type Summarizer struct {
	keywords     map[string][]string // topic label → keyword set
	maxSentences int
	minLength    int
}

func New(keywords map[string][]string, maxSentences, minLength int) *Summarizer {
	return &Summarizer{
		keywords:     keywords,
		maxSentences: maxSentences,
		minLength:    minLength,
	}
}

// Summarize scores the sentences of body against the topic's vocabulary and
// joins the top ones, highest score first. Returns "" when body is empty or
// no sentence survives the noise filter.
func (s *Summarizer) Summarize(body, topic string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}

	sentences := SplitSentences(body, s.minLength)
	if len(sentences) == 0 {
		return ""
	}

	terms := s.keywords[topic]
	scored := make([]scoredSentence, 0, len(sentences))
	for _, sentence := range sentences {
		scored = append(scored, scoredSentence{
			text:  sentence,
			score: Score(sentence, terms),
		})
	}

	// Stable sort: ties keep document order, favoring lede sentences.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	limit := s.maxSentences
	if limit > len(scored) {
		limit = len(scored)
	}

	picked := make([]string, 0, limit)
	for _, sc := range scored[:limit] {
		picked = append(picked, sc.text)
	}
	return strings.Join(picked, " ")
}

// Score computes the integer score of one sentence. The three bonuses are
// non-exclusive: a keyword-laden quoted statistic collects all of them.
func Score(sentence string, terms []string) int {
	lower := strings.ToLower(sentence)

	score := 0
	for _, term := range terms {
		if strings.Contains(lower, strings.ToLower(term)) {
			score++
		}
	}

	for _, cue := range attributionCues {
		if strings.Contains(lower, cue) {
			score++
			break
		}
	}

	if magnitudeRe.MatchString(lower) {
		score++
	}

	return score
}

// SplitSentences breaks text into sentence candidates on terminal
// punctuation and drops fragments shorter than minLength runes, which keeps
// headlines and list bullets out of the summary.
func SplitSentences(text string, minLength int) []string {
	var sentences []string
	var b strings.Builder

	flush := func() {
		s := strings.TrimSpace(b.String())
		b.Reset()
		if utf8.RuneCountInString(s) >= minLength {
			sentences = append(sentences, s)
		}
	}

	runes := []rune(text)
	for i, r := range runes {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			// Terminal only when followed by whitespace or end of text;
			// keeps decimals and abbreviated figures intact.
			if i+1 == len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' || runes[i+1] == '\t' {
				flush()
			}
		}
	}
	flush()

	return sentences
}
