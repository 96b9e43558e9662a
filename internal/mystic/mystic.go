// Package mystic generates the decorative tarot and astrology panels of the
// chronicle. This is the only place randomness is allowed; the news pipeline
// itself stays deterministic.
package mystic

import "math/rand"

type Card struct {
	Name    string
	Meaning string
}

// Spread is a three-card past/present/future reading.
type Spread struct {
	Past    Card
	Present Card
	Future  Card
}

type Astrology struct {
	MoonPhase string
	Element   string
	Planet    string
}

var cards = []Card{
	{"The Fool", "New beginnings, spontaneity, and trusting the journey ahead"},
	{"The Magician", "Manifestation, resourcefulness, and power to create"},
	{"The High Priestess", "Intuition, sacred knowledge, and divine feminine"},
	{"The Empress", "Fertility, femininity, and abundance in all forms"},
	{"The Emperor", "Authority, structure, and masculine energy"},
	{"The Hierophant", "Tradition, conformity, and spiritual guidance"},
	{"The Lovers", "Love, harmony, and important relationships"},
	{"The Chariot", "Control, willpower, and determination"},
	{"Strength", "Inner strength, courage, and gentle power"},
	{"The Hermit", "Soul searching, introspection, and inner guidance"},
	{"Wheel of Fortune", "Change, cycles, and inevitable fate"},
	{"Justice", "Justice, fairness, and truth"},
	{"The Hanged Man", "Suspension, restriction, and letting go"},
	{"Death", "Endings, beginnings, and transformation"},
	{"Temperance", "Balance, moderation, and patience"},
	{"The Devil", "Bondage, addiction, and materialism"},
	{"The Tower", "Sudden change, upheaval, and chaos"},
	{"The Star", "Hope, faith, and spiritual guidance"},
	{"The Moon", "Illusion, fear, and anxiety"},
	{"The Sun", "Joy, success, and positivity"},
	{"Judgement", "Judgement, rebirth, and inner calling"},
	{"The World", "Completion, accomplishment, and travel"},
}

var moonPhases = []string{
	"New Moon", "Waxing Crescent", "First Quarter", "Waxing Gibbous",
	"Full Moon", "Waning Gibbous", "Last Quarter", "Waning Crescent",
}

var elements = []string{"Fire", "Earth", "Air", "Water"}

var planets = []string{"Mercury", "Venus", "Mars", "Jupiter", "Saturn"}

// Oracle draws readings from an injectable random source so tests can seed
// it.
type Oracle struct {
	rng *rand.Rand
}

func NewOracle(seed int64) *Oracle {
	return &Oracle{rng: rand.New(rand.NewSource(seed))}
}

// DrawSpread picks three distinct cards.
func (o *Oracle) DrawSpread() Spread {
	idx := o.rng.Perm(len(cards))[:3]
	return Spread{
		Past:    cards[idx[0]],
		Present: cards[idx[1]],
		Future:  cards[idx[2]],
	}
}

func (o *Oracle) ReadStars() Astrology {
	return Astrology{
		MoonPhase: moonPhases[o.rng.Intn(len(moonPhases))],
		Element:   elements[o.rng.Intn(len(elements))],
		Planet:    planets[o.rng.Intn(len(planets))],
	}
}
