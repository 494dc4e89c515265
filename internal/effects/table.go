package effects

import (
	"strings"

	"golang.org/x/text/cases"
)

// Band is the base ordering hint of a composition class. Lower bands are
// composited first.
type Band int

const (
	BandCamera     Band = 1000
	BandColor      Band = 2000
	BandOverlay    Band = 3000
	BandTransition Band = 4000
	BandCatchAll   Band = 9000
)

// slotWidth is the number of hints reserved for each rule inside a band.
const slotWidth = 10

// String is the class name written into the manifest.
func (b Band) String() string {
	switch b {
	case BandCamera:
		return "camera"
	case BandColor:
		return "color"
	case BandOverlay:
		return "overlay"
	case BandTransition:
		return "transition"
	}
	return "catch_all"
}

// Transient reports whether layers of this band are short-lived.
func (b Band) Transient() bool {
	return b == BandTransition
}

// Rule maps an effect name (Exact) or a name fragment to a band.
type Rule struct {
	Match string
	Exact bool
	Band  Band
}

// Table is the canonical precedence table. Exact rules are consulted before
// fragment rules; among fragment rules the first listed wins. A fragment
// matches whole words of the normalised name, or their inflections. Each rule owns
// slot (its position among rules of the same band), so new rules appended to
// a band leave existing hints untouched.
type Table struct {
	rules []Rule
	slots []int
	exact map[string]int
}

// NewTable indexes rules. Later duplicates of an exact name are ignored.
func NewTable(rules []Rule) *Table {
	t := &Table{
		rules: append([]Rule(nil), rules...),
		slots: make([]int, len(rules)),
		exact: make(map[string]int),
	}
	perBand := map[Band]int{}
	for i, r := range t.rules {
		t.rules[i].Match = Normalize(r.Match)
		t.slots[i] = perBand[r.Band]
		perBand[r.Band]++
		if r.Exact {
			if _, dup := t.exact[t.rules[i].Match]; !dup {
				t.exact[t.rules[i].Match] = i
			}
		}
	}
	return t
}

// Classify returns the band of a normalised effect name and the base hint of
// the rule that matched. Unknown names return BandCatchAll with ok=false.
func (t *Table) Classify(name string) (band Band, base int, ok bool) {
	if i, hit := t.exact[name]; hit {
		return t.rules[i].Band, t.base(i), true
	}
	words := strings.Split(name, "_")
	for i, r := range t.rules {
		if r.Exact {
			continue
		}
		for _, w := range words {
			if matchesStem(w, r.Match) {
				return r.Band, t.base(i), true
			}
		}
	}
	return BandCatchAll, int(BandCatchAll), false
}

var inflections = map[string]bool{"": true, "s": true, "es": true, "ed": true, "er": true, "ers": true, "ing": true}

// matchesStem reports whether word is stem or a plain inflection of it:
// "zooming", "panning", "fading" and "subtitles" match, "panel" does not.
func matchesStem(word, stem string) bool {
	if word == stem {
		return true
	}
	if rest, ok := strings.CutPrefix(word, stem); ok {
		if inflections[rest] {
			return true
		}
		// Doubled final consonant: pan -> panning, blur -> blurred.
		if rest[0] == stem[len(stem)-1] && inflections[rest[1:]] {
			return true
		}
	}
	// Silent e: fade -> fading.
	if e, ok := strings.CutSuffix(stem, "e"); ok && e != "" {
		if rest, ok := strings.CutPrefix(word, e); ok && (rest == "ing" || rest == "ed") {
			return true
		}
	}
	return false
}

func (t *Table) base(i int) int {
	return int(t.rules[i].Band) + t.slots[i]*slotWidth
}

// Rules returns a copy of the table rules in declaration order.
func (t *Table) Rules() []Rule {
	return append([]Rule(nil), t.rules...)
}

// Normalize lower-cases an effect name and joins words with underscores:
// "Lens Flare" and "lens-flare" both become "lens_flare".
func Normalize(name string) string {
	s := cases.Fold().String(strings.TrimSpace(name))
	s = strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t'
	}), "_")
	return s
}

func exact(band Band, names ...string) []Rule {
	out := make([]Rule, 0, len(names))
	for _, n := range names {
		out = append(out, Rule{Match: n, Exact: true, Band: band})
	}
	return out
}

func fragments(band Band, parts ...string) []Rule {
	out := make([]Rule, 0, len(parts))
	for _, p := range parts {
		out = append(out, Rule{Match: p, Band: band})
	}
	return out
}

// DefaultRules is the built-in precedence table.
func DefaultRules() []Rule {
	var rules []Rule
	rules = append(rules, exact(BandCamera,
		"cinematic_zoom", "zoom_in", "zoom_out", "ken_burns", "pan", "pan_left", "pan_right",
		"parallax", "dolly_zoom", "tilt", "whip_pan", "camera_shake")...)
	rules = append(rules, exact(BandColor,
		"bokeh", "lens_flare", "color_grade", "light_leak", "vignette", "film_grain", "glow",
		"blur", "duotone", "glitch")...)
	rules = append(rules, exact(BandOverlay,
		"text_reveal", "data_highlight", "chart_animation", "lower_third", "kinetic_text",
		"caption", "subtitles", "counter", "progress_bar", "emoji_pop", "sticker")...)
	rules = append(rules, exact(BandTransition,
		"crossfade", "fade", "fade_in", "fade_out", "logo_reveal", "wipe", "dissolve",
		"quick_cut", "slide", "outro")...)

	rules = append(rules, fragments(BandCamera, "zoom", "pan", "parallax", "dolly", "tilt", "shake", "tracking")...)
	rules = append(rules, fragments(BandColor, "bokeh", "flare", "grade", "leak", "vignette", "grain", "glow", "blur", "tint", "color", "colour")...)
	rules = append(rules, fragments(BandOverlay, "text", "caption", "subtitle", "highlight", "chart", "graph", "title", "counter", "overlay", "label")...)
	rules = append(rules, fragments(BandTransition, "fade", "wipe", "dissolve", "transition", "reveal", "cut", "slide", "outro")...)
	return rules
}

// Default returns a table built from DefaultRules.
func Default() *Table {
	return NewTable(DefaultRules())
}
