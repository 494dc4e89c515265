package plan

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	sceneMarkerRe = regexp.MustCompile(`(?i)^(?:#{1,6}\s*)?scene\s+(\d+)\s*(?::\s*(.*))?$`)
	keyValueRe    = regexp.MustCompile(`^[-*]?\s*([A-Za-z][A-Za-z0-9 _\-]{0,31}?)\s*:\s*(.*)$`)
)

// fold builds a fresh Caser per call; Casers are stateful and batch builds
// run concurrently.
func fold(s string) string {
	return cases.Fold().String(s)
}

// keyAliases maps folded keys (spaces, '_' and '-' removed) to canonical keys.
var keyAliases = map[string]string{
	"effects":      "effect",
	"fx":           "effect",
	"visuals":      "visual",
	"visualanchor": "visual",
	"voiceover":    "narration",
	"vo":           "narration",
	"voicestyle":   "voice",
	"lang":         "language",
	"aspectratio":  "aspect",
	"ratio":        "aspect",
	"length":       "duration",
	"website":      "brandurl",
	"url":          "brandurl",
	"musicmood":    "music",
}

// sceneKeys are the scene fields the builder understands; other keys become
// scene extras.
var sceneKeys = map[string]bool{
	"purpose":   true,
	"narration": true,
	"visual":    true,
	"effect":    true,
}

// Field is one `Key: Value` line, plus any continuation lines folded into
// Value. Key is the canonical form; Label is the key as written.
type Field struct {
	Key   string
	Label string
	Value string
	Line  int
}

// SceneBlock is the raw content between one scene marker and the next.
type SceneBlock struct {
	Number int
	Title  string
	Line   int
	Fields []Field
	Notes  []string
}

// Document is the tokenizer output.
type Document struct {
	Directives []Directive
	Blocks     []SceneBlock
	Notes      []string
	Warnings   []string
}

// Tokenize splits plan text into global directives and scene blocks. It never
// fails: anything it cannot classify is kept as a note or an extra.
func Tokenize(text string) *Document {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	doc := &Document{}
	var globals []Field
	var current *SceneBlock
	var last *Field
	lastIndent := 0

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		indent := len(raw) - len(strings.TrimLeft(raw, " \t"))
		if line == "" {
			// Blank lines delimit blocks and end value continuation.
			last = nil
			continue
		}

		if m := sceneMarkerRe.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[1])
			doc.Blocks = append(doc.Blocks, SceneBlock{
				Number: n,
				Title:  strings.TrimSpace(m[2]),
				Line:   lineNo,
			})
			current = &doc.Blocks[len(doc.Blocks)-1]
			last = nil
			continue
		}

		// A line indented deeper than its field continues the value even when
		// it reads like "Key: text".
		if last != nil && indent > lastIndent {
			last.Value = joinValue(last.Value, line)
			continue
		}

		if key, label, value, ok := splitKeyValue(line); ok {
			if current != nil && last != nil && last.Key == "narration" && !sceneKeys[key] {
				doc.Warnings = append(doc.Warnings, fmt.Sprintf(
					"line %d: %q after narration is read as a scene field; indent it to continue the narration",
					lineNo, label))
			}
			f := Field{Key: key, Label: label, Value: value, Line: lineNo}
			if current == nil {
				globals = append(globals, f)
				last = &globals[len(globals)-1]
			} else {
				current.Fields = append(current.Fields, f)
				last = &current.Fields[len(current.Fields)-1]
			}
			lastIndent = indent
			continue
		}

		if last != nil {
			last.Value = joinValue(last.Value, line)
			continue
		}

		if current == nil {
			doc.Notes = append(doc.Notes, line)
		} else {
			current.Notes = append(current.Notes, line)
		}
	}

	for _, f := range globals {
		d, warn := toDirective(f)
		if warn != "" {
			doc.Warnings = append(doc.Warnings, warn)
		}
		if d != nil {
			doc.Directives = append(doc.Directives, d)
		}
	}

	seen := make(map[int]int, len(doc.Blocks))
	for i, b := range doc.Blocks {
		if prev, dup := seen[b.Number]; dup {
			doc.Warnings = append(doc.Warnings, fmt.Sprintf(
				"scene number %d appears twice (lines %d and %d); scenes keep input order",
				b.Number, doc.Blocks[prev].Line, b.Line))
			continue
		}
		seen[b.Number] = i
	}

	return doc
}

func joinValue(value, line string) string {
	if value == "" {
		return line
	}
	return value + " " + line
}

func splitKeyValue(line string) (key, label, value string, ok bool) {
	m := keyValueRe.FindStringSubmatch(line)
	if m == nil {
		return "", "", "", false
	}
	value = strings.TrimSpace(m[2])
	// "https://..." is a value, not a key.
	if strings.HasPrefix(value, "//") {
		return "", "", "", false
	}
	label = strings.TrimSpace(m[1])
	return CanonicalKey(label), label, value, true
}

// CanonicalKey folds case and drops separators: "Voice Id", "voice_id" and
// "VOICEID" all become "voiceid".
func CanonicalKey(label string) string {
	k := fold(strings.TrimSpace(label))
	if alias, ok := keyAliases[k]; ok {
		return alias
	}
	k = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(k)
	if alias, ok := keyAliases[k]; ok {
		return alias
	}
	return k
}

func toDirective(f Field) (Directive, string) {
	v := f.Value
	switch DirectiveKey(f.Key) {
	case KeyPlatform:
		return PlatformDirective{Platform: fold(v)}, ""
	case KeyDuration:
		ms, ok := ParseDuration(v)
		if !ok {
			return nil, fmt.Sprintf("line %d: duration %q not understood; default duration applies", f.Line, v)
		}
		return DurationDirective{Millis: ms, Raw: v}, ""
	case KeyAspect:
		return AspectDirective{Ratio: normalizeAspect(v)}, ""
	case KeyLanguage:
		return LanguageDirective{Code: v}, ""
	case KeyVoice:
		return VoiceDirective{Style: v}, ""
	case KeyVoiceID:
		return VoiceIDDirective{ID: v}, ""
	case KeyMusic:
		return MusicDirective{Mood: v}, ""
	case KeyBrand:
		name, url := splitBrand(v)
		return BrandDirective{Name: name, URL: url}, ""
	case KeyBrandURL:
		return BrandURLDirective{URL: v}, ""
	case KeyLogo:
		return LogoDirective{Ref: v}, ""
	case KeyTransition:
		return TransitionDirective{Name: v}, ""
	case KeyTitle:
		return TitleDirective{Title: v}, ""
	}
	return ExtraDirective{Name: f.Label, Value: v}, ""
}

func splitBrand(v string) (name, url string) {
	for _, tok := range strings.Fields(v) {
		if strings.HasPrefix(tok, "http://") || strings.HasPrefix(tok, "https://") {
			url = strings.Trim(tok, "()<>[],")
			name = strings.TrimSpace(strings.Replace(v, tok, "", 1))
			name = strings.TrimRight(name, " -–|,(")
			return name, url
		}
	}
	return v, ""
}

// normalizeAspect accepts "9:16", "9x16", "9 / 16" and "vertical"-style words.
func normalizeAspect(v string) string {
	s := strings.ToLower(strings.TrimSpace(v))
	switch s {
	case "vertical", "portrait":
		return "9:16"
	case "horizontal", "landscape", "widescreen":
		return "16:9"
	case "square":
		return "1:1"
	}
	s = strings.NewReplacer(" ", "", "x", ":", "/", ":").Replace(s)
	return s
}
