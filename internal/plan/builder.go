package plan

import (
	"fmt"
	"strings"
)

// DefaultPurpose is assigned to scenes that do not name one.
const DefaultPurpose = "body"

// Scene is a structured scene record before timing.
type Scene struct {
	Index     int // 0-based position in the plan
	Number    int // number as written after "Scene"
	Title     string
	Purpose   string
	Narration string
	Visual    string
	Effects   []string
	Notes     []string
	Extras    map[string]string
}

// ID is the stable scene identifier used across the manifest.
func (s Scene) ID() string {
	return fmt.Sprintf("scene-%d", s.Index+1)
}

// Plan is a fully parsed production plan.
type Plan struct {
	Globals  Globals
	Scenes   []Scene
	Notes    []string
	Warnings []string
}

// Parse tokenizes text and builds the scene records.
func Parse(text string) (*Plan, error) {
	return Build(Tokenize(text))
}

// Build converts tokenized blocks into scenes. It fails only when there are no
// scenes or a scene has neither narration nor a visual anchor.
func Build(doc *Document) (*Plan, error) {
	if doc == nil || len(doc.Blocks) == 0 {
		return nil, &MalformedPlanError{Reason: "no scenes found"}
	}

	p := &Plan{
		Globals:  Fold(doc.Directives),
		Notes:    append([]string(nil), doc.Notes...),
		Warnings: append([]string(nil), doc.Warnings...),
	}

	for i, b := range doc.Blocks {
		s := Scene{
			Index:  i,
			Number: b.Number,
			Title:  b.Title,
			Notes:  append([]string(nil), b.Notes...),
			Extras: map[string]string{},
		}
		for _, f := range b.Fields {
			switch f.Key {
			case "purpose":
				s.Purpose = fold(strings.TrimSpace(f.Value))
			case "narration":
				s.Narration = strings.TrimSpace(f.Value)
			case "visual":
				s.Visual = strings.TrimSpace(f.Value)
			case "effect":
				s.Effects = mergeEffects(s.Effects, SplitEffects(f.Value))
			default:
				s.Extras[f.Label] = f.Value
			}
		}
		if s.Purpose == "" {
			s.Purpose = DefaultPurpose
		}
		if s.Narration == "" && s.Visual == "" {
			return nil, &MalformedPlanError{
				Scene:  b.Number,
				Line:   b.Line,
				Reason: "scene has neither narration nor visual anchor",
			}
		}
		p.Scenes = append(p.Scenes, s)
	}

	return p, nil
}

// SplitEffects splits a comma list, trims entries and removes case-insensitive
// duplicates keeping the first spelling.
func SplitEffects(list string) []string {
	return mergeEffects(nil, strings.Split(list, ","))
}

func mergeEffects(dst []string, names []string) []string {
	seen := make(map[string]struct{}, len(dst)+len(names))
	for _, n := range dst {
		seen[fold(n)] = struct{}{}
	}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		k := fold(n)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		dst = append(dst, n)
	}
	return dst
}
