package effects

import (
	"sort"

	"github.com/ivlev/plan2manifest/internal/manifest"
)

// Resolver assigns composition order and layer timing to scene effects.
type Resolver struct {
	Table *Table
	// TransientMs is the fixed length of transition-band layers.
	TransientMs int64
}

// NewResolver creates a Resolver over the given table. A nil table uses
// Default().
func NewResolver(table *Table, transientMs int64) *Resolver {
	if table == nil {
		table = Default()
	}
	if transientMs <= 0 {
		transientMs = 1000
	}
	return &Resolver{Table: table, TransientMs: transientMs}
}

type classified struct {
	name string
	band Band
	base int
}

// Resolve orders an unordered set of effect names. The result depends only on
// the set of normalised names: same-rule effects and unknown effects are
// ordered by name, never by input position. Hints are unique and ascending.
// LayerDuration is left at zero until Layers is called with a scene length.
func (r *Resolver) Resolve(names []string) []manifest.EffectDescriptor {
	seen := make(map[string]struct{}, len(names))
	items := make([]classified, 0, len(names))
	for _, raw := range names {
		n := Normalize(raw)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		band, base, _ := r.Table.Classify(n)
		items = append(items, classified{name: n, band: band, base: base})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].base != items[j].base {
			return items[i].base < items[j].base
		}
		return items[i].name < items[j].name
	})

	out := make([]manifest.EffectDescriptor, len(items))
	prev := -1
	k := 0
	for i, it := range items {
		if i > 0 && it.base != items[i-1].base {
			k = 0
		}
		hint := it.base + k
		k++
		// A rule with more than slotWidth matches spills into the next slot;
		// keep hints strictly increasing.
		if hint <= prev {
			hint = prev + 1
		}
		prev = hint
		out[i] = manifest.EffectDescriptor{
			Name:         it.name,
			Class:        it.band.String(),
			OrderingHint: hint,
		}
	}
	return out
}

// Known reports whether the descriptor matched a table rule.
func Known(d manifest.EffectDescriptor) bool {
	return d.Class != BandCatchAll.String()
}

// Layers fills LayerDuration on descs for a scene starting at startMs and
// lasting durMs, and returns the matching renderer layers in hint order.
// Transition-band layers last TransientMs (clipped to the scene) and sit at
// the scene tail; every other layer spans the scene.
func (r *Resolver) Layers(sceneID string, descs []manifest.EffectDescriptor, startMs, durMs int64) []manifest.Layer {
	layers := make([]manifest.Layer, 0, len(descs))
	for i := range descs {
		d := &descs[i]
		length := durMs
		offset := int64(0)
		transient := d.Class == BandTransition.String()
		if transient {
			length = r.TransientMs
			if length > durMs {
				length = durMs
			}
			offset = durMs - length
		}
		d.LayerDuration = manifest.Seconds(length)
		layers = append(layers, manifest.Layer{
			SceneID:      sceneID,
			Effect:       d.Name,
			OrderingHint: d.OrderingHint,
			Start:        manifest.Seconds(startMs + offset),
			Length:       manifest.Seconds(length),
			Transient:    transient,
		})
	}
	sort.SliceStable(layers, func(i, j int) bool {
		return layers[i].OrderingHint < layers[j].OrderingHint
	})
	return layers
}

// HintMap flattens descriptors into name -> hint.
func HintMap(descs []manifest.EffectDescriptor) map[string]int {
	m := make(map[string]int, len(descs))
	for _, d := range descs {
		m[d.Name] = d.OrderingHint
	}
	return m
}
