package effects

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestResolveCameraBeforeTransition(t *testing.T) {
	r := NewResolver(nil, 1000)

	for _, input := range [][]string{
		{"logo_reveal", "cinematic_zoom"},
		{"cinematic_zoom", "logo_reveal"},
	} {
		descs := r.Resolve(input)
		hints := HintMap(descs)
		if hints["cinematic_zoom"] >= hints["logo_reveal"] {
			t.Errorf("input %v: cinematic_zoom (%d) should precede logo_reveal (%d)",
				input, hints["cinematic_zoom"], hints["logo_reveal"])
		}
	}
}

func TestResolveBandOrder(t *testing.T) {
	r := NewResolver(nil, 1000)
	descs := r.Resolve([]string{"crossfade", "data highlight", "Lens Flare", "pan", "sparkle_dust"})

	want := []string{"pan", "lens_flare", "data_highlight", "crossfade", "sparkle_dust"}
	var got []string
	for _, d := range descs {
		got = append(got, d.Name)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Expected order %v, got %v", want, got)
	}

	if descs[4].Class != "catch_all" || Known(descs[4]) {
		t.Errorf("Unknown effect should land in catch_all, got %+v", descs[4])
	}
	if descs[4].OrderingHint < int(BandCatchAll) {
		t.Errorf("Unknown effect hint %d below trailing band", descs[4].OrderingHint)
	}
	for i, d := range descs {
		t.Logf("%d: %s class=%s hint=%d", i, d.Name, d.Class, d.OrderingHint)
	}
}

func TestResolvePermutationInvariant(t *testing.T) {
	r := NewResolver(nil, 1000)
	names := []string{
		"slow_zoom", "fast_zoom", "zoom_in", "bokeh", "text_reveal", "chart_animation",
		"crossfade", "logo_reveal", "mystery", "another_unknown", "warm_tint", "cool_tint",
	}
	base := HintMap(r.Resolve(names))

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		shuffled := append([]string(nil), names...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := HintMap(r.Resolve(shuffled))
		if !reflect.DeepEqual(base, got) {
			t.Fatalf("Permutation %v changed hints:\nbase %v\ngot  %v", shuffled, base, got)
		}
	}

	seen := map[int]string{}
	for name, h := range base {
		if other, dup := seen[h]; dup {
			t.Errorf("Hint %d shared by %s and %s", h, name, other)
		}
		seen[h] = name
	}
}

func TestResolveDeduplicatesNormalisedNames(t *testing.T) {
	r := NewResolver(nil, 1000)
	descs := r.Resolve([]string{"Lens Flare", "lens-flare", "LENS_FLARE", ""})
	if len(descs) != 1 || descs[0].Name != "lens_flare" {
		t.Errorf("Expected a single lens_flare descriptor, got %+v", descs)
	}
}

func TestResolveSlotOverflowStaysUnique(t *testing.T) {
	r := NewResolver(nil, 1000)
	var names []string
	for _, p := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		names = append(names, p+"_zoom")
	}
	names = append(names, "parallax")

	descs := r.Resolve(names)
	for i := 1; i < len(descs); i++ {
		if descs[i].OrderingHint <= descs[i-1].OrderingHint {
			t.Fatalf("Hints not strictly increasing at %d: %+v", i, descs)
		}
	}
}

func TestAddingRuleKeepsExistingHints(t *testing.T) {
	before := NewResolver(nil, 1000)
	rules := append(DefaultRules(), Rule{Match: "orbit", Exact: true, Band: BandCamera})
	after := NewResolver(NewTable(rules), 1000)

	names := []string{"cinematic_zoom", "bokeh", "text_reveal", "crossfade"}
	if !reflect.DeepEqual(HintMap(before.Resolve(names)), HintMap(after.Resolve(names))) {
		t.Errorf("Appending a rule reshuffled existing hints")
	}
}

func TestClassify(t *testing.T) {
	table := Default()
	tests := map[string]Band{
		"cinematic_zoom":  BandCamera,
		"slow_pan":        BandCamera,
		"parallax":        BandCamera,
		"bokeh":           BandColor,
		"lens_flare":      BandColor,
		"color_grade":     BandColor,
		"text_reveal":     BandOverlay,
		"data_highlight":  BandOverlay,
		"chart_animation": BandOverlay,
		"crossfade":       BandTransition,
		"logo_reveal":     BandTransition,
		"star_wipe":       BandTransition,
		"confetti":        BandCatchAll,
	}
	for name, want := range tests {
		got, _, _ := table.Classify(name)
		if got != want {
			t.Errorf("Classify(%q) = %s, want %s", name, got, want)
		}
	}
}

func TestClassifyMatchesWholeWords(t *testing.T) {
	table := Default()
	tests := []struct {
		name string
		want Band
	}{
		{"Company Logo Reveal", BandTransition},
		{"text expand", BandOverlay},
		{"Spanish Subtitles", BandOverlay},
		{"panel slide", BandTransition},
		{"slow panning", BandCamera},
		{"zooming_intro", BandCamera},
		{"blurred_backdrop", BandColor},
		{"fading_titles", BandOverlay},
		{"fading_out", BandTransition},
		{"expanding_panorama", BandCatchAll},
	}

	for _, tt := range tests {
		got, base, _ := table.Classify(Normalize(tt.name))
		t.Logf("%s -> %s base=%d", tt.name, got, base)
		if got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestLayers(t *testing.T) {
	r := NewResolver(nil, 1500)
	descs := r.Resolve([]string{"crossfade", "cinematic_zoom"})

	layers := r.Layers("scene-2", descs, 4000, 22000)
	if len(layers) != 2 {
		t.Fatalf("Expected 2 layers, got %d", len(layers))
	}

	zoom, fade := layers[0], layers[1]
	if zoom.Effect != "cinematic_zoom" || zoom.Start != 4 || zoom.Length != 22 {
		t.Errorf("Unexpected camera layer: %+v", zoom)
	}
	if !fade.Transient || fade.Length != 1.5 || fade.Start != 24.5 {
		t.Errorf("Unexpected transition layer: %+v", fade)
	}
	if descs[0].LayerDuration != 22 || descs[1].LayerDuration != 1.5 {
		t.Errorf("LayerDuration not filled: %+v", descs)
	}
}

func TestLayersClipTransientToScene(t *testing.T) {
	r := NewResolver(nil, 1500)
	descs := r.Resolve([]string{"logo_reveal"})

	layers := r.Layers("scene-1", descs, 0, 800)
	if layers[0].Length != 0.8 || layers[0].Start != 0 {
		t.Errorf("Transient layer should be clipped to the scene, got %+v", layers[0])
	}
}

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"Lens Flare":      "lens_flare",
		" lens-flare ":    "lens_flare",
		"Cinematic__Zoom": "cinematic_zoom",
		"":                "",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}
