package validator

import (
	"reflect"
	"strings"
	"testing"

	"github.com/ivlev/plan2manifest/internal/effects"
	"github.com/ivlev/plan2manifest/internal/jobs"
	"github.com/ivlev/plan2manifest/internal/manifest"
)

func buildManifest(t *testing.T, platform, aspect string, sceneEffects ...[]string) *manifest.Manifest {
	t.Helper()
	r := effects.NewResolver(nil, 1000)
	m := &manifest.Manifest{
		Platform:      platform,
		AspectRatio:   aspect,
		TotalDuration: float64(len(sceneEffects) * 5),
		TotalMs:       int64(len(sceneEffects) * 5000),
	}
	for i, names := range sceneEffects {
		m.Scenes = append(m.Scenes, manifest.Scene{
			ID:              "scene-" + string(rune('1'+i)),
			Purpose:         "body",
			Narration:       "line",
			DurationSeconds: 5,
			StartAtSec:      float64(i * 5),
			DurationMs:      5000,
			StartAtMs:       int64(i * 5000),
			Effects:         r.Resolve(names),
		})
	}
	list, err := jobs.Build(jobs.Input{Scenes: m.Scenes, TotalSecs: m.TotalDuration})
	if err != nil {
		t.Fatalf("jobs.Build failed: %v", err)
	}
	m.Jobs = list
	return m
}

func TestValidateClean(t *testing.T) {
	m := buildManifest(t, "youtube", "16:9", []string{"cinematic_zoom"}, []string{"crossfade"})
	r := New(nil, 0).Validate(m)

	if !r.IsValid {
		t.Fatalf("Expected valid manifest, got %v", r.Warnings)
	}
	if len(r.Warnings) != 0 || len(r.Optimizations) != 0 {
		t.Errorf("Expected no findings, got warnings=%v optimizations=%v", r.Warnings, r.Optimizations)
	}
}

func TestValidateDisallowedEffectOnTikTok(t *testing.T) {
	m := buildManifest(t, "tiktok", "9:16", []string{"lens_flare", "zoom_in"}, []string{"lens_flare"})
	r := New(nil, 0).Validate(m)

	if !r.IsValid {
		t.Fatalf("Policy mismatch must not invalidate the manifest: %v", r.Warnings)
	}
	if len(r.Warnings) != 1 {
		t.Fatalf("Expected exactly one warning, got %v", r.Warnings)
	}
	w := r.Warnings[0]
	if !strings.Contains(w, "lens_flare") || !strings.Contains(w, "tiktok") {
		t.Errorf("Warning should name effect and platform: %q", w)
	}

	var mismatch PlatformMismatchWarning
	for _, f := range r.Findings {
		if pm, ok := f.(PlatformMismatchWarning); ok {
			mismatch = pm
		}
	}
	if !reflect.DeepEqual(mismatch.Scenes, []string{"scene-1", "scene-2"}) {
		t.Errorf("Expected both scenes in the finding, got %v", mismatch.Scenes)
	}
	if len(m.Scenes[0].Effects) != 2 {
		t.Errorf("Validator must not drop effects")
	}
}

func TestValidateUnknownEffect(t *testing.T) {
	m := buildManifest(t, "youtube", "16:9", []string{"sparkle_storm"})
	r := New(nil, 0).Validate(m)

	if !r.IsValid {
		t.Fatalf("Unknown effects are advisory: %v", r.Warnings)
	}
	var unknown, mismatch int
	for _, f := range r.Findings {
		switch f.(type) {
		case UnknownEffectWarning:
			unknown++
		case PlatformMismatchWarning:
			mismatch++
		}
	}
	if unknown != 1 || mismatch != 1 {
		t.Errorf("Expected one unknown and one mismatch finding, got %d and %d", unknown, mismatch)
	}
}

func TestValidateAspectAndPlatform(t *testing.T) {
	m := buildManifest(t, "myspace", "4:3", nil)
	r := New(nil, 0).Validate(m)

	if !r.IsValid {
		t.Fatalf("Expected valid manifest")
	}
	var kinds []string
	for _, f := range r.Findings {
		switch f.(type) {
		case UnknownPlatformWarning:
			kinds = append(kinds, "platform")
		case AspectMismatchWarning:
			kinds = append(kinds, "aspect")
		}
	}
	if !reflect.DeepEqual(kinds, []string{"platform", "aspect"}) {
		t.Errorf("Unexpected findings %v", r.Warnings)
	}
}

func TestValidateJobVolume(t *testing.T) {
	var scenes [][]string
	for i := 0; i < 8; i++ {
		scenes = append(scenes, nil)
	}
	m := buildManifest(t, "youtube", "16:9", scenes...)
	t.Logf("jobs: %d", len(m.Jobs))

	r := New(nil, 10).Validate(m)
	if !r.IsValid {
		t.Fatalf("Job volume is not structural")
	}
	if len(r.Optimizations) != 1 {
		t.Errorf("Expected one optimization, got %v", r.Optimizations)
	}
	if r = New(nil, 100).Validate(m); len(r.Optimizations) != 0 {
		t.Errorf("No optimization expected under the ceiling, got %v", r.Optimizations)
	}
}

func TestValidateStructural(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *manifest.Manifest)
	}{
		{"gap between scenes", func(m *manifest.Manifest) {
			m.Scenes[1].StartAtMs = 6000
			m.Scenes[1].StartAtSec = 6
		}},
		{"sum differs from total", func(m *manifest.Manifest) {
			m.TotalMs = 11000
			m.TotalDuration = 11
		}},
		{"zero duration", func(m *manifest.Manifest) {
			m.Scenes[1].DurationMs = 0
			m.Scenes[1].DurationSeconds = 0
			m.TotalMs = 5000
			m.TotalDuration = 5
		}},
		{"seconds disagree with millis", func(m *manifest.Manifest) { m.Scenes[0].DurationSeconds = 4.5 }},
		{"total seconds disagree with millis", func(m *manifest.Manifest) { m.TotalDuration = 9 }},
		{"duplicate effect hint", func(m *manifest.Manifest) {
			m.Scenes[0].Effects[1].OrderingHint = m.Scenes[0].Effects[0].OrderingHint
		}},
		{"missing dependency", func(m *manifest.Manifest) {
			m.Jobs[len(m.Jobs)-1].DependsOn = []string{"ghost"}
		}},
		{"cycle", func(m *manifest.Manifest) {
			for i := range m.Jobs {
				if m.Jobs[i].ID == jobs.TTSJobID("scene-1") {
					m.Jobs[i].DependsOn = []string{jobs.CompositingJobID("scene-1")}
				}
			}
		}},
		{"hint order broken", func(m *manifest.Manifest) {
			for i := range m.Jobs {
				m.Jobs[i].OrderingHint = len(m.Jobs) - i
			}
		}},
		{"no scenes", func(m *manifest.Manifest) { m.Scenes = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := buildManifest(t, "youtube", "16:9", []string{"zoom_in", "text_reveal"}, nil)
			tt.mutate(m)
			r := New(nil, 0).Validate(m)
			if r.IsValid {
				t.Errorf("Expected invalid manifest")
			}
			t.Logf("warnings: %v", r.Warnings)
		})
	}
}

func TestValidateDoesNotMutate(t *testing.T) {
	m := buildManifest(t, "tiktok", "16:9", []string{"lens_flare"}, []string{"fade"})
	before := m.Clone()

	New(nil, 1).Validate(m)

	if !reflect.DeepEqual(before, m) {
		t.Errorf("Validate modified the manifest")
	}
}
