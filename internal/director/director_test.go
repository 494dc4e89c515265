package director

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/ivlev/plan2manifest/internal/manifest"
)

func checkTiling(t *testing.T, allocs []Allocation, totalMs int64) {
	t.Helper()
	var sum, next int64
	for i, a := range allocs {
		if a.DurationMs <= 0 {
			t.Errorf("Scene %d has non-positive duration %d", i, a.DurationMs)
		}
		if a.StartMs != next {
			t.Errorf("Scene %d starts at %d, expected %d", i, a.StartMs, next)
		}
		next = a.StartMs + a.DurationMs
		sum += a.DurationMs
	}
	if sum != totalMs {
		t.Errorf("Durations sum to %d, expected %d", sum, totalMs)
	}
}

func TestAllocateHookBodyCTA(t *testing.T) {
	d := NewDirector(4000, 4000)

	allocs, err := d.Allocate([]string{"hook", "body", "cta"}, 30000)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	checkTiling(t, allocs, 30000)

	wantDur := []int64{4000, 22000, 4000}
	wantStart := []int64{0, 4000, 26000}
	for i := range allocs {
		if allocs[i].DurationMs != wantDur[i] || allocs[i].StartMs != wantStart[i] {
			t.Errorf("Scene %d: got %+v, want start=%d dur=%d", i, allocs[i], wantStart[i], wantDur[i])
		}
	}
}

func TestAllocateScalesFloors(t *testing.T) {
	d := NewDirector(8000, 8000)

	allocs, err := d.Allocate([]string{"hook", "cta"}, 10000)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	checkTiling(t, allocs, 10000)
	if allocs[0].DurationMs != 5000 || allocs[1].DurationMs != 5000 {
		t.Errorf("Expected floors scaled to 5s each, got %+v", allocs)
	}
}

func TestAllocateScalesFloorsWithBody(t *testing.T) {
	d := NewDirector(8000, 8000)

	allocs, err := d.Allocate([]string{"hook", "body", "cta"}, 10000)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	checkTiling(t, allocs, 10000)
	if allocs[1].DurationMs <= 0 {
		t.Errorf("Body scene starved: %+v", allocs)
	}
	if allocs[0].DurationMs <= allocs[1].DurationMs {
		t.Errorf("Scaled hook floor should still outweigh body minimum: %+v", allocs)
	}
	t.Logf("Allocations: %+v", allocs)
}

func TestAllocateSingleScene(t *testing.T) {
	d := NewDirector(4000, 4000)
	allocs, err := d.Allocate([]string{"hook"}, 7300)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if len(allocs) != 1 || allocs[0].DurationMs != 7300 || allocs[0].StartMs != 0 {
		t.Errorf("Single scene should take the whole duration, got %+v", allocs)
	}
}

func TestAllocateFloorsOnlyGetSpareTime(t *testing.T) {
	d := NewDirector(4000, 4000)
	allocs, err := d.Allocate([]string{"hook", "cta"}, 20000)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	checkTiling(t, allocs, 20000)
	if allocs[0].DurationMs != 10000 {
		t.Errorf("Expected spare time split evenly, got %+v", allocs)
	}
}

func TestAllocateLastAbsorbsRounding(t *testing.T) {
	d := NewDirector(4000, 4000)
	allocs, err := d.Allocate([]string{"hook", "body", "body", "body", "cta"}, 31000)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	checkTiling(t, allocs, 31000)
	for i, a := range allocs[:len(allocs)-1] {
		if a.DurationMs%1000 != 0 {
			t.Errorf("Scene %d not whole seconds: %d", i, a.DurationMs)
		}
	}
	if allocs[0].DurationMs < 4000 || allocs[4].DurationMs < 4000 {
		t.Errorf("Floors broken by rounding: %+v", allocs)
	}
}

func TestAllocateSubSecondScenes(t *testing.T) {
	d := NewDirector(4000, 4000)
	allocs, err := d.Allocate([]string{"hook", "body", "body", "cta"}, 3000)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	checkTiling(t, allocs, 3000)
}

func TestAllocateWeights(t *testing.T) {
	d := NewDirector(0, 0)
	d.Weights["proof"] = 3
	allocs, err := d.Allocate([]string{"body", "proof"}, 20000)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if allocs[0].DurationMs != 5000 || allocs[1].DurationMs != 15000 {
		t.Errorf("Expected 1:3 split, got %+v", allocs)
	}
}

func TestAllocateErrors(t *testing.T) {
	d := NewDirector(4000, 4000)
	if _, err := d.Allocate(nil, 1000); err == nil {
		t.Error("Expected error for no scenes")
	}
	_, err := d.Allocate([]string{"a", "b", "c"}, 2)
	var short *DurationTooShortError
	if !errors.As(err, &short) {
		t.Fatalf("Expected DurationTooShortError, got %v", err)
	}
	if short.TotalMs != 2 || short.Scenes != 3 {
		t.Errorf("Unexpected error fields: %+v", short)
	}
}

func TestAllocateRandomPlansTileExactly(t *testing.T) {
	d := NewDirector(4000, 4000)
	purposes := []string{"hook", "body", "cta", "proof", "body"}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(8)
		ps := make([]string, n)
		for j := range ps {
			ps[j] = purposes[rng.Intn(len(purposes))]
		}
		total := int64(n) + rng.Int63n(120000)
		allocs, err := d.Allocate(ps, total)
		if err != nil {
			t.Fatalf("Allocate(%v, %d) failed: %v", ps, total, err)
		}
		checkTiling(t, allocs, total)
	}
}

func TestApply(t *testing.T) {
	m := &manifest.Manifest{Scenes: []manifest.Scene{
		{ID: "scene-1", Purpose: "hook"},
		{ID: "scene-2", Purpose: "body"},
		{ID: "scene-3", Purpose: "cta"},
	}}
	if _, err := NewDirector(4000, 4000).Apply(m, 30000); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	starts := []float64{0, 4, 26}
	for i, s := range m.Scenes {
		if s.StartAtSec != starts[i] {
			t.Errorf("Scene %d start %.2f, want %.2f", i, s.StartAtSec, starts[i])
		}
	}
	if m.TotalDuration != 30 {
		t.Errorf("Expected total 30, got %.2f", m.TotalDuration)
	}
}

func TestApplySubSecondTotalIsExactInMillis(t *testing.T) {
	m := &manifest.Manifest{Scenes: []manifest.Scene{
		{ID: "scene-1", Purpose: "hook"},
		{ID: "scene-2", Purpose: "body"},
		{ID: "scene-3", Purpose: "cta"},
	}}
	if _, err := NewDirector(4000, 4000).Apply(m, 300); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	var sum, next int64
	for i, s := range m.Scenes {
		if s.StartAtMs != next {
			t.Errorf("Scene %d starts at %dms, expected %dms", i, s.StartAtMs, next)
		}
		if manifest.Millis(s.DurationSeconds) != s.DurationMs {
			t.Errorf("Scene %d seconds %.3f disagree with %dms", i, s.DurationSeconds, s.DurationMs)
		}
		next = s.StartAtMs + s.DurationMs
		sum += s.DurationMs
		t.Logf("%s: start=%dms dur=%dms (%.3fs)", s.ID, s.StartAtMs, s.DurationMs, s.DurationSeconds)
	}
	if sum != m.TotalMs || m.TotalMs != 300 {
		t.Errorf("Durations sum to %dms, total %dms", sum, m.TotalMs)
	}
}
