package director

import (
	"fmt"
	"math"

	"github.com/ivlev/plan2manifest/internal/manifest"
)

// Purposes with built-in floors.
const (
	PurposeHook = "hook"
	PurposeCTA  = "cta"
)

// Director distributes the requested total duration across scenes.
type Director struct {
	// Floors reserves a minimum duration (ms) for scenes of a purpose.
	Floors map[string]int64
	// Weights splits the remainder between non-floored scenes. Purposes not
	// listed weigh 1.
	Weights map[string]float64
	// MinDwellMs is the claim a non-floored scene keeps when floors alone
	// exceed the total and every claim is scaled down.
	MinDwellMs int64
}

// NewDirector creates a Director with hook and cta floors.
func NewDirector(hookFloorMs, ctaFloorMs int64) *Director {
	return &Director{
		Floors: map[string]int64{
			PurposeHook: hookFloorMs,
			PurposeCTA:  ctaFloorMs,
		},
		Weights:    map[string]float64{},
		MinDwellMs: 1000,
	}
}

// DurationTooShortError means the total cannot give every scene at least one
// millisecond.
type DurationTooShortError struct {
	TotalMs int64
	Scenes  int
}

func (e *DurationTooShortError) Error() string {
	return fmt.Sprintf("duration %dms too short for %d scenes", e.TotalMs, e.Scenes)
}

// Allocation is the timing of one scene.
type Allocation struct {
	StartMs    int64
	DurationMs int64
}

// Allocate computes durations for scenes with the given purposes so that they
// tile totalMs exactly. Every scene except the last is rounded down to whole
// seconds (to milliseconds when the total is shorter than a second per
// scene); the last scene absorbs the remainder. No scene gets zero time.
func (d *Director) Allocate(purposes []string, totalMs int64) ([]Allocation, error) {
	n := len(purposes)
	if n == 0 {
		return nil, fmt.Errorf("no scenes to schedule")
	}
	if totalMs < int64(n) {
		return nil, &DurationTooShortError{TotalMs: totalMs, Scenes: n}
	}
	if n == 1 {
		return []Allocation{{StartMs: 0, DurationMs: totalMs}}, nil
	}

	claims := d.claims(purposes, totalMs)

	unit := int64(1000)
	if totalMs < int64(n)*unit {
		unit = 1
	}

	durations := make([]int64, n)
	var sum int64
	for i := 0; i < n-1; i++ {
		v := int64(math.Floor(claims[i]/float64(unit)+1e-9)) * unit
		if v < unit {
			v = unit
		}
		durations[i] = v
		sum += v
	}
	durations[n-1] = totalMs - sum

	// Minimum bumps can starve the last scene; take time back from the
	// longest earlier scene one unit at a time.
	for durations[n-1] < unit {
		j := longest(durations[:n-1], unit)
		if j < 0 {
			return nil, fmt.Errorf("cannot fit %d scenes into %dms", n, totalMs)
		}
		durations[j] -= unit
		durations[n-1] += unit
	}

	out := make([]Allocation, n)
	var start int64
	for i, v := range durations {
		out[i] = Allocation{StartMs: start, DurationMs: v}
		start += v
	}
	return out, nil
}

// claims returns the unrounded share (ms) of each scene.
func (d *Director) claims(purposes []string, totalMs int64) []float64 {
	n := len(purposes)
	claims := make([]float64, n)
	floored := make([]bool, n)
	weights := make([]float64, n)

	var floorSum, weightSum float64
	floorCount, bodyCount := 0, 0
	for i, p := range purposes {
		if f := d.Floors[p]; f > 0 {
			floored[i] = true
			claims[i] = float64(f)
			floorSum += float64(f)
			floorCount++
			continue
		}
		w, ok := d.Weights[p]
		if !ok || w <= 0 {
			w = 1
		}
		weights[i] = w
		weightSum += w
		bodyCount++
	}

	total := float64(totalMs)
	minDwell := float64(d.MinDwellMs)
	if minDwell <= 0 {
		minDwell = 1000
	}

	if reserved := floorSum + float64(bodyCount)*minDwell; reserved > total {
		scale := total / reserved
		for i := range claims {
			if floored[i] {
				claims[i] *= scale
			} else {
				claims[i] = minDwell * scale
			}
		}
		return claims
	}

	rest := total - floorSum
	for i := range claims {
		switch {
		case bodyCount > 0 && !floored[i]:
			claims[i] = rest * weights[i] / weightSum
		case bodyCount == 0:
			claims[i] += rest / float64(floorCount)
		}
	}
	return claims
}

func longest(durations []int64, unit int64) int {
	best := -1
	for i, v := range durations {
		if v > unit && (best < 0 || v > durations[best]) {
			best = i
		}
	}
	return best
}

// Apply writes the allocation into the manifest scenes and total duration.
func (d *Director) Apply(m *manifest.Manifest, totalMs int64) ([]Allocation, error) {
	purposes := make([]string, len(m.Scenes))
	for i, s := range m.Scenes {
		purposes[i] = s.Purpose
	}
	allocs, err := d.Allocate(purposes, totalMs)
	if err != nil {
		return nil, err
	}
	for i := range m.Scenes {
		m.Scenes[i].StartAtMs = allocs[i].StartMs
		m.Scenes[i].DurationMs = allocs[i].DurationMs
		m.Scenes[i].StartAtSec = manifest.Seconds(allocs[i].StartMs)
		m.Scenes[i].DurationSeconds = manifest.Seconds(allocs[i].DurationMs)
	}
	m.TotalMs = totalMs
	m.TotalDuration = manifest.Seconds(totalMs)
	return allocs, nil
}
