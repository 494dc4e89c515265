package validator

import (
	"fmt"
	"strings"
)

// Finding is one validator observation. Structural findings make the
// manifest invalid; everything else is advisory.
type Finding interface {
	fmt.Stringer
	Structural() bool
	Optimization() bool
}

// UnknownEffectWarning: the effect is not in the layering table and was placed
// in the trailing band.
type UnknownEffectWarning struct {
	Effect string
	Scenes []string
}

func (w UnknownEffectWarning) String() string {
	return fmt.Sprintf("effect %q (%s) is not in the layering table; composited last",
		w.Effect, strings.Join(w.Scenes, ", "))
}

func (UnknownEffectWarning) Structural() bool   { return false }
func (UnknownEffectWarning) Optimization() bool { return false }

// PlatformMismatchWarning: the effect is outside the platform's allowed set.
// The effect stays in the manifest.
type PlatformMismatchWarning struct {
	Platform string
	Effect   string
	Scenes   []string
}

func (w PlatformMismatchWarning) String() string {
	return fmt.Sprintf("effect %q is not supported on %s (%s); kept as requested",
		w.Effect, w.Platform, strings.Join(w.Scenes, ", "))
}

func (PlatformMismatchWarning) Structural() bool   { return false }
func (PlatformMismatchWarning) Optimization() bool { return false }

// AspectMismatchWarning: the aspect ratio differs from the platform's
// recommendation.
type AspectMismatchWarning struct {
	Platform    string
	Aspect      string
	Recommended string
}

func (w AspectMismatchWarning) String() string {
	return fmt.Sprintf("aspect ratio %s differs from the %s recommendation %s",
		w.Aspect, w.Platform, w.Recommended)
}

func (AspectMismatchWarning) Structural() bool   { return false }
func (AspectMismatchWarning) Optimization() bool { return false }

// UnknownPlatformWarning: the plan named a platform the table does not know.
type UnknownPlatformWarning struct {
	Platform string
	Fallback string
}

func (w UnknownPlatformWarning) String() string {
	return fmt.Sprintf("platform %q is unknown; %s defaults applied", w.Platform, w.Fallback)
}

func (UnknownPlatformWarning) Structural() bool   { return false }
func (UnknownPlatformWarning) Optimization() bool { return false }

// JobVolumeOptimization suggests batching when the job count is above the
// soft ceiling.
type JobVolumeOptimization struct {
	Jobs    int
	Ceiling int
}

func (o JobVolumeOptimization) String() string {
	return fmt.Sprintf("%d jobs exceed the soft ceiling of %d; consider batching tts and asset generation",
		o.Jobs, o.Ceiling)
}

func (JobVolumeOptimization) Structural() bool   { return false }
func (JobVolumeOptimization) Optimization() bool { return true }

// StructuralViolation breaks a timing or dependency invariant.
type StructuralViolation struct {
	Reason string
}

func (v StructuralViolation) String() string {
	return "structural: " + v.Reason
}

func (StructuralViolation) Structural() bool   { return true }
func (StructuralViolation) Optimization() bool { return false }

// Note is a free-form advisory message, e.g. a tokenizer warning.
type Note string

func (n Note) String() string { return string(n) }

func (Note) Structural() bool   { return false }
func (Note) Optimization() bool { return false }
