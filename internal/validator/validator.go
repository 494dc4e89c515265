package validator

import (
	"fmt"
	"sort"

	"github.com/ivlev/plan2manifest/internal/effects"
	"github.com/ivlev/plan2manifest/internal/jobs"
	"github.com/ivlev/plan2manifest/internal/manifest"
	"github.com/ivlev/plan2manifest/internal/policy"
)

// DefaultJobSoftCeiling is the job count above which batching is suggested.
const DefaultJobSoftCeiling = 40

// Report is the validator result. IsValid is false only for structural
// violations.
type Report struct {
	IsValid       bool      `json:"isValid" yaml:"isValid"`
	Warnings      []string  `json:"warnings" yaml:"warnings"`
	Optimizations []string  `json:"optimizations" yaml:"optimizations"`
	Findings      []Finding `json:"-" yaml:"-"`
}

// Add records a finding.
func (r *Report) Add(f Finding) {
	r.Findings = append(r.Findings, f)
	switch {
	case f.Structural():
		r.IsValid = false
		r.Warnings = append(r.Warnings, f.String())
	case f.Optimization():
		r.Optimizations = append(r.Optimizations, f.String())
	default:
		r.Warnings = append(r.Warnings, f.String())
	}
}

// Validator checks manifests against a platform policy table.
type Validator struct {
	Policies       *policy.Table
	JobSoftCeiling int
}

// New creates a Validator. A nil table uses policy.Default().
func New(table *policy.Table, jobSoftCeiling int) *Validator {
	if table == nil {
		table = policy.Default()
	}
	if jobSoftCeiling <= 0 {
		jobSoftCeiling = DefaultJobSoftCeiling
	}
	return &Validator{Policies: table, JobSoftCeiling: jobSoftCeiling}
}

// Validate inspects m without modifying it.
func (v *Validator) Validate(m *manifest.Manifest) Report {
	r := Report{IsValid: true, Warnings: []string{}, Optimizations: []string{}}

	v.checkTiming(m, &r)
	v.checkEffectHints(m, &r)
	v.checkJobs(m, &r)
	v.checkPlatform(m, &r)

	if len(m.Jobs) > v.JobSoftCeiling {
		r.Add(JobVolumeOptimization{Jobs: len(m.Jobs), Ceiling: v.JobSoftCeiling})
	}
	return r
}

// checkTiming verifies tiling on the millisecond fields and that the seconds
// fields say the same thing.
func (v *Validator) checkTiming(m *manifest.Manifest, r *Report) {
	if len(m.Scenes) == 0 {
		r.Add(StructuralViolation{Reason: "manifest has no scenes"})
		return
	}
	var next, sum int64
	for i, s := range m.Scenes {
		if s.DurationMs <= 0 {
			r.Add(StructuralViolation{Reason: fmt.Sprintf("%s has non-positive duration %dms", s.ID, s.DurationMs)})
		}
		if i == 0 && s.StartAtMs != 0 {
			r.Add(StructuralViolation{Reason: fmt.Sprintf("%s starts at %dms instead of 0", s.ID, s.StartAtMs)})
		}
		if i > 0 && s.StartAtMs != next {
			r.Add(StructuralViolation{Reason: fmt.Sprintf("%s starts at %dms but the previous scene ends at %dms",
				s.ID, s.StartAtMs, next)})
		}
		if manifest.Millis(s.StartAtSec) != s.StartAtMs || manifest.Millis(s.DurationSeconds) != s.DurationMs {
			r.Add(StructuralViolation{Reason: fmt.Sprintf("%s seconds (%.3f+%.3f) disagree with %dms+%dms",
				s.ID, s.StartAtSec, s.DurationSeconds, s.StartAtMs, s.DurationMs)})
		}
		next = s.StartAtMs + s.DurationMs
		sum += s.DurationMs
	}
	if sum != m.TotalMs {
		r.Add(StructuralViolation{Reason: fmt.Sprintf("scene durations sum to %dms, total is %dms", sum, m.TotalMs)})
	}
	if manifest.Millis(m.TotalDuration) != m.TotalMs {
		r.Add(StructuralViolation{Reason: fmt.Sprintf("total %.3fs disagrees with %dms", m.TotalDuration, m.TotalMs)})
	}
}

func (v *Validator) checkEffectHints(m *manifest.Manifest, r *Report) {
	for _, s := range m.Scenes {
		seen := make(map[int]string, len(s.Effects))
		for _, e := range s.Effects {
			if other, dup := seen[e.OrderingHint]; dup {
				r.Add(StructuralViolation{Reason: fmt.Sprintf("%s: effects %s and %s share ordering hint %d",
					s.ID, other, e.Name, e.OrderingHint)})
			}
			seen[e.OrderingHint] = e.Name
		}
	}
}

func (v *Validator) checkJobs(m *manifest.Manifest, r *Report) {
	sceneIndex := make(map[string]int, len(m.Scenes))
	for i, s := range m.Scenes {
		sceneIndex[s.ID] = i
	}
	for _, j := range m.Jobs {
		if j.SceneID == "" {
			continue
		}
		if _, ok := sceneIndex[j.SceneID]; !ok {
			r.Add(StructuralViolation{Reason: fmt.Sprintf("job %s refers to unknown scene %s", j.ID, j.SceneID)})
		}
	}
	if _, err := jobs.Order(m.Jobs, sceneIndex); err != nil {
		r.Add(StructuralViolation{Reason: err.Error()})
		return
	}
	if err := jobs.VerifyOrder(m.Jobs); err != nil {
		r.Add(StructuralViolation{Reason: err.Error()})
	}
}

func (v *Validator) checkPlatform(m *manifest.Manifest, r *Report) {
	p, known := v.Policies.Lookup(m.Platform)
	if !known && m.Platform != "" {
		r.Add(UnknownPlatformWarning{Platform: m.Platform, Fallback: p.Platform})
	}

	unknown := map[string][]string{}
	disallowed := map[string][]string{}
	var order []string
	for _, s := range m.Scenes {
		for _, e := range s.Effects {
			_, inUnknown := unknown[e.Name]
			_, inDisallowed := disallowed[e.Name]
			if !inUnknown && !inDisallowed {
				order = append(order, e.Name)
			}
			if !effects.Known(e) {
				unknown[e.Name] = append(unknown[e.Name], s.ID)
			}
			if !p.Allows(e.Name) {
				disallowed[e.Name] = append(disallowed[e.Name], s.ID)
			}
		}
	}

	for _, name := range order {
		if scenes, ok := unknown[name]; ok {
			r.Add(UnknownEffectWarning{Effect: name, Scenes: scenes})
		}
	}
	for _, name := range order {
		if scenes, ok := disallowed[name]; ok {
			r.Add(PlatformMismatchWarning{Platform: p.Platform, Effect: name, Scenes: scenes})
		}
	}

	if m.AspectRatio != "" && m.AspectRatio != p.RecommendedAspect {
		r.Add(AspectMismatchWarning{Platform: p.Platform, Aspect: m.AspectRatio, Recommended: p.RecommendedAspect})
	}
}

// Sorted returns the report messages in a stable order for display.
func (r Report) Sorted() []string {
	out := append(append([]string(nil), r.Warnings...), r.Optimizations...)
	sort.Strings(out)
	return out
}
