package plan

import "fmt"

// MalformedPlanError is returned when a plan cannot produce a manifest: no
// scene markers at all, a scene with no content, or a duration too short
// for its scenes. Scene is 0 for plan-level problems. Err is the underlying
// cause, if any.
type MalformedPlanError struct {
	Scene  int
	Line   int
	Reason string
	Err    error
}

func (e *MalformedPlanError) Error() string {
	if e.Scene == 0 {
		return fmt.Sprintf("malformed plan: %s", e.Reason)
	}
	return fmt.Sprintf("malformed plan: scene %d (line %d): %s", e.Scene, e.Line, e.Reason)
}

func (e *MalformedPlanError) Unwrap() error {
	return e.Err
}
