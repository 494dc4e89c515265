package jobs

import (
	"fmt"
	"strings"
)

// CyclicDependencyError lists the jobs left unordered because they wait on
// each other.
type CyclicDependencyError struct {
	Jobs []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("job graph has a dependency cycle among: %s", strings.Join(e.Jobs, ", "))
}

// MissingDependencyError is returned when a job depends on an id that is not
// part of the same manifest.
type MissingDependencyError struct {
	Job       string
	DependsOn string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("job %s depends on unknown job %s", e.Job, e.DependsOn)
}
