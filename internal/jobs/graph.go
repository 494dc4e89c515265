package jobs

import (
	"container/heap"
	"fmt"
	"slices"
	"sort"

	"github.com/ivlev/plan2manifest/internal/manifest"
)

var stageRank = map[string]int{
	manifest.JobTTS:             0,
	manifest.JobAssetGeneration: 1,
	manifest.JobMusicSelection:  2,
	manifest.JobCompositing:     3,
}

type queueItem struct {
	job   manifest.Job
	scene int
}

// readyQueue pops the most urgent runnable job: lowest priority value, then
// earliest stage, then scene order, then id.
type readyQueue []queueItem

func (q readyQueue) Len() int { return len(q) }

func (q readyQueue) Less(i, j int) bool {
	a, b := q[i], q[j]
	if a.job.Priority != b.job.Priority {
		return a.job.Priority < b.job.Priority
	}
	if stageRank[a.job.Type] != stageRank[b.job.Type] {
		return stageRank[a.job.Type] < stageRank[b.job.Type]
	}
	if a.scene != b.scene {
		return a.scene < b.scene
	}
	return a.job.ID < b.job.ID
}

func (q readyQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *readyQueue) Push(x any) { *q = append(*q, x.(queueItem)) }

func (q *readyQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// Check verifies that ids are unique and every dependency exists.
func Check(jobs []manifest.Job) error {
	ids := make(map[string]struct{}, len(jobs))
	for _, j := range jobs {
		if _, dup := ids[j.ID]; dup {
			return fmt.Errorf("duplicate job id %s", j.ID)
		}
		ids[j.ID] = struct{}{}
	}
	for _, j := range jobs {
		for _, dep := range j.DependsOn {
			if _, ok := ids[dep]; !ok {
				return &MissingDependencyError{Job: j.ID, DependsOn: dep}
			}
		}
	}
	return nil
}

// Order assigns OrderingHint 1..N in a topological order that prefers urgent
// jobs, and returns the jobs sorted by hint. sceneIndex maps scene ids to
// their position; jobs without a scene sort after scene jobs of equal rank.
func Order(jobs []manifest.Job, sceneIndex map[string]int) ([]manifest.Job, error) {
	if err := Check(jobs); err != nil {
		return nil, err
	}

	indegree := make(map[string]int, len(jobs))
	dependents := make(map[string][]string, len(jobs))
	byID := make(map[string]queueItem, len(jobs))
	for _, j := range jobs {
		scene, ok := sceneIndex[j.SceneID]
		if !ok {
			scene = len(sceneIndex)
		}
		byID[j.ID] = queueItem{job: j, scene: scene}
		indegree[j.ID] = len(j.DependsOn)
		for _, dep := range j.DependsOn {
			dependents[dep] = append(dependents[dep], j.ID)
		}
	}

	q := &readyQueue{}
	for _, j := range jobs {
		if indegree[j.ID] == 0 {
			heap.Push(q, byID[j.ID])
		}
	}

	ordered := make([]manifest.Job, 0, len(jobs))
	for q.Len() > 0 {
		item := heap.Pop(q).(queueItem)
		job := item.job
		job.OrderingHint = len(ordered) + 1
		job.DependsOn = slices.Clone(job.DependsOn)
		ordered = append(ordered, job)
		for _, next := range dependents[job.ID] {
			indegree[next]--
			if indegree[next] == 0 {
				heap.Push(q, byID[next])
			}
		}
	}

	if len(ordered) != len(jobs) {
		var stuck []string
		for id, n := range indegree {
			if n > 0 {
				stuck = append(stuck, id)
			}
		}
		sort.Strings(stuck)
		return nil, &CyclicDependencyError{Jobs: stuck}
	}
	return ordered, nil
}

// VerifyOrder checks that every job's hint is greater than the hints of the
// jobs it depends on and that hints are unique.
func VerifyOrder(jobs []manifest.Job) error {
	hints := make(map[string]int, len(jobs))
	used := make(map[int]string, len(jobs))
	for _, j := range jobs {
		if other, dup := used[j.OrderingHint]; dup {
			return fmt.Errorf("jobs %s and %s share ordering hint %d", other, j.ID, j.OrderingHint)
		}
		used[j.OrderingHint] = j.ID
		hints[j.ID] = j.OrderingHint
	}
	for _, j := range jobs {
		for _, dep := range j.DependsOn {
			if hints[dep] >= j.OrderingHint {
				return fmt.Errorf("job %s (hint %d) is not ordered after dependency %s (hint %d)",
					j.ID, j.OrderingHint, dep, hints[dep])
			}
		}
	}
	return nil
}
