package system

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Snapshot is the host state recorded alongside a performance report.
type Snapshot struct {
	CPUs       int
	MemTotal   uint64
	MemUsed    uint64
	MemPercent float64
	RSS        uint64
}

// TakeSnapshot reads CPU count, memory usage and the process RSS. Fields that
// cannot be read stay zero.
func TakeSnapshot() Snapshot {
	var s Snapshot
	if n, err := cpu.Counts(true); err == nil {
		s.CPUs = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.MemTotal = vm.Total
		s.MemUsed = vm.Used
		s.MemPercent = vm.UsedPercent
	}
	// Память текущего процесса
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mi, err := p.MemoryInfo(); err == nil {
			s.RSS = mi.RSS
		}
	}
	return s
}

func (s Snapshot) String() string {
	return fmt.Sprintf("CPUs: %d | Memory: %s / %s (%.1f%%) | RSS: %s",
		s.CPUs, humanize.Bytes(s.MemUsed), humanize.Bytes(s.MemTotal), s.MemPercent, humanize.Bytes(s.RSS))
}

// PerfReport summarises one compile or batch run.
type PerfReport struct {
	Build  string
	Input  string
	Plans  int
	Scenes int
	Jobs   int
	Total  time.Duration
	Stages map[string]time.Duration
	Host   Snapshot
}

// Format renders the report block printed by --stats.
func (r PerfReport) Format() string {
	var b strings.Builder
	b.WriteString("--- [PERFORMANCE REPORT] ---\n")
	fmt.Fprintf(&b, "Build: %s\n", r.Build)
	fmt.Fprintf(&b, "Plans: %d | Scenes: %d | Jobs: %d\n", r.Plans, r.Scenes, r.Jobs)
	fmt.Fprintf(&b, "Total Time: %s\n", r.Total)
	for _, name := range r.stageNames() {
		fmt.Fprintf(&b, "  %s: %s\n", name, r.Stages[name])
	}
	if r.Total > 0 {
		fmt.Fprintf(&b, "Plans/sec: %.2f\n", float64(r.Plans)/r.Total.Seconds())
	}
	fmt.Fprintf(&b, "%s\n", r.Host)
	b.WriteString("----------------------------\n")
	return b.String()
}

func (r PerfReport) stageNames() []string {
	names := make([]string, 0, len(r.Stages))
	for n := range r.Stages {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LogLine is the single-line form appended to benchmark.log.
func (r PerfReport) LogLine(now time.Time) string {
	return fmt.Sprintf("[%s] Build: %s | Input: %s | Plans: %d | Scenes: %d | Jobs: %d | Total: %s | RSS: %s\n",
		now.Format("2006-01-02 15:04:05"),
		r.Build,
		filepath.Base(r.Input),
		r.Plans,
		r.Scenes,
		r.Jobs,
		r.Total,
		humanize.Bytes(r.Host.RSS),
	)
}

// AppendBenchmark appends the report to the log at path.
func AppendBenchmark(path string, r PerfReport) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(r.LogLine(time.Now())); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
