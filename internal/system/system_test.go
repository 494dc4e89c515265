package system

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestTakeSnapshot(t *testing.T) {
	s := TakeSnapshot()
	t.Logf("%s", s)
	if s.CPUs <= 0 {
		t.Errorf("Expected at least one CPU, got %d", s.CPUs)
	}
}

func TestPerfReport(t *testing.T) {
	r := PerfReport{
		Build:  "test",
		Input:  "/plans/launch.md",
		Plans:  4,
		Scenes: 12,
		Jobs:   40,
		Total:  2 * time.Second,
		Stages: map[string]time.Duration{"timing": time.Millisecond, "draft": 2 * time.Millisecond},
		Host:   Snapshot{CPUs: 8, MemTotal: 16 << 30, MemUsed: 8 << 30, MemPercent: 50, RSS: 30 << 20},
	}

	out := r.Format()
	if !strings.Contains(out, "Plans/sec: 2.00") {
		t.Errorf("Missing throughput line:\n%s", out)
	}
	if strings.Index(out, "draft") > strings.Index(out, "timing") {
		t.Errorf("Stages should be sorted:\n%s", out)
	}

	line := r.LogLine(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	if !strings.HasPrefix(line, "[2024-05-01 10:00:00] Build: test | Input: launch.md") {
		t.Errorf("Unexpected log line %q", line)
	}
	if !strings.Contains(line, "RSS: 31 MB") {
		t.Errorf("Expected humanized RSS in %q", line)
	}
}

func TestAppendBenchmark(t *testing.T) {
	path := filepath.Join(t.TempDir(), "benchmark.log")
	r := PerfReport{Build: "b", Input: "x.md", Plans: 1}
	for i := 0; i < 2; i++ {
		if err := AppendBenchmark(path, r); err != nil {
			t.Fatal(err)
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "\n"); n != 2 {
		t.Errorf("Expected 2 lines, got %d", n)
	}
}

func TestBufferPool(t *testing.T) {
	p := NewBufferPool()
	buf := p.Get()
	buf.WriteString("manifest")
	p.Put(buf)

	again := p.Get()
	if again.Len() != 0 {
		t.Errorf("Pooled buffer not reset: %q", again.String())
	}
	p.Put(nil)
}
