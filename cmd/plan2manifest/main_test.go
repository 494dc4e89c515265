package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ivlev/plan2manifest/internal/manifest"
)

const cliPlan = `Platform: tiktok
Duration: 20
Brand: Acme - https://acme.example

Scene 1:
Purpose: hook
Narration: Wait for it.
Effect: zoom_in, lens_flare

Scene 2:
Purpose: cta
Narration: Follow for more.
Visual: https://cdn.example.com/end.png
`

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.toml"), "--log-level", "error"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writePlan(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(cliPlan), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCompileCommand(t *testing.T) {
	dir := t.TempDir()
	planPath := writePlan(t, dir, "launch.md")
	out := filepath.Join(dir, "launch.yaml")
	assets := filepath.Join(dir, "assets")

	_, stderr, err := runCLI(t, "compile", planPath, "--out", out, "--user", "u-1", "--assets-dir", assets)
	if err != nil {
		t.Fatalf("compile failed: %v\n%s", err, stderr)
	}
	t.Log(stderr)

	m, err := manifest.Read(out)
	if err != nil {
		t.Fatalf("manifest not readable: %v", err)
	}
	if m.UserID != "u-1" || len(m.Scenes) != 2 || m.TotalDuration != 20 {
		t.Errorf("Unexpected manifest: user=%s scenes=%d total=%v", m.UserID, len(m.Scenes), m.TotalDuration)
	}
	if m.Brand.QRAsset == "" {
		t.Errorf("Expected brand QR asset with --assets-dir")
	}
	if _, err := os.Stat(m.Assets[m.Brand.QRAsset].Source); err != nil {
		t.Errorf("QR badge not written: %v", err)
	}
	if !strings.Contains(stderr, "lens_flare") {
		t.Errorf("Expected the tiktok warning in output")
	}

	stdout, _, err := runCLI(t, "validate", out, "--format", "json")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(stdout, `"isValid": true`) {
		t.Errorf("Unexpected report: %s", stdout)
	}
}

func TestCompileMalformedPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := runCLI(t, "compile", path, "--out", "-")
	if err == nil || !strings.Contains(err.Error(), "malformed plan") {
		t.Errorf("Expected malformed plan error, got %v", err)
	}
}

func TestDraftCommand(t *testing.T) {
	planPath := writePlan(t, t.TempDir(), "launch.txt")
	stdout, _, err := runCLI(t, "draft", planPath)
	if err != nil {
		t.Fatalf("draft failed: %v", err)
	}
	if !strings.Contains(stdout, `"jobs": []`) {
		t.Errorf("Draft should have an empty job list:\n%s", stdout)
	}
}

func TestBatchCommand(t *testing.T) {
	in := t.TempDir()
	writePlan(t, in, "a.md")
	writePlan(t, in, "b.txt")
	out := filepath.Join(t.TempDir(), "manifests")

	_, stderr, err := runCLI(t, "batch", in, "--out-dir", out, "--workers", "2")
	if err != nil {
		t.Fatalf("batch failed: %v\n%s", err, stderr)
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 manifests, got %d", len(entries))
	}
}

func TestPoliciesCommand(t *testing.T) {
	stdout, _, err := runCLI(t, "policies")
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{"tiktok", "youtube", "social"} {
		if !strings.Contains(stdout, p) {
			t.Errorf("Missing %s in listing", p)
		}
	}

	stdout, _, err = runCLI(t, "policies", "yt")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "lens_flare") {
		t.Errorf("Expected youtube effects:\n%s", stdout)
	}

	export := filepath.Join(t.TempDir(), "policies.yaml")
	if _, _, err := runCLI(t, "policies", "--export", export); err != nil {
		t.Fatal(err)
	}
	if _, _, err := runCLI(t, "--policies", export, "policies", "tiktok"); err != nil {
		t.Errorf("Exported table should load back: %v", err)
	}
}
