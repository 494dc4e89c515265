// Package policy holds the per-platform rendering defaults. A Table is
// immutable once built and is passed into each build, so tests and tenants
// can use their own.
package policy

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Generic is the fallback platform.
const Generic = "social"

// DefaultVersion identifies the built-in table.
const DefaultVersion = "2024.1"

// Policy is what a platform's renderer expects when the plan is silent.
type Policy struct {
	Platform          string   `yaml:"platform" json:"platform"`
	DefaultTransition string   `yaml:"defaultTransition" json:"defaultTransition"`
	AllowedEffects    []string `yaml:"allowedEffects" json:"allowedEffects"`
	RecommendedAspect string   `yaml:"recommendedAspect" json:"recommendedAspect"`
	// WatermarkCorner keeps the brand mark clear of the platform's UI chrome.
	WatermarkCorner string   `yaml:"watermarkCorner" json:"watermarkCorner"`
	Aliases         []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// Allows reports whether effect (normalised) is in the allowed set.
func (p Policy) Allows(effect string) bool {
	for _, e := range p.AllowedEffects {
		if e == effect {
			return true
		}
	}
	return false
}

func (p Policy) clone() Policy {
	p.AllowedEffects = append([]string(nil), p.AllowedEffects...)
	p.Aliases = append([]string(nil), p.Aliases...)
	return p
}

// Table is a versioned, read-only lookup of platform policies.
type Table struct {
	version  string
	policies map[string]Policy
	aliases  map[string]string
}

// tableFile is the YAML layout used by Load.
type tableFile struct {
	Version string   `yaml:"version"`
	Extends bool     `yaml:"extends"`
	Entries []Policy `yaml:"platforms"`
}

// New builds a table. Policy slices are copied.
func New(version string, policies []Policy) (*Table, error) {
	t := &Table{
		version:  version,
		policies: make(map[string]Policy, len(policies)),
		aliases:  map[string]string{},
	}
	for _, p := range policies {
		name := strings.ToLower(strings.TrimSpace(p.Platform))
		if name == "" {
			return nil, fmt.Errorf("policy without platform name")
		}
		p.Platform = name
		t.policies[name] = p.clone()
		for _, a := range p.Aliases {
			t.aliases[strings.ToLower(strings.TrimSpace(a))] = name
		}
	}
	if _, ok := t.policies[Generic]; !ok {
		return nil, fmt.Errorf("policy table %q has no %q fallback", version, Generic)
	}
	return t, nil
}

// Version identifies the table in manifests.
func (t *Table) Version() string {
	return t.version
}

// Lookup resolves a platform name or alias. Unknown or empty names return the
// generic policy with ok=false.
func (t *Table) Lookup(platform string) (Policy, bool) {
	name := strings.ToLower(strings.TrimSpace(platform))
	if canonical, ok := t.aliases[name]; ok {
		name = canonical
	}
	if p, ok := t.policies[name]; ok {
		return p.clone(), true
	}
	return t.policies[Generic].clone(), false
}

// Platforms lists platform names in sorted order.
func (t *Table) Platforms() []string {
	names := make([]string, 0, len(t.policies))
	for n := range t.policies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// With returns a new table where the given policies replace existing entries
// of the same platform.
func (t *Table) With(version string, overrides []Policy) (*Table, error) {
	merged := make(map[string]Policy, len(t.policies)+len(overrides))
	for k, v := range t.policies {
		merged[k] = v
	}
	for _, p := range overrides {
		merged[strings.ToLower(strings.TrimSpace(p.Platform))] = p
	}
	list := make([]Policy, 0, len(merged))
	for _, p := range merged {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Platform < list[j].Platform })
	return New(version, list)
}

// Load reads a YAML table. With `extends: true` the file's platforms are
// layered over base; otherwise the file is the whole table.
func Load(path string, base *Table) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse policy table %s: %w", path, err)
	}
	if f.Version == "" {
		return nil, fmt.Errorf("policy table %s: version is required", path)
	}
	if f.Extends {
		if base == nil {
			base = Default()
		}
		return base.With(f.Version, f.Entries)
	}
	return New(f.Version, f.Entries)
}

// Save writes the table as YAML.
func (t *Table) Save(path string) error {
	f := tableFile{Version: t.version}
	for _, name := range t.Platforms() {
		f.Entries = append(f.Entries, t.policies[name].clone())
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
