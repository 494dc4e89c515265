package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Format selects the on-disk encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" and "yml".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown manifest format %q", s)
}

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Encode writes v (a manifest or a report) in the given format.
func Encode(w io.Writer, v any, f Format) error {
	if f == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Write writes a manifest to a file, choosing the format from the extension.
func Write(m *Manifest, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, m, FormatForPath(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Read loads a manifest from a JSON or YAML file.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if FormatForPath(path) == FormatYAML {
		err = yaml.Unmarshal(data, &m)
	} else {
		err = json.Unmarshal(data, &m)
	}
	if err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return &m, nil
}

// OutputPath builds a timestamped manifest filename inside dir.
func OutputPath(dir, name string, f Format) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	clean := strings.ReplaceAll(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)), " ", "_")
	if clean == "" || clean == "." {
		clean = "manifest"
	}
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", clean, timestamp, f))
}
