package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PLAN2MANIFEST_"

// Timing controls the duration allocator and layer lengths.
type Timing struct {
	HookFloorSeconds       float64            `toml:"hook_floor_seconds"`
	CTAFloorSeconds        float64            `toml:"cta_floor_seconds"`
	MinSceneSeconds        float64            `toml:"min_scene_seconds"`
	TransitionSeconds      float64            `toml:"transition_seconds"`
	DefaultDurationSeconds float64            `toml:"default_duration_seconds"`
	Weights                map[string]float64 `toml:"weights"`
}

// Jobs controls job graph checks and batch compilation.
type Jobs struct {
	SoftCeiling int `toml:"soft_ceiling"`
	Workers     int `toml:"workers"`
}

// Policy selects the platform table.
type Policy struct {
	File            string `toml:"file"`
	DefaultPlatform string `toml:"default_platform"`
}

// Output controls where and how manifests are written.
type Output struct {
	Format    string `toml:"format"`
	Dir       string `toml:"dir"`
	AssetsDir string `toml:"assets_dir"`
}

// Log controls the zerolog logger.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config holds all compiler settings. Sections map to TOML tables; the
// untagged fields are set from CLI flags.
type Config struct {
	Timing Timing `toml:"timing"`
	Jobs   Jobs   `toml:"jobs"`
	Policy Policy `toml:"policy"`
	Output Output `toml:"output"`
	Log    Log    `toml:"log"`

	ShowStats    bool   `toml:"-"`
	BuildVersion string `toml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Timing: Timing{
			HookFloorSeconds:       4,
			CTAFloorSeconds:        4,
			MinSceneSeconds:        1,
			TransitionSeconds:      1,
			DefaultDurationSeconds: 30,
			Weights:                map[string]float64{},
		},
		Jobs: Jobs{
			SoftCeiling: 40,
			Workers:     4,
		},
		Policy: Policy{
			DefaultPlatform: "social",
		},
		Output: Output{
			Format: "json",
			Dir:    "manifests",
		},
		Log: Log{
			Level:  "info",
			Format: "pretty",
		},
		BuildVersion: "dev",
	}
}

// Load reads .env files, the optional TOML file at path and PLAN2MANIFEST_*
// overrides, in that order of increasing precedence. A missing file is not an
// error; an empty path skips the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load(".env", ".env.local")

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"LOG_LEVEL":        &c.Log.Level,
		"LOG_FORMAT":       &c.Log.Format,
		"POLICY_FILE":      &c.Policy.File,
		"DEFAULT_PLATFORM": &c.Policy.DefaultPlatform,
		"OUTPUT_FORMAT":    &c.Output.Format,
		"OUTPUT_DIR":       &c.Output.Dir,
		"ASSETS_DIR":       &c.Output.AssetsDir,
	}
	for k, dst := range strs {
		if v := getenv(k); v != "" {
			*dst = v
		}
	}

	floats := map[string]*float64{
		"HOOK_FLOOR_SECONDS":       &c.Timing.HookFloorSeconds,
		"CTA_FLOOR_SECONDS":        &c.Timing.CTAFloorSeconds,
		"TRANSITION_SECONDS":       &c.Timing.TransitionSeconds,
		"DEFAULT_DURATION_SECONDS": &c.Timing.DefaultDurationSeconds,
	}
	for k, dst := range floats {
		v := getenv(k)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, k, err)
		}
		*dst = f
	}

	ints := map[string]*int{
		"JOB_SOFT_CEILING": &c.Jobs.SoftCeiling,
		"WORKERS":          &c.Jobs.Workers,
	}
	for k, dst := range ints {
		v := getenv(k)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, k, err)
		}
		*dst = n
	}
	return nil
}

func getenv(k string) string {
	return strings.TrimSpace(os.Getenv(EnvPrefix + k))
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	t := c.Timing
	if t.HookFloorSeconds < 0 || t.CTAFloorSeconds < 0 {
		return errors.New("timing floors must not be negative")
	}
	if t.MinSceneSeconds <= 0 {
		return errors.New("timing.min_scene_seconds must be positive")
	}
	if t.TransitionSeconds <= 0 {
		return errors.New("timing.transition_seconds must be positive")
	}
	if t.DefaultDurationSeconds <= 0 {
		return errors.New("timing.default_duration_seconds must be positive")
	}
	for purpose, w := range t.Weights {
		if w <= 0 {
			return fmt.Errorf("timing.weights.%s must be positive", purpose)
		}
	}
	if c.Jobs.SoftCeiling <= 0 {
		return errors.New("jobs.soft_ceiling must be positive")
	}
	if c.Jobs.Workers <= 0 {
		return errors.New("jobs.workers must be positive")
	}
	switch strings.ToLower(c.Output.Format) {
	case "json", "yaml", "yml":
	default:
		return fmt.Errorf("output.format %q is not json or yaml", c.Output.Format)
	}
	switch strings.ToLower(c.Log.Format) {
	case "pretty", "console", "json":
	default:
		return fmt.Errorf("log.format %q is not pretty or json", c.Log.Format)
	}
	return nil
}
