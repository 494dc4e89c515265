package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ivlev/plan2manifest/internal/config"
	"github.com/ivlev/plan2manifest/internal/director"
	"github.com/ivlev/plan2manifest/internal/effects"
	"github.com/ivlev/plan2manifest/internal/jobs"
	"github.com/ivlev/plan2manifest/internal/manifest"
	"github.com/ivlev/plan2manifest/internal/plan"
	"github.com/ivlev/plan2manifest/internal/policy"
	"github.com/ivlev/plan2manifest/internal/validator"
)

// Asset map keys outside the per-scene entries.
const (
	LogoAssetKey    = "logo"
	BrandQRAssetKey = "brand-qr"
)

// Transition sources recorded in the manifest.
const (
	SourcePlan   = "plan"
	SourcePolicy = "policy"
)

var manifestNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("plan2manifest"))

// Request is one plan to compile.
type Request struct {
	Name     string
	PlanText string
	UserID   string
	// ResolvedAssets maps scene ids to assets the caller already has.
	ResolvedAssets map[string]string
	// BrandQR is the path of a rendered brand QR badge, if any.
	BrandQR string
}

// Result is a validated manifest with its report.
type Result struct {
	Manifest *manifest.Manifest
	Report   validator.Report
	Timings  map[string]time.Duration
}

// Compiler turns plans into manifests. It holds no per-build state and is
// safe for concurrent use.
type Compiler struct {
	Config    config.Config
	Policies  *policy.Table
	Director  *director.Director
	Resolver  *effects.Resolver
	Validator *validator.Validator
	log       zerolog.Logger
}

// NewCompiler wires the pipeline stages from cfg. A nil table uses the
// built-in policies.
func NewCompiler(cfg config.Config, policies *policy.Table, log zerolog.Logger) *Compiler {
	if policies == nil {
		policies = policy.Default()
	}
	d := director.NewDirector(manifest.Millis(cfg.Timing.HookFloorSeconds), manifest.Millis(cfg.Timing.CTAFloorSeconds))
	for purpose, w := range cfg.Timing.Weights {
		d.Weights[strings.ToLower(purpose)] = w
	}
	if cfg.Timing.MinSceneSeconds > 0 {
		d.MinDwellMs = manifest.Millis(cfg.Timing.MinSceneSeconds)
	}
	return &Compiler{
		Config:    cfg,
		Policies:  policies,
		Director:  d,
		Resolver:  effects.NewResolver(effects.Default(), manifest.Millis(cfg.Timing.TransitionSeconds)),
		Validator: validator.New(policies, cfg.Jobs.SoftCeiling),
		log:       log,
	}
}

// Draft parses the plan and returns the pre-timing manifest: scenes, effect
// order, policy defaults, assets and brand block, with no durations or jobs.
func (c *Compiler) Draft(req Request) (*manifest.Manifest, error) {
	m, _, err := c.draft(req)
	return m, err
}

func (c *Compiler) draft(req Request) (*manifest.Manifest, *plan.Plan, error) {
	p, err := plan.Parse(req.PlanText)
	if err != nil {
		return nil, nil, err
	}
	g := p.Globals

	platform := g.Platform
	if platform == "" {
		platform = c.Config.Policy.DefaultPlatform
	}
	pol, known := c.Policies.Lookup(platform)
	if known {
		platform = pol.Platform
	}

	m := &manifest.Manifest{
		ID:            manifestID(req.UserID, req.PlanText, c.Policies.Version()),
		Version:       manifest.Version,
		UserID:        req.UserID,
		Title:         g.Title,
		Platform:      platform,
		PolicyVersion: c.Policies.Version(),
		AspectRatio:   g.Aspect,
		Language:      g.Language,
		TotalDuration: manifest.Seconds(c.requestedMs(g)),
		TotalMs:       c.requestedMs(g),
		Assets:        map[string]manifest.Asset{},
		Jobs:          []manifest.Job{},
	}
	if m.AspectRatio == "" {
		m.AspectRatio = pol.RecommendedAspect
	}
	if m.Title == "" {
		m.Title = p.Scenes[0].Title
	}
	if len(g.Extras) > 0 {
		m.Extras = g.Extras
	}

	m.Effects = manifest.EffectsPolicy{
		Allowed:           pol.AllowedEffects,
		DefaultTransition: pol.DefaultTransition,
		TransitionSource:  SourcePolicy,
		OrderingHints:     map[string]map[string]int{},
		ShotstackConfig:   manifest.ShotstackConfig{Layers: []manifest.Layer{}},
	}
	if t := effects.Normalize(g.Transition); t != "" {
		m.Effects.DefaultTransition = t
		m.Effects.TransitionSource = SourcePlan
	}

	for _, s := range p.Scenes {
		scene := manifest.Scene{
			ID:           s.ID(),
			Purpose:      s.Purpose,
			Title:        s.Title,
			Narration:    s.Narration,
			VisualAnchor: s.Visual,
			Effects:      c.Resolver.Resolve(s.Effects),
		}
		if len(s.Extras) > 0 {
			scene.Extras = s.Extras
		}
		m.Scenes = append(m.Scenes, scene)
		m.Effects.OrderingHints[scene.ID] = effects.HintMap(scene.Effects)
		m.Assets[scene.ID] = sceneAsset(scene, req.ResolvedAssets)
	}

	m.Audio = manifest.Audio{
		Voice: manifest.Voice{Style: g.Voice, VoiceID: g.VoiceID, Language: g.Language},
		Music: manifest.Music{Mood: g.Music},
		Cues:  map[string]manifest.Cue{},
	}

	c.brand(m, g, pol, req.BrandQR)
	return m, p, nil
}

func sceneAsset(s manifest.Scene, resolved map[string]string) manifest.Asset {
	a := manifest.Asset{Kind: manifest.AssetVisual, SceneID: s.ID}
	switch src, ok := resolved[s.ID]; {
	case ok && src != "":
		a.Source, a.Resolved = src, true
	case manifest.IsReference(s.VisualAnchor):
		a.Source, a.Resolved = s.VisualAnchor, true
	case s.VisualAnchor != "":
		a.Prompt = s.VisualAnchor
	default:
		a.Prompt = s.Narration
	}
	return a
}

// brand fills the brand block. Logo scenes are the cta scenes plus any scene
// that reveals the logo; they get the logo as an overlay, and cta scenes also
// get the brand QR badge.
func (c *Compiler) brand(m *manifest.Manifest, g plan.Globals, pol policy.Policy, qrPath string) {
	b := manifest.Brand{Name: g.Brand, URL: g.BrandURL, Logo: g.Logo}
	if g.Logo != "" {
		b.Logo = LogoAssetKey
		m.Assets[LogoAssetKey] = manifest.Asset{
			Kind:     manifest.AssetLogo,
			Source:   g.Logo,
			Resolved: manifest.IsReference(g.Logo),
		}
	}
	if qrPath != "" && g.BrandURL != "" {
		b.QRAsset = BrandQRAssetKey
		m.Assets[BrandQRAssetKey] = manifest.Asset{
			Kind:     manifest.AssetBrandQR,
			Source:   qrPath,
			Prompt:   g.BrandURL,
			Resolved: true,
		}
	}
	if b.Name == "" && b.Logo == "" && b.URL == "" {
		m.Brand = b
		return
	}

	b.WatermarkCorner = pol.WatermarkCorner
	for i := range m.Scenes {
		s := &m.Scenes[i]
		cta := s.Purpose == director.PurposeCTA
		if cta || hasEffect(*s, "logo_reveal") {
			b.LogoScenes = append(b.LogoScenes, s.ID)
			if b.Logo != "" {
				s.Overlays = append(s.Overlays, LogoAssetKey)
			}
		}
		if cta && b.QRAsset != "" {
			s.Overlays = append(s.Overlays, BrandQRAssetKey)
		}
	}
	m.Brand = b
}

func hasEffect(s manifest.Scene, name string) bool {
	for _, e := range s.Effects {
		if e.Name == name {
			return true
		}
	}
	return false
}

func (c *Compiler) requestedMs(g plan.Globals) int64 {
	if g.DurationMs > 0 {
		return g.DurationMs
	}
	return manifest.Millis(c.Config.Timing.DefaultDurationSeconds)
}

func manifestID(userID, text, policyVersion string) string {
	key := strings.Join([]string{userID, policyVersion, text}, "\x00")
	return uuid.NewSHA1(manifestNamespace, []byte(key)).String()
}

// Compile runs the full pipeline. Malformed plans and broken job graphs are
// returned as errors; everything else ends up in the report.
func (c *Compiler) Compile(req Request) (*Result, error) {
	timings := map[string]time.Duration{}
	stage := func(name string, start time.Time) {
		timings[name] = time.Since(start)
		c.log.Debug().Str("plan", req.Name).Str("stage", name).Dur("elapsed", timings[name]).Msg("stage done")
	}

	start := time.Now()
	m, p, err := c.draft(req)
	if err != nil {
		return nil, fmt.Errorf("draft: %w", err)
	}
	stage("draft", start)

	// Распределяем длительность по сценам
	start = time.Now()
	totalMs := c.requestedMs(p.Globals)
	allocs, err := c.Director.Apply(m, totalMs)
	if err != nil {
		var short *director.DurationTooShortError
		if errors.As(err, &short) {
			return nil, &plan.MalformedPlanError{Reason: short.Error(), Err: err}
		}
		return nil, fmt.Errorf("timing: %w", err)
	}
	for i := range m.Scenes {
		s := &m.Scenes[i]
		layers := c.Resolver.Layers(s.ID, s.Effects, allocs[i].StartMs, allocs[i].DurationMs)
		m.Effects.ShotstackConfig.Layers = append(m.Effects.ShotstackConfig.Layers, layers...)
		if s.Narration != "" {
			m.Audio.Cues[s.ID] = manifest.Cue{
				Kind:            "narration",
				SceneID:         s.ID,
				StartAtSec:      s.StartAtSec,
				DurationSeconds: s.DurationSeconds,
				Text:            s.Narration,
			}
		}
	}
	// Музыка звучит на всём ролике
	m.Audio.Cues[manifest.MusicCueKey] = manifest.Cue{
		Kind:            "music",
		StartAtSec:      0,
		DurationSeconds: m.TotalDuration,
		Text:            m.Audio.Music.Mood,
	}
	stage("timing", start)

	// Граф задач для воркеров
	start = time.Now()
	resolved := make(map[string]bool, len(m.Scenes))
	for _, s := range m.Scenes {
		resolved[s.ID] = m.Assets[s.ID].Resolved
	}
	list, err := jobs.Build(jobs.Input{
		Scenes:      m.Scenes,
		Resolved:    resolved,
		Voice:       m.Audio.Voice,
		Music:       m.Audio.Music,
		AspectRatio: m.AspectRatio,
		TotalSecs:   m.TotalDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("jobs: %w", err)
	}
	m.Jobs = list
	stage("jobs", start)

	start = time.Now()
	report := c.Validator.Validate(m)
	// Замечания парсера попадают в отчёт как примечания
	for _, w := range p.Warnings {
		report.Add(validator.Note(w))
	}
	stage("validate", start)

	c.log.Info().
		Str("plan", req.Name).
		Str("manifest", m.ID).
		Int("scenes", len(m.Scenes)).
		Int("jobs", len(m.Jobs)).
		Bool("valid", report.IsValid).
		Int("warnings", len(report.Warnings)).
		Msg("compiled")

	return &Result{Manifest: m.Clone(), Report: report, Timings: timings}, nil
}
