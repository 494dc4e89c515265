package manifest

import "math"

// Version of the manifest layout.
const Version = "1.0"

// Manifest is the fully resolved production description handed to the
// renderer and the job workers. A validated manifest is never modified; a new
// plan always produces a new manifest.
type Manifest struct {
	ID            string            `json:"id" yaml:"id"`
	Version       string            `json:"version" yaml:"version"`
	UserID        string            `json:"userId" yaml:"userId"`
	Title         string            `json:"title,omitempty" yaml:"title,omitempty"`
	Platform      string            `json:"platform" yaml:"platform"`
	PolicyVersion string            `json:"policyVersion" yaml:"policyVersion"`
	AspectRatio   string            `json:"aspectRatio" yaml:"aspectRatio"`
	Language      string            `json:"language,omitempty" yaml:"language,omitempty"`
	TotalDuration float64           `json:"totalDuration" yaml:"totalDuration"` // seconds
	TotalMs       int64             `json:"totalDurationMs" yaml:"totalDurationMs"`
	Scenes        []Scene           `json:"scenes" yaml:"scenes"`
	Assets        map[string]Asset  `json:"assets" yaml:"assets"`
	Audio         Audio             `json:"audio" yaml:"audio"`
	Effects       EffectsPolicy     `json:"effects" yaml:"effects"`
	Brand         Brand             `json:"brand" yaml:"brand"`
	Jobs          []Job             `json:"jobs" yaml:"jobs"`
	Extras        map[string]string `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// Scene is one contiguous time slice of the video. The Ms fields are the
// exact timeline; the seconds fields are the same values for display and
// may not add up exactly in floating point. Overlays are asset keys
// composited over the scene (logo, brand QR).
type Scene struct {
	ID              string             `json:"id" yaml:"id"`
	Purpose         string             `json:"purpose" yaml:"purpose"`
	Title           string             `json:"title,omitempty" yaml:"title,omitempty"`
	Narration       string             `json:"narration,omitempty" yaml:"narration,omitempty"`
	VisualAnchor    string             `json:"visualAnchor,omitempty" yaml:"visualAnchor,omitempty"`
	DurationSeconds float64            `json:"durationSeconds" yaml:"durationSeconds"`
	StartAtSec      float64            `json:"startAtSec" yaml:"startAtSec"`
	DurationMs      int64              `json:"durationMs" yaml:"durationMs"`
	StartAtMs       int64              `json:"startAtMs" yaml:"startAtMs"`
	Effects         []EffectDescriptor `json:"effects" yaml:"effects"`
	Overlays        []string           `json:"overlays,omitempty" yaml:"overlays,omitempty"`
	Extras          map[string]string  `json:"extras,omitempty" yaml:"extras,omitempty"`
}

// EffectDescriptor is an effect with its composition order inside a scene.
type EffectDescriptor struct {
	Name          string  `json:"name" yaml:"name"`
	Class         string  `json:"class" yaml:"class"`
	OrderingHint  int     `json:"orderingHint" yaml:"orderingHint"`
	LayerDuration float64 `json:"layerDuration" yaml:"layerDuration"`
}

// Asset kinds.
const (
	AssetVisual  = "visual"
	AssetLogo    = "logo"
	AssetBrandQR = "brand_qr"
)

// Asset describes a visual input, either already resolved (a URL or file the
// renderer can fetch) or pending an asset_generation job.
type Asset struct {
	Kind     string `json:"kind" yaml:"kind"`
	SceneID  string `json:"sceneId,omitempty" yaml:"sceneId,omitempty"`
	Source   string `json:"source,omitempty" yaml:"source,omitempty"`
	Prompt   string `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Resolved bool   `json:"resolved" yaml:"resolved"`
}

// Audio holds voice and music settings plus the cue map keyed by scene id
// (narration cues) and MusicCueKey (the music bed).
type Audio struct {
	Voice Voice          `json:"voice" yaml:"voice"`
	Music Music          `json:"music" yaml:"music"`
	Cues  map[string]Cue `json:"cues" yaml:"cues"`
}

// MusicCueKey is the cue map key of the manifest-wide music bed.
const MusicCueKey = "music"

type Voice struct {
	Style    string `json:"style,omitempty" yaml:"style,omitempty"`
	VoiceID  string `json:"voiceId,omitempty" yaml:"voiceId,omitempty"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
}

type Music struct {
	Mood string `json:"mood,omitempty" yaml:"mood,omitempty"`
}

// Cue is a timed audio event.
type Cue struct {
	Kind            string  `json:"kind" yaml:"kind"`
	SceneID         string  `json:"sceneId,omitempty" yaml:"sceneId,omitempty"`
	StartAtSec      float64 `json:"startAtSec" yaml:"startAtSec"`
	DurationSeconds float64 `json:"durationSeconds" yaml:"durationSeconds"`
	Text            string  `json:"text,omitempty" yaml:"text,omitempty"`
}

// EffectsPolicy is the effect section of the manifest.
type EffectsPolicy struct {
	Allowed           []string                  `json:"allowed" yaml:"allowed"`
	DefaultTransition string                    `json:"defaultTransition" yaml:"defaultTransition"`
	TransitionSource  string                    `json:"transitionSource" yaml:"transitionSource"` // "plan" or "policy"
	OrderingHints     map[string]map[string]int `json:"orderingHints" yaml:"orderingHints"`
	ShotstackConfig   ShotstackConfig           `json:"shotstackConfig" yaml:"shotstackConfig"`
}

type ShotstackConfig struct {
	Layers []Layer `json:"layers" yaml:"layers"`
}

// Layer is one renderer-native effect instance. Start is absolute (seconds
// from the start of the video).
type Layer struct {
	SceneID      string  `json:"sceneId" yaml:"sceneId"`
	Effect       string  `json:"effect" yaml:"effect"`
	OrderingHint int     `json:"orderingHint" yaml:"orderingHint"`
	Start        float64 `json:"start" yaml:"start"`
	Length       float64 `json:"length" yaml:"length"`
	Transient    bool    `json:"transient,omitempty" yaml:"transient,omitempty"`
}

// Brand is the brand consistency block.
type Brand struct {
	Name            string   `json:"name,omitempty" yaml:"name,omitempty"`
	URL             string   `json:"url,omitempty" yaml:"url,omitempty"`
	Logo            string   `json:"logo,omitempty" yaml:"logo,omitempty"`
	WatermarkCorner string   `json:"watermarkCorner,omitempty" yaml:"watermarkCorner,omitempty"`
	LogoScenes      []string `json:"logoScenes,omitempty" yaml:"logoScenes,omitempty"`
	QRAsset         string   `json:"qrAsset,omitempty" yaml:"qrAsset,omitempty"`
}

// Job types understood by the worker subsystem.
const (
	JobTTS             = "tts"
	JobAssetGeneration = "asset_generation"
	JobMusicSelection  = "music_selection"
	JobCompositing     = "compositing"
)

// Job is a unit of asynchronous work. Lower Priority runs first; OrderingHint
// is a topological sequence number over DependsOn.
type Job struct {
	ID           string     `json:"id" yaml:"id"`
	Type         string     `json:"type" yaml:"type"`
	SceneID      string     `json:"sceneId,omitempty" yaml:"sceneId,omitempty"`
	Priority     int        `json:"priority" yaml:"priority"`
	OrderingHint int        `json:"orderingHint" yaml:"orderingHint"`
	DependsOn    []string   `json:"dependsOn" yaml:"dependsOn"`
	Payload      JobPayload `json:"payload" yaml:"payload"`
}

type JobPayload struct {
	Text            string   `json:"text,omitempty" yaml:"text,omitempty"`
	Prompt          string   `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Voice           string   `json:"voice,omitempty" yaml:"voice,omitempty"`
	VoiceID         string   `json:"voiceId,omitempty" yaml:"voiceId,omitempty"`
	Language        string   `json:"language,omitempty" yaml:"language,omitempty"`
	Mood            string   `json:"mood,omitempty" yaml:"mood,omitempty"`
	AspectRatio     string   `json:"aspectRatio,omitempty" yaml:"aspectRatio,omitempty"`
	DurationSeconds float64  `json:"durationSeconds,omitempty" yaml:"durationSeconds,omitempty"`
	Overlays        []string `json:"overlays,omitempty" yaml:"overlays,omitempty"`
}

// Seconds converts milliseconds to seconds.
func Seconds(ms int64) float64 {
	return float64(ms) / 1000
}

// Millis converts seconds back to whole milliseconds.
func Millis(sec float64) int64 {
	return int64(math.Round(sec * 1000))
}

// UsedEffects lists effect names in scene order, each once.
func (m *Manifest) UsedEffects() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, s := range m.Scenes {
		for _, e := range s.Effects {
			if _, ok := seen[e.Name]; ok {
				continue
			}
			seen[e.Name] = struct{}{}
			out = append(out, e.Name)
		}
	}
	return out
}
