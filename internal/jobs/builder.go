package jobs

import (
	"fmt"
	"slices"

	"github.com/ivlev/plan2manifest/internal/manifest"
)

// HookPurpose marks scenes whose jobs are rendered first for previews.
const HookPurpose = "hook"

// Input is everything the builder needs from a timed manifest.
type Input struct {
	Scenes []manifest.Scene
	// Resolved lists scene ids whose visual asset already exists.
	Resolved    map[string]bool
	Voice       manifest.Voice
	Music       manifest.Music
	AspectRatio string
	TotalSecs   float64
}

// ID helpers keep job ids stable across builds.
func TTSJobID(sceneID string) string { return fmt.Sprintf("tts-%s", sceneID) }

func AssetJobID(sceneID string) string { return fmt.Sprintf("asset-%s", sceneID) }

func CompositingJobID(sceneID string) string { return fmt.Sprintf("compositing-%s", sceneID) }

// MusicJobID is the id of the manifest-wide music selection job.
const MusicJobID = "music-selection"

// Build derives the job graph: tts per narrated scene, asset_generation per
// scene without a resolved visual, one music_selection, and compositing per
// scene depending on that scene's tts/asset jobs and carrying its overlays.
// Jobs feeding a hook scene get priority 0; other scene jobs follow scene
// order from 1; music comes last. The result is ordered by OrderingHint.
func Build(in Input) ([]manifest.Job, error) {
	sceneIndex := make(map[string]int, len(in.Scenes))
	var list []manifest.Job

	for i, s := range in.Scenes {
		sceneIndex[s.ID] = i
		priority := i + 1
		if s.Purpose == HookPurpose {
			priority = 0
		}

		var deps []string
		if s.Narration != "" {
			id := TTSJobID(s.ID)
			list = append(list, manifest.Job{
				ID:        id,
				Type:      manifest.JobTTS,
				SceneID:   s.ID,
				Priority:  priority,
				DependsOn: []string{},
				Payload: manifest.JobPayload{
					Text:            s.Narration,
					Voice:           in.Voice.Style,
					VoiceID:         in.Voice.VoiceID,
					Language:        in.Voice.Language,
					DurationSeconds: s.DurationSeconds,
				},
			})
			deps = append(deps, id)
		}

		if !in.Resolved[s.ID] {
			id := AssetJobID(s.ID)
			prompt := s.VisualAnchor
			if prompt == "" {
				prompt = s.Narration
			}
			list = append(list, manifest.Job{
				ID:        id,
				Type:      manifest.JobAssetGeneration,
				SceneID:   s.ID,
				Priority:  priority,
				DependsOn: []string{},
				Payload: manifest.JobPayload{
					Prompt:          prompt,
					AspectRatio:     in.AspectRatio,
					DurationSeconds: s.DurationSeconds,
				},
			})
			deps = append(deps, id)
		}

		if deps == nil {
			deps = []string{}
		}
		list = append(list, manifest.Job{
			ID:        CompositingJobID(s.ID),
			Type:      manifest.JobCompositing,
			SceneID:   s.ID,
			Priority:  priority,
			DependsOn: deps,
			Payload: manifest.JobPayload{
				AspectRatio:     in.AspectRatio,
				DurationSeconds: s.DurationSeconds,
				Overlays:        slices.Clone(s.Overlays),
			},
		})
	}

	list = append(list, manifest.Job{
		ID:        MusicJobID,
		Type:      manifest.JobMusicSelection,
		Priority:  len(in.Scenes) + 1,
		DependsOn: []string{},
		Payload: manifest.JobPayload{
			Mood:            in.Music.Mood,
			DurationSeconds: in.TotalSecs,
		},
	})

	return Order(list, sceneIndex)
}
