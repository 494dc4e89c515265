package manifest

import (
	"maps"
	"slices"
)

// Clone returns a deep copy so callers can never reach into a frozen manifest.
func (m *Manifest) Clone() *Manifest {
	if m == nil {
		return nil
	}
	c := *m
	c.Extras = maps.Clone(m.Extras)

	if m.Scenes != nil {
		c.Scenes = make([]Scene, len(m.Scenes))
		for i, s := range m.Scenes {
			s.Effects = slices.Clone(s.Effects)
			s.Overlays = slices.Clone(s.Overlays)
			s.Extras = maps.Clone(s.Extras)
			c.Scenes[i] = s
		}
	}

	c.Assets = maps.Clone(m.Assets)
	c.Audio.Cues = maps.Clone(m.Audio.Cues)

	c.Effects.Allowed = slices.Clone(m.Effects.Allowed)
	if m.Effects.OrderingHints != nil {
		c.Effects.OrderingHints = make(map[string]map[string]int, len(m.Effects.OrderingHints))
		for scene, hints := range m.Effects.OrderingHints {
			c.Effects.OrderingHints[scene] = maps.Clone(hints)
		}
	}
	c.Effects.ShotstackConfig.Layers = slices.Clone(m.Effects.ShotstackConfig.Layers)

	c.Brand.LogoScenes = slices.Clone(m.Brand.LogoScenes)

	if m.Jobs != nil {
		c.Jobs = make([]Job, len(m.Jobs))
		for i, j := range m.Jobs {
			j.DependsOn = slices.Clone(j.DependsOn)
			j.Payload.Overlays = slices.Clone(j.Payload.Overlays)
			c.Jobs[i] = j
		}
	}
	return &c
}
