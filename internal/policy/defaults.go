package policy

var (
	baseCamera     = []string{"cinematic_zoom", "zoom_in", "zoom_out", "ken_burns", "pan", "pan_left", "pan_right"}
	baseOverlay    = []string{"text_reveal", "data_highlight", "lower_third", "caption", "subtitles"}
	baseTransition = []string{"crossfade", "fade", "fade_in", "fade_out", "logo_reveal", "dissolve"}
)

func union(lists ...[]string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, l := range lists {
		for _, e := range l {
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			out = append(out, e)
		}
	}
	return out
}

// Default returns a fresh copy of the built-in table.
func Default() *Table {
	t, err := New(DefaultVersion, []Policy{
		{
			Platform:          "tiktok",
			DefaultTransition: "quick_cut",
			AllowedEffects: union(baseCamera, baseOverlay, baseTransition,
				[]string{"whip_pan", "camera_shake", "glitch", "kinetic_text", "emoji_pop", "sticker", "quick_cut"}),
			RecommendedAspect: "9:16",
			WatermarkCorner:   "top-left",
			Aliases:           []string{"tik tok", "tt"},
		},
		{
			Platform:          "youtube",
			DefaultTransition: "crossfade",
			AllowedEffects: union(baseCamera, baseOverlay, baseTransition,
				[]string{"parallax", "dolly_zoom", "tilt", "bokeh", "lens_flare", "color_grade", "light_leak",
					"vignette", "film_grain", "chart_animation", "progress_bar", "wipe", "slide", "outro"}),
			RecommendedAspect: "16:9",
			WatermarkCorner:   "bottom-right",
			Aliases:           []string{"yt"},
		},
		{
			Platform:          "youtube_shorts",
			DefaultTransition: "quick_cut",
			AllowedEffects: union(baseCamera, baseOverlay, baseTransition,
				[]string{"whip_pan", "kinetic_text", "quick_cut", "glitch", "bokeh"}),
			RecommendedAspect: "9:16",
			WatermarkCorner:   "top-left",
			Aliases:           []string{"shorts", "yt shorts", "youtube shorts"},
		},
		{
			Platform:          "instagram",
			DefaultTransition: "crossfade",
			AllowedEffects: union(baseCamera, baseOverlay, baseTransition,
				[]string{"parallax", "bokeh", "color_grade", "light_leak", "film_grain", "kinetic_text", "sticker"}),
			RecommendedAspect: "4:5",
			WatermarkCorner:   "top-right",
			Aliases:           []string{"ig", "insta", "reels"},
		},
		{
			Platform:          "linkedin",
			DefaultTransition: "fade",
			AllowedEffects: union(baseCamera, baseOverlay, baseTransition,
				[]string{"chart_animation", "progress_bar", "counter", "color_grade"}),
			RecommendedAspect: "1:1",
			WatermarkCorner:   "bottom-right",
			Aliases:           []string{"li"},
		},
		{
			Platform:          "facebook",
			DefaultTransition: "crossfade",
			AllowedEffects: union(baseCamera, baseOverlay, baseTransition,
				[]string{"parallax", "bokeh", "color_grade", "chart_animation", "sticker"}),
			RecommendedAspect: "1:1",
			WatermarkCorner:   "top-right",
			Aliases:           []string{"fb", "meta"},
		},
		{
			Platform:          Generic,
			DefaultTransition: "crossfade",
			AllowedEffects: union(baseCamera, baseOverlay, baseTransition,
				[]string{"parallax", "bokeh", "lens_flare", "color_grade", "chart_animation"}),
			RecommendedAspect: "16:9",
			WatermarkCorner:   "bottom-right",
			Aliases:           []string{"generic", "default", "web"},
		},
	})
	if err != nil {
		// The built-in table always has the generic entry.
		panic(err)
	}
	return t
}
