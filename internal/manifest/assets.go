package manifest

import (
	"path/filepath"
	"strings"
)

var mediaExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".webp": {}, ".gif": {}, ".svg": {},
	".mp4": {}, ".mov": {}, ".webm": {}, ".m4v": {},
}

var referencePrefixes = []string{"http://", "https://", "asset://", "file://", "s3://", "gs://"}

// IsReference reports whether a visual anchor points at an existing asset
// rather than describing one to generate.
func IsReference(anchor string) bool {
	a := strings.TrimSpace(anchor)
	if a == "" || strings.ContainsAny(a, " \t\n") {
		return false
	}
	lower := strings.ToLower(a)
	for _, p := range referencePrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	_, ok := mediaExtensions[filepath.Ext(lower)]
	return ok
}
