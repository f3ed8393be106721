// Package fileutil provides output-directory helpers shared by the progress
// poller, job finalization, and library listing.
package fileutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// mediaExtensions lists the container/audio extensions recognized as playable
// library entries. Partial and sidecar files are excluded on purpose.
var mediaExtensions = map[string]struct{}{
	".mp4":  {},
	".webm": {},
	".mkv":  {},
	".mp3":  {},
	".m4a":  {},
}

// IsMediaFile reports whether name carries a recognized media extension.
func IsMediaFile(name string) bool {
	_, ok := mediaExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// MatchingOutputs returns the paths in dir whose names begin with base
// followed by a dot. This matches both finished outputs (base.mp4) and
// in-flight fetch artifacts (base.f137.mp4.part), which is what the progress
// poller needs to observe growth during merge stages.
func MatchingOutputs(dir, base string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	prefix := base + "."
	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), prefix) {
			matches = append(matches, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(matches)
	return matches, nil
}

// LargestSize stats every path and returns the maximum observed size.
// Missing files are skipped; a file may vanish between listing and stat when
// the fetch engine renames partials.
func LargestSize(paths []string) int64 {
	var max int64
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Size() > max {
			max = info.Size()
		}
	}
	return max
}

// FinalOutput picks the completed media file for a job from its matching
// outputs: the largest match with a recognized media extension. Returns
// "" when no finished output exists.
func FinalOutput(paths []string) string {
	var best string
	var bestSize int64 = -1
	for _, path := range paths {
		if !IsMediaFile(path) {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Size() > bestSize {
			best = path
			bestSize = info.Size()
		}
	}
	return best
}
