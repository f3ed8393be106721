package media

import (
	"sort"
	"strconv"
)

// Catalog is the normalized, ordered set of encodings for one source video.
// Read-only after construction.
type Catalog struct {
	Formats []Descriptor `json:"formats"`
	// Synthetic is set when extraction produced no usable formats and the
	// catalog holds conventional placeholder tiers instead. Size estimates
	// from a synthetic catalog are meaningless and must not be trusted.
	Synthetic bool `json:"synthetic,omitempty"`
}

// syntheticHeights are the conventional placeholder tiers offered when the
// extractor exposes nothing.
var syntheticHeights = []int{1080, 720, 480, 360}

// Normalize merges raw descriptor lists (one per extraction attempt) into a
// catalog: duplicates collapse by FormatID with the first occurrence winning,
// and entries sort combined-first, then video-only, then audio-only, with
// descending height and descending size inside a tier. An empty union yields
// a synthetic catalog so callers always have a plan to attempt.
func Normalize(lists ...[]Descriptor) Catalog {
	seen := make(map[string]struct{})
	var formats []Descriptor
	for _, list := range lists {
		for _, d := range list {
			if d.FormatID == "" {
				continue
			}
			if _, dup := seen[d.FormatID]; dup {
				continue
			}
			seen[d.FormatID] = struct{}{}
			formats = append(formats, d)
		}
	}

	if len(formats) == 0 {
		return syntheticCatalog()
	}

	sort.SliceStable(formats, func(i, j int) bool {
		a, b := formats[i], formats[j]
		if a.Tier() != b.Tier() {
			return a.Tier() < b.Tier()
		}
		if a.Height != b.Height {
			return a.Height > b.Height
		}
		return a.SizeBytes > b.SizeBytes
	})

	return Catalog{Formats: formats}
}

func syntheticCatalog() Catalog {
	formats := make([]Descriptor, 0, len(syntheticHeights))
	for i, h := range syntheticHeights {
		id := "best"
		if i > 0 {
			id = syntheticFormatID(h)
		}
		formats = append(formats, Descriptor{
			FormatID: id,
			Ext:      "mp4",
			Height:   h,
			FPS:      30,
			HasVideo: true,
			HasAudio: true,
			VCodec:   "h264",
			ACodec:   "aac",
		})
	}
	return Catalog{Formats: formats, Synthetic: true}
}

func syntheticFormatID(height int) string {
	// Placeholder ids reuse the fetch engine's own selection syntax so an
	// explicit request for one still resolves at execution time.
	return "best[height<=" + strconv.Itoa(height) + "]"
}

// Empty reports whether the catalog holds no formats at all.
func (c Catalog) Empty() bool {
	return len(c.Formats) == 0
}

// ByID finds a descriptor by its format id.
func (c Catalog) ByID(formatID string) (Descriptor, bool) {
	for _, d := range c.Formats {
		if d.FormatID == formatID {
			return d, true
		}
	}
	return Descriptor{}, false
}

// MaxHeight returns the largest height across video-bearing descriptors,
// or 0 when the catalog has no video.
func (c Catalog) MaxHeight() int {
	max := 0
	for _, d := range c.Formats {
		if d.HasVideo && d.Height > max {
			max = d.Height
		}
	}
	return max
}

// BestVideoAtOrBelow returns the highest video-bearing descriptor whose
// height does not exceed limit; a limit of zero means unbounded. Combined
// formats are preferred over video-only at the same height when combinedOnly
// is set.
func (c Catalog) BestVideoAtOrBelow(limit int, combinedOnly bool) (Descriptor, bool) {
	var best Descriptor
	found := false
	for _, d := range c.Formats {
		if !d.HasVideo || d.Height == 0 {
			continue
		}
		if limit > 0 && d.Height > limit {
			continue
		}
		if combinedOnly && !d.HasAudio {
			continue
		}
		if !found || d.Height > best.Height {
			best = d
			found = true
		}
	}
	return best, found
}

// BestAudio returns the audio-only descriptor with the highest bitrate,
// falling back to size when bitrates are absent.
func (c Catalog) BestAudio() (Descriptor, bool) {
	var best Descriptor
	found := false
	for _, d := range c.Formats {
		if d.HasVideo || !d.HasAudio {
			continue
		}
		if !found || d.Bitrate > best.Bitrate || (d.Bitrate == best.Bitrate && d.SizeBytes > best.SizeBytes) {
			best = d
			found = true
		}
	}
	return best, found
}
