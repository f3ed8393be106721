package downloads

import (
	"context"
	"errors"
	"sync"
	"testing"

	"offlinetube/internal/logging"
	"offlinetube/internal/media"
	"offlinetube/internal/ytdlp"
)

// profiledExtractor returns a scripted result per access profile.
type profiledExtractor struct {
	mu      sync.Mutex
	results map[string]ytdlp.Info
	errs    map[string]error
	seen    []string
}

func (p *profiledExtractor) Extract(_ context.Context, _, profile string) (ytdlp.Info, error) {
	p.mu.Lock()
	p.seen = append(p.seen, profile)
	p.mu.Unlock()
	if err, ok := p.errs[profile]; ok {
		return ytdlp.Info{}, err
	}
	return p.results[profile], nil
}

func infoWithFormats(id string, formats ...media.Descriptor) ytdlp.Info {
	return ytdlp.Info{ID: id, Title: "Sample Video", Formats: formats}
}

func TestProbeExtractionPrefersTallerCandidate(t *testing.T) {
	truncated := infoWithFormats("dQw4w9WgXcQ",
		media.Descriptor{FormatID: "22", Ext: "mp4", Height: 720, HasVideo: true, HasAudio: true},
		media.Descriptor{FormatID: "18", Ext: "mp4", Height: 360, HasVideo: true, HasAudio: true},
	)
	rich := infoWithFormats("dQw4w9WgXcQ",
		media.Descriptor{FormatID: "137", Ext: "mp4", Height: 1080, HasVideo: true},
		media.Descriptor{FormatID: "140", Ext: "m4a", HasAudio: true},
	)
	ex := &profiledExtractor{
		results: map[string]ytdlp.Info{"web": truncated, "ios": rich},
		errs:    map[string]error{"android": errors.New("sign in to confirm")},
	}

	info, ok := probeExtraction(context.Background(), ex, testURL, []string{"web", "android", "ios"}, logging.NewNop())
	if !ok {
		t.Fatal("expected a winning candidate")
	}
	if maxFormatHeight(info.Formats) != 1080 {
		t.Fatalf("expected the 1080p candidate to win, got max height %d", maxFormatHeight(info.Formats))
	}
	if len(ex.seen) != 3 {
		t.Fatalf("expected all profiles attempted, saw %v", ex.seen)
	}
}

func TestProbeExtractionBreaksHeightTieOnFormatCount(t *testing.T) {
	sparse := infoWithFormats("dQw4w9WgXcQ",
		media.Descriptor{FormatID: "22", Ext: "mp4", Height: 720, HasVideo: true, HasAudio: true},
	)
	full := infoWithFormats("dQw4w9WgXcQ",
		media.Descriptor{FormatID: "136", Ext: "mp4", Height: 720, HasVideo: true},
		media.Descriptor{FormatID: "140", Ext: "m4a", HasAudio: true},
		media.Descriptor{FormatID: "18", Ext: "mp4", Height: 360, HasVideo: true, HasAudio: true},
	)
	ex := &profiledExtractor{
		results: map[string]ytdlp.Info{"web": sparse, "android": full},
	}

	info, ok := probeExtraction(context.Background(), ex, testURL, []string{"web", "android"}, logging.NewNop())
	if !ok {
		t.Fatal("expected a winning candidate")
	}
	if len(info.Formats) != 3 {
		t.Fatalf("expected the fuller candidate to win the tie, got %d formats", len(info.Formats))
	}
}

func TestProbeExtractionSkipsEmptyFormatLists(t *testing.T) {
	ex := &profiledExtractor{
		results: map[string]ytdlp.Info{
			"web": infoWithFormats("dQw4w9WgXcQ"),
			"ios": infoWithFormats("dQw4w9WgXcQ",
				media.Descriptor{FormatID: "18", Ext: "mp4", Height: 360, HasVideo: true, HasAudio: true}),
		},
	}

	info, ok := probeExtraction(context.Background(), ex, testURL, []string{"web", "ios"}, logging.NewNop())
	if !ok {
		t.Fatal("expected the non-empty candidate to win")
	}
	if len(info.Formats) != 1 || info.Formats[0].FormatID != "18" {
		t.Fatalf("unexpected winner %+v", info.Formats)
	}
}

func TestProbeExtractionAllProfilesFail(t *testing.T) {
	ex := &profiledExtractor{
		errs: map[string]error{
			"web": errors.New("video unavailable"),
			"ios": errors.New("video unavailable"),
		},
	}

	_, ok := probeExtraction(context.Background(), ex, testURL, []string{"web", "ios"}, logging.NewNop())
	if ok {
		t.Fatal("expected no candidate when every profile fails")
	}

	_, catalog := Probe(context.Background(), ex, testURL, []string{"web", "ios"}, nil)
	if !catalog.Synthetic {
		t.Fatal("expected synthetic catalog when extraction fails everywhere")
	}
}
