package plan

import (
	"fmt"
	"strings"
)

// Kind discriminates the plan variants.
type Kind string

const (
	// KindSingle fetches one format id that carries everything needed.
	KindSingle Kind = "single"
	// KindPaired fetches a video format and an audio format to be merged.
	KindPaired Kind = "paired"
	// KindFallback is the declarative rule "best video at or below MaxHeight
	// plus best audio", interpreted by the fetch engine.
	KindFallback Kind = "fallback"
	// KindPassthrough hands a compound selection expression to the fetch
	// engine verbatim; this layer does not interpret the syntax.
	KindPassthrough Kind = "passthrough"
)

// bestAudioSelector is the engine-side selector used when the catalog has no
// concrete audio-only entry to pair with.
const bestAudioSelector = "bestaudio"

// Plan is the resolved execution instruction for one job. Created once per
// job; replaced at most once when the fetch engine rejects it (the retry
// switches to KindFallback).
type Plan struct {
	Kind          Kind   `json:"kind"`
	FormatID      string `json:"format_id,omitempty"`
	VideoFormatID string `json:"video_format_id,omitempty"`
	AudioFormatID string `json:"audio_format_id,omitempty"`
	MaxHeight     int    `json:"max_height,omitempty"`

	// EstimatedTotalBytes sums the sizes of the selected descriptors when all
	// of them report one; zero means unknown, never a guess.
	EstimatedTotalBytes int64 `json:"estimated_total_bytes,omitempty"`
	// EffectiveHeight is the video height the plan is expected to deliver,
	// for reporting only. Zero when unknown.
	EffectiveHeight int `json:"effective_height,omitempty"`
}

// FormatSpec renders the selection expression passed to the fetch engine.
func (p Plan) FormatSpec() string {
	switch p.Kind {
	case KindSingle:
		return p.FormatID
	case KindPaired:
		audio := p.AudioFormatID
		if audio == "" {
			audio = bestAudioSelector
		}
		return p.VideoFormatID + "+" + audio
	case KindFallback:
		if p.MaxHeight > 0 {
			return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]/best", p.MaxHeight, p.MaxHeight)
		}
		return "bestvideo+bestaudio/best"
	case KindPassthrough:
		return p.FormatID
	default:
		return "best"
	}
}

// Fallback builds the unconditional retry plan for a target height.
func Fallback(maxHeight int) Plan {
	return Plan{Kind: KindFallback, MaxHeight: maxHeight, EffectiveHeight: maxHeight}
}

// isCompoundSpec reports whether an explicit format id embeds pairing or
// conditional-selection syntax that only the fetch engine understands.
func isCompoundSpec(formatID string) bool {
	return strings.ContainsAny(formatID, "+/[")
}
