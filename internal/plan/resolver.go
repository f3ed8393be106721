package plan

import (
	"fmt"
	"strings"

	"offlinetube/internal/media"
	"offlinetube/internal/services"
)

// Notice reports a non-fatal adjustment made during resolution, such as
// clamping a requested height to what the catalog can deliver.
type Notice struct {
	RequestedHeight int
	ActualHeight    int
	Message         string
}

// Resolve turns a normalized catalog plus the caller's preferences into a
// concrete plan. An explicit formatID wins over targetHeight; targetHeight
// zero means "best available".
func Resolve(catalog media.Catalog, formatID string, targetHeight int) (Plan, *Notice, error) {
	if targetHeight < 0 {
		return Plan{}, nil, services.Wrap(services.ErrValidation, "plan", "resolve", fmt.Sprintf("target height %d must not be negative", targetHeight), nil)
	}
	if formatID = strings.TrimSpace(formatID); formatID != "" {
		return resolveExplicit(catalog, formatID)
	}
	return resolveByHeight(catalog, targetHeight)
}

// resolveExplicit handles a caller-supplied format id. Compound expressions
// are never interpreted here; they pass straight through to the fetch engine.
func resolveExplicit(catalog media.Catalog, formatID string) (Plan, *Notice, error) {
	if isCompoundSpec(formatID) {
		return Plan{Kind: KindPassthrough, FormatID: formatID}, nil, nil
	}
	desc, ok := catalog.ByID(formatID)
	if !ok {
		// Unknown simple id: trust the caller, skip estimation.
		return Plan{Kind: KindSingle, FormatID: formatID}, nil, nil
	}
	if desc.HasAudio || !desc.HasVideo {
		p := Plan{
			Kind:                KindSingle,
			FormatID:            formatID,
			EstimatedTotalBytes: desc.SizeBytes,
			EffectiveHeight:     desc.Height,
		}
		return p, nil, nil
	}
	// Video-only selection needs an audio companion.
	p := Plan{
		Kind:            KindPaired,
		VideoFormatID:   formatID,
		EffectiveHeight: desc.Height,
	}
	if audio, ok := catalog.BestAudio(); ok {
		p.AudioFormatID = audio.FormatID
		if desc.SizeBytes > 0 && audio.SizeBytes > 0 {
			p.EstimatedTotalBytes = desc.SizeBytes + audio.SizeBytes
		}
	}
	return p, nil, nil
}

// resolveByHeight picks the best catalog entry at or below the target,
// preferring combined formats so no merge step is needed.
func resolveByHeight(catalog media.Catalog, targetHeight int) (Plan, *Notice, error) {
	if catalog.Empty() {
		return Plan{}, nil, services.Wrap(services.ErrValidation, "plan", "resolve", "format catalog is empty", nil)
	}

	limit := targetHeight
	var notice *Notice
	if top := catalog.MaxHeight(); targetHeight > 0 && top > 0 && targetHeight > top {
		limit = top
		notice = &Notice{
			RequestedHeight: targetHeight,
			ActualHeight:    top,
			Message:         fmt.Sprintf("requested %dp unavailable, using %dp", targetHeight, top),
		}
	}

	if combined, ok := catalog.BestVideoAtOrBelow(limit, true); ok {
		p := Plan{
			Kind:                KindSingle,
			FormatID:            combined.FormatID,
			EstimatedTotalBytes: combined.SizeBytes,
			EffectiveHeight:     combined.Height,
		}
		return p, notice, nil
	}
	if video, ok := catalog.BestVideoAtOrBelow(limit, false); ok {
		p := Plan{
			Kind:            KindPaired,
			VideoFormatID:   video.FormatID,
			EffectiveHeight: video.Height,
		}
		if audio, ok := catalog.BestAudio(); ok {
			p.AudioFormatID = audio.FormatID
			if video.SizeBytes > 0 && audio.SizeBytes > 0 {
				p.EstimatedTotalBytes = video.SizeBytes + audio.SizeBytes
			}
		}
		return p, notice, nil
	}
	// Nothing usable in the catalog at this height; let the engine decide.
	return Fallback(limit), notice, nil
}
