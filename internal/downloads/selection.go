package downloads

import (
	"context"
	"log/slog"

	"offlinetube/internal/logging"
	"offlinetube/internal/media"
	"offlinetube/internal/ytdlp"
)

// Probe runs extraction attempt selection for url and normalizes the winning
// format list. When every profile fails the synthetic catalog is returned so
// callers always have something to plan against.
func Probe(ctx context.Context, ex Extractor, url string, profiles []string, logger *slog.Logger) (ytdlp.Info, media.Catalog) {
	if logger == nil {
		logger = logging.NewNop()
	}
	info, ok := probeExtraction(ctx, ex, url, profiles, logger)
	if !ok {
		return info, media.Normalize()
	}
	return info, media.Normalize(info.Formats)
}

// probeExtraction queries the extractor once per access profile and keeps
// the best candidate by (max height, format count) descending. Every profile
// is attempted; a failed profile is skipped, not scored, because any single
// profile may expose a truncated format list and greedy first-success would
// under-serve high-resolution requests.
func probeExtraction(ctx context.Context, ex Extractor, url string, profiles []string, logger *slog.Logger) (ytdlp.Info, bool) {
	if len(profiles) == 0 {
		profiles = []string{""}
	}

	var best ytdlp.Info
	found := false
	for _, profile := range profiles {
		if ctx.Err() != nil {
			break
		}
		info, err := ex.Extract(ctx, url, profile)
		if err != nil {
			logger.Warn("extraction attempt failed",
				logging.String("profile", profile),
				logging.Error(err))
			continue
		}
		if len(info.Formats) == 0 {
			logger.Warn("extraction attempt returned no formats",
				logging.String("profile", profile))
			continue
		}
		if !found || betterCandidate(info, best) {
			best = info
			found = true
		}
	}
	return best, found
}

func betterCandidate(a, b ytdlp.Info) bool {
	ah, bh := maxFormatHeight(a.Formats), maxFormatHeight(b.Formats)
	if ah != bh {
		return ah > bh
	}
	return len(a.Formats) > len(b.Formats)
}

func maxFormatHeight(formats []media.Descriptor) int {
	top := 0
	for _, f := range formats {
		if f.HasVideo && f.Height > top {
			top = f.Height
		}
	}
	return top
}
