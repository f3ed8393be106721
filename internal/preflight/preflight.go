package preflight

import (
	"context"
	"strings"

	"offlinetube/internal/config"
	"offlinetube/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(_ context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckBinary("yt-dlp", cfg.YtDlp.Binary),
		CheckDirectoryAccess("Download directory", cfg.Paths.DownloadDir),
	}
	if cfg.Preflight.MinFreeGiB > 0 {
		results = append(results, CheckDiskSpace("Disk space", cfg.Paths.DownloadDir, cfg.Preflight.MinFreeGiB))
	}
	return results
}

// Verify runs all checks and returns an error naming the first failure.
// Used on daemon startup where a failed check must abort.
func Verify(ctx context.Context, cfg *config.Config) error {
	var failed []string
	for _, res := range RunAll(ctx, cfg) {
		if !res.Passed {
			failed = append(failed, res.Name+": "+res.Detail)
		}
	}
	if len(failed) > 0 {
		return services.Wrap(services.ErrConfiguration, "preflight", "verify", strings.Join(failed, "; "), nil)
	}
	return nil
}
