package downloads

import "testing"

func TestAggregatorMonotonicDownloaded(t *testing.T) {
	agg := newAggregator(0)
	agg.applyHook(100, 0, 0)
	snap := agg.applyPoll(50, 10)
	if snap.DownloadedBytes != 100 {
		t.Fatalf("progress moved backward: %d", snap.DownloadedBytes)
	}
	snap = agg.applyPoll(200, 10)
	if snap.DownloadedBytes != 200 {
		t.Fatalf("larger poll value must win, got %d", snap.DownloadedBytes)
	}
	snap = agg.applyHook(150, 0, 0)
	if snap.DownloadedBytes != 200 {
		t.Fatalf("stale hook value must not regress, got %d", snap.DownloadedBytes)
	}
}

func TestAggregatorEstimateUntilAuthoritative(t *testing.T) {
	agg := newAggregator(0)
	agg.seedEstimate(1000)
	snap := agg.applyHook(500, 0, 0)
	if snap.TotalBytes != 1000 {
		t.Fatalf("expected estimate total, got %d", snap.TotalBytes)
	}
	if snap.Percent == nil || *snap.Percent != 50 {
		t.Fatalf("expected 50%%, got %v", snap.Percent)
	}

	snap = agg.applyHook(500, 2000, 0)
	if snap.TotalBytes != 2000 {
		t.Fatalf("authoritative total must replace estimate, got %d", snap.TotalBytes)
	}

	// A later estimate never overrides the authoritative value.
	agg.seedEstimate(1000)
	if snap := agg.snapshot(); snap.TotalBytes != 2000 {
		t.Fatalf("estimate overrode authoritative total: %d", snap.TotalBytes)
	}
}

func TestAggregatorIndeterminateWithoutTotal(t *testing.T) {
	agg := newAggregator(0)
	snap := agg.applyHook(500, 0, 0)
	if snap.Percent != nil {
		t.Fatalf("expected indeterminate percent, got %v", *snap.Percent)
	}
}

func TestAggregatorPercentCapped(t *testing.T) {
	agg := newAggregator(100)
	snap := agg.applyHook(150, 0, 0)
	if snap.Percent == nil || *snap.Percent != 100 {
		t.Fatalf("expected capped percent, got %v", snap.Percent)
	}
}

func TestAggregatorPollSpeedOnlyOnGrowth(t *testing.T) {
	agg := newAggregator(0)
	agg.applyPoll(100, 50)
	snap := agg.applyPoll(100, 75)
	if snap.SpeedBytesPerSec != 50 {
		t.Fatalf("speed must not update without growth, got %f", snap.SpeedBytesPerSec)
	}
}
