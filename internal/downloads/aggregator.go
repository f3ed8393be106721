package downloads

import "sync"

// aggregator fuses the two progress sources of an active job: the fetch
// engine's hook stream and the filesystem poller. Both funnel through one
// mutex; downloaded bytes only ever move forward, and an authoritative total
// from the hook stream permanently replaces the resolver's estimate.
type aggregator struct {
	mu            sync.Mutex
	downloaded    int64
	total         int64
	authoritative bool
	speed         float64
}

// progressSnapshot is the merged view handed to event emission.
type progressSnapshot struct {
	DownloadedBytes  int64
	TotalBytes       int64
	SpeedBytesPerSec float64
	Percent          *float64
}

func newAggregator(estimatedTotal int64) *aggregator {
	return &aggregator{total: estimatedTotal}
}

// seedEstimate installs the resolver's size estimate unless the hook stream
// already supplied an authoritative total.
func (a *aggregator) seedEstimate(total int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.authoritative && total > 0 {
		a.total = total
	}
}

// applyHook records a hook-stream update. The primary source when present.
func (a *aggregator) applyHook(downloaded, total int64, speed float64) progressSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	if downloaded > a.downloaded {
		a.downloaded = downloaded
	}
	if total > 0 {
		a.total = total
		a.authoritative = true
	}
	if speed > 0 {
		a.speed = speed
	}
	return a.snapshotLocked()
}

// applyPoll records a filesystem observation. Its size competes under the
// same max-wins rule; its derived speed only fills in while the hook stream
// is silent on speed.
func (a *aggregator) applyPoll(size int64, speed float64) progressSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	if size > a.downloaded {
		a.downloaded = size
		if speed > 0 {
			a.speed = speed
		}
	}
	return a.snapshotLocked()
}

func (a *aggregator) snapshot() progressSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *aggregator) snapshotLocked() progressSnapshot {
	snap := progressSnapshot{
		DownloadedBytes:  a.downloaded,
		TotalBytes:       a.total,
		SpeedBytesPerSec: a.speed,
	}
	if a.total > 0 {
		pct := float64(a.downloaded) / float64(a.total) * 100
		if pct > 100 {
			pct = 100
		}
		snap.Percent = &pct
	}
	return snap
}
