package downloads

import (
	"sync"
	"time"

	"offlinetube/internal/fileutil"
)

// poller periodically measures the largest on-disk file matching a job's
// output base name. It covers fetch-engine code paths that emit no hook
// events, such as merge and remux stages, so observers never see a frozen
// job. Speed is derived from the size delta between consecutive polls.
type poller struct {
	dir      string
	base     string
	interval time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func newPoller(dir, base string, interval time.Duration) *poller {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &poller{
		dir:      dir,
		base:     base,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// run blocks until stop, reporting each observation. Call in a goroutine.
func (p *poller) run(report func(size int64, speedBytesPerSec float64)) {
	defer close(p.doneCh)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var lastSize int64
	lastAt := time.Now()
	for {
		select {
		case <-p.stopCh:
			return
		case now := <-ticker.C:
			paths, err := fileutil.MatchingOutputs(p.dir, p.base)
			if err != nil {
				continue
			}
			size := fileutil.LargestSize(paths)
			if size <= 0 {
				continue
			}
			var speed float64
			if elapsed := now.Sub(lastAt).Seconds(); elapsed > 0 && size > lastSize {
				speed = float64(size-lastSize) / elapsed
			}
			lastSize = size
			lastAt = now
			report(size, speed)
		}
	}
}

// stop signals shutdown and waits for the loop to exit. Idempotent.
func (p *poller) stop() {
	p.stopOnce.Do(func() {
		close(p.stopCh)
	})
	<-p.doneCh
}
