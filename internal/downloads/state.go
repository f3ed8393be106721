package downloads

import "time"

// Phase is a job state machine position.
type Phase string

const (
	PhasePending     Phase = "pending"
	PhaseResolving   Phase = "resolving"
	PhaseDownloading Phase = "downloading"
	PhaseRetrying    Phase = "retrying"
	PhaseFinalizing  Phase = "finalizing"
	PhaseComplete    Phase = "complete"
	PhaseFailed      Phase = "failed"
)

// Terminal reports whether the phase ends the job.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseFailed
}

// JobState is a point-in-time snapshot of a job, safe to hand across
// goroutines by value.
type JobState struct {
	ID               string    `json:"id"`
	URL              string    `json:"url"`
	Title            string    `json:"title,omitempty"`
	Phase            Phase     `json:"phase"`
	FormatSpec       string    `json:"format_spec,omitempty"`
	DownloadedBytes  int64     `json:"downloaded_bytes"`
	TotalBytes       int64     `json:"total_bytes,omitempty"`
	SpeedBytesPerSec float64   `json:"speed_bytes_per_sec,omitempty"`
	ProgressPercent  *float64  `json:"progress_percent"`
	ErrorMessage     string    `json:"error,omitempty"`
	OutputPath       string    `json:"filepath,omitempty"`
	StartedAt        time.Time `json:"started_at"`
}
