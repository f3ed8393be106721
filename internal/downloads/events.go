package downloads

// EventType names the messages a job emits toward its observer.
type EventType string

const (
	// EventInfo is advisory, such as a height-clamp notice. Never terminal.
	EventInfo EventType = "info"
	// EventDownloading carries a progress snapshot.
	EventDownloading EventType = "downloading"
	// EventFinished signals the fetch engine is done and finalization began.
	EventFinished EventType = "finished"
	// EventComplete is the terminal success message.
	EventComplete EventType = "complete"
	// EventError is the terminal failure message.
	EventError EventType = "error"
)

// Event is one message on a job's stream. ProgressPercent is nil when no
// total is known; the percentage is then indeterminate, never fabricated.
type Event struct {
	Type             EventType `json:"status"`
	JobID            string    `json:"job_id,omitempty"`
	Title            string    `json:"title,omitempty"`
	Message          string    `json:"message,omitempty"`
	DownloadedBytes  int64     `json:"downloaded_bytes,omitempty"`
	TotalBytes       int64     `json:"total_bytes,omitempty"`
	SpeedBytesPerSec float64   `json:"speed_bytes_per_sec,omitempty"`
	ProgressPercent  *float64  `json:"progress_percent"`
	Filename         string    `json:"filename,omitempty"`
	Filepath         string    `json:"filepath,omitempty"`
	SizeBytes        int64     `json:"size,omitempty"`
}

// Terminal reports whether the event ends the stream.
func (e Event) Terminal() bool {
	return e.Type == EventComplete || e.Type == EventError
}
