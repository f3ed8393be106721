package downloads

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"offlinetube/internal/fileutil"
	"offlinetube/internal/logging"
	"offlinetube/internal/media"
	"offlinetube/internal/plan"
	"offlinetube/internal/services"
	"offlinetube/internal/textutil"
	"offlinetube/internal/ytdlp"
)

// Extractor probes video metadata under one access profile.
type Extractor interface {
	Extract(ctx context.Context, url, playerClient string) (ytdlp.Info, error)
}

// Fetcher executes a resolved plan and streams hook updates.
type Fetcher interface {
	Fetch(ctx context.Context, req ytdlp.FetchRequest, progress func(ytdlp.ProgressUpdate)) error
}

// Recorder persists job history. All calls are best effort; persistence
// failures never affect the job.
type Recorder interface {
	JobStarted(state JobState) error
	JobUpdated(state JobState) error
	JobFinished(state JobState) error
}

// Notifier delivers terminal-state notifications.
type Notifier interface {
	NotifyDownloadComplete(ctx context.Context, title string, sizeBytes int64) error
	NotifyDownloadFailed(ctx context.Context, title, message string) error
}

// Request describes one download submission.
type Request struct {
	URL          string
	FormatID     string
	TargetHeight int
}

// Options wires a Supervisor.
type Options struct {
	Extractor     Extractor
	Fetcher       Fetcher
	DownloadDir   string
	PlayerClients []string
	PollInterval  time.Duration
	FetchTimeout  time.Duration
	Logger        *slog.Logger
	Recorder      Recorder
	Notifier      Notifier
}

// Supervisor owns the job registry and runs each job's state machine on its
// own goroutine. Jobs are independent; identical concurrent URLs are not
// deduplicated, each gets its own catalog, plan, and output names.
type Supervisor struct {
	extractor     Extractor
	fetcher       Fetcher
	downloadDir   string
	playerClients []string
	pollInterval  time.Duration
	fetchTimeout  time.Duration
	logger        *slog.Logger
	recorder      Recorder
	notifier      Notifier

	mu   sync.Mutex
	jobs map[string]*Job
}

// eventBuffer bounds the per-job stream; a lagging consumer loses progress
// events, never the terminal one.
const eventBuffer = 64

// recordInterval throttles history persistence for running jobs.
const recordInterval = 2 * time.Second

// NewSupervisor validates wiring and returns a ready Supervisor.
func NewSupervisor(opts Options) (*Supervisor, error) {
	if opts.Extractor == nil {
		return nil, services.Wrap(services.ErrConfiguration, "downloads", "new", "extractor required", nil)
	}
	if opts.Fetcher == nil {
		return nil, services.Wrap(services.ErrConfiguration, "downloads", "new", "fetcher required", nil)
	}
	if strings.TrimSpace(opts.DownloadDir) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "downloads", "new", "download directory required", nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Supervisor{
		extractor:     opts.Extractor,
		fetcher:       opts.Fetcher,
		downloadDir:   opts.DownloadDir,
		playerClients: opts.PlayerClients,
		pollInterval:  interval,
		fetchTimeout:  opts.FetchTimeout,
		logger:        logging.WithComponent(logger, "downloads"),
		recorder:      opts.Recorder,
		notifier:      opts.Notifier,
		jobs:          make(map[string]*Job),
	}, nil
}

// Job is one in-flight download. Observers consume Events until the channel
// closes; the supervisor and aggregator are the only mutators of its state.
type Job struct {
	ID  string
	URL string

	events chan Event
	agg    *aggregator

	mu         sync.Mutex
	state      JobState
	lastRecord time.Time
}

// Events returns the job's stream. Closed after the terminal event.
func (j *Job) Events() <-chan Event {
	return j.events
}

// State returns a snapshot fused from the state machine and the aggregator.
func (j *Job) State() JobState {
	j.mu.Lock()
	st := j.state
	j.mu.Unlock()
	snap := j.agg.snapshot()
	st.DownloadedBytes = snap.DownloadedBytes
	st.TotalBytes = snap.TotalBytes
	st.SpeedBytesPerSec = snap.SpeedBytesPerSec
	st.ProgressPercent = snap.Percent
	return st
}

func (j *Job) setPhase(p Phase) {
	j.mu.Lock()
	j.state.Phase = p
	j.mu.Unlock()
}

func (j *Job) setTitle(title string) {
	j.mu.Lock()
	j.state.Title = title
	j.mu.Unlock()
}

func (j *Job) setFailure(message string) {
	j.mu.Lock()
	j.state.Phase = PhaseFailed
	j.state.ErrorMessage = message
	j.mu.Unlock()
}

func (j *Job) setFormatSpec(spec string) {
	j.mu.Lock()
	j.state.FormatSpec = spec
	j.mu.Unlock()
}

func (j *Job) setOutput(path string) {
	j.mu.Lock()
	j.state.OutputPath = path
	j.mu.Unlock()
}

// send enqueues without blocking the producer. When the buffer is full the
// oldest queued event is shed so the newest always lands; the terminal event
// therefore cannot be lost to a slow or absent consumer.
func (j *Job) send(ev Event) {
	for {
		select {
		case j.events <- ev:
			return
		default:
		}
		select {
		case <-j.events:
		default:
		}
	}
}

// trySend drops the event when the buffer is full. Used for progress, which
// may coalesce freely.
func (j *Job) trySend(ev Event) {
	select {
	case j.events <- ev:
	default:
	}
}

// Start registers a new job and launches its state machine. The supplied
// context should be process-scoped, not request-scoped: a disconnecting
// observer must not cancel the fetch, the file lands on disk regardless.
func (s *Supervisor) Start(ctx context.Context, req Request) (*Job, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, services.Wrap(services.ErrValidation, "downloads", "start", "url required", nil)
	}
	if req.TargetHeight < 0 {
		return nil, services.Wrap(services.ErrValidation, "downloads", "start", "target height must not be negative", nil)
	}

	job := &Job{
		ID:     uuid.NewString(),
		URL:    req.URL,
		events: make(chan Event, eventBuffer),
		agg:    newAggregator(0),
		state: JobState{
			URL:       req.URL,
			Phase:     PhasePending,
			StartedAt: time.Now(),
		},
	}
	job.state.ID = job.ID

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	go s.run(ctx, job, req)
	return job, nil
}

// Get looks up an active job.
func (s *Supervisor) Get(id string) (*Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	return job, ok
}

// Active snapshots every registered job.
func (s *Supervisor) Active() []JobState {
	s.mu.Lock()
	jobs := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, j)
	}
	s.mu.Unlock()

	states := make([]JobState, 0, len(jobs))
	for _, j := range jobs {
		states = append(states, j.State())
	}
	return states
}

func (s *Supervisor) remove(id string) {
	s.mu.Lock()
	delete(s.jobs, id)
	s.mu.Unlock()
}

func (s *Supervisor) run(ctx context.Context, job *Job, req Request) {
	defer s.remove(job.ID)
	defer close(job.events)

	logger := logging.WithJob(s.logger, job.ID, job.URL)
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	job.setPhase(PhaseResolving)
	s.record(job, recordStart)

	info, catalog := Probe(ctx, s.extractor, req.URL, s.playerClients, logger)
	if catalog.Synthetic {
		// The fetch engine may still succeed where metadata probing did not.
		logger.Warn("extraction yielded no formats, using synthetic catalog",
			logging.String(logging.FieldEventType, "synthetic_catalog"))
	}

	title := strings.TrimSpace(info.Title)
	if title == "" {
		title = "video"
	}
	job.setTitle(title)

	resolved, notice, err := plan.Resolve(catalog, req.FormatID, req.TargetHeight)
	if err != nil {
		s.fail(ctx, job, logger, err)
		return
	}
	if notice != nil {
		logger.Info("height clamped",
			logging.Int("requested", notice.RequestedHeight),
			logging.Int("actual", notice.ActualHeight))
		job.send(Event{Type: EventInfo, JobID: job.ID, Title: title, Message: notice.Message})
	}
	if !catalog.Synthetic {
		job.agg.seedEstimate(resolved.EstimatedTotalBytes)
	}

	sourceID := info.ID
	if id, ok := ytdlp.VideoID(req.URL); ok {
		sourceID = id
	}
	if sourceID == "" {
		sourceID = job.ID[:8]
	}
	job.setFormatSpec(resolved.FormatSpec())

	base := textutil.SafeTitle(title) + "_" + sourceID
	outputTemplate := filepath.Join(s.downloadDir, base+".%(ext)s")

	logger.Info("plan resolved",
		logging.String("format_spec", resolved.FormatSpec()),
		logging.String("kind", string(resolved.Kind)),
		logging.Int64("estimated_total_bytes", resolved.EstimatedTotalBytes))

	job.setPhase(PhaseDownloading)
	poll := newPoller(s.downloadDir, base, s.pollInterval)
	go poll.run(func(size int64, speed float64) {
		snap := job.agg.applyPoll(size, speed)
		s.emitProgress(job, base, snap)
	})

	hook := func(u ytdlp.ProgressUpdate) {
		snap := job.agg.applyHook(u.DownloadedBytes, u.TotalBytes, u.SpeedBytesPerSec)
		s.emitProgress(job, base, snap)
	}

	fetchErr := s.fetcher.Fetch(ctx, ytdlp.FetchRequest{
		URL:            req.URL,
		FormatSpec:     resolved.FormatSpec(),
		OutputTemplate: outputTemplate,
	}, hook)

	if fetchErr != nil && services.IsRetryable(fetchErr) {
		job.setPhase(PhaseRetrying)
		fallback := plan.Fallback(resolved.EffectiveHeight)
		logger.Warn("plan rejected at execution time, retrying with fallback",
			logging.String("fallback_spec", fallback.FormatSpec()),
			logging.Error(fetchErr))
		job.setFormatSpec(fallback.FormatSpec())
		job.setPhase(PhaseDownloading)
		fetchErr = s.fetcher.Fetch(ctx, ytdlp.FetchRequest{
			URL:            req.URL,
			FormatSpec:     fallback.FormatSpec(),
			OutputTemplate: outputTemplate,
		}, hook)
	}

	poll.stop()
	if fetchErr != nil {
		s.fail(ctx, job, logger, fetchErr)
		return
	}

	job.setPhase(PhaseFinalizing)
	job.send(Event{Type: EventFinished, JobID: job.ID, Title: title})

	outputs, err := fileutil.MatchingOutputs(s.downloadDir, base)
	if err != nil {
		s.fail(ctx, job, logger, services.Wrap(services.ErrOutputMissing, "downloads", "finalize", "scan output directory", err))
		return
	}
	final := fileutil.FinalOutput(outputs)
	if final == "" {
		s.fail(ctx, job, logger, services.Wrap(services.ErrOutputMissing, "downloads", "finalize", "no output matching "+base, nil))
		return
	}
	fi, err := os.Stat(final)
	if err != nil {
		s.fail(ctx, job, logger, services.Wrap(services.ErrOutputMissing, "downloads", "finalize", "stat output", err))
		return
	}
	job.setOutput(final)

	sc := media.Sidecar{
		SourceID:     sourceID,
		URL:          req.URL,
		Title:        title,
		Description:  info.Description,
		Duration:     info.Duration,
		Uploader:     info.Uploader,
		ViewCount:    info.ViewCount,
		ThumbnailURL: info.ThumbnailURL,
		Formats:      catalog.Formats,
		DownloadedAt: time.Now().UTC(),
	}
	if err := media.WriteSidecar(final, sc); err != nil {
		// Metadata is a convenience; the download already succeeded.
		logger.Warn("sidecar write failed", logging.Error(err))
	}

	job.setPhase(PhaseComplete)
	s.record(job, recordFinish)
	logger.Info("download complete",
		logging.String("filepath", final),
		logging.Int64("size_bytes", fi.Size()))
	if s.notifier != nil {
		if err := s.notifier.NotifyDownloadComplete(ctx, title, fi.Size()); err != nil {
			logger.Warn("completion notification failed", logging.Error(err))
		}
	}
	job.send(Event{
		Type:      EventComplete,
		JobID:     job.ID,
		Title:     title,
		Filename:  filepath.Base(final),
		Filepath:  final,
		SizeBytes: fi.Size(),
	})
}

func (s *Supervisor) fail(ctx context.Context, job *Job, logger *slog.Logger, err error) {
	message := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		message = "download timed out"
	}
	job.setFailure(message)
	s.record(job, recordFinish)
	logger.Error("download failed", logging.Error(err))
	if s.notifier != nil {
		st := job.State()
		if nerr := s.notifier.NotifyDownloadFailed(ctx, st.Title, message); nerr != nil {
			logger.Warn("failure notification failed", logging.Error(nerr))
		}
	}
	job.send(Event{Type: EventError, JobID: job.ID, Message: message})
}

func (s *Supervisor) emitProgress(job *Job, base string, snap progressSnapshot) {
	job.trySend(Event{
		Type:             EventDownloading,
		JobID:            job.ID,
		DownloadedBytes:  snap.DownloadedBytes,
		TotalBytes:       snap.TotalBytes,
		SpeedBytesPerSec: snap.SpeedBytesPerSec,
		ProgressPercent:  snap.Percent,
		Filename:         base,
	})
	s.record(job, recordUpdate)
}

type recordKind int

const (
	recordStart recordKind = iota
	recordUpdate
	recordFinish
)

// record persists job state, throttling running updates. Never fails the job.
func (s *Supervisor) record(job *Job, kind recordKind) {
	if s.recorder == nil {
		return
	}
	if kind == recordUpdate {
		job.mu.Lock()
		due := time.Since(job.lastRecord) >= recordInterval
		if due {
			job.lastRecord = time.Now()
		}
		job.mu.Unlock()
		if !due {
			return
		}
	}

	st := job.State()
	var err error
	switch kind {
	case recordStart:
		err = s.recorder.JobStarted(st)
	case recordUpdate:
		err = s.recorder.JobUpdated(st)
	case recordFinish:
		err = s.recorder.JobFinished(st)
	}
	if err != nil {
		s.logger.Warn("job history persistence failed",
			logging.String(logging.FieldJobID, st.ID),
			logging.Error(err))
	}
}
