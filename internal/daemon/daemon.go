package daemon

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"offlinetube/internal/config"
	"offlinetube/internal/downloads"
	"offlinetube/internal/history"
	"offlinetube/internal/logging"
	"offlinetube/internal/notifications"
	"offlinetube/internal/server"
)

// Daemon owns the background download service and enforces single-instance
// execution via a lock file in the log directory.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *history.Store
	supervisor *downloads.Supervisor
	server     *server.Server
	notifier   notifications.Service

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status reports daemon runtime information.
type Status struct {
	Running       bool
	Address       string
	ActiveJobs    []downloads.JobState
	HistoryDBPath string
	LockFilePath  string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *history.Store, logger *slog.Logger, sup *downloads.Supervisor, srv *server.Server, notifier notifications.Service) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil || sup == nil || srv == nil {
		return nil, errors.New("daemon requires config, store, logger, supervisor, and server")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "offlinetubed.lock")
	return &Daemon{
		cfg:        cfg,
		logger:     logging.WithComponent(logger, "daemon"),
		store:      store,
		supervisor: sup,
		server:     srv,
		notifier:   notifier,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}, nil
}

// Start acquires the instance lock and begins serving. ctx scopes the HTTP
// listener and every download job started through it.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another offlinetube daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.server.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("start api server: %w", err)
	}
	d.cancel = cancel

	d.running.Store(true)
	d.logger.Info("daemon started",
		logging.String("address", d.server.Addr()),
		logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the server and releases the instance lock. Jobs already
// running are cancelled through the run context.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the bound API address once started.
func (d *Daemon) Addr() string {
	return d.server.Addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:       d.running.Load(),
		Address:       d.server.Addr(),
		ActiveJobs:    d.supervisor.Active(),
		HistoryDBPath: d.store.Path(),
		LockFilePath:  d.lockPath,
	}
}

// TestNotification sends a test push through the configured notifier.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if d.cfg.Notifications.NtfyTopic == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}
