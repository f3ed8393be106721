// Package daemonrun wires configuration, storage, the fetch collaborator,
// and the HTTP front end into a running daemon process.
package daemonrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"offlinetube/internal/config"
	"offlinetube/internal/daemon"
	"offlinetube/internal/downloads"
	"offlinetube/internal/history"
	"offlinetube/internal/logging"
	"offlinetube/internal/notifications"
	"offlinetube/internal/preflight"
	"offlinetube/internal/server"
	"offlinetube/internal/ytdlp"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
	Version  string
}

// Run starts the daemon runtime loop and blocks until the context is
// cancelled or a termination signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", filepath.Join(cfg.Paths.LogDir, "offlinetube.log")},
		ErrorOutputPaths: []string{"stderr", filepath.Join(cfg.Paths.LogDir, "offlinetube.log")},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	if err := preflight.Verify(signalCtx, cfg); err != nil {
		logger.Error("environment checks failed", logging.Error(err))
		return err
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "offlinetube.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := history.Open(cfg)
	if err != nil {
		logger.Error("open history store", logging.Error(err))
		return err
	}
	defer store.Close()

	notifier := notifications.NewService(cfg)
	cli := ytdlp.NewCLI(
		ytdlp.WithBinary(cfg.YtDlp.Binary),
		ytdlp.WithMergeFormat(cfg.YtDlp.MergeFormat),
		ytdlp.WithExtractTimeout(time.Duration(cfg.YtDlp.ExtractTimeout)*time.Second),
	)

	supervisor, err := downloads.NewSupervisor(downloads.Options{
		Extractor:     cli,
		Fetcher:       cli,
		DownloadDir:   cfg.Paths.DownloadDir,
		PlayerClients: cfg.YtDlp.PlayerClients,
		PollInterval:  time.Duration(cfg.Progress.PollIntervalMS) * time.Millisecond,
		FetchTimeout:  time.Duration(cfg.YtDlp.FetchTimeout) * time.Second,
		Logger:        logger,
		Recorder:      store,
		Notifier:      notifier,
	})
	if err != nil {
		return fmt.Errorf("create supervisor: %w", err)
	}

	srv, err := server.New(server.Options{
		Config:     cfg,
		Supervisor: supervisor,
		Extractor:  cli,
		Searcher:   cli,
		History:    store,
		Logger:     logger,
		Version:    opts.Version,
	})
	if err != nil {
		return fmt.Errorf("create api server: %w", err)
	}

	d, err := daemon.New(cfg, store, logger, supervisor, srv, notifier)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	if err := d.Start(signalCtx); err != nil {
		return err
	}

	<-signalCtx.Done()
	logger.Info("daemon shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
