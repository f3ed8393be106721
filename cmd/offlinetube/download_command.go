package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"offlinetube/internal/downloads"
	"offlinetube/internal/history"
	"offlinetube/internal/logging"
	"offlinetube/internal/notifications"
	"offlinetube/internal/preflight"
	"offlinetube/internal/ytdlp"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var resolution string
	var formatID string

	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Download a video to the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			if err := preflight.Verify(cmd.Context(), cfg); err != nil {
				return err
			}

			level := ctx.logLevel()
			if level == "" {
				level = "warn"
			}
			logger, err := logging.New(logging.Options{Level: level, Format: "console"})
			if err != nil {
				return err
			}

			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

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
				Notifier:      notifications.NewService(cfg),
			})
			if err != nil {
				return err
			}

			height, err := parseResolutionFlag(resolution)
			if err != nil {
				return err
			}
			job, err := supervisor.Start(cmd.Context(), downloads.Request{
				URL:          args[0],
				FormatID:     formatID,
				TargetHeight: height,
			})
			if err != nil {
				return err
			}
			return renderDownload(cmd, job)
		},
	}

	cmd.Flags().StringVarP(&resolution, "resolution", "r", "", "Preferred resolution cap, e.g. 1080 or 720p")
	cmd.Flags().StringVarP(&formatID, "format", "f", "", "Explicit format id from `offlinetube formats`")
	return cmd
}

// renderDownload consumes the job's event stream. On a terminal the progress
// line redraws in place; otherwise it is sampled to avoid flooding logs.
func renderDownload(cmd *cobra.Command, job *downloads.Job) error {
	out := cmd.OutOrStdout()
	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	var lastPrint time.Time
	progressShown := false
	endProgress := func() {
		if progressShown && tty {
			fmt.Fprintln(out)
		}
		progressShown = false
	}

	for ev := range job.Events() {
		switch ev.Type {
		case downloads.EventInfo:
			endProgress()
			fmt.Fprintln(out, ev.Message)
		case downloads.EventDownloading:
			line := renderProgress(ev.DownloadedBytes, ev.TotalBytes, ev.ProgressPercent)
			if tty {
				fmt.Fprintf(out, "\r%-60s", line)
				progressShown = true
			} else if time.Since(lastPrint) >= time.Second {
				fmt.Fprintln(out, line)
				lastPrint = time.Now()
			}
		case downloads.EventFinished:
			endProgress()
			fmt.Fprintln(out, "Download finished, finalizing...")
		case downloads.EventComplete:
			endProgress()
			fmt.Fprintf(out, "Saved %s (%s)\n", ev.Filename, formatSize(ev.SizeBytes))
			return nil
		case downloads.EventError:
			endProgress()
			return errors.New(ev.Message)
		}
	}
	return errors.New("download ended without result")
}

func parseResolutionFlag(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	var height int
	trimmed := raw
	if last := len(trimmed) - 1; last >= 0 && (trimmed[last] == 'p' || trimmed[last] == 'P') {
		trimmed = trimmed[:last]
	}
	if _, err := fmt.Sscanf(trimmed, "%d", &height); err != nil || height <= 0 {
		return 0, fmt.Errorf("invalid resolution %q", raw)
	}
	return height, nil
}
