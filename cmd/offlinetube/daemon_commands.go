package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"offlinetube/internal/client"
	"offlinetube/internal/notifications"
)

const (
	startWaitTimeout = 15 * time.Second
	stopGracePeriod  = 10 * time.Second
)

func newStartCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the daemon in the background",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := ctx.apiAddr()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if running, pid, _ := client.ProcessInfo(addr); running {
				fmt.Fprintf(out, "Daemon already running (pid %d) at %s\n", pid, addr)
				return nil
			}

			executable, err := os.Executable()
			if err != nil {
				return fmt.Errorf("resolve executable: %w", err)
			}
			if err := client.Launch(executable, client.LaunchOptions{
				ConfigPath: ctx.configPath(),
				LogLevel:   ctx.logLevel(),
			}); err != nil {
				return err
			}

			c, err := client.WaitForServer(addr, startWaitTimeout)
			if err != nil {
				return err
			}
			status, err := c.Status(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Daemon started (pid %d) at %s\n", status.PID, addr)
			return nil
		},
	}
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop a running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			pid, err := client.StopAndTerminate(cfg.Paths.APIBind, cfg.Paths.LogDir, stopGracePeriod)
			if err != nil {
				if errors.Is(err, client.ErrDaemonNotRunning) {
					fmt.Fprintln(cmd.OutOrStdout(), "Daemon is not running")
					return nil
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Daemon stopped (pid %d)\n", pid)
			return nil
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and active downloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(c *client.Client) error {
				status, err := c.Status(cmd.Context())
				if err != nil {
					return fmt.Errorf("connect to daemon: %w (start it with `offlinetube start`)", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Running: %s\n", yesNo(status.Running))
				fmt.Fprintf(out, "PID:     %d\n", status.PID)
				if status.Version != "" {
					fmt.Fprintf(out, "Version: %s\n", status.Version)
				}
				if len(status.HistoryCount) > 0 {
					fmt.Fprintf(out, "History: %s\n", renderCounts(status.HistoryCount))
				}

				if len(status.ActiveJobs) == 0 {
					fmt.Fprintln(out, "No active downloads")
					return nil
				}
				rows := make([][]string, 0, len(status.ActiveJobs))
				for _, job := range status.ActiveJobs {
					rows = append(rows, []string{
						shortID(job.ID),
						job.Title,
						job.Phase,
						renderProgress(job.DownloadedBytes, job.TotalBytes, job.ProgressPercent),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]tableColumn{
						{name: "Job"},
						{name: "Title", maxWidth: 48},
						{name: "Phase"},
						{name: "Progress", align: alignRight},
					},
					rows,
				))
				return nil
			})
		},
	}
}

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Notifications.NtfyTopic == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "ntfy topic not configured")
				return nil
			}
			notifier := notifications.NewService(cfg)
			if err := notifier.TestNotification(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Test notification sent")
			return nil
		},
	}
}

func renderCounts(counts map[string]int) string {
	order := []string{"complete", "failed", "downloading", "pending"}
	parts := make([]string, 0, len(order))
	for _, phase := range order {
		if n, ok := counts[phase]; ok && n > 0 {
			parts = append(parts, strconv.Itoa(n)+" "+phase)
		}
	}
	if len(parts) == 0 {
		return "empty"
	}
	result := parts[0]
	for _, p := range parts[1:] {
		result += ", " + p
	}
	return result
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
