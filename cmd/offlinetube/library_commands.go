package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"offlinetube/internal/library"
)

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Manage downloaded videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLibraryList(ctx, cmd)
		},
	}

	libraryCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List downloaded videos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLibraryList(ctx, cmd)
		},
	})

	libraryCmd.AddCommand(&cobra.Command{
		Use:   "remove <filename>",
		Short: "Delete a downloaded video and its metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := library.Delete(cfg.Paths.DownloadDir, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	})

	return libraryCmd
}

func runLibraryList(ctx *commandContext, cmd *cobra.Command) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	entries, err := library.List(cfg.Paths.DownloadDir)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "Library is empty")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	var totalBytes int64
	for _, entry := range entries {
		rows = append(rows, []string{
			entry.Filename,
			entry.Title,
			formatDuration(entry.Duration),
			formatSize(entry.SizeBytes),
			entry.DownloadedAt.Format("2006-01-02 15:04"),
		})
		totalBytes += entry.SizeBytes
	}
	fmt.Fprintln(out, renderTable(
		[]tableColumn{
			{name: "File", maxWidth: 40},
			{name: "Title", maxWidth: 48},
			{name: "Length", align: alignRight},
			{name: "Size", align: alignRight},
			{name: "Downloaded"},
		},
		rows,
	))
	fmt.Fprintf(out, "%d items, %s\n", len(entries), formatSize(totalBytes))
	return nil
}
