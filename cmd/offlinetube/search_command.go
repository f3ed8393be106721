package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"offlinetube/internal/ytdlp"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var maxResults int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search for videos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			query := args[0]
			for _, extra := range args[1:] {
				query += " " + extra
			}

			limit := maxResults
			if limit <= 0 {
				limit = cfg.YtDlp.SearchMaxResults
			}
			cli := ytdlp.NewCLI(
				ytdlp.WithBinary(cfg.YtDlp.Binary),
				ytdlp.WithExtractTimeout(time.Duration(cfg.YtDlp.ExtractTimeout)*time.Second),
			)
			results, err := cli.Search(cmd.Context(), query, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No results")
				return nil
			}
			rows := make([][]string, 0, len(results))
			for _, res := range results {
				rows = append(rows, []string{
					res.ID,
					res.Title,
					res.Uploader,
					formatDuration(res.Duration),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]tableColumn{
					{name: "ID"},
					{name: "Title", maxWidth: 48},
					{name: "Channel", maxWidth: 24},
					{name: "Length", align: alignRight},
				},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&maxResults, "max", "m", 0, "Maximum number of results")
	return cmd
}
