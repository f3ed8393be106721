package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"offlinetube/internal/downloads"
	"offlinetube/internal/logging"
	"offlinetube/internal/media"
	"offlinetube/internal/ytdlp"
)

func newFormatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "formats <url>",
		Short: "Show the available formats for a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cli := ytdlp.NewCLI(
				ytdlp.WithBinary(cfg.YtDlp.Binary),
				ytdlp.WithExtractTimeout(time.Duration(cfg.YtDlp.ExtractTimeout)*time.Second),
			)

			info, catalog := downloads.Probe(cmd.Context(), cli, args[0], cfg.YtDlp.PlayerClients, logging.NewNop())
			out := cmd.OutOrStdout()
			if info.Title != "" {
				fmt.Fprintf(out, "%s", info.Title)
				if info.Duration > 0 {
					fmt.Fprintf(out, " [%s]", formatDuration(info.Duration))
				}
				fmt.Fprintln(out)
			}
			if catalog.Synthetic {
				fmt.Fprintln(out, "No format listing available; showing standard fallback tiers")
			}

			rows := make([][]string, 0, len(catalog.Formats))
			for _, f := range catalog.Formats {
				rows = append(rows, []string{
					f.FormatID,
					f.Ext,
					renderHeight(f),
					tierLabel(f),
					renderCodec(f),
					formatSize(f.SizeBytes),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]tableColumn{
					{name: "ID"},
					{name: "Ext"},
					{name: "Resolution", align: alignRight},
					{name: "Tracks"},
					{name: "Codec"},
					{name: "Size", align: alignRight},
				},
				rows,
			))
			return nil
		},
	}
}

func renderHeight(f media.Descriptor) string {
	if f.Height <= 0 {
		return "audio"
	}
	return strconv.Itoa(f.Height) + "p"
}

func tierLabel(f media.Descriptor) string {
	switch f.Tier() {
	case media.TierCombined:
		return "video+audio"
	case media.TierVideoOnly:
		return "video only"
	default:
		return "audio only"
	}
}

func renderCodec(f media.Descriptor) string {
	switch {
	case f.VCodec != "" && f.ACodec != "":
		return f.VCodec + "/" + f.ACodec
	case f.VCodec != "":
		return f.VCodec
	default:
		return f.ACodec
	}
}
