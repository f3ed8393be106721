package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"offlinetube/internal/services"
)

// progressTemplate makes yt-dlp print its whole progress dictionary as one
// JSON object per line, prefixed so ordinary output lines never parse.
const progressTemplate = "download:" + progressPrefix + "%(progress)j"

// progressPrefix tags progress lines on stdout.
const progressPrefix = "OTPROG "

// ProgressUpdate is one hook-reported snapshot of an in-flight fetch.
type ProgressUpdate struct {
	Status           string
	DownloadedBytes  int64
	TotalBytes       int64
	SpeedBytesPerSec float64
	Filename         string
}

// FetchRequest describes one media fetch.
type FetchRequest struct {
	URL            string
	FormatSpec     string
	OutputTemplate string
	MergeFormat    string
}

// Fetch downloads media according to req, invoking progress for each update
// line the tool emits. Progress may arrive for several fragments of a paired
// fetch; callers fuse the stream with their own filesystem polling.
func (c *CLI) Fetch(ctx context.Context, req FetchRequest, progress func(ProgressUpdate)) error {
	if strings.TrimSpace(req.URL) == "" {
		return services.Wrap(services.ErrValidation, "ytdlp", "fetch", "url required", nil)
	}
	if strings.TrimSpace(req.OutputTemplate) == "" {
		return services.Wrap(services.ErrValidation, "ytdlp", "fetch", "output template required", nil)
	}

	spec := req.FormatSpec
	if spec == "" {
		spec = "best"
	}
	merge := req.MergeFormat
	if merge == "" {
		merge = c.mergeFormat
	}

	args := []string{
		"--newline",
		"--no-warnings",
		"--no-playlist",
		"--progress-template", progressTemplate,
		"-f", spec,
		"--merge-output-format", merge,
		"-o", req.OutputTemplate,
		req.URL,
	}

	cmd := commandContext(ctx, c.binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return services.Wrap(services.ErrFetch, "ytdlp", "fetch", "stdout pipe", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrFetch, "ytdlp", "fetch", "start yt-dlp", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		payload, ok := strings.CutPrefix(line, progressPrefix)
		if !ok {
			continue
		}
		update, ok := parseProgressLine(payload)
		if !ok {
			continue
		}
		if progress != nil {
			progress(update)
		}
	}
	if err := scanner.Err(); err != nil {
		_ = cmd.Wait()
		return services.Wrap(services.ErrFetch, "ytdlp", "fetch", "read yt-dlp output", err)
	}

	if err := cmd.Wait(); err != nil {
		return services.ClassifyFetchError(fmt.Errorf("yt-dlp: %s: %w", tail(stderr.String()), err), stderr.String())
	}
	return nil
}

type rawProgress struct {
	Status             string      `json:"status"`
	DownloadedBytes    json.Number `json:"downloaded_bytes"`
	TotalBytes         json.Number `json:"total_bytes"`
	TotalBytesEstimate json.Number `json:"total_bytes_estimate"`
	Speed              json.Number `json:"speed"`
	Filename           string      `json:"filename"`
}

func parseProgressLine(payload string) (ProgressUpdate, bool) {
	var raw rawProgress
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return ProgressUpdate{}, false
	}
	total := numberInt(raw.TotalBytes)
	if total == 0 {
		total = numberInt(raw.TotalBytesEstimate)
	}
	return ProgressUpdate{
		Status:           raw.Status,
		DownloadedBytes:  numberInt(raw.DownloadedBytes),
		TotalBytes:       total,
		SpeedBytesPerSec: numberFloat(raw.Speed),
		Filename:         raw.Filename,
	}, true
}
