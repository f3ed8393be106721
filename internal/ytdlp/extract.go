package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"offlinetube/internal/services"
)

// Extract fetches metadata for url without downloading anything. A non-empty
// playerClient is forwarded as an extractor access profile; different
// profiles surface different format lists, so callers probe several and keep
// the richest result.
func (c *CLI) Extract(ctx context.Context, url, playerClient string) (Info, error) {
	if strings.TrimSpace(url) == "" {
		return Info{}, services.Wrap(services.ErrValidation, "ytdlp", "extract", "url required", nil)
	}
	if c.extractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.extractTimeout)
		defer cancel()
	}

	args := []string{"--dump-json", "--no-warnings", "--no-playlist"}
	if playerClient != "" {
		args = append(args, "--extractor-args", "youtube:player_client="+playerClient)
	}
	args = append(args, url)

	cmd := commandContext(ctx, c.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Info{}, services.Wrap(services.ErrExtraction, "ytdlp", "extract", tail(stderr.String()), err)
	}

	dec := json.NewDecoder(bytes.NewReader(stdout.Bytes()))
	dec.UseNumber()
	var raw rawInfo
	if err := dec.Decode(&raw); err != nil {
		return Info{}, services.Wrap(services.ErrExtraction, "ytdlp", "extract", "parse metadata", err)
	}
	return raw.toInfo(), nil
}

// tail keeps the last stderr lines so wrapped errors stay readable.
func tail(output string) string {
	output = strings.TrimSpace(output)
	if output == "" {
		return "command failed"
	}
	lines := strings.Split(output, "\n")
	if len(lines) > 3 {
		lines = lines[len(lines)-3:]
	}
	return strings.Join(lines, "; ")
}
