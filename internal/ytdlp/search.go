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

// Search runs a keyword query and returns up to maxResults flat entries.
// Flat extraction skips per-video format probing, so results carry metadata
// only.
func (c *CLI) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, services.Wrap(services.ErrValidation, "ytdlp", "search", "query required", nil)
	}
	if maxResults <= 0 {
		maxResults = 10
	}
	if c.extractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.extractTimeout)
		defer cancel()
	}

	target := fmt.Sprintf("ytsearch%d:%s", maxResults, query)
	args := []string{"--dump-json", "--flat-playlist", "--no-warnings", target}

	cmd := commandContext(ctx, c.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, services.Wrap(services.ErrExtraction, "ytdlp", "search", tail(stderr.String()), err)
	}

	var results []SearchResult
	scanner := bufio.NewScanner(bytes.NewReader(stdout.Bytes()))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		var raw rawInfo
		if err := dec.Decode(&raw); err != nil {
			continue
		}
		results = append(results, raw.toSearchResult())
	}
	if err := scanner.Err(); err != nil {
		return nil, services.Wrap(services.ErrExtraction, "ytdlp", "search", "read search output", err)
	}
	return results, nil
}
