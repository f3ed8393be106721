package ytdlp

import (
	"os/exec"
	"time"
)

var commandContext = exec.CommandContext

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithMergeFormat sets the container passed to --merge-output-format for
// paired fetches.
func WithMergeFormat(format string) Option {
	return func(c *CLI) {
		if format != "" {
			c.mergeFormat = format
		}
	}
}

// WithExtractTimeout bounds a single extraction attempt.
func WithExtractTimeout(d time.Duration) Option {
	return func(c *CLI) {
		if d > 0 {
			c.extractTimeout = d
		}
	}
}

// CLI wraps the yt-dlp command-line tool.
type CLI struct {
	binary         string
	mergeFormat    string
	extractTimeout time.Duration
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{
		binary:         "yt-dlp",
		mergeFormat:    "mp4",
		extractTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}
