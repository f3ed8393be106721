package config

import (
	"fmt"
	"net"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateBind(); err != nil {
		return err
	}
	if err := c.validateYtDlp(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateBind() error {
	if _, _, err := net.SplitHostPort(c.Paths.APIBind); err != nil {
		return fmt.Errorf("paths.api_bind: %q is not host:port: %w", c.Paths.APIBind, err)
	}
	return nil
}

func (c *Config) validateYtDlp() error {
	for _, client := range c.YtDlp.PlayerClients {
		switch client {
		case "web", "android", "ios", "tv", "mweb":
		default:
			return fmt.Errorf("ytdlp.player_clients: unknown client %q", client)
		}
	}
	switch strings.ToLower(c.YtDlp.MergeFormat) {
	case "mp4", "mkv", "webm":
	default:
		return fmt.Errorf("ytdlp.merge_format: unsupported container %q", c.YtDlp.MergeFormat)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
