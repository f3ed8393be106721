package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeYtDlp()
	c.normalizeProgress()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DownloadDir) == "" {
		c.Paths.DownloadDir = defaultDownloadDir
	}
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeYtDlp() {
	if strings.TrimSpace(c.YtDlp.Binary) == "" {
		c.YtDlp.Binary = defaultYtDlpBinary
	}
	clients := make([]string, 0, len(c.YtDlp.PlayerClients))
	for _, client := range c.YtDlp.PlayerClients {
		client = strings.ToLower(strings.TrimSpace(client))
		if client != "" {
			clients = append(clients, client)
		}
	}
	if len(clients) == 0 {
		clients = defaultPlayerClients()
	}
	c.YtDlp.PlayerClients = clients
	if c.YtDlp.ExtractTimeout <= 0 {
		c.YtDlp.ExtractTimeout = defaultExtractTimeout
	}
	if c.YtDlp.FetchTimeout <= 0 {
		c.YtDlp.FetchTimeout = defaultFetchTimeout
	}
	if strings.TrimSpace(c.YtDlp.MergeFormat) == "" {
		c.YtDlp.MergeFormat = defaultMergeFormat
	}
	if c.YtDlp.SearchMaxResults <= 0 {
		c.YtDlp.SearchMaxResults = defaultSearchMaxResults
	}
}

func (c *Config) normalizeProgress() {
	if c.Progress.PollIntervalMS <= 0 {
		c.Progress.PollIntervalMS = defaultPollIntervalMS
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
}
