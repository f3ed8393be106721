package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"offlinetube/internal/config"
)

const userAgent = "offlinetube/0.1.0"

// Service defines the notification surface exposed to the download
// supervisor and the CLI.
type Service interface {
	NotifyDownloadComplete(ctx context.Context, title string, sizeBytes int64) error
	NotifyDownloadFailed(ctx context.Context, title, message string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:   topic,
		client:     &http.Client{Timeout: timeout},
		onComplete: cfg.Notifications.OnComplete,
		onError:    cfg.Notifications.OnError,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint   string
	client     *http.Client
	onComplete bool
	onError    bool
}

func (n *ntfyService) NotifyDownloadComplete(ctx context.Context, title string, sizeBytes int64) error {
	if !n.onComplete {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:   "Offlinetube - Download Complete",
		message: fmt.Sprintf("Saved: %s (%s)", title, formatSize(sizeBytes)),
		tags:    []string{"offlinetube", "download", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDownloadFailed(ctx context.Context, title, message string) error {
	if !n.onError {
		return nil
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "unknown"
	}
	data := payload{
		title:    "Offlinetube - Download Failed",
		message:  fmt.Sprintf("Failed: %s\n%s", title, strings.TrimSpace(message)),
		tags:     []string{"offlinetube", "download", "error"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Offlinetube - Test",
		message:  "Notification system test",
		tags:     []string{"offlinetube", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

type noopService struct{}

func (noopService) NotifyDownloadComplete(context.Context, string, int64) error { return nil }
func (noopService) NotifyDownloadFailed(context.Context, string, string) error  { return nil }
func (noopService) TestNotification(context.Context) error                      { return nil }
