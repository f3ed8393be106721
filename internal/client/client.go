// Package client is the HTTP client for the daemon API, used by the CLI
// commands that talk to a running instance.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to the daemon's HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client for the daemon at addr, which may be a bare host:port
// or a full http URL.
func New(addr string) *Client {
	base := strings.TrimSpace(addr)
	if base != "" && !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		// Downloads are synchronous on the server side, so no client
		// timeout; callers bound requests with their context.
		http: &http.Client{},
	}
}

// StatusPayload mirrors the /api/status response.
type StatusPayload struct {
	Running      bool           `json:"running"`
	PID          int            `json:"pid"`
	Version      string         `json:"version"`
	ActiveJobs   []ActiveJob    `json:"active_jobs"`
	HistoryCount map[string]int `json:"history_counts"`
}

// ActiveJob is one in-flight download as reported by the daemon.
type ActiveJob struct {
	ID              string   `json:"id"`
	URL             string   `json:"url"`
	Title           string   `json:"title"`
	Phase           string   `json:"phase"`
	DownloadedBytes int64    `json:"downloaded_bytes"`
	TotalBytes      int64    `json:"total_bytes"`
	ProgressPercent *float64 `json:"progress_percent"`
}

// VideoItem is one search result.
type VideoItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Duration     int64  `json:"duration"`
	Uploader     string `json:"uploader"`
	ViewCount    int64  `json:"view_count"`
	ThumbnailURL string `json:"thumbnail"`
}

type searchPayload struct {
	Query   string      `json:"query"`
	Results []VideoItem `json:"results"`
}

// FormatEntry is one catalog row from /api/video/info.
type FormatEntry struct {
	FormatID  string  `json:"format_id"`
	Ext       string  `json:"ext"`
	Height    int     `json:"height"`
	FPS       float64 `json:"fps"`
	HasVideo  bool    `json:"has_video"`
	HasAudio  bool    `json:"has_audio"`
	SizeBytes int64   `json:"filesize"`
	Bitrate   float64 `json:"bitrate"`
	VCodec    string  `json:"vcodec"`
	ACodec    string  `json:"acodec"`
}

// InfoPayload mirrors /api/video/info.
type InfoPayload struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Duration  int64         `json:"duration"`
	Uploader  string        `json:"uploader"`
	Synthetic bool          `json:"synthetic"`
	Formats   []FormatEntry `json:"formats"`
}

// DownloadPayload mirrors the terminal outcome of a synchronous download.
type DownloadPayload struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	Filename string `json:"filename"`
	Filepath string `json:"filepath"`
	Size     int64  `json:"size"`
	Error    string `json:"error"`
}

// LibraryEntry is one downloaded item.
type LibraryEntry struct {
	Filename     string    `json:"filename"`
	Filepath     string    `json:"filepath"`
	Title        string    `json:"title"`
	SourceID     string    `json:"source_id"`
	SizeBytes    int64     `json:"size"`
	Duration     int64     `json:"duration"`
	Uploader     string    `json:"uploader"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

type libraryPayload struct {
	Entries []LibraryEntry `json:"entries"`
	Total   int            `json:"total"`
}

// Status fetches daemon health and workload.
func (c *Client) Status(ctx context.Context) (StatusPayload, error) {
	var payload StatusPayload
	err := c.get(ctx, "/api/status", nil, &payload)
	return payload, err
}

// Search runs a keyword query. maxResults of zero uses the server default.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]VideoItem, error) {
	params := url.Values{"q": {query}}
	if maxResults > 0 {
		params.Set("max", strconv.Itoa(maxResults))
	}
	var payload searchPayload
	if err := c.get(ctx, "/api/search", params, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// Trending fetches an approximated trending listing.
func (c *Client) Trending(ctx context.Context, category string) ([]VideoItem, error) {
	params := url.Values{}
	if category != "" {
		params.Set("category", category)
	}
	var payload searchPayload
	if err := c.get(ctx, "/api/trending", params, &payload); err != nil {
		return nil, err
	}
	return payload.Results, nil
}

// VideoInfo fetches the format catalog for a URL without downloading.
func (c *Client) VideoInfo(ctx context.Context, videoURL string) (InfoPayload, error) {
	var payload InfoPayload
	err := c.get(ctx, "/api/video/info", url.Values{"url": {videoURL}}, &payload)
	return payload, err
}

// Download submits a download and blocks until its terminal outcome.
func (c *Client) Download(ctx context.Context, videoURL, resolution, formatID string) (DownloadPayload, error) {
	body := map[string]string{"url": videoURL}
	if resolution != "" {
		body["resolution"] = resolution
	}
	if formatID != "" {
		body["format_id"] = formatID
	}
	var payload DownloadPayload
	err := c.post(ctx, "/api/video/download", body, &payload)
	return payload, err
}

// Library lists downloaded items newest first.
func (c *Client) Library(ctx context.Context) ([]LibraryEntry, error) {
	var payload libraryPayload
	if err := c.get(ctx, "/api/library", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Entries, nil
}

// DeleteLibraryItem removes one downloaded file and its metadata.
func (c *Client) DeleteLibraryItem(ctx context.Context, filename string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/library/"+url.PathEscape(filename), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return apiError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		return fmt.Errorf("daemon: %s", payload.Error)
	}
	return fmt.Errorf("daemon: unexpected status %d", resp.StatusCode)
}
