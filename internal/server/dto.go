package server

import (
	"offlinetube/internal/downloads"
	"offlinetube/internal/library"
	"offlinetube/internal/media"
)

// StatusResponse reports daemon health and workload.
type StatusResponse struct {
	Running      bool                 `json:"running"`
	PID          int                  `json:"pid"`
	Version      string               `json:"version,omitempty"`
	ActiveJobs   []downloads.JobState `json:"active_jobs"`
	HistoryCount map[string]int       `json:"history_counts,omitempty"`
}

// VideoItem is one search or trending result.
type VideoItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Duration     int64  `json:"duration,omitempty"`
	Uploader     string `json:"uploader,omitempty"`
	ViewCount    int64  `json:"view_count,omitempty"`
	ThumbnailURL string `json:"thumbnail,omitempty"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Query   string      `json:"query"`
	Results []VideoItem `json:"results"`
}

// InfoResponse is the catalog/plan preview for a URL without downloading.
type InfoResponse struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description,omitempty"`
	Duration     int64              `json:"duration,omitempty"`
	Uploader     string             `json:"uploader,omitempty"`
	ViewCount    int64              `json:"view_count,omitempty"`
	ThumbnailURL string             `json:"thumbnail,omitempty"`
	Synthetic    bool               `json:"synthetic"`
	Formats      []media.Descriptor `json:"formats"`
}

// DownloadRequest is the body of a synchronous download submission and the
// payload of a websocket download message.
type DownloadRequest struct {
	Type       string `json:"type,omitempty"`
	URL        string `json:"url"`
	Resolution string `json:"resolution,omitempty"`
	FormatID   string `json:"format_id,omitempty"`
}

// DownloadResponse reports the terminal outcome of a synchronous download.
type DownloadResponse struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	Filename string `json:"filename,omitempty"`
	Filepath string `json:"filepath,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Error    string `json:"error,omitempty"`
}

// LibraryResponse wraps the reconstructed library listing.
type LibraryResponse struct {
	Entries []library.Entry `json:"entries"`
	Total   int             `json:"total"`
}
