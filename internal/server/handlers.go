package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"offlinetube/internal/downloads"
	"offlinetube/internal/fileutil"
	"offlinetube/internal/library"
	"offlinetube/internal/logging"
	"offlinetube/internal/services"
)

func (s *Server) handleVideoInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.extractor == nil {
		s.writeError(w, http.StatusServiceUnavailable, "extraction unavailable")
		return
	}
	url := strings.TrimSpace(r.URL.Query().Get("url"))
	if url == "" {
		s.writeError(w, http.StatusBadRequest, "query parameter url required")
		return
	}

	info, catalog := downloads.Probe(r.Context(), s.extractor, url, s.playerClients, s.logger)
	if catalog.Synthetic && info.Title == "" {
		s.writeError(w, http.StatusBadGateway, "could not extract video metadata")
		return
	}
	s.writeJSON(w, http.StatusOK, InfoResponse{
		ID:           info.ID,
		Title:        info.Title,
		Description:  info.Description,
		Duration:     info.Duration,
		Uploader:     info.Uploader,
		ViewCount:    info.ViewCount,
		ThumbnailURL: info.ThumbnailURL,
		Synthetic:    catalog.Synthetic,
		Formats:      catalog.Formats,
	})
}

// handleDownload runs a download synchronously: the response is sent after
// the job reaches its terminal state. GET takes query parameters, POST a
// JSON body.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req DownloadRequest
	switch r.Method {
	case http.MethodGet:
		query := r.URL.Query()
		req.URL = query.Get("url")
		req.Resolution = query.Get("resolution")
		req.FormatID = query.Get("format_id")
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	height, err := parseResolution(req.Resolution)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.supervisor.Start(s.jobCtx, downloads.Request{
		URL:          req.URL,
		FormatID:     req.FormatID,
		TargetHeight: height,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrValidation) {
			status = http.StatusBadRequest
		}
		s.writeError(w, status, err.Error())
		return
	}

	resp := DownloadResponse{JobID: job.ID, Status: string(downloads.EventError), Error: "job ended without terminal event"}
	for ev := range job.Events() {
		if !ev.Terminal() {
			continue
		}
		resp = DownloadResponse{
			JobID:    job.ID,
			Status:   string(ev.Type),
			Filename: ev.Filename,
			Filepath: ev.Filepath,
			Size:     ev.SizeBytes,
			Error:    ev.Message,
		}
	}

	status := http.StatusOK
	if resp.Status == string(downloads.EventError) {
		status = http.StatusBadGateway
	}
	s.writeJSON(w, status, resp)
}

func (s *Server) handleLibrary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	entries, err := library.List(s.downloadDir)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []library.Entry{}
	}
	s.writeJSON(w, http.StatusOK, LibraryResponse{Entries: entries, Total: len(entries)})
}

func (s *Server) handleLibraryItem(w http.ResponseWriter, r *http.Request) {
	filename := strings.TrimPrefix(r.URL.Path, "/api/library/")
	if filename == "" || strings.Contains(filename, "/") {
		s.writeError(w, http.StatusNotFound, "library entry not found")
		return
	}
	if r.Method != http.MethodDelete {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := library.Delete(s.downloadDir, filename); err != nil {
		s.logger.Warn("library delete rejected",
			logging.String("filename", filename),
			logging.Error(err))
		s.writeError(w, http.StatusNotFound, "library entry not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"deleted": filename})
}

// handleStream serves a library file with range support for seeking.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	filename := strings.TrimPrefix(r.URL.Path, "/api/stream/")
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		s.writeError(w, http.StatusNotFound, "file not found")
		return
	}
	if !fileutil.IsMediaFile(filename) {
		s.writeError(w, http.StatusNotFound, "file not found")
		return
	}
	http.ServeFile(w, r, filepath.Join(s.downloadDir, filename))
}

// parseResolution accepts "1080", "1080p", or empty.
func parseResolution(raw string) (int, error) {
	raw = strings.TrimSpace(strings.TrimSuffix(strings.ToLower(strings.TrimSpace(raw)), "p"))
	if raw == "" {
		return 0, nil
	}
	height, err := strconv.Atoi(raw)
	if err != nil || height <= 0 {
		return 0, errors.New("invalid resolution " + strconv.Quote(raw))
	}
	return height, nil
}
