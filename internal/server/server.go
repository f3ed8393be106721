package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"offlinetube/internal/config"
	"offlinetube/internal/downloads"
	"offlinetube/internal/history"
	"offlinetube/internal/logging"
	"offlinetube/internal/ytdlp"
)

// Searcher runs keyword queries against the extraction collaborator.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]ytdlp.SearchResult, error)
}

// Options wires a Server.
type Options struct {
	Config     *config.Config
	Supervisor *downloads.Supervisor
	Extractor  downloads.Extractor
	Searcher   Searcher
	History    *history.Store
	Logger     *slog.Logger
	Version    string
}

// Server is the HTTP and websocket front end.
type Server struct {
	bind             string
	downloadDir      string
	searchMaxResults int
	playerClients    []string
	version          string

	logger     *slog.Logger
	supervisor *downloads.Supervisor
	extractor  downloads.Extractor
	searcher   Searcher
	store      *history.Store

	// jobCtx outlives individual requests so a disconnecting client never
	// cancels a fetch already writing to disk.
	jobCtx context.Context

	listener net.Listener
	server   *http.Server
}

// New builds the server and its route table.
func New(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New("config required")
	}
	if opts.Supervisor == nil {
		return nil, errors.New("supervisor required")
	}
	bind := strings.TrimSpace(opts.Config.Paths.APIBind)
	if bind == "" {
		return nil, errors.New("api bind address required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	srv := &Server{
		bind:             bind,
		downloadDir:      opts.Config.Paths.DownloadDir,
		searchMaxResults: opts.Config.YtDlp.SearchMaxResults,
		playerClients:    opts.Config.YtDlp.PlayerClients,
		version:          opts.Version,
		logger:           logging.WithComponent(logger, "server"),
		supervisor:       opts.Supervisor,
		extractor:        opts.Extractor,
		searcher:         opts.Searcher,
		store:            opts.History,
		jobCtx:           context.Background(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/search", srv.handleSearch)
	mux.HandleFunc("/api/trending", srv.handleTrending)
	mux.HandleFunc("/api/video/info", srv.handleVideoInfo)
	mux.HandleFunc("/api/video/download", srv.handleDownload)
	mux.HandleFunc("/api/library", srv.handleLibrary)
	mux.HandleFunc("/api/library/", srv.handleLibraryItem)
	mux.HandleFunc("/api/stream/", srv.handleStream)
	mux.HandleFunc("/ws/download", srv.handleDownloadSocket)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving. ctx scopes both the listener and all download jobs.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener
	s.jobCtx = ctx

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.bind
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down.
func (s *Server) Stop() {
	if s == nil || s.server == nil {
		return
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	payload := StatusResponse{
		Running:    true,
		PID:        os.Getpid(),
		Version:    s.version,
		ActiveJobs: s.supervisor.Active(),
	}
	if payload.ActiveJobs == nil {
		payload.ActiveJobs = []downloads.JobState{}
	}
	if s.store != nil {
		if counts, err := s.store.Counts(r.Context()); err == nil {
			payload.HistoryCount = counts
		}
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.writeError(w, http.StatusBadRequest, "query parameter q required")
		return
	}
	s.search(w, r, query)
}

// handleTrending reuses keyword search; there is no reliable feed endpoint
// without authentication, so a category query approximates one.
func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := "trending"
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		query = "trending " + category
	}
	s.search(w, r, query)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, query string) {
	if s.searcher == nil {
		s.writeError(w, http.StatusServiceUnavailable, "search unavailable")
		return
	}
	max := s.searchMaxResults
	if raw := r.URL.Query().Get("max"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 50 {
			max = parsed
		}
	}
	results, err := s.searcher.Search(r.Context(), query, max)
	if err != nil {
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	items := make([]VideoItem, 0, len(results))
	for _, res := range results {
		url := res.URL
		if url == "" && res.ID != "" {
			url = "https://www.youtube.com/watch?v=" + res.ID
		}
		items = append(items, VideoItem{
			ID:           res.ID,
			Title:        res.Title,
			URL:          url,
			Duration:     res.Duration,
			Uploader:     res.Uploader,
			ViewCount:    res.ViewCount,
			ThumbnailURL: res.ThumbnailURL,
		})
	}
	s.writeJSON(w, http.StatusOK, SearchResponse{Query: query, Results: items})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
