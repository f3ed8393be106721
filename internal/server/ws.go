package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"offlinetube/internal/downloads"
	"offlinetube/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The daemon binds to loopback by default; same-host browser clients
	// arrive with arbitrary Origin headers.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleDownloadSocket runs the streaming session protocol: each download
// message starts a job and the session relays its events until the terminal
// one. Downloads within one session run sequentially; separate connections
// are independent.
func (s *Server) handleDownloadSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", logging.Error(err))
		return
	}
	defer conn.Close()

	logger := s.logger.With(logging.String("remote", conn.RemoteAddr().String()))
	for {
		var req DownloadRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("websocket read failed", logging.Error(err))
			}
			return
		}
		if req.Type != "" && req.Type != "download" {
			if err := conn.WriteJSON(downloads.Event{Type: downloads.EventError, Message: "unsupported message type " + req.Type}); err != nil {
				return
			}
			continue
		}
		height, err := parseResolution(req.Resolution)
		if err != nil {
			if werr := conn.WriteJSON(downloads.Event{Type: downloads.EventError, Message: err.Error()}); werr != nil {
				return
			}
			continue
		}

		// Jobs run on the server context: closing the socket stops the
		// relay, not the download.
		job, err := s.supervisor.Start(s.jobCtx, downloads.Request{
			URL:          req.URL,
			FormatID:     req.FormatID,
			TargetHeight: height,
		})
		if err != nil {
			if werr := conn.WriteJSON(downloads.Event{Type: downloads.EventError, Message: err.Error()}); werr != nil {
				return
			}
			continue
		}
		if !s.relayEvents(conn, job) {
			return
		}
	}
}

// relayEvents forwards the job stream to the socket. Returns false when the
// client is gone; the job keeps running either way.
func (s *Server) relayEvents(conn *websocket.Conn, job *downloads.Job) bool {
	clientGone := false
	for ev := range job.Events() {
		if clientGone {
			continue
		}
		if err := conn.WriteJSON(ev); err != nil {
			clientGone = true
		}
	}
	return !clientGone
}
