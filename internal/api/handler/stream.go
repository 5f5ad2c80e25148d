package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/albapepper/league-data/internal/api/respond"
	"github.com/albapepper/league-data/internal/recompute"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	streamBuffer   = 64
)

// JobEvent is one websocket message on the job stream.
type JobEvent struct {
	Type string        `json:"type"`
	Job  recompute.Job `json:"job"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Admin auth already ran; CORS does not apply to websocket upgrades.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamJobs streams finished recompute jobs over a websocket.
// @Summary Recompute job stream
// @Description Websocket. Each finished job is sent as {"type":"JOB_FINISHED","job":{...}}. Optional ?season= limits the stream to one season.
// @Tags admin
// @Security BearerAuth
// @Param season query string false "Season ID filter"
// @Success 101
// @Failure 503 {object} respond.ErrorResponse
// @Router /api/v1/admin/jobs/stream [get]
func (h *Handler) StreamJobs(w http.ResponseWriter, r *http.Request) {
	if h.dispatcher == nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "RECOMPUTE_UNAVAILABLE", "Recompute dispatcher not running")
		return
	}
	season := r.URL.Query().Get("season")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Warn("job stream upgrade failed", "error", err)
		return
	}

	jobs, cancel := h.dispatcher.Subscribe(streamBuffer)
	h.logger.Info("job stream connected", "remote", r.RemoteAddr, "season", season)

	done := make(chan struct{})
	go readPump(conn, done)
	writePump(conn, jobs, season, done)

	cancel()
	conn.Close()
	h.logger.Info("job stream closed", "remote", r.RemoteAddr)
}

// readPump discards client messages and keeps the read deadline moving on
// pongs. It closes done when the client goes away.
func readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump forwards jobs and pings until the client leaves or the
// dispatcher closes the subscription.
func writePump(conn *websocket.Conn, jobs <-chan recompute.Job, season string, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case job, ok := <-jobs:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
				return
			}
			if season != "" && job.SeasonID != season {
				continue
			}
			if err := conn.WriteJSON(JobEvent{Type: "JOB_FINISHED", Job: job}); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
