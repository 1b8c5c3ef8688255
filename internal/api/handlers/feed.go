package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"vigil-server/internal/broadcast"
	"vigil-server/internal/models"
	"vigil-server/internal/monitor"
	"vigil-server/internal/services"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Local monitoring server; viewers connect from file:// or
		// localhost origins.
		return true
	},
}

// feedEnvelope is the wire format of every message on the feed socket.
// Exactly one of Session, Frame or Alert is set, discriminated by Type.
type feedEnvelope struct {
	Type    string                  `json:"type"` // "session", "frame", "alert", "closed"
	Session *models.SessionResponse `json:"session,omitempty"`
	Frame   *frameMessage           `json:"frame,omitempty"`
	Alert   *models.AlertRecord     `json:"alert,omitempty"`
	Reason  string                  `json:"reason,omitempty"`
}

type frameMessage struct {
	CameraID  string    `json:"camera_id"`
	Sequence  uint64    `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
	Payload   []byte    `json:"payload"` // base64 on the wire
	Size      int       `json:"size"`
}

type FeedHandler struct {
	container *services.ServiceContainer
}

func NewFeedHandler(container *services.ServiceContainer) *FeedHandler {
	return &FeedHandler{container: container}
}

// Stream upgrades the connection and attaches a viewer session
// @Summary Live feed websocket
// @Description Subscribes a viewer to the live feed. Query params: channels (video,alerts), policy (drop-oldest|disconnect), backlog (buffer size). Only available while monitoring.
// @Tags feed
// @Param channels query string false "Channel selection" default(video)
// @Param policy query string false "Overflow policy" default(drop-oldest)
// @Param backlog query int false "Per-session frame backlog"
// @Success 101 {string} string "Switching Protocols"
// @Failure 409 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /feed/ws [get]
func (h *FeedHandler) Stream(c *gin.Context) {
	if err := h.container.Machine.Require(monitor.StateMonitoring); err != nil {
		if err == monitor.ErrInvalidTransition {
			err = ErrNotMonitoring
		}
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}

	channels := broadcast.ParseChannels(c.Query("channels"))
	policy := broadcast.ParsePolicy(c.Query("policy"))
	backlog := h.container.Config.FeedDefaultBacklog
	if raw := c.Query("backlog"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			backlog = parsed
		}
	}
	if max := h.container.Config.FeedMaxBacklog; backlog > max {
		backlog = max
	}

	session, err := h.container.Hub.Subscribe(channels, policy, backlog)
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.container.Hub.Unsubscribe(session.ID)
		log.Error().Err(err).Msg("Websocket upgrade failed")
		return
	}

	go h.serve(conn, session)
}

func (h *FeedHandler) serve(conn *websocket.Conn, session *broadcast.Session) {
	defer func() {
		h.container.Hub.Unsubscribe(session.ID)
		conn.Close()
	}()

	// Reader: we never expect data from viewers, but the read loop
	// detects client disconnects and services pong frames.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	hello := feedEnvelope{Type: "session", Session: &models.SessionResponse{
		SessionID: session.ID,
		Channels:  session.Channels.Strings(),
		Policy:    session.Policy.String(),
		Backlog:   session.Backlog,
	}}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(hello); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame := <-session.Frames():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(feedEnvelope{Type: "frame", Frame: &frameMessage{
				CameraID:  frame.CameraID,
				Sequence:  frame.Sequence,
				Timestamp: frame.Timestamp,
				Payload:   frame.Payload,
				Size:      frame.Size,
			}}); err != nil {
				return
			}
		case record := <-session.Alerts():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(feedEnvelope{Type: "alert", Alert: &record}); err != nil {
				return
			}
		case <-session.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteJSON(feedEnvelope{Type: "closed", Reason: "session disconnected"})
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "session disconnected"))
			return
		case <-clientGone:
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Unsubscribe detaches a viewer session by id
// @Summary Unsubscribe viewer session
// @Description Removes a viewer session and releases its buffers. Valid in any non-destroyed state.
// @Tags feed
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /feed/sessions/{session_id} [delete]
func (h *FeedHandler) Unsubscribe(c *gin.Context) {
	sessionID := c.Param("session_id")
	if err := h.container.Hub.Unsubscribe(sessionID); err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "session unsubscribed"})
}

// SessionStats reports delivery counters for one session
// @Summary Viewer session stats
// @Tags feed
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /feed/sessions/{session_id}/stats [get]
func (h *FeedHandler) SessionStats(c *gin.Context) {
	sessionID := c.Param("session_id")
	sent, dropped, err := h.container.Hub.Stats(sessionID)
	if err != nil {
		c.JSON(statusFor(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"sent":       sent,
		"dropped":    dropped,
	})
}
