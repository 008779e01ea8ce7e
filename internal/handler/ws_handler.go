package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/eatprep/cbt-player/internal/service"
)

// tickInterval is the timer stream cadence. One second keeps the
// countdown smooth; correctness does not depend on it since remaining
// time is clamped and the timeout transition is idempotent.
const tickInterval = time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams countdown ticks to the presentation layer. The
// stream doubles as the polling cadence that detects timeouts: every
// frame re-evaluates the session clock.
type WSHandler struct {
	sessionService *service.SessionService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessionService *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// TimerStream godoc
// WS /ws/v1/session/stream
// Pushes one tick per second until the session is submitted (or the
// client goes away). The final frame carries submitted=true so the
// client can switch to the review screen.
func (h *WSHandler) TimerStream(c *gin.Context) {
	if _, err := h.sessionService.TimerTick(); err != nil {
		failFromError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	h.log.Info().Msg("Timer stream connected")

	// Drain client frames so close handshakes are processed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			h.log.Debug().Msg("Timer stream closed by client")
			return
		case <-ticker.C:
			tick, err := h.sessionService.TimerTick()
			if err != nil {
				if !errors.Is(err, service.ErrNoActiveSession) {
					h.log.Warn().Err(err).Msg("Timer tick failed")
				}
				return
			}

			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(tick); err != nil {
				h.log.Debug().Err(err).Msg("Timer stream write failed")
				return
			}

			if tick.Submitted {
				conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "submitted"),
					time.Now().Add(time.Second),
				)
				return
			}
		}
	}
}
