package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ASHISH26940/asmr-studio-api/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const (
	wsWriteWait    = 10 * time.Second
	wsPingInterval = 30 * time.Second
)

// statusUpgrader accepts clients that send no Origin and browsers on an
// allowed origin.
func (h *Handlers) statusUpgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || h.originAllowed(origin)
		},
	}
}

type statusMessage struct {
	Type  string `json:"type"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

func (h *Handlers) pollInterval() time.Duration {
	if h.Config != nil && h.Config.PollInterval > 0 {
		return h.Config.PollInterval
	}
	return 2 * time.Second
}

// StreamPredictionStatus pushes a prediction's status over a websocket until
// it reaches a terminal state or the client disconnects. Query: token (optional).
func (h *Handlers) StreamPredictionStatus(c *gin.Context) {
	predictionID := c.Param("id")

	var userID *uuid.UUID
	if token := c.Query("token"); token != "" {
		claims, err := h.JWT.ValidateToken(token)
		if err != nil {
			log.Debugf("StreamPredictionStatus: invalid token: %v", err)
			utils.ResponseWithError(c, http.StatusUnauthorized, "Invalid or expired token", nil)
			return
		}
		userID = &claims.UserID
	}

	conn, err := h.statusUpgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Debugf("StreamPredictionStatus: upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Nothing is expected from the client; reading only notices the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(msg statusMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(msg)
	}

	poll := time.NewTicker(h.pollInterval())
	defer poll.Stop()
	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		st, err := h.Videos.Status(ctx, userID, predictionID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Errorf("StreamPredictionStatus: %s: %v", predictionID, err)
			_ = write(statusMessage{Type: "error", Error: "Failed to check prediction status"})
			return
		}
		if err := write(statusMessage{Type: "status", Data: st}); err != nil {
			return
		}
		if st.Done {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, st.Status),
				time.Now().Add(wsWriteWait))
			return
		}

	wait:
		for {
			select {
			case <-ctx.Done():
				return
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
					return
				}
			case <-poll.C:
				break wait
			}
		}
	}
}
