package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/polisure/certprep-backend/internal/middleware"
	"github.com/polisure/certprep-backend/internal/model"
	"github.com/polisure/certprep-backend/internal/service"
	ws "github.com/polisure/certprep-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
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

// WSHandler streams the mock-exam section clock and accepts autosaves
// over a single WebSocket, so the client needs no polling while a
// section is active.
type WSHandler struct {
	mockService *service.MockService
	log         zerolog.Logger
	upgrader    websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(mockService *service.MockService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		mockService: mockService,
		log:         log.With().Str("component", "ws_handler").Logger(),
		upgrader:    buildUpgrader(allowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/mock/stream?token=…
// Pushes a tick every second while a section runs, auto-submitting on
// expiry, and handles autosave/submit/ping actions from the client.
func (h *WSHandler) AttemptStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	agentID := claims.AgentID

	if _, err := h.mockService.Status(agentID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no attempt in progress"})
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	wsLog := h.log.With().Int("agent_id", agentID).Logger()
	wsLog.Info().Msg("Agent connected to attempt stream")

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	go h.tickLoop(ctx, conn, wsLog, agentID)

	for {
		var msg ws.Request
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionAutosave:
			h.handleAutosave(ctx, conn, agentID, &msg)
		case ws.ActionSubmit:
			h.handleSubmit(ctx, conn, wsLog, agentID)
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}

// tickLoop drives the section clock. Each tick polls the session timer,
// which auto-submits when the limit has passed, and pushes the remaining
// time to the client.
func (h *WSHandler) tickLoop(ctx context.Context, conn *ws.Conn, wsLog zerolog.Logger, agentID int) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fired, status, err := h.mockService.CheckExpiry(ctx, agentID)
			if err != nil {
				return
			}
			if fired {
				n := len(status.SectionResults)
				conn.WriteTyped(ws.SubmittedResponse{
					Event:     ws.EventSubmitted,
					AutoByTTL: true,
					Section:   status.SectionResults[n-1],
					HasMore:   status.SectionIndex < status.SectionCount,
				})
				continue
			}
			conn.WriteTyped(ws.TickResponse{
				Event:         ws.EventTick,
				State:         string(status.State),
				SectionIndex:  status.SectionIndex,
				RemainingSecs: status.RemainingSecs,
			})
		}
	}
}

func (h *WSHandler) handleAutosave(ctx context.Context, conn *ws.Conn, agentID int, msg *ws.Request) {
	if msg.QID == "" {
		conn.WriteError("q_id is required")
		return
	}

	err := h.mockService.Autosave(ctx, agentID, msg.QID, model.NewLabelSet(msg.Labels...))
	if err != nil {
		conn.WriteError(err.Error())
		return
	}
	conn.WriteTyped(ws.SavedResponse{Event: ws.EventSaved, QID: msg.QID})
}

func (h *WSHandler) handleSubmit(ctx context.Context, conn *ws.Conn, wsLog zerolog.Logger, agentID int) {
	res, status, err := h.mockService.SubmitSection(ctx, agentID)
	if err != nil {
		conn.WriteError(err.Error())
		return
	}

	wsLog.Info().
		Str("section", res.Name).
		Int("score", res.Score).
		Int("correct", res.Correct).
		Msg("Section submitted over stream")

	conn.WriteTyped(ws.SubmittedResponse{
		Event:     ws.EventSubmitted,
		AutoByTTL: false,
		Section:   res,
		HasMore:   status.SectionIndex < status.SectionCount,
	})
}
