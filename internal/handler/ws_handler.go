package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lakshyaprep/lakshya-backend/internal/middleware"
	"github.com/lakshyaprep/lakshya-backend/internal/model"
	"github.com/lakshyaprep/lakshya-backend/internal/service"
	ws "github.com/lakshyaprep/lakshya-backend/internal/websocket"
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

// WSHandler handles the streamed tutoring WebSocket.
type WSHandler struct {
	tutorService   *service.TutorService
	settingService *service.SettingService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(tutorService *service.TutorService, settingService *service.SettingService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		tutorService:   tutorService,
		settingService: settingService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// TutorStream godoc
// WS /ws/v1/student/tutor?token=...
// Upgrades to WebSocket for streamed tutoring turns. Each chat message
// carries the whole conversation; replies stream back as delta events.
func (h *WSHandler) TutorStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Int("user_id", claims.UserID).Logger()
	wsLog.Info().Msg("Tutor session connected")

	for {
		var msg ws.ChatRequest
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		switch msg.Action {
		case ws.ActionChat:
			h.handleChatTurn(conn, wsLog, &msg)
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

// handleChatTurn streams one tutoring reply back over the socket.
func (h *WSHandler) handleChatTurn(conn *websocket.Conn, wsLog zerolog.Logger, msg *ws.ChatRequest) {
	ctx := context.Background()

	if !h.settingService.TutorEnabled(ctx) || !h.tutorService.Enabled() {
		ws.WriteError(conn, "tutor is not enabled on this server")
		return
	}
	if len(msg.Messages) == 0 {
		ws.WriteError(conn, "messages is required")
		return
	}
	if len(msg.Messages) > 50 {
		ws.WriteError(conn, "conversation too long, start a new session")
		return
	}
	for _, m := range msg.Messages {
		if m.Role != "user" && m.Role != "assistant" {
			ws.WriteError(conn, "message role must be user or assistant")
			return
		}
		if m.Content == "" || len(m.Content) > 8000 {
			ws.WriteError(conn, "message content must be 1-8000 characters")
			return
		}
	}

	req := model.TutorChatRequest{Messages: msg.Messages, Subject: msg.Subject}
	reply, err := h.tutorService.ChatStream(ctx, req, func(delta string) error {
		return ws.WriteTyped(conn, ws.DeltaResponse{Event: ws.EventDelta, Content: delta})
	})
	if err != nil {
		wsLog.Error().Err(err).Msg("Tutor stream failed")
		ws.WriteError(conn, "tutor is temporarily unavailable")
		return
	}

	ws.WriteTyped(conn, ws.DoneResponse{
		Event: ws.EventDone,
		Reply: reply,
		Model: h.tutorService.Model(),
	})
}
