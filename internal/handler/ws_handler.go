package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/sparx365/homework-backend/internal/middleware"
	"github.com/sparx365/homework-backend/internal/model"
	"github.com/sparx365/homework-backend/internal/response"
	"github.com/sparx365/homework-backend/internal/seneca"
	"github.com/sparx365/homework-backend/internal/service"
	ws "github.com/sparx365/homework-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
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

// WSHandler handles WebSocket extraction streaming.
type WSHandler struct {
	extractionService *service.ExtractionService
	authService       *service.AuthService
	log               zerolog.Logger
	upgrader          websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(extractionService *service.ExtractionService, authService *service.AuthService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		extractionService: extractionService,
		authService:       authService,
		log:               log.With().Str("component", "ws_handler").Logger(),
		upgrader:          buildUpgrader(allowedOrigins),
	}
}

// ExtractionStream godoc
// WS /ws/v1/extract/stream
// Upgrades to WebSocket and streams sections as they are assembled, so the
// client can render the first questions before the whole payload is done.
func (h *WSHandler) ExtractionStream(c *gin.Context) {
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

	wsLog := h.log.With().Str("user_id", claims.UserID.String()).Logger()
	wsLog.Info().Msg("Client connected")

	for {
		var msg ws.ExtractRequest
		err := ws.ReadJSON(conn, &msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		switch msg.Action {
		case ws.ActionExtract:
			h.handleExtract(c, conn, wsLog, &msg)
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

// handleExtract runs one extraction, emitting each section as it finishes.
func (h *WSHandler) handleExtract(c *gin.Context, conn *websocket.Conn, wsLog zerolog.Logger, msg *ws.ExtractRequest) {
	if msg.URL == "" {
		ws.WriteError(conn, "url is required")
		return
	}

	claims := middleware.GetClaims(c)
	user, err := h.authService.GetUser(c.Request.Context(), claims.UserID)
	if err != nil {
		ws.WriteError(conn, response.GetMessage(response.ErrTokenInvalid))
		return
	}

	index := 0
	result, err := h.extractionService.ExtractStream(c.Request.Context(), user, msg.URL, func(section model.Section) {
		ws.WriteTyped(conn, ws.SectionEvent{
			Event:   ws.EventSection,
			Index:   index,
			Section: section,
		})
		index++
	})
	if err != nil {
		ws.WriteError(conn, extractionErrorMessage(err))
		return
	}

	wsLog.Info().
		Str("title", result.Title).
		Int("sections", len(result.Sections)).
		Msg("Extraction streamed")

	ws.WriteTyped(conn, ws.DoneEvent{
		Event:         ws.EventDone,
		Title:         result.Title,
		SectionCount:  len(result.Sections),
		QuestionCount: result.QuestionCount(),
	})
}

// extractionErrorMessage maps extraction-flow errors onto client messages,
// mirroring the HTTP error mapping.
func extractionErrorMessage(err error) string {
	switch {
	case errors.Is(err, seneca.ErrInvalidAssignmentURL):
		return response.GetMessage(response.ErrInvalidSenecaURL)
	case errors.Is(err, service.ErrWeeklyLimitReached):
		return response.GetMessage(response.ErrWeeklyLimitReached)
	case errors.Is(err, seneca.ErrExtractionFailed):
		return response.GetMessage(response.ErrExtractionFailed)
	default:
		return response.GetMessage(response.ErrUpstreamFetch)
	}
}
