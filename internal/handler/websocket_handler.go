package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/moneymanager/moneymanager-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// JWTValidator validates JWT tokens and returns the owner ID
type JWTValidator interface {
	ValidateToken(token string) (ownerID string, err error)
}

// WebSocketHandler handles WebSocket connections. Each connection gets a session
// with its own view-state controllers.
type WebSocketHandler struct {
	hub            *websocket.Hub
	validator      JWTValidator
	stores         websocket.Stores
	loc            *time.Location
	logger         zerolog.Logger
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, validator JWTValidator, stores websocket.Stores, loc *time.Location, allowedOrigins []string, logger zerolog.Logger) *WebSocketHandler {
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		validator:      validator,
		stores:         stores,
		loc:            loc,
		logger:         logger.With().Str("component", "websocket").Logger(),
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Same-origin or non-browser clients
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles WebSocket connection requests at GET /ws
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		log.Debug().Msg("WebSocket connection rejected: missing token")
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	ownerID, err := h.validator.ValidateToken(token)
	if err != nil {
		log.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, ownerID, h.hub)
	session := websocket.NewSession(ownerID, client, h.stores, h.loc, h.hub, h.logger)
	client.SetMessageHandler(session)
	h.hub.Register(client)

	log.Info().
		Str("owner_id", ownerID).
		Str("client_id", client.ID()).
		Msg("WebSocket client connected")

	go client.WritePump()
	session.Start()
	go func() {
		client.ReadPump()
		session.Close()
	}()

	return nil
}
