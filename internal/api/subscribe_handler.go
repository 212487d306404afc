package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/dmelnik/taskboard-api/internal/platform/logger"
	"github.com/dmelnik/taskboard-api/internal/ws"
)

// SubscribeHandler upgrades HTTP requests to websocket connections and
// registers them with the connection registry so they receive task events.
type SubscribeHandler struct {
	registry *ws.Registry
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewSubscribeHandler creates a new SubscribeHandler
func NewSubscribeHandler(registry *ws.Registry, logger *slog.Logger) *SubscribeHandler {
	if registry == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("registry cannot be nil for SubscribeHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SubscribeHandler")
	}

	return &SubscribeHandler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The API carries no credentials, so cross-origin subscribers
			// are accepted.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "subscribe_handler")),
	}
}

// Subscribe handles GET /tasks/ws requests.
// The connection stays registered until the client disconnects or a
// delivery fails.
func (h *SubscribeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error response.
		log.Debug("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	conn := ws.NewGorillaConnection(wsConn)
	h.registry.Register(conn)
	log.Info("subscriber connected",
		slog.String("remote_addr", r.RemoteAddr),
		slog.Int("subscribers", h.registry.Count()))

	// Subscribers are write-only from the server's perspective; the read
	// loop exists to notice disconnects and to drain control frames.
	go h.readLoop(conn, wsConn, log)
}

func (h *SubscribeHandler) readLoop(conn ws.Connection, wsConn *websocket.Conn, log *slog.Logger) {
	defer func() {
		h.registry.Unregister(conn)
		_ = conn.Close()
	}()

	for {
		if _, _, err := wsConn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("subscriber read error", slog.String("error", err.Error()))
			} else {
				log.Debug("subscriber disconnected")
			}
			return
		}
	}
}
