package ws

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chatline/chatline-server/internal/logger"
	"github.com/chatline/chatline-server/internal/metrics"
	"github.com/chatline/chatline-server/internal/model"
	"github.com/chatline/chatline-server/internal/presence"
)

// Gateway upgrades authenticated HTTP requests to websockets and keeps the
// presence registry in sync with connection lifetimes. Authentication has
// already happened in middleware; the gateway only reads the identity from
// the request context.
type Gateway struct {
	registry       *presence.Registry
	contextManager model.ContextManager
	logger         *logger.Logger

	upgrader     websocket.Upgrader
	queueSize    int
	writeTimeout time.Duration
}

func NewGateway(
	registry *presence.Registry,
	contextManager model.ContextManager,
	queueSize int,
	writeTimeout time.Duration,
	logger *logger.Logger,
) *Gateway {
	return &Gateway{
		registry:       registry,
		contextManager: contextManager,
		logger:         logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from a different origin than the API.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		queueSize:    queueSize,
		writeTimeout: writeTimeout,
	}
}

// Handle serves one websocket connection for its full lifetime. The handler
// returns when the peer disconnects or the connection is closed from the
// server side.
func (g *Gateway) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := g.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	socket, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		g.logger.Error("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	conn := presence.NewConn(userID, socket, g.queueSize)
	g.registry.Register(conn)
	metrics.OnlineConns.Inc()
	g.logger.Info("websocket connected", "user_id", userID)

	defer func() {
		g.registry.Unregister(conn)
		conn.Close()
		metrics.OnlineConns.Dec()
		g.logger.Info("websocket disconnected", "user_id", userID)
	}()

	go conn.WritePump(g.writeTimeout)
	conn.ReadPump()
}
