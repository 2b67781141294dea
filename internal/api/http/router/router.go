package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chatline/chatline-server/internal/api/http/handler"
	"github.com/chatline/chatline-server/internal/api/http/middleware"
	"github.com/chatline/chatline-server/internal/api/ws"
	"github.com/chatline/chatline-server/internal/logger"
	"github.com/chatline/chatline-server/internal/model"
	"github.com/chatline/chatline-server/internal/service"
)

// Router wires the HTTP endpoints, the websocket gateway and the shared
// middleware into one handler.
type Router struct {
	chatService    *service.Chat
	tokenService   *service.TokenService
	gateway        *ws.Gateway
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates a new Router instance.
func New(
	chatService *service.Chat,
	tokenService *service.TokenService,
	gateway *ws.Gateway,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		chatService:    chatService,
		tokenService:   tokenService,
		gateway:        gateway,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register builds the full route table. Every API and websocket route runs
// behind authentication; /metrics and /healthz stay open for scrapers and
// probes.
func (r *Router) Register() http.Handler {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger)

	chatHandler := handler.NewChat(r.chatService, r.contextManager, r.logger)

	authed := http.NewServeMux()
	authed.HandleFunc("GET /api/messages/users", chatHandler.Sidebar)
	authed.HandleFunc("GET /api/messages/{id}", chatHandler.GetMessages)
	authed.HandleFunc("POST /api/messages/send/{id}", chatHandler.Send)
	authed.HandleFunc("POST /api/messages/delete-chats", chatHandler.DeleteChats)
	authed.HandleFunc("GET /ws", r.gateway.Handle)

	mux := http.NewServeMux()
	mux.Handle("/api/", authenticate.Handle(authed))
	mux.Handle("/ws", authenticate.Handle(authed))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return logging.Handle(mux)
}
