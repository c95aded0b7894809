package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"voicewins/pkg/logger"
)

// Router wires the webhook handlers into a chi mux
type Router struct {
	handler *Handler
	logger  *logger.Logger
}

// NewRouter creates a new API router
func NewRouter(dispatcher Dispatcher, verifyToken string, log *logger.Logger) *Router {
	return &Router{
		handler: NewHandler(dispatcher, verifyToken, log),
		logger:  log.Named("api-router"),
	}
}

// Routes returns the HTTP handler for the webhook server
func (r *Router) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)

	mux.Get("/", r.handler.VerifyWebhook)
	mux.Post("/", r.handler.HandleWebhook)
	mux.Get("/healthz", r.handler.Health)

	return mux
}
