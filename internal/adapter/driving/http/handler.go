package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/signet-rtc/signet/internal/config"
	"github.com/signet-rtc/signet/internal/core/port"
	"github.com/signet-rtc/signet/internal/core/service"
)

type Handler struct {
	hub      *service.Hub
	resolver port.IdentityResolver
	cfg      config.Config
	allowed  map[string]struct{}
}

func NewHandler(hub *service.Hub, resolver port.IdentityResolver, cfg config.Config) *Handler {
	return &Handler{
		hub:      hub,
		resolver: resolver,
		cfg:      cfg,
		allowed:  normalizeOrigins(cfg.AllowedOrigins),
	}
}

func (h *Handler) NewRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws", h.ServeWS)

	return r
}
