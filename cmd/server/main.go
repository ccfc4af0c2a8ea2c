package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/signet-rtc/signet/internal/adapter/driven/identity"
	handler "github.com/signet-rtc/signet/internal/adapter/driving/http"
	"github.com/signet-rtc/signet/internal/config"
	"github.com/signet-rtc/signet/internal/core/service"
)

func main() {
	w := zerolog.ConsoleWriter{Out: os.Stdout}
	l := zerolog.New(w).With().Timestamp().Caller().Logger()
	zlog.Logger = l

	cfg := config.Load()

	hub := service.NewHub(service.Config{
		GracePeriod:        cfg.GracePeriod,
		ReapInterval:       cfg.ReapInterval,
		PendingCallTimeout: cfg.PendingCallTimeout,
	})
	go hub.Run()

	resolver := identity.NewTrustedResolver()
	h := handler.NewHandler(hub, resolver, cfg)

	srv := &http.Server{
		Addr:    cfg.Port,
		Handler: h.NewRouter(),
	}

	go func() {
		l.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	l.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		l.Error().Err(err).Msg("Server forced to shutdown")
	}

	hub.Stop()
	l.Info().Msg("Server exited")
}
