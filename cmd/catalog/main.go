// Package main starts the book-catalog API service: the /api proxy surface
// backing the marketing site and the admin dashboard.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bookhaven/catalog/internal/api"
	"github.com/bookhaven/catalog/internal/config"
	"github.com/bookhaven/catalog/internal/logging"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logging.New(api.ServiceName, "info").WithError(err).Fatal("load configuration")
	}

	log := logging.New(api.ServiceName, cfg.LogLevel)

	svc := api.New(cfg, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      svc.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("catalog service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown error")
	}

	log.Info("service stopped")
}
