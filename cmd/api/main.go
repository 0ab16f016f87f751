package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nthung-2k5/eventsphere/internal/cache"
	"github.com/nthung-2k5/eventsphere/internal/http/handlers"
	"github.com/nthung-2k5/eventsphere/internal/notify"
	"github.com/nthung-2k5/eventsphere/internal/platform/mailer"
	"github.com/nthung-2k5/eventsphere/internal/repo/kv"
	"github.com/nthung-2k5/eventsphere/internal/service"
	"github.com/nthung-2k5/eventsphere/internal/storage"
	"github.com/nthung-2k5/eventsphere/pkg/config"
	"github.com/nthung-2k5/eventsphere/pkg/database"
	"github.com/nthung-2k5/eventsphere/pkg/events"
	"github.com/nthung-2k5/eventsphere/pkg/logger"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	eventBus, err := events.New(cfg.Bus)
	if err != nil {
		logger.Error("Failed to connect event bus", "driver", cfg.Bus.Driver, "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Counters and idempotent replies are shared through Redis when it is
	// configured, otherwise they stay in process.
	var c cache.Cache = cache.NewMemory()
	if cfg.Redis.URL != "" {
		client, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, using in-process cache", "error", err)
		} else {
			defer client.Close()
			c = cache.NewRedis(client, "eventsphere:cache:")
		}
	}

	if err := notify.New(mailer.New(cfg.Email)).Start(eventBus); err != nil {
		logger.Error("Failed to start notifier", "error", err)
		os.Exit(1)
	}

	users := kv.NewUsersRepo(store)
	evs := kv.NewEventsRepo(store)
	feedback := kv.NewFeedbackRepo(store)
	sessions := kv.NewSessionsRepo(store)
	qrcodes := kv.NewQRCodesRepo(store)
	certs := kv.NewCertificatesRepo(store)

	svc := handlers.Services{
		Auth:         service.NewAuthService(users, evs, sessions, eventBus, cfg),
		Events:       service.NewEventService(evs, users, feedback, eventBus),
		Feedback:     service.NewFeedbackService(feedback, evs, users, eventBus),
		CheckIn:      service.NewCheckInService(qrcodes, evs, users, eventBus, cfg),
		Certificates: service.NewCertificateService(certs, evs, users, eventBus),
	}
	if err := svc.Auth.EnsureAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		logger.Error("Failed to create bootstrap admin", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handlers.NewRouter(svc, cfg, c),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down eventsphere...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting eventsphere",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Driver,
		"bus", cfg.Bus.Driver,
	)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	<-done
}
