package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/reclaimhq/reclaim-backend/api/routes"
	"github.com/reclaimhq/reclaim-backend/internal/auth"
	"github.com/reclaimhq/reclaim-backend/internal/items"
	"github.com/reclaimhq/reclaim-backend/internal/matching"
	"github.com/reclaimhq/reclaim-backend/internal/notifications"
	"github.com/reclaimhq/reclaim-backend/internal/users"
	"github.com/reclaimhq/reclaim-backend/pkg/config"
	"github.com/reclaimhq/reclaim-backend/pkg/db"
	"github.com/reclaimhq/reclaim-backend/pkg/logger"
	"github.com/reclaimhq/reclaim-backend/pkg/mailer"
	"github.com/reclaimhq/reclaim-backend/pkg/metrics"
	"github.com/reclaimhq/reclaim-backend/pkg/migrate"
	"github.com/reclaimhq/reclaim-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	matchingMetrics := metrics.NewMatchingMetrics(registry)

	usersRepo := users.NewRepository(dbClient.DB())
	itemsRepo := items.NewRepository(dbClient.DB())
	matchesRepo := matching.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())

	var sender mailer.Sender
	if cfg.Matching.SendMatchEmails {
		sender = mailer.NewSMTPSender(cfg.SMTP)
	}

	notifier, err := matching.NewNotifier(matching.NotifierParams{
		Notifications: notificationsRepo,
		Users:         usersRepo,
		Matches:       matchesRepo,
		Sender:        sender,
		Matching:      cfg.Matching,
		Logger:        logg,
		Metrics:       matchingMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create match notifier", err)
		os.Exit(1)
	}

	pairLock, err := matching.NewPairLock(redisClient, cfg.Matching.PairLockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create pair lock", err)
		os.Exit(1)
	}

	matchingService, err := matching.NewService(matching.ServiceParams{
		Candidates: itemsRepo,
		Matches:    matchesRepo,
		Notifier:   notifier,
		PairLock:   pairLock,
		Matching:   cfg.Matching,
		Logger:     logg,
		Metrics:    matchingMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create matching service", err)
		os.Exit(1)
	}

	itemsService, err := items.NewService(items.ServiceParams{
		Repo:    itemsRepo,
		Matcher: matchingService,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create items service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			authService,
			itemsService,
			notificationsService,
		),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			if closeErr := server.Close(); closeErr != nil {
				logg.Error(ctx, "forced close failed", closeErr)
			}
		}
	}
}
