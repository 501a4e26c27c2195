package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	dbconnector "assetscan-backend"
	"assetscan-backend/internal/api"
	"assetscan-backend/internal/bus"
	"assetscan-backend/internal/config"
	"assetscan-backend/internal/scan"
	"assetscan-backend/internal/scheduler"
	"assetscan-backend/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()

	cfg, err := config.Load(getenv("CONFIG_PATH", ""))
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	applyEnvOverrides(cfg)

	store, err := storage.NewStore(ctx, dbconnector.ConnectionConfig{
		Type:     cfg.Database.Type,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Error("failed to connect to db", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()
	repo := storage.NewRepository(store)

	publisher, err := bus.NewPublisher(cfg.NATS.URL)
	if err != nil {
		logger.Error("failed to connect to nats", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer publisher.Close()

	subscriber, err := bus.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		logger.Error("failed to connect to nats", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer subscriber.Close()

	service := scan.NewService(repo, cfg.Policy(), publisher, logger)

	sched, err := scheduler.New(service, cfg.Scan.ComplianceCron, cfg.Scan.HealthInterval(), logger)
	if err != nil {
		logger.Error("failed to build scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}
	sched.Start(ctx)
	defer sched.Stop()

	if _, err := subscriber.Subscribe(bus.SubjectScanRun, sched.RunNow); err != nil {
		logger.Error("failed to subscribe", slog.String("subject", bus.SubjectScanRun), slog.String("error", err.Error()))
		os.Exit(1)
	}

	handler := &api.Handler{Repo: repo, Feed: service, Sched: sched}
	router := chi.NewRouter()
	router.Mount("/", handler.Routes())
	router.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("scan worker listening", slog.String("port", cfg.HTTP.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

func applyEnvOverrides(cfg *config.Config) {
	cfg.Database.Type = getenv("DB_TYPE", cfg.Database.Type)
	cfg.Database.Host = getenv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getenvInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getenv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getenv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Database = getenv("DB_NAME", cfg.Database.Database)
	cfg.NATS.URL = getenv("NATS_URL", cfg.NATS.URL)
	cfg.HTTP.Port = getenv("HTTP_PORT", cfg.HTTP.Port)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
