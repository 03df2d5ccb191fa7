package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/behalfbot/behalf/internal/band"
	"github.com/behalfbot/behalf/internal/bot"
	"github.com/behalfbot/behalf/internal/config"
	"github.com/behalfbot/behalf/internal/storage"
	"github.com/behalfbot/behalf/internal/storage/sqlite"
	"github.com/behalfbot/behalf/internal/telegram"
	"github.com/behalfbot/behalf/pkg/logging"
)

// userRefreshInterval is how often the registered users gauge is refreshed.
const userRefreshInterval = 30 * time.Second

var registeredUsers = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "behalf_registered_users",
	Help: "Number of users the bot has ever talked to.",
})

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	client, err := telegram.New(cfg.BotToken)
	if err != nil {
		slog.Error("Failed to connect to Telegram", "error", err)
		os.Exit(1)
	}

	bands := band.NewManager(store)
	dispatcher := bot.NewDispatcher(bands, client, cfg.HistoryLimit)

	go serveOps(ctx, cfg.HTTPAddr)
	go refreshUserGauge(ctx, store)

	slog.Info("Bot started", "username", client.Username())
	client.Listen(ctx, store, dispatcher)
	slog.Info("Shutdown complete")
}

// serveOps exposes /metrics and /healthz for operations.
func serveOps(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Ops server listening", "address", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Ops server failed", "error", err)
	}
}

// refreshUserGauge keeps the registered users gauge in sync with storage.
func refreshUserGauge(ctx context.Context, store storage.Store) {
	ticker := time.NewTicker(userRefreshInterval)
	defer ticker.Stop()

	for {
		count, err := store.CountUsers(ctx)
		if err != nil {
			slog.Warn("User count failed", "error", err)
		} else {
			registeredUsers.Set(float64(count))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
