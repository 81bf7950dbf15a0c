package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/suppersafe/server/cliparse"
	"github.com/suppersafe/server/db"
	"github.com/suppersafe/server/metrics"
	"github.com/suppersafe/server/middleware"
	"github.com/suppersafe/server/notify"
	"github.com/suppersafe/server/push"
	"github.com/suppersafe/server/ratelimit"
	"github.com/suppersafe/server/router"
	"github.com/suppersafe/server/store"
)

func main() {
	var err error

	// A missing .env is fine; real deployments use the environment
	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded .env")
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect and verify
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := store.New(dbConn)
	limiter := router.NewLimiter(cfg, st)
	if mem, ok := limiter.(*ratelimit.Memory); ok {
		go sweep(ctx, mem, ratelimit.DefaultWindow)
	}

	// Create router
	mux, err := router.NewRouter(dbConn, cfg, router.Services{Limiter: limiter})
	if err != nil {
		slog.Error("router setup failed", "error", err)
		os.Exit(1)
	}

	if cfg.AlertInterval > 0 {
		svc := notify.NewService(st, push.NewExpo(cfg.ExpoPushURL))
		slog.Info("Scheduling inspection alerts", "interval", cfg.AlertInterval.String())
		go svc.Loop(ctx, cfg.AlertInterval)
	}

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		// Wait for Ctrl-C or SIGTERM
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}

// sweep drops expired rate limit windows until ctx is done
func sweep(ctx context.Context, m *ratelimit.Memory, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
			slog.Debug("swept alert rate limits", "active_keys", m.Keys())
		}
	}
}
