package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workforce-lodging/internal/auth"
	"workforce-lodging/internal/config"
	"workforce-lodging/internal/httpapi"
	"workforce-lodging/pkg/logger"
	"workforce-lodging/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := config.LoadDotEnv(); err != nil {
		slog.Error("env file load failed", "err", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := auth.NewManager(cfg.Auth.JWTSecret)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}
	hasher, err := auth.NewHasher(cfg.Auth.PasswordScheme)
	if err != nil {
		log.Error("password hasher init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	limiter, closeRedis, err := openLimiter(rootCtx, cfg, log)
	if err != nil {
		log.Error("rate limiter init failed", "err", err)
		os.Exit(1)
	}
	defer closeRedis()

	auditRepo, closeAudit, err := buildAuditRepo(cfg, db, log)
	if err != nil {
		log.Error("audit init failed", "err", err)
		os.Exit(1)
	}
	defer closeAudit()

	h := buildHandlers(cfg, db, hasher, tokens, auditRepo)
	router := httpapi.NewRouter(h, httpapi.RouterOptions{
		Logger:   log,
		Verifier: tokens,
		Limiter:  limiter,
		HSTS:     cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           withCORS(cfg, router),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}

// withCORS allows credentialed requests from the configured frontend only.
// Without FRONTEND_ORIGIN no cross-origin access is granted.
func withCORS(cfg config.Config, next http.Handler) http.Handler {
	if cfg.HTTP.FrontendOrigin == "" {
		return next
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.HTTP.FrontendOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	})(next)
}
