package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"workforce-lodging/internal/config"
	"workforce-lodging/internal/httpapi"

	"github.com/gin-gonic/gin"
)

func TestOpenLimiter_UnreachableRedisFailsOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := config.Config{
		Redis:  config.RedisConfig{Host: "127.0.0.1", Port: 1},
		Limits: config.LimitConfig{LoginAttempts: 3, LoginWindow: time.Minute},
	}
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))

	limiter, closeFn, err := openLimiter(context.Background(), cfg, log)
	if err != nil {
		t.Fatalf("startup must tolerate an unreachable redis: %v", err)
	}
	defer closeFn()
	if limiter == nil {
		t.Fatalf("expected a limiter")
	}
	if _, err := limiter.Allow(context.Background(), "login:127.0.0.1"); err == nil {
		t.Fatalf("expected limiter error while redis is down")
	}

	r := gin.New()
	r.POST("/login", httpapi.Throttle(limiter, "login"), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("throttle must fail open, got %d", w.Code)
	}
}
