package main

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"workforce-lodging/internal/accounts"
	"workforce-lodging/internal/audit"
	"workforce-lodging/internal/auth"
	"workforce-lodging/internal/config"
	"workforce-lodging/internal/employers"
	"workforce-lodging/internal/hotels"
	"workforce-lodging/internal/httpapi"
	"workforce-lodging/internal/reporting"
	"workforce-lodging/internal/rooms"
	"workforce-lodging/internal/users"
	"workforce-lodging/internal/workers"
	"workforce-lodging/pkg/utils"
)

// buildHandlers wires the Postgres-backed services into the HTTP layer.
// Keep this file free of business logic.
func buildHandlers(cfg config.Config, db *sql.DB, hasher *auth.Hasher, tokens *auth.Manager, auditRepo audit.Repository) *httpapi.Handlers {
	auditSvc := audit.NewService(auditRepo)

	userStore := users.NewPostgresStore(db)
	hotelStore := hotels.NewPostgresStore(db)
	resolver := employers.NewResolver(userStore)

	return &httpapi.Handlers{
		Accounts:  accounts.NewService(userStore, hasher, tokens, auditSvc, cfg.Auth.AdminInviteCode),
		Employers: employers.NewService(employers.NewPostgresRepo(db), resolver, auditSvc),
		Rooms:     rooms.NewEngine(rooms.NewPostgresRepo(db), resolver, hotelStore, auditSvc),
		Hotels:    hotelStore,
		Reports:   reporting.NewService(reporting.NewPostgresRepo(db), resolver, userStore, hotelStore),
		Workers:   workers.NewService(workers.NewPostgresStore(db), resolver, hotelStore, auditSvc),
		Cookie: auth.CookieOptions{
			Name:      cfg.Session.CookieName,
			Domain:    cfg.Session.CookieDomain,
			CrossSite: cfg.Session.CrossSite,
			Secure:    cfg.SecureCookies(),
		},
		Ready: func(ctx context.Context) error { return utils.HealthCheck(ctx, db, 2*time.Second) },
	}
}

// openLimiter builds the login/signup throttle. An unreachable Redis at
// startup is logged and tolerated: the limiter then fails open per request
// until the server answers.
func openLimiter(ctx context.Context, cfg config.Config, log *slog.Logger) (*utils.WindowLimiter, func(), error) {
	redisCfg := utils.RedisConfig{Addr: cfg.RedisAddr()}
	rdb, err := utils.OpenRedis(ctx, redisCfg)
	if err != nil {
		log.Warn("redis unreachable, throttling fails open until it recovers", "addr", redisCfg.Addr, "err", err)
		if rdb, err = utils.NewRedisClient(redisCfg); err != nil {
			return nil, nil, err
		}
	}
	closeFn := func() { _ = rdb.Close() }

	limiter, err := utils.NewWindowLimiter(rdb, "wlp:throttle:", cfg.Limits.LoginAttempts, cfg.Limits.LoginWindow)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return limiter, closeFn, nil
}

// buildAuditRepo returns the event_log writer, mirrored to NATS when
// NATS_URL is set. The returned func releases the NATS connection.
func buildAuditRepo(cfg config.Config, db *sql.DB, log *slog.Logger) (audit.Repository, func(), error) {
	pg := audit.NewPostgresRepo(db)
	if cfg.NATS.URL == "" {
		return pg, func() {}, nil
	}
	pub, err := audit.NewNATSPublisher(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
	if err != nil {
		return nil, nil, err
	}
	log.Info("audit events mirrored to nats", "subject_prefix", cfg.NATS.SubjectPrefix)
	closeFn := func() {
		if err := pub.Close(); err != nil {
			log.Warn("nats drain failed", "err", err)
		}
	}
	return audit.Fanout{pg, pub}, closeFn, nil
}
