package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"projecttracker/internal/config"
	"projecttracker/internal/db"
	"projecttracker/internal/mq"
	redisclient "projecttracker/internal/redis"
	"projecttracker/internal/repository"
	"projecttracker/internal/session"
	"projecttracker/internal/store"
	"projecttracker/pkg/logger"
	"projecttracker/pkg/metrics"
	"projecttracker/pkg/otel"
)

const version = "0.1.0"

// app owns every long-lived dependency of one CLI invocation.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	events *mq.Publisher
	store  *store.Store
	gate   *session.Gate

	sharedSessions bool

	closers []func()
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: log}
	a.closers = append(a.closers, func() { _ = log.Sync() })

	shutdown, err := otel.Init(otel.Config{
		ServiceName:    "tracker",
		ServiceVersion: version,
		Endpoint:       cfg.Telemetry.Endpoint,
		Enabled:        cfg.Telemetry.Enabled,
	}, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.closers = append(a.closers, shutdown)

	gdb, release, err := db.Open(ctx, cfg.DB, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.db = gdb
	a.closers = append(a.closers, release)

	if err := db.Bootstrap(ctx, gdb); err != nil {
		a.Close()
		return nil, err
	}

	// RabbitMQ and Redis are optional; an unreachable broker only costs events.
	var publisher store.Publisher
	if cfg.MQ.URL != "" {
		p, err := mq.NewPublisher(cfg.MQ.URL, log)
		if err != nil {
			log.Warn("Event publishing disabled", zap.Error(err))
		} else {
			publisher = p
			a.events = p
			a.closers = append(a.closers, p.Close)
		}
	}

	var tokens session.TokenStore = session.NewMemoryTokenStore()
	if cfg.Redis.Addr != "" {
		rdb, err := redisclient.NewRedisClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Warn("Session sharing disabled", zap.Error(err))
		} else {
			a.closers = append(a.closers, closeRedis(rdb))
			tokens = redisclient.NewTokenStore(rdb)
			a.sharedSessions = true
		}
	}

	a.store = store.NewStore(gdb, publisher, log)
	a.gate = session.NewGate(
		repository.NewCredentialRepository(gdb, log),
		session.Options{
			Secret:    cfg.JWT.Secret,
			TTL:       cfg.JWT.TTL,
			Tokens:    tokens,
			Publisher: publisher,
		},
		log,
	)
	return a, nil
}

// dependencyStatus reports reachability of the medium and the broker.
type dependencyStatus struct {
	Database string
	Events   string
	Sessions string
}

func (a *app) status(ctx context.Context) dependencyStatus {
	st := dependencyStatus{Database: "ok", Events: "disabled", Sessions: "memory"}
	if err := db.Ping(ctx, a.db); err != nil {
		a.logger.Error("Database unreachable", zap.Error(err))
		st.Database = "unreachable"
	}
	if a.events != nil {
		st.Events = "connected"
		if !a.events.IsConnected() {
			a.logger.Warn("Event broker connection lost")
			st.Events = "disconnected"
		}
	}
	if a.sharedSessions {
		st.Sessions = "redis"
	}
	return st
}

func closeRedis(rdb *goredis.Client) func() {
	return func() { _ = rdb.Close() }
}

// serveMetrics exposes /metrics until ctx is done.
func (a *app) serveMetrics(ctx context.Context) {
	if a.cfg.Metrics.Addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		a.logger.Info("Metrics server listening", zap.String("addr", a.cfg.Metrics.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

// authenticate restores a shared session, falling back to explicit
// credentials when they were given.
func (a *app) authenticate(ctx context.Context, username, password string) error {
	if username != "" {
		return a.gate.Authenticate(ctx, username, password)
	}
	ok, err := a.gate.Restore(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return session.ErrNotAuthenticated
	}
	return nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
