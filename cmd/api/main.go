package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"review_proxy/internal/adapters/fixtures"
	server "review_proxy/internal/adapters/http_server"
	"review_proxy/internal/adapters/observability"
	redisad "review_proxy/internal/adapters/redis"
	"review_proxy/internal/adapters/upstream"
	"review_proxy/internal/app"
	"review_proxy/internal/domain"
	"review_proxy/internal/shared"
	mysqlrepo "review_proxy/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// deps
	store, closeStore := fixtureStore(ctx, cfg)
	defer closeStore()
	client := upstream.New(cfg.UpstreamTimeout, cfg.UpstreamRPS)
	q := app.NewQueryService(cfg.UseMock, store, client, cfg.UpstreamURLs)

	// http
	srv := server.New(server.Options{RequestTimeout: cfg.RequestTimeout, CORSOrigins: cfg.CORSOrigins})
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Bool("mock", cfg.UseMock).
		Str("fixtures", cfg.FixtureBackend).
		Msg("review proxy listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("review proxy stopped")
}

// fixtureStore opens the configured mock backend. Live mode still gets a
// file store so the wiring stays uniform; it is never read.
func fixtureStore(ctx context.Context, cfg shared.Config) (domain.FixtureStore, func()) {
	if !cfg.UseMock {
		return fixtures.New(cfg.MockDataDir), func() {}
	}
	switch cfg.FixtureBackend {
	case "redis":
		s := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := s.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("redis ping failed")
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis fixture store ok")
		return s, func() { _ = s.Close() }
	case "mysql":
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("mysql fixture store ok")
		return mysqlrepo.New(db), func() { _ = db.Close() }
	case "file":
		return fixtures.New(cfg.MockDataDir), func() {}
	default:
		log.Fatal().Str("backend", cfg.FixtureBackend).Msg("unknown FIXTURE_BACKEND")
		return nil, nil
	}
}
