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

	"dineline_reviews/internal/adapters/dineline"
	server "dineline_reviews/internal/adapters/http_server"
	"dineline_reviews/internal/adapters/observability"
	redisad "dineline_reviews/internal/adapters/redis"
	"dineline_reviews/internal/adapters/yelp"
	"dineline_reviews/internal/app"
	"dineline_reviews/internal/domain"
	"dineline_reviews/internal/shared"
	mysqlrepo "dineline_reviews/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unreachable; serving Yelp reviews uncached")
	}

	var yc domain.YelpClient
	if cfg.YelpKey != "" {
		c, err := yelp.New(cfg.YelpBase, cfg.YelpKey, cfg.YelpRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Yelp client")
		}
		yc = c
	}

	feed := app.NewFeedService(repo, yc, cache, cfg.CacheTTL)
	norm := app.NewNormalizer(cfg.MediaBaseURL, cfg.DisplayTZ)
	actions := dineline.New(cfg.DinelineBase, cfg.CallTimeout)

	// http
	srv := server.New(15 * time.Second)
	if cfg.MetricsAddr == "" {
		srv.Mount("/metrics", observability.MetricsHandler(reg))
	}
	srv.MountHandlers(&server.Handlers{Feed: feed, Normalizer: norm, Actions: actions})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
