package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"app_analyser/internal/adapters/appstore"
	server "app_analyser/internal/adapters/http_server"
	"app_analyser/internal/adapters/memory"
	"app_analyser/internal/adapters/observability"
	"app_analyser/internal/adapters/playstore"
	redisad "app_analyser/internal/adapters/redis"
	"app_analyser/internal/adapters/sentiment"
	"app_analyser/internal/adapters/transport"
	"app_analyser/internal/app"
	"app_analyser/internal/domain"
	"app_analyser/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	logger, closer := observability.NewLogger(os.Stdout, cfg.AppEnv, cfg.LogFile)
	defer closer.Close()
	log.Logger = logger
	cfg.LogWarnings()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// session dataset cache: redis when configured, otherwise process memory
	var datasets domain.Cache = memory.New("dataset")
	if cfg.RedisAddr != "" {
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := rc.Ping(ctx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, using in-memory cache")
		} else {
			log.Info().Str("addr", cfg.RedisAddr).Msg("redis connection ok")
			datasets = rc
			defer rc.Close()
		}
	}

	// deps
	storeTimeout := 30 * time.Second
	as := appstore.New(cfg.AppStoreWeb, cfg.AppStoreAPI, transport.New("appstore", cfg.StoreRPS, storeTimeout))
	ps := playstore.New(cfg.PlayStoreURL, transport.New("playstore", cfg.StoreRPS, storeTimeout))
	model := sentiment.New(cfg.ClassifierURL, cfg.ClassifierModel, cfg.ClassifierToken,
		transport.New("classifier", cfg.ClassifierRPS, storeTimeout))
	sa := app.NewSentimentAdapter(model, memory.New("classifier"), cfg.ClassifyWorkers)
	analysis := app.NewAnalysisService(as, ps, sa, datasets, app.AnalysisOptions{
		ReviewCount: cfg.ReviewCount,
		Lang:        cfg.ReviewLang,
		Country:     cfg.ReviewCountry,
		CacheTTL:    cfg.CacheTTL,
	})
	q := app.NewQueryService(analysis)

	// http
	srv := server.New(cfg.RequestTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q})

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Str("model", model.Model()).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdown); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	log.Info().Msg("API stopped")
}
