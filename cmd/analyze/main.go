package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"app_analyser/internal/adapters/appstore"
	"app_analyser/internal/adapters/memory"
	"app_analyser/internal/adapters/observability"
	"app_analyser/internal/adapters/playstore"
	"app_analyser/internal/adapters/sentiment"
	"app_analyser/internal/adapters/transport"
	"app_analyser/internal/app"
	"app_analyser/internal/domain"
	"app_analyser/internal/shared"
)

func main() {
	cfg := shared.Load()

	// logs go to stderr so stdout carries only the CSV
	logger, closer := observability.NewLogger(os.Stderr, cfg.AppEnv, cfg.LogFile)
	defer closer.Close()
	log.Logger = logger
	cfg.LogWarnings()

	cmd := &cobra.Command{
		Use:           "analyze <store link>",
		Short:         "Fetch, classify and export the reviews of one App Store or Google Play app",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, args[0])
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, userMessage(err))
		closer.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg shared.Config, link string) error {
	timeout := 30 * time.Second
	as := appstore.New(cfg.AppStoreWeb, cfg.AppStoreAPI, transport.New("appstore", cfg.StoreRPS, timeout))
	ps := playstore.New(cfg.PlayStoreURL, transport.New("playstore", cfg.StoreRPS, timeout))
	model := sentiment.New(cfg.ClassifierURL, cfg.ClassifierModel, cfg.ClassifierToken,
		transport.New("classifier", cfg.ClassifierRPS, timeout))
	sa := app.NewSentimentAdapter(model, memory.New("classifier"), cfg.ClassifyWorkers)
	analysis := app.NewAnalysisService(as, ps, sa, memory.New("dataset"), app.AnalysisOptions{
		ReviewCount: cfg.ReviewCount,
		Lang:        cfg.ReviewLang,
		Country:     cfg.ReviewCountry,
	})

	ds, err := analysis.Analyze(ctx, link)
	if err != nil {
		return err
	}

	if stats, err := app.Summarize(ds.Reviews); err == nil {
		log.Info().
			Str("app", ds.Name).
			Str("source", string(ds.Source)).
			Int("total", stats.Total).
			Int("positive", stats.Positive).
			Int("negative", stats.Negative).
			Float64("mean_rating", stats.MeanRating).
			Str("stars", stats.StarGlyphs).
			Msg("summary")
	} else {
		log.Warn().Str("app", ds.Name).Msg(domain.MsgEmptyResult)
	}
	return app.WriteCSV(os.Stdout, ds.Reviews)
}

func userMessage(err error) string {
	var fe *domain.FetchError
	switch {
	case errors.Is(err, domain.ErrInvalidLink):
		return domain.MsgInvalidLink
	case errors.As(err, &fe):
		log.Error().Err(err).Msg("analysis failed")
		return fe.Message()
	default:
		return err.Error()
	}
}
