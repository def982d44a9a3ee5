package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"app_analyser/internal/domain"
)

const DefaultReviewCount = 1000

type AnalysisOptions struct {
	ReviewCount int
	Lang        string
	Country     string
	// CacheTTL of zero keeps datasets for the whole session.
	CacheTTL time.Duration
}

// AnalysisService runs the fetch -> normalize -> classify pipeline for one app link
// and keeps the resulting dataset per app for the session.
type AnalysisService struct {
	appStore  domain.AppStoreClient
	playStore domain.PlayStoreClient
	sentiment *SentimentAdapter
	cache     domain.Cache
	opts      AnalysisOptions
	group     singleflight.Group
	now       func() time.Time
}

func NewAnalysisService(as domain.AppStoreClient, ps domain.PlayStoreClient, sa *SentimentAdapter, cache domain.Cache, opts AnalysisOptions) *AnalysisService {
	if opts.ReviewCount <= 0 {
		opts.ReviewCount = DefaultReviewCount
	}
	if opts.Lang == "" {
		opts.Lang = "en"
	}
	if opts.Country == "" {
		opts.Country = "us"
	}
	return &AnalysisService{appStore: as, playStore: ps, sentiment: sa, cache: cache, opts: opts, now: time.Now}
}

// Analyze validates link and returns its classified dataset. Invalid links yield
// domain.ErrInvalidLink; any fetch or classification failure yields *domain.FetchError.
func (s *AnalysisService) Analyze(ctx context.Context, link string) (domain.Dataset, error) {
	id, err := ParseLink(link)
	if err != nil {
		return domain.Dataset{}, err
	}
	return s.AnalyzeApp(ctx, id)
}

// AnalyzeApp returns the session dataset for id, building it on a miss. Concurrent
// callers for the same app share one build, which runs detached from any single
// caller's cancellation; each caller still stops waiting when its own ctx ends.
func (s *AnalysisService) AnalyzeApp(ctx context.Context, id domain.AppIdentity) (domain.Dataset, error) {
	key := fmt.Sprintf("dataset:%s:%s", id.Key(), s.sentiment.Model())

	var ds domain.Dataset
	if s.cached(ctx, key, &ds) {
		return ds, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		var cached domain.Dataset
		if s.cached(shared, key, &cached) {
			return cached, nil
		}
		ds, err := s.build(shared, id)
		if err != nil {
			return domain.Dataset{}, err
		}
		if err := s.cache.Set(shared, key, ds, int(s.opts.CacheTTL.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("dataset cache set failed")
		}
		return ds, nil
	})

	select {
	case <-ctx.Done():
		return domain.Dataset{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return domain.Dataset{}, res.Err
		}
		return cloneDataset(res.Val.(domain.Dataset)), nil
	}
}

// cached reports a hit; lookup errors count as a miss.
func (s *AnalysisService) cached(ctx context.Context, key string, dst *domain.Dataset) bool {
	ok, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("dataset cache get failed")
		return false
	}
	return ok
}

func (s *AnalysisService) build(ctx context.Context, id domain.AppIdentity) (domain.Dataset, error) {
	start := s.now()
	l := log.With().Str("app", id.Key()).Str("source", string(id.Source())).Logger()
	l.Info().Int("count", s.opts.ReviewCount).Msg("fetching reviews")

	raws, err := s.fetch(ctx, id)
	if err != nil {
		l.Warn().Err(err).Msg("fetch failed")
		return domain.Dataset{}, &domain.FetchError{Source: id.Source(), Err: err}
	}
	if len(raws) > s.opts.ReviewCount {
		raws = raws[:s.opts.ReviewCount]
	}

	rows, err := Normalize(id.Source(), raws)
	if err != nil {
		l.Warn().Err(err).Msg("malformed store response")
		return domain.Dataset{}, &domain.FetchError{Source: id.Source(), Err: err}
	}

	rows, err = s.sentiment.ClassifyAll(ctx, rows)
	if err != nil {
		l.Warn().Err(err).Msg("classification failed")
		return domain.Dataset{}, &domain.FetchError{Source: id.Source(), Err: fmt.Errorf("classify: %w", err)}
	}

	l.Info().Int("reviews", len(rows)).Dur("took", s.now().Sub(start)).Msg("analysis complete")
	return domain.Dataset{
		Key:       id.Key(),
		Name:      id.DisplayName(),
		Source:    id.Source(),
		FetchedAt: start.UTC(),
		Reviews:   rows,
	}, nil
}

func (s *AnalysisService) fetch(ctx context.Context, id domain.AppIdentity) ([]domain.RawReview, error) {
	switch a := id.(type) {
	case domain.AppStoreApp:
		return s.appStore.Reviews(ctx, a, s.opts.ReviewCount)
	case domain.PlayStoreApp:
		return s.playStore.Reviews(ctx, a, domain.PlayQuery{
			Lang:    s.opts.Lang,
			Country: s.opts.Country,
			Sort:    domain.PlaySortNewest,
			Count:   s.opts.ReviewCount,
		})
	default:
		return nil, fmt.Errorf("unsupported app identity %T", id)
	}
}

// cloneDataset copies the row slice so callers never share the cached backing array.
func cloneDataset(in domain.Dataset) domain.Dataset {
	out := in
	if n := len(in.Reviews); n > 0 {
		out.Reviews = make([]domain.CanonicalReview, n)
		copy(out.Reviews, in.Reviews)
	}
	return out
}
