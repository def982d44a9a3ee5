package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"app_analyser/internal/domain"
)

// MaxClassifyChars is the prefix length handed to the classifier, in characters.
const MaxClassifyChars = 512

// Truncate keeps the first n characters of text. It may cut mid-word.
func Truncate(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	i := 0
	for pos := range text {
		if i == n {
			return text[:pos]
		}
		i++
	}
	return text
}

// Bucket maps a 1..5 classifier score onto a sentiment label.
func Bucket(score int) domain.Sentiment {
	switch score {
	case 1, 2:
		return domain.SentimentNegative
	case 3:
		return domain.SentimentNeutral
	case 4, 5:
		return domain.SentimentPositive
	default:
		return domain.SentimentUnknown
	}
}

type SentimentAdapter struct {
	model   domain.Classifier
	memo    domain.Cache
	group   singleflight.Group
	workers int
}

// NewSentimentAdapter wraps model with a per-text memo. workers bounds concurrent
// inference calls in ClassifyAll; 1 classifies sequentially.
func NewSentimentAdapter(model domain.Classifier, memo domain.Cache, workers int) *SentimentAdapter {
	if workers <= 0 {
		workers = 1
	}
	return &SentimentAdapter{model: model, memo: memo, workers: workers}
}

func (a *SentimentAdapter) Model() string { return a.model.Model() }

// Score returns the classifier output for the truncated text, calling the model at most
// once per distinct (model, text) pair. A shared call is not cancelled by one waiter.
func (a *SentimentAdapter) Score(ctx context.Context, text string) (int, error) {
	text = Truncate(text, MaxClassifyChars)
	key := memoKey(a.model.Model(), text)

	var score int
	ok, err := a.memo.Get(ctx, key, &score)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("classifier memo get failed")
	} else if ok {
		return score, nil
	}

	shared := context.WithoutCancel(ctx)
	ch := a.group.DoChan(key, func() (any, error) {
		s, err := a.model.Classify(shared, text)
		if err != nil {
			return 0, err
		}
		if err := a.memo.Set(shared, key, s, 0); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("classifier memo set failed")
		}
		return s, nil
	})

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(int), nil
	}
}

func (a *SentimentAdapter) Label(ctx context.Context, text string) (domain.Sentiment, error) {
	s, err := a.Score(ctx, text)
	if err != nil {
		return "", err
	}
	return Bucket(s), nil
}

// ClassifyAll labels every row independently and returns them in input order.
// The first failure aborts the batch.
func (a *SentimentAdapter) ClassifyAll(ctx context.Context, rows []domain.CanonicalReview) ([]domain.CanonicalReview, error) {
	out := make([]domain.CanonicalReview, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, r := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := a.Label(gctx, r.Reviews)
			if err != nil {
				return fmt.Errorf("classify row %d: %w", i, err)
			}
			r.Sentiments = s
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func memoKey(model, text string) string {
	sum := sha1.Sum([]byte(text))
	return "sentiment:" + model + ":" + hex.EncodeToString(sum[:])
}
