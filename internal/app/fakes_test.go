package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"app_analyser/internal/domain"
)

// ---- fakes ----

// fakeCache stores JSON like the real backends, so cached values never alias callers.
type fakeCache struct {
	mu    sync.Mutex
	store map[string][]byte
	sets  int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	c.store[key] = b
	c.sets++
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

// fakeClassifier scores by exact text, falling back to def.
type fakeClassifier struct {
	scores map[string]int
	def    int
	err    error
	delay  time.Duration
	calls  atomic.Int32
	seen   sync.Map
}

func (f *fakeClassifier) Classify(ctx context.Context, text string) (int, error) {
	f.calls.Add(1)
	f.seen.Store(text, true)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return 0, f.err
	}
	if s, ok := f.scores[text]; ok {
		return s, nil
	}
	return f.def, nil
}

func (f *fakeClassifier) Model() string { return "fake-v1" }

type fakeAppStore struct {
	rows  []domain.RawReview
	err   error
	calls atomic.Int32
	got   domain.AppStoreApp
	count int
}

func (f *fakeAppStore) Reviews(ctx context.Context, app domain.AppStoreApp, count int) ([]domain.RawReview, error) {
	f.calls.Add(1)
	f.got, f.count = app, count
	return f.rows, f.err
}

type fakePlayStore struct {
	rows  []domain.RawReview
	err   error
	delay time.Duration
	calls atomic.Int32
	got   domain.PlayStoreApp
	query domain.PlayQuery
}

func (f *fakePlayStore) Reviews(ctx context.Context, app domain.PlayStoreApp, q domain.PlayQuery) ([]domain.RawReview, error) {
	f.calls.Add(1)
	f.got, f.query = app, q
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.rows, f.err
}

var errBoom = errors.New("boom")

func review(rating int, s domain.Sentiment) domain.CanonicalReview {
	d := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	return domain.CanonicalReview{Reviews: "r", Ratings: rating, Date: d, Year: d.Year(), Source: domain.SourcePlayStore, Sentiments: s}
}

// brokenCache fails every operation, like an unreachable redis.
type brokenCache struct{}

func (brokenCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	return false, errBoom
}

func (brokenCache) Set(ctx context.Context, key string, v any, ttlSec int) error { return errBoom }

func (brokenCache) Del(ctx context.Context, key string) error { return errBoom }
