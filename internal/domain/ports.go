package domain

import "context"

type AppStoreClient interface {
	Reviews(ctx context.Context, app AppStoreApp, count int) ([]RawReview, error)
}

type PlayStoreClient interface {
	Reviews(ctx context.Context, app PlayStoreApp, opts PlayQuery) ([]RawReview, error)
}

type PlayQuery struct {
	Lang    string
	Country string
	Sort    PlaySort
	Count   int
}

type PlaySort int

// Values match the Play RPC sort codes.
const (
	PlaySortRelevance PlaySort = 1
	PlaySortNewest    PlaySort = 2
	PlaySortRating    PlaySort = 3
)

// Classifier scores text on the 1..5 star scale.
type Classifier interface {
	Classify(ctx context.Context, text string) (int, error)
	// Model names the model version; it is part of every memo key.
	Model() string
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
