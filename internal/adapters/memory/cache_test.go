package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app_analyser/internal/adapters/memory"
	"app_analyser/internal/domain"
)

func TestCache_RoundTripAndIsolation(t *testing.T) {
	c := memory.New("dataset")
	ctx := context.Background()

	ds := domain.Dataset{
		Key:    "playstore:com.x",
		Source: domain.SourcePlayStore,
		Reviews: []domain.CanonicalReview{
			{Reviews: "ok", Ratings: 3, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Year: 2024, Sentiments: domain.SentimentNeutral},
		},
	}
	require.NoError(t, c.Set(ctx, "k", ds, 0))
	ds.Reviews[0].Ratings = 1

	var got domain.Dataset
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, got.Reviews[0].Ratings)
	assert.Equal(t, 1, c.Len())
}

func TestCache_MissAndDelete(t *testing.T) {
	c := memory.New("classifier")
	ctx := context.Background()

	var n int
	ok, err := c.Get(ctx, "absent", &n)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "score", 4, 0))
	ok, _ = c.Get(ctx, "score", &n)
	assert.True(t, ok)
	assert.Equal(t, 4, n)

	require.NoError(t, c.Del(ctx, "score"))
	ok, _ = c.Get(ctx, "score", &n)
	assert.False(t, ok)
}

func TestCache_TTL(t *testing.T) {
	c := memory.New("dataset")
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "short", "v", 1))

	assert.Eventually(t, func() bool {
		var s string
		ok, _ := c.Get(ctx, "short", &s)
		return !ok
	}, 3*time.Second, 100*time.Millisecond)
}
