package app_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app_analyser/internal/app"
	"app_analyser/internal/domain"
)

func TestNormalize_PlayStoreColumns(t *testing.T) {
	at := time.Date(2023, 12, 31, 23, 30, 0, 0, time.UTC)
	raws := []domain.RawReview{
		{"reviewId": "a", "content": "great", "score": 5, "at": at},
		{"reviewId": "b", "content": nil, "score": float64(2), "at": float64(1704067200)},
		{"reviewId": "c", "content": "meh", "score": "3", "at": "2022-06-01T10:00:00Z"},
	}

	got, err := app.Normalize(domain.SourcePlayStore, raws)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, domain.CanonicalReview{Reviews: "great", Ratings: 5, Date: at, Year: 2023, Source: domain.SourcePlayStore}, got[0])
	assert.Equal(t, "", got[1].Reviews)
	assert.Equal(t, 2, got[1].Ratings)
	assert.Equal(t, 2024, got[1].Year)
	assert.Equal(t, "meh", got[2].Reviews)
	assert.Equal(t, 3, got[2].Ratings)
	assert.Equal(t, 2022, got[2].Year)
	for _, r := range got {
		assert.Empty(t, r.Sentiments)
	}
}

func TestNormalize_AppStoreColumns(t *testing.T) {
	raws := []domain.RawReview{
		{"review": "crashes", "rating": 1, "date": "2021-03-04T05:06:07-07:00", "title": "bad"},
	}

	got, err := app.Normalize(domain.SourceAppStore, raws)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "crashes", got[0].Reviews)
	assert.Equal(t, domain.SourceAppStore, got[0].Source)
	assert.Equal(t, time.UTC, got[0].Date.Location())
	assert.Equal(t, 12, got[0].Date.Hour())
}

func TestNormalize_YearFollowsUTC(t *testing.T) {
	// Half past midnight on New Year in CET is still 2023 in UTC.
	paris := time.FixedZone("CET", 3600)
	local := time.Date(2024, 1, 1, 0, 30, 0, 0, paris)

	got, err := app.Normalize(domain.SourcePlayStore, []domain.RawReview{{"content": "x", "score": 4, "at": local}})
	require.NoError(t, err)
	assert.Equal(t, 2023, got[0].Year)
	assert.Equal(t, got[0].Date.Year(), got[0].Year)
}

func TestNormalize_PreservesOrderAndIsIdempotent(t *testing.T) {
	var raws []domain.RawReview
	for i := 1; i <= 5; i++ {
		raws = append(raws, domain.RawReview{"content": string(rune('a' + i)), "score": i, "at": int64(1700000000 + i)})
	}

	first, err := app.Normalize(domain.SourcePlayStore, raws)
	require.NoError(t, err)
	second, err := app.Normalize(domain.SourcePlayStore, raws)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first, len(raws))
	for i, r := range first {
		assert.Equal(t, i+1, r.Ratings)
	}
}

func TestNormalize_MalformedRowsFailTheBatch(t *testing.T) {
	_, err := app.Normalize(domain.SourcePlayStore, []domain.RawReview{{"content": "x", "at": 1}})
	assert.ErrorContains(t, err, "score: missing")

	_, err = app.Normalize(domain.SourceAppStore, []domain.RawReview{{"review": "x", "rating": 4, "date": "yesterday"}})
	assert.ErrorContains(t, err, "unparseable date")

	_, err = app.Normalize(domain.SourcePlayStore, []domain.RawReview{{"content": "x", "score": 0, "at": 1}})
	assert.ErrorContains(t, err, "rating 0 out of range")

	_, err = app.Normalize(domain.SourceAppStore, []domain.RawReview{{"review": "x", "rating": 6, "date": "2024-01-01"}})
	assert.ErrorContains(t, err, "rating 6 out of range")

	_, err = app.Normalize(domain.Source("Other"), nil)
	assert.Error(t, err)
}

func TestNormalize_Empty(t *testing.T) {
	got, err := app.Normalize(domain.SourceAppStore, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
