package app

import (
	"math"
	"slices"
	"sort"
	"strings"

	"app_analyser/internal/domain"
)

// Filter selects rows whose Year, Sentiments and Ratings are each in the chosen subset.
// A nil slice leaves that column unrestricted; a non-nil empty slice matches nothing.
type Filter struct {
	Years      []int
	Sentiments []domain.Sentiment
	Ratings    []int
}

func (f Filter) Match(r domain.CanonicalReview) bool {
	return in(f.Years, r.Year) && in(f.Sentiments, r.Sentiments) && in(f.Ratings, r.Ratings)
}

func in[T comparable](set []T, v T) bool {
	return set == nil || slices.Contains(set, v)
}

// Apply returns the matching rows in their original order. rows is not modified.
func Apply(rows []domain.CanonicalReview, f Filter) []domain.CanonicalReview {
	out := make([]domain.CanonicalReview, 0, len(rows))
	for _, r := range rows {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

type Stats struct {
	Total      int     `json:"total_reviews"`
	Positive   int     `json:"positive_reviews"`
	Negative   int     `json:"negative_reviews"`
	MeanRating float64 `json:"average_rating"`
	Stars      int     `json:"stars"`
	StarGlyphs string  `json:"star_glyphs"`
}

const starGlyph = "⭐️"

// Summarize computes the headline KPIs. It returns domain.ErrEmptyResult for an empty
// subset instead of averaging zero rows.
func Summarize(rows []domain.CanonicalReview) (Stats, error) {
	if len(rows) == 0 {
		return Stats{}, domain.ErrEmptyResult
	}
	var s Stats
	sum := 0
	for _, r := range rows {
		switch r.Sentiments {
		case domain.SentimentPositive:
			s.Positive++
		case domain.SentimentNegative:
			s.Negative++
		}
		sum += r.Ratings
	}
	s.Total = len(rows)
	s.MeanRating = math.RoundToEven(float64(sum)/float64(s.Total)*100) / 100
	s.Stars = min(max(int(math.RoundToEven(s.MeanRating)), 0), 5)
	s.StarGlyphs = strings.Repeat(starGlyph, s.Stars)
	return s, nil
}

// TopNegative returns up to n Negative rows, lowest rating first, ties in original order.
func TopNegative(rows []domain.CanonicalReview, n int) []domain.CanonicalReview {
	neg := Apply(rows, Filter{Sentiments: []domain.Sentiment{domain.SentimentNegative}})
	sort.SliceStable(neg, func(i, j int) bool { return neg[i].Ratings < neg[j].Ratings })
	if len(neg) > n {
		neg = neg[:n]
	}
	return neg
}

// Options lists the distinct values of each filterable column in first-seen order.
type Options struct {
	Years      []int              `json:"years"`
	Sentiments []domain.Sentiment `json:"sentiments"`
	Ratings    []int              `json:"ratings"`
}

func FilterOptions(rows []domain.CanonicalReview) Options {
	var o Options
	for _, r := range rows {
		if !slices.Contains(o.Years, r.Year) {
			o.Years = append(o.Years, r.Year)
		}
		if !slices.Contains(o.Sentiments, r.Sentiments) {
			o.Sentiments = append(o.Sentiments, r.Sentiments)
		}
		if !slices.Contains(o.Ratings, r.Ratings) {
			o.Ratings = append(o.Ratings, r.Ratings)
		}
	}
	return o
}

// Count is one bar of a value-count distribution.
type Count[T comparable] struct {
	Value T   `json:"value"`
	Count int `json:"count"`
}

func SentimentCounts(rows []domain.CanonicalReview) []Count[domain.Sentiment] {
	return valueCounts(rows, func(r domain.CanonicalReview) domain.Sentiment { return r.Sentiments })
}

func RatingCounts(rows []domain.CanonicalReview) []Count[int] {
	return valueCounts(rows, func(r domain.CanonicalReview) int { return r.Ratings })
}

// valueCounts orders by count descending, ties in first-seen order.
func valueCounts[T comparable](rows []domain.CanonicalReview, key func(domain.CanonicalReview) T) []Count[T] {
	idx := map[T]int{}
	var out []Count[T]
	for _, r := range rows {
		k := key(r)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, Count[T]{Value: k})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}
