package app

import (
	"context"
	"errors"

	"app_analyser/internal/domain"
)

const (
	TopNegativeCount = 10
	CommonWordCount  = 50
)

// Dashboard is everything the presentation layer draws for one filtered view.
// Stats and the derived series are nil when the filter leaves no rows.
type Dashboard struct {
	Name            string                    `json:"name"`
	Source          domain.Source             `json:"source"`
	Options         Options                   `json:"options"`
	Rows            []domain.CanonicalReview  `json:"rows"`
	Empty           bool                      `json:"empty"`
	Stats           *Stats                    `json:"stats,omitempty"`
	SentimentCounts []Count[domain.Sentiment] `json:"sentiment_counts,omitempty"`
	RatingCounts    []Count[int]              `json:"rating_counts,omitempty"`
	CommonWords     []WordCount               `json:"common_words,omitempty"`
	TopNegative     []domain.CanonicalReview  `json:"top_negative,omitempty"`
}

type QueryService struct {
	analysis *AnalysisService
}

func NewQueryService(a *AnalysisService) *QueryService {
	return &QueryService{analysis: a}
}

// Select analyses link (or reuses the session dataset) and applies f.
func (q *QueryService) Select(ctx context.Context, link string, f Filter) (domain.Dataset, []domain.CanonicalReview, error) {
	ds, err := q.analysis.Analyze(ctx, link)
	if err != nil {
		return domain.Dataset{}, nil, err
	}
	return ds, Apply(ds.Reviews, f), nil
}

// Dashboard returns the filtered view with its KPIs. An empty selection returns the
// dashboard skeleton together with domain.ErrEmptyResult.
func (q *QueryService) Dashboard(ctx context.Context, link string, f Filter) (Dashboard, error) {
	ds, rows, err := q.Select(ctx, link, f)
	if err != nil {
		return Dashboard{}, err
	}
	d := Dashboard{
		Name:    ds.Name,
		Source:  ds.Source,
		Options: FilterOptions(ds.Reviews),
		Rows:    rows,
	}

	stats, err := Summarize(rows)
	if errors.Is(err, domain.ErrEmptyResult) {
		d.Empty = true
		return d, err
	}
	if err != nil {
		return Dashboard{}, err
	}
	d.Stats = &stats
	d.SentimentCounts = SentimentCounts(rows)
	d.RatingCounts = RatingCounts(rows)
	d.CommonWords = CommonWords(rows, CommonWordCount)
	d.TopNegative = TopNegative(rows, TopNegativeCount)
	return d, nil
}
