package domain

import "time"

type Source string

const (
	SourceAppStore  Source = "App Store"
	SourcePlayStore Source = "Google Play"
)

type Sentiment string

const (
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentPositive Sentiment = "Positive"
	SentimentUnknown  Sentiment = "Unknown"
)

// RawReview is one review as the store reports it, keyed by the store's own column names.
type RawReview map[string]any

// CanonicalReview is the source-agnostic record; JSON names match the exported table columns.
type CanonicalReview struct {
	Reviews    string    `json:"Reviews"`
	Ratings    int       `json:"Ratings"`
	Date       time.Time `json:"Date"`
	Year       int       `json:"Year"`
	Source     Source    `json:"Source"`
	Sentiments Sentiment `json:"Sentiments"`
}

// Dataset is the classified review table for one app.
type Dataset struct {
	Key       string            `json:"key"`
	Name      string            `json:"name"`
	Source    Source            `json:"source"`
	FetchedAt time.Time         `json:"fetched_at"`
	Reviews   []CanonicalReview `json:"reviews"`
}
