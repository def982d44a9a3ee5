package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"app_analyser/internal/domain"
)

/********** column registries (store column -> canonical column) **********/

type columnMap struct {
	Reviews string
	Ratings string
	Date    string
}

var storeColumns = map[domain.Source]columnMap{
	domain.SourcePlayStore: {Reviews: "content", Ratings: "score", Date: "at"},
	domain.SourceAppStore:  {Reviews: "review", Ratings: "rating", Date: "date"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func lookupStr(m map[string]any, path string) string {
	switch v := lookupAny(m, path).(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// getRatingFlexible: star rating from float64/int/string like "4" or "4,0".
func getRatingFlexible(m map[string]any, path string) (int, error) {
	switch v := lookupAny(m, path).(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(math.Round(v)), nil
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(math.Round(f)), nil
		}
		return 0, fmt.Errorf("%s: not a number: %q", path, v)
	case nil:
		return 0, fmt.Errorf("%s: missing", path)
	default:
		return 0, fmt.Errorf("%s: unexpected type %T", path, v)
	}
}

// getDateFlexible: time.Time, RFC 3339 string, or unix seconds. Always UTC.
func getDateFlexible(m map[string]any, path string) (time.Time, error) {
	switch v := lookupAny(m, path).(type) {
	case time.Time:
		return v.UTC(), nil
	case float64:
		return time.Unix(int64(v), 0).UTC(), nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case int:
		return time.Unix(int64(v), 0).UTC(), nil
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(secs, 0).UTC(), nil
		}
		return time.Time{}, fmt.Errorf("%s: unparseable date %q", path, v)
	case nil:
		return time.Time{}, fmt.Errorf("%s: missing", path)
	default:
		return time.Time{}, fmt.Errorf("%s: unexpected type %T", path, v)
	}
}

/********** normalizer **********/

// Normalize maps raw store rows onto canonical records, row for row. Sentiments is left
// empty for the classifier adapter to fill. A row without a 1..5 rating or a readable
// date fails the whole batch.
func Normalize(source domain.Source, in []domain.RawReview) ([]domain.CanonicalReview, error) {
	cols, ok := storeColumns[source]
	if !ok {
		return nil, fmt.Errorf("normalize: unknown source %q", source)
	}
	out := make([]domain.CanonicalReview, 0, len(in))
	for i, r := range in {
		rating, err := getRatingFlexible(r, cols.Ratings)
		if err != nil {
			return nil, fmt.Errorf("normalize row %d: %w", i, err)
		}
		if rating < 1 || rating > 5 {
			return nil, fmt.Errorf("normalize row %d: %s: rating %d out of range 1..5", i, cols.Ratings, rating)
		}
		date, err := getDateFlexible(r, cols.Date)
		if err != nil {
			return nil, fmt.Errorf("normalize row %d: %w", i, err)
		}
		out = append(out, domain.CanonicalReview{
			Reviews: lookupStr(r, cols.Reviews),
			Ratings: rating,
			Date:    date,
			Year:    date.Year(),
			Source:  source,
		})
	}
	return out, nil
}
