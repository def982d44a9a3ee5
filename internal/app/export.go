package app

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"app_analyser/internal/domain"
)

var csvHeader = []string{"Reviews", "Ratings", "Date", "Source", "Year", "Sentiments"}

// WriteCSV writes rows as a table with the canonical column names.
func WriteCSV(w io.Writer, rows []domain.CanonicalReview) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Reviews,
			strconv.Itoa(r.Ratings),
			r.Date.UTC().Format(time.RFC3339),
			string(r.Source),
			strconv.Itoa(r.Year),
			string(r.Sentiments),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
