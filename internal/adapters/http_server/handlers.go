package httpserver

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"

	"app_analyser/internal/adapters/observability"
	"app_analyser/internal/app"
	"app_analyser/internal/domain"
)

type Handlers struct{ Q *app.QueryService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type dashboardResponse struct {
	app.Dashboard
	Warning string `json:"warning,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/dashboard", h.getDashboard)
	s.mux.Get("/v1/reviews.csv", h.exportCSV)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	return etagOf(body), body
}

func etagOf(body []byte) string {
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`
}

// parseFilter reads repeated year, sentiment and rating parameters. An absent
// parameter leaves the column unrestricted; a present but empty one selects nothing.
func parseFilter(q url.Values) (app.Filter, error) {
	var f app.Filter
	var err error
	if f.Years, err = intValues(q, "year"); err != nil {
		return app.Filter{}, err
	}
	if f.Ratings, err = intValues(q, "rating"); err != nil {
		return app.Filter{}, err
	}
	if vs, ok := q["sentiment"]; ok {
		f.Sentiments = []domain.Sentiment{}
		for _, v := range vs {
			if v != "" {
				f.Sentiments = append(f.Sentiments, domain.Sentiment(v))
			}
		}
	}
	return f, nil
}

func intValues(q url.Values, key string) ([]int, error) {
	vs, ok := q[key]
	if !ok {
		return nil, nil
	}
	out := []int{}
	for _, v := range vs {
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New(key + " must be an integer")
		}
		out = append(out, n)
	}
	return out, nil
}

// fail maps pipeline errors onto problem responses and records the outcome.
func fail(w http.ResponseWriter, err error) {
	var fe *domain.FetchError
	switch {
	case errors.Is(err, domain.ErrInvalidLink):
		observability.ObserveAnalysis("none", "invalid_link", 0)
		writeProblem(w, http.StatusBadRequest, "Invalid link", domain.MsgInvalidLink)
	case errors.As(err, &fe):
		observability.ObserveAnalysis(string(fe.Source), "fetch_error", 0)
		log.Warn().Err(err).Msg("analysis failed")
		writeProblem(w, http.StatusBadGateway, "Fetch failed", fe.Message())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		observability.ObserveAnalysis("none", "cancelled", 0)
		writeProblem(w, http.StatusServiceUnavailable, "Cancelled", "request ended before the analysis finished")
	default:
		observability.ObserveAnalysis("none", "error", 0)
		log.Error().Err(err).Msg("analysis failed")
		writeProblem(w, http.StatusInternalServerError, "Internal error", "unexpected error")
	}
}

func (h *Handlers) getDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	link := q.Get("link")
	if link == "" {
		writeProblem(w, http.StatusBadRequest, "Missing link", "link query parameter is required")
		return
	}
	f, err := parseFilter(q)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}

	d, err := h.Q.Dashboard(r.Context(), link, f)
	resp := dashboardResponse{Dashboard: d}
	switch {
	case errors.Is(err, domain.ErrEmptyResult):
		resp.Warning = domain.MsgEmptyResult
		observability.ObserveAnalysis(string(d.Source), "empty", 0)
	case err != nil:
		fail(w, err)
		return
	default:
		observability.ObserveAnalysis(string(d.Source), "ok", len(d.Rows))
	}

	etag, body := calcETagAndBody(resp)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write dashboard body")
	}
}

func (h *Handlers) exportCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	link := q.Get("link")
	if link == "" {
		writeProblem(w, http.StatusBadRequest, "Missing link", "link query parameter is required")
		return
	}
	f, err := parseFilter(q)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}

	ds, rows, err := h.Q.Select(r.Context(), link, f)
	if err != nil {
		fail(w, err)
		return
	}
	observability.ObserveAnalysis(string(ds.Source), "export", len(rows))

	var buf bytes.Buffer
	if err := app.WriteCSV(&buf, rows); err != nil {
		log.Error().Err(err).Msg("csv export failed")
		writeProblem(w, http.StatusInternalServerError, "Internal error", "csv export failed")
		return
	}

	w.Header().Set("ETag", etagOf(buf.Bytes()))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="reviews.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		log.Error().Err(err).Msg("failed to write csv body")
	}
}
