// Package playstore fetches reviews through the Google Play web UI's batchexecute RPC.
package playstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"app_analyser/internal/adapters/transport"
	"app_analyser/internal/domain"
)

const (
	DefaultBaseURL = "https://play.google.com"

	// MaxPageSize is the largest page the RPC serves.
	MaxPageSize = 199

	rpcID = "UsvDTd"
)

var ErrMalformed = errors.New("playstore: malformed batchexecute response")

var xssiGuard = []byte(")]}'")

type Client struct {
	baseURL string
	http    *transport.Client
}

func New(baseURL string, tc *transport.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: tc}
}

// Reviews returns up to q.Count reviews for app in the requested sort order.
func (c *Client) Reviews(ctx context.Context, app domain.PlayStoreApp, q domain.PlayQuery) ([]domain.RawReview, error) {
	if q.Lang == "" {
		q.Lang = "en"
	}
	if q.Country == "" {
		q.Country = "us"
	}
	if q.Sort == 0 {
		q.Sort = domain.PlaySortNewest
	}

	out := make([]domain.RawReview, 0, min(max(q.Count, 0), 1000))
	token := ""
	for len(out) < q.Count {
		size := min(q.Count-len(out), MaxPageSize)
		body, err := c.page(ctx, app.Package, q, size, token)
		if err != nil {
			return nil, err
		}
		rows, next, err := parsePage(body, token == "")
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
		if len(rows) == 0 || next == "" {
			break
		}
		token = next
	}
	if len(out) > q.Count {
		out = out[:q.Count]
	}
	return out, nil
}

func (c *Client) page(ctx context.Context, pkg string, q domain.PlayQuery, size int, token string) ([]byte, error) {
	form, err := requestBody(pkg, q.Sort, size, token)
	if err != nil {
		return nil, err
	}
	u := fmt.Sprintf("%s/_/PlayStoreUi/data/batchexecute?hl=%s&gl=%s",
		c.baseURL, url.QueryEscape(q.Lang), url.QueryEscape(q.Country))
	req, err := http.NewRequest(http.MethodPost, u, strings.NewReader(form))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")

	body, err := c.http.Do(ctx, "reviews", req)
	if err != nil {
		return nil, fmt.Errorf("playstore reviews %s: %w", pkg, err)
	}
	return body, nil
}

// requestBody encodes the f.req form field. The RPC arguments are themselves a JSON
// document carried as a string inside the envelope.
func requestBody(pkg string, sort domain.PlaySort, size int, token string) (string, error) {
	tok := "null"
	if token != "" {
		b, err := json.Marshal(token)
		if err != nil {
			return "", err
		}
		tok = string(b)
	}
	id, err := json.Marshal(pkg)
	if err != nil {
		return "", err
	}
	args := fmt.Sprintf(`[null,null,[2,%d,[%d,null,%s],null,[null]],[%s,7]]`, int(sort), size, tok, id)

	env, err := json.Marshal([][][]any{{{rpcID, args, nil, "generic"}}})
	if err != nil {
		return "", err
	}
	return url.Values{"f.req": {string(env)}}.Encode(), nil
}

// parsePage decodes one batchexecute response. An absent payload on the first page
// means the package is unknown.
func parsePage(body []byte, first bool) ([]domain.RawReview, string, error) {
	body = bytes.TrimSpace(body)
	body = bytes.TrimSpace(bytes.TrimPrefix(body, xssiGuard))
	if !gjson.ValidBytes(body) {
		return nil, "", ErrMalformed
	}

	var payload gjson.Result
	for _, part := range gjson.ParseBytes(body).Array() {
		if part.Get("0").String() == "wrb.fr" && part.Get("1").String() == rpcID {
			payload = part.Get("2")
			break
		}
	}
	if payload.Type != gjson.String {
		if first {
			return nil, "", transport.ErrNotFound
		}
		return nil, "", nil
	}
	if !gjson.Valid(payload.Str) {
		return nil, "", fmt.Errorf("%w: inner document", ErrMalformed)
	}

	doc := gjson.Parse(payload.Str)
	var rows []domain.RawReview
	for _, r := range doc.Get("0").Array() {
		rows = append(rows, domain.RawReview{
			"reviewId":   r.Get("0").String(),
			"userName":   r.Get("1.0").String(),
			"content":    r.Get("4").String(),
			"score":      number(r.Get("2")),
			"at":         number(r.Get("5.0")),
			"appVersion": r.Get("10").String(),
		})
	}
	return rows, continuation(doc), nil
}

// number leaves absent or non-numeric fields nil so the normaliser rejects the row.
func number(r gjson.Result) any {
	if r.Type != gjson.Number {
		return nil
	}
	return r.Int()
}

// continuation reads the token at [-2][-1] of the inner document.
func continuation(doc gjson.Result) string {
	parts := doc.Array()
	if len(parts) < 2 {
		return ""
	}
	meta := parts[len(parts)-2].Array()
	if len(meta) == 0 {
		return ""
	}
	last := meta[len(meta)-1]
	if last.Type != gjson.String {
		return ""
	}
	return last.Str
}
