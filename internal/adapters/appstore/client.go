// Package appstore fetches customer reviews from the Apple App Store web API.
package appstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"app_analyser/internal/adapters/transport"
	"app_analyser/internal/domain"
)

const (
	DefaultWebURL = "https://apps.apple.com"
	DefaultAPIURL = "https://amp-api.apps.apple.com"

	pageSize = 20
)

var (
	ErrTokenNotFound = errors.New("appstore: bearer token not found on app page")
	ErrMalformed     = errors.New("appstore: malformed reviews response")
)

// The app page embeds the web client's bearer token in URL-encoded JSON.
var tokenRe = regexp.MustCompile(`token%22%3A%22(.+?)%22`)

type Client struct {
	webURL string
	apiURL string
	http   *transport.Client
}

func New(webURL, apiURL string, tc *transport.Client) *Client {
	if webURL == "" {
		webURL = DefaultWebURL
	}
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		webURL: strings.TrimRight(webURL, "/"),
		apiURL: strings.TrimRight(apiURL, "/"),
		http:   tc,
	}
}

// Reviews returns up to count reviews for app, newest first as served by the store.
func (c *Client) Reviews(ctx context.Context, app domain.AppStoreApp, count int) ([]domain.RawReview, error) {
	page := c.pageURL(app)
	token, err := c.token(ctx, page)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RawReview, 0, min(max(count, 0), 1000))
	offset := 0
	for len(out) < count {
		u := fmt.Sprintf("%s/v1/catalog/%s/apps/%s/reviews?l=en-GB&offset=%d&limit=%d&platform=web&additionalPlatforms=%s",
			c.apiURL, app.Country, app.ID, offset, pageSize, url.QueryEscape("appletv,ipad,iphone,mac"))
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Origin", c.webURL)
		req.Header.Set("Referer", page)

		body, err := c.http.Do(ctx, "reviews", req)
		if err != nil {
			return nil, fmt.Errorf("appstore reviews offset=%d: %w", offset, err)
		}
		rows, next, err := parsePage(body)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)

		n, ok := nextOffset(next)
		if len(rows) == 0 || !ok || n <= offset {
			break
		}
		offset = n
	}
	if len(out) > count {
		out = out[:count]
	}
	return out, nil
}

func (c *Client) pageURL(app domain.AppStoreApp) string {
	return fmt.Sprintf("%s/%s/app/%s/id%s", c.webURL, app.Country, url.PathEscape(app.Name), app.ID)
}

func (c *Client) token(ctx context.Context, page string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, page, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html")
	body, err := c.http.Do(ctx, "app_page", req)
	if err != nil {
		return "", fmt.Errorf("appstore app page: %w", err)
	}
	m := tokenRe.FindSubmatch(body)
	if m == nil {
		return "", ErrTokenNotFound
	}
	return string(m[1]), nil
}

func parsePage(body []byte) ([]domain.RawReview, string, error) {
	if !gjson.ValidBytes(body) {
		return nil, "", ErrMalformed
	}
	doc := gjson.ParseBytes(body)
	data := doc.Get("data")
	if !data.IsArray() {
		return nil, "", fmt.Errorf("%w: missing data array", ErrMalformed)
	}

	var rows []domain.RawReview
	for _, item := range data.Array() {
		a := item.Get("attributes")
		rows = append(rows, domain.RawReview{
			"id":       item.Get("id").String(),
			"userName": a.Get("userName").String(),
			"title":    a.Get("title").String(),
			"review":   a.Get("review").String(),
			"rating":   number(a.Get("rating")),
			"date":     text(a.Get("date")),
			"isEdited": a.Get("isEdited").Bool(),
		})
	}
	return rows, doc.Get("next").String(), nil
}

// number and text leave absent or mistyped fields nil so the normaliser rejects the row.
func number(r gjson.Result) any {
	if r.Type != gjson.Number {
		return nil
	}
	return r.Int()
}

func text(r gjson.Result) any {
	if r.Type != gjson.String {
		return nil
	}
	return r.Str
}

// nextOffset reads the offset query parameter of a relative next link.
func nextOffset(next string) (int, bool) {
	if next == "" {
		return 0, false
	}
	u, err := url.Parse(next)
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(u.Query().Get("offset"))
	if err != nil {
		return 0, false
	}
	return n, true
}
