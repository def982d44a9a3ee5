// Package sentiment calls a hosted star-rating text classifier.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"app_analyser/internal/adapters/transport"
)

const DefaultModel = "nlptown/bert-base-multilingual-uncased-sentiment"

var ErrMalformed = errors.New("sentiment: malformed classifier response")

type Client struct {
	baseURL string
	model   string
	token   string
	http    *transport.Client
}

func New(baseURL, model, token string, tc *transport.Client) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), model: model, token: token, http: tc}
}

func (c *Client) Model() string { return c.model }

// Classify returns the leading integer of the highest scoring label, e.g. 4 for "4 stars".
// Labels without a leading integer score 0.
func (c *Client) Classify(ctx context.Context, text string) (int, error) {
	payload, err := json.Marshal(map[string]any{
		"inputs":  text,
		"options": map[string]any{"wait_for_model": true},
	})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/models/"+c.model, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	body, err := c.http.Do(ctx, "classify", req)
	if err != nil {
		return 0, fmt.Errorf("classifier %s: %w", c.model, err)
	}
	label, err := topLabel(body)
	if err != nil {
		return 0, err
	}
	return stars(label), nil
}

// topLabel picks the best label from [{label,score}...], possibly nested once.
func topLabel(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", ErrMalformed
	}
	doc := gjson.ParseBytes(body)
	if msg := doc.Get("error"); msg.Exists() {
		return "", fmt.Errorf("sentiment: classifier error: %s", msg.String())
	}
	if doc.Get("0").IsArray() {
		doc = doc.Get("0")
	}
	best, bestScore := "", -1.0
	for _, item := range doc.Array() {
		if s := item.Get("score").Float(); s > bestScore {
			best, bestScore = item.Get("label").String(), s
		}
	}
	if bestScore < 0 {
		return "", fmt.Errorf("%w: no labels", ErrMalformed)
	}
	return best, nil
}

func stars(label string) int {
	f := strings.Fields(label)
	if len(f) == 0 {
		return 0
	}
	n, err := strconv.Atoi(f[0])
	if err != nil {
		return 0
	}
	return n
}
