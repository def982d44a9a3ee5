//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"app_analyser/internal/adapters/appstore"
	server "app_analyser/internal/adapters/http_server"
	"app_analyser/internal/adapters/memory"
	"app_analyser/internal/adapters/playstore"
	redisad "app_analyser/internal/adapters/redis"
	"app_analyser/internal/adapters/sentiment"
	"app_analyser/internal/adapters/transport"
	"app_analyser/internal/app"
)

const link = "https://apps.apple.com/us/app/sample-app/id123"

// ---------- upstream fakes ----------

// fakeAppStore serves the app page token and one page of reviews whose text ends in the rating.
func fakeAppStore(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/us/app/sample-app/id123", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<meta content="%7B%22token%22%3A%22e2e%22%7D">`))
	})
	mux.HandleFunc("/v1/catalog/us/apps/123/reviews", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		var items []string
		for i := 1; i <= 5; i++ {
			items = append(items, fmt.Sprintf(`{"id":"%d","attributes":{"review":"rated %d","rating":%d,"date":"2024-0%d-01T00:00:00Z"}}`, i, i, i, i))
		}
		_, _ = fmt.Fprintf(w, `{"data":[%s]}`, strings.Join(items, ","))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

// fakeClassifier answers with the star count found at the end of the input.
func fakeClassifier(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Inputs string `json:"inputs"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		stars := in.Inputs[len(in.Inputs)-1:]
		_, _ = fmt.Fprintf(w, `[[{"label":"%s stars","score":0.9},{"label":"1 star","score":0.01}]]`, stars)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func startRedis(t *testing.T) string {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{Repository: "redis", Tag: "7-alpine"}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run redis: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	addr := fmt.Sprintf("127.0.0.1:%s", resource.GetPort("6379/tcp"))
	probe := redisad.New(addr, "", 0)
	defer probe.Close()
	if err := pool.Retry(func() error { return probe.Ping(context.Background()) }); err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	return addr
}

// replica wires one API instance the way cmd/api does, sharing datasets through redis.
func replica(t *testing.T, redisAddr, storeURL, classifierURL string) *httptest.Server {
	t.Helper()
	rc := redisad.New(redisAddr, "", 0)
	t.Cleanup(func() { _ = rc.Close() })

	as := appstore.New(storeURL, storeURL, transport.New("appstore", 100, 5*time.Second))
	ps := playstore.New("http://unused.invalid", transport.New("playstore", 100, 5*time.Second))
	model := sentiment.New(classifierURL, "", "", transport.New("classifier", 100, 5*time.Second))
	sa := app.NewSentimentAdapter(model, memory.New("classifier"), 2)
	q := app.NewQueryService(app.NewAnalysisService(as, ps, sa, rc, app.AnalysisOptions{}))

	srv := server.New(10 * time.Second)
	srv.MountHandlers(&server.Handlers{Q: q})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func dashboard(t *testing.T, ts *httptest.Server) map[string]any {
	t.Helper()
	resp, err := http.Get(ts.URL + "/v1/dashboard?" + url.Values{"link": {link}}.Encode())
	if err != nil {
		t.Fatalf("GET dashboard: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return body
}

// ---------- test ----------

func TestDashboard_SharedAcrossReplicas(t *testing.T) {
	var hits int32
	store := fakeAppStore(t, &hits)
	classifier := fakeClassifier(t)
	addr := startRedis(t)

	a := replica(t, addr, store.URL, classifier.URL)
	b := replica(t, addr, store.URL, classifier.URL)

	first := dashboard(t, a)
	if first["name"] != "Sample-App" {
		t.Fatalf("name = %v", first["name"])
	}
	stats := first["stats"].(map[string]any)
	if stats["total_reviews"].(float64) != 5 || stats["positive_reviews"].(float64) != 2 {
		t.Fatalf("stats = %v", stats)
	}

	second := dashboard(t, b)
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("store fetched %d times, want 1", got)
	}
	if len(second["rows"].([]any)) != 5 {
		t.Fatalf("rows = %v", second["rows"])
	}
}
