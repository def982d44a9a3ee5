package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	LogFile     string

	// RedisAddr enables the shared dataset cache; empty keeps it in memory.
	RedisAddr string
	RedisDB   int
	RedisPass string

	AppStoreWeb  string
	AppStoreAPI  string
	PlayStoreURL string
	StoreRPS     int

	ReviewLang    string
	ReviewCountry string
	ReviewCount   int

	ClassifierURL   string
	ClassifierModel string
	ClassifierToken string
	ClassifierRPS   int
	ClassifyWorkers int

	CacheTTL       time.Duration
	RequestTimeout time.Duration
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ""),
		LogFile:     env("LOG_FILE", ""),

		RedisAddr: env("REDIS_ADDR", ""),
		RedisPass: env("REDIS_PASSWORD", ""),
		RedisDB:   atoi("REDIS_DB", 0),

		AppStoreWeb:  env("APPSTORE_BASE_URL", "https://apps.apple.com"),
		AppStoreAPI:  env("APPSTORE_API_URL", "https://amp-api.apps.apple.com"),
		PlayStoreURL: env("PLAYSTORE_BASE_URL", "https://play.google.com"),
		StoreRPS:     atoi("STORE_RPS", 5),

		ReviewLang:    env("REVIEW_LANG", "en"),
		ReviewCountry: env("REVIEW_COUNTRY", "us"),
		ReviewCount:   atoi("REVIEW_COUNT", 1000),

		ClassifierURL:   env("CLASSIFIER_URL", "https://api-inference.huggingface.co"),
		ClassifierModel: env("CLASSIFIER_MODEL", "nlptown/bert-base-multilingual-uncased-sentiment"),
		ClassifierToken: env("CLASSIFIER_TOKEN", ""),
		ClassifierRPS:   atoi("CLASSIFIER_RPS", 10),
		ClassifyWorkers: atoi("CLASSIFY_WORKERS", 1),

		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 0)) * time.Second,
		RequestTimeout: time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 120)) * time.Second,
	}
	return c
}

// LogWarnings reports risky settings; call it once the global logger is configured.
func (c Config) LogWarnings() {
	if c.ClassifierToken == "" {
		log.Warn().Msg("CLASSIFIER_TOKEN is empty")
	}
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
