package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"review_proxy/internal/domain"
)

// Config is built once at startup and passed by value; nothing mutates it.
type Config struct {
	AppEnv          string
	LogLevel        string
	HTTPAddr        string
	MetricsAddr     string
	UseMock         bool
	FixtureBackend  string // file|redis|mysql
	MockDataDir     string
	RedisAddr       string
	RedisDB         int
	RedisPass       string
	MySQLDSN        string
	UpstreamURLs    map[string]string // dataset name -> URL
	UpstreamRPS     int
	UpstreamTimeout time.Duration
	RequestTimeout  time.Duration
	CORSOrigins     []string
}

// upstreamEnv maps each dataset to the variable holding its upstream URL.
var upstreamEnv = map[string]string{
	domain.Devices.Name:         "DEVICES_API_URL",
	domain.FeaturedReviews.Name: "FEATURED_REVIEWS_API_URL",
	domain.ImageReviews.Name:    "IMAGE_REVIEWS_API_URL",
	domain.ReviewList.Name:      "REVIEW_LIST_API_URL",
	domain.ProductReviews.Name:  "PRODUCT_REVIEWS_API_URL",
}

// Load reads an optional .env file, then the environment.
func Load() Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("ignoring non-integer setting")
		}
		return def
	}

	urls := make(map[string]string, len(upstreamEnv))
	for name, key := range upstreamEnv {
		urls[name] = strings.TrimSpace(os.Getenv(key))
	}

	c := Config{
		AppEnv:          env("APP_ENV", "prod"),
		LogLevel:        env("LOG_LEVEL", "info"),
		HTTPAddr:        env("HTTP_ADDR", ":"+env("PORT", "3001")),
		MetricsAddr:     os.Getenv("METRICS_ADDR"),
		UseMock:         os.Getenv("USE_MOCK") == "true",
		FixtureBackend:  strings.ToLower(env("FIXTURE_BACKEND", "file")),
		MockDataDir:     env("MOCK_DATA_DIR", "mockdata"),
		RedisAddr:       env("REDIS_ADDR", "localhost:6379"),
		RedisPass:       env("REDIS_PASSWORD", ""),
		RedisDB:         atoi("REDIS_DB", 0),
		MySQLDSN:        env("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviews?parseTime=true&charset=utf8mb4&loc=UTC"),
		UpstreamURLs:    urls,
		UpstreamRPS:     atoi("UPSTREAM_RPS", 0),
		UpstreamTimeout: time.Duration(atoi("UPSTREAM_TIMEOUT_SECONDS", 10)) * time.Second,
		RequestTimeout:  time.Duration(atoi("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		CORSOrigins:     splitList(env("CORS_ORIGINS", "*")),
	}

	// an upstream hang must end as a fetch failure before the handler timeout fires
	if c.RequestTimeout > 0 && (c.UpstreamTimeout <= 0 || c.UpstreamTimeout >= c.RequestTimeout) {
		clamped := c.RequestTimeout * 4 / 5
		log.Warn().
			Dur("upstream_timeout", c.UpstreamTimeout).
			Dur("request_timeout", c.RequestTimeout).
			Dur("using", clamped).
			Msg("upstream timeout must be below request timeout; clamping")
		c.UpstreamTimeout = clamped
	}

	if !c.UseMock {
		for _, ds := range domain.Datasets {
			if c.UpstreamURLs[ds.Name] == "" {
				log.Warn().Str("key", upstreamEnv[ds.Name]).Msg("upstream URL is empty; requests for this dataset will fail")
			}
		}
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
