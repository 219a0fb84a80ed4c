package shared

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv        string
	HTTPAddr      string
	MetricsAddr   string
	MySQLDSN      string
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	YelpBase      string
	YelpKey       string
	YelpRPS       int
	DinelineBase  string
	MediaBaseURL  string
	DisplayTZ     *time.Location
	Workers       int
	RestaurantIDs []int64
	CacheTTL      time.Duration
	CallTimeout   time.Duration
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Real environment variables win over .env.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env could not be read")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:        env("APP_ENV", "prod"),
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		MetricsAddr:   env("METRICS_ADDR", ""),
		MySQLDSN:      env("MYSQL_DSN", "root:root@tcp(localhost:3306)/dineline?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
		RedisPass:     env("REDIS_PASSWORD", ""),
		RedisDB:       atoi("REDIS_DB", 0),
		YelpBase:      env("YELP_BASE_URL", "https://api.yelp.com/v3"),
		YelpKey:       env("YELP_API_KEY", ""),
		YelpRPS:       atoi("YELP_RPS", 5),
		DinelineBase:  env("DINELINE_BASE_URL", "http://localhost:8000"),
		MediaBaseURL:  env("MEDIA_BASE_URL", "https://dineline.s3.amazonaws.com/media/"),
		DisplayTZ:     loadLocation(env("DISPLAY_TZ", "UTC")),
		Workers:       atoi("WARM_WORKERS", 8),
		RestaurantIDs: parseIDs(env("WARM_RESTAURANT_IDS", "")),
		CacheTTL:      time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		CallTimeout:   time.Duration(atoi("CALL_TIMEOUT_SECONDS", 10)) * time.Second,
	}
	if c.YelpKey == "" {
		log.Warn().Msg("YELP_API_KEY is empty; external reviews disabled")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn().Err(err).Str("tz", name).Msg("unknown DISPLAY_TZ, using UTC")
		return time.UTC
	}
	return loc
}

// parseIDs reads a comma separated id list, skipping blanks and garbage.
func parseIDs(s string) []int64 {
	var out []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Warn().Str("value", part).Msg("skipping invalid restaurant id")
			continue
		}
		out = append(out, id)
	}
	return out
}
