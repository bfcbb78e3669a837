package cfg

import (
	"errors"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type AmadeusClientConfig struct {
	BaseURL string
	APIKey  string
}

type DuffelClientConfig struct {
	BaseURL  string
	APIToken string
}

type ObservabilityConfig struct {
	ServiceName  string
	Environment  string
	OTLPEndpoint string
}

type Config struct {
	AppEnv               string
	AppPort              string
	AmadeusClientConfig  AmadeusClientConfig
	DuffelClientConfig   DuffelClientConfig
	RedisConfig          RedisConfig
	Observability        ObservabilityConfig
	CacheBackend         string // "memory" or "redis"
	CacheTTLMinutes      int
	CacheMaxEntries      int
	SearchTimeoutSeconds int
	NodeID               int64
}

func Load() (*Config, error) {
	var errs []error

	err := godotenv.Load()
	if err != nil {
		return nil, errors.New("failed load cfg: " + err.Error())
	}

	appEnv := mustEnv("APP_ENV", &errs)
	appPort := mustEnv("APP_PORT", &errs)

	amadeusBaseURL := mustEnv("AMADEUS_BASE_URL", &errs)
	amadeusAPIKey := mustEnv("AMADEUS_API_KEY", &errs)
	duffelBaseURL := mustEnv("DUFFEL_BASE_URL", &errs)
	duffelAPIToken := mustEnv("DUFFEL_API_TOKEN", &errs)

	cacheBackend := envOrDefault("CACHE_BACKEND", "memory")
	redisHost := envOrDefault("REDIS_HOST", "localhost")
	redisPort := envOrDefault("REDIS_PORT", "6379")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	cacheTTLMinutes := intEnv("CACHE_TTL_MINUTES", 60, &errs)
	cacheMaxEntries := intEnv("CACHE_MAX_ENTRIES", 100, &errs)
	searchTimeoutSeconds := intEnv("SEARCH_TIMEOUT_SECONDS", 15, &errs)
	nodeID := intEnv("NODE_ID", 1, &errs)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return &Config{
		AppEnv:  appEnv,
		AppPort: appPort,
		AmadeusClientConfig: AmadeusClientConfig{
			BaseURL: amadeusBaseURL,
			APIKey:  amadeusAPIKey,
		},
		DuffelClientConfig: DuffelClientConfig{
			BaseURL:  duffelBaseURL,
			APIToken: duffelAPIToken,
		},
		RedisConfig: RedisConfig{
			Host:     redisHost,
			Port:     redisPort,
			Password: redisPassword,
		},
		Observability: ObservabilityConfig{
			ServiceName:  "skyspeed",
			Environment:  appEnv,
			OTLPEndpoint: os.Getenv("OTLP_ENDPOINT"),
		},
		CacheBackend:         cacheBackend,
		CacheTTLMinutes:      cacheTTLMinutes,
		CacheMaxEntries:      cacheMaxEntries,
		SearchTimeoutSeconds: searchTimeoutSeconds,
		NodeID:               int64(nodeID),
	}, nil
}

func mustEnv(key string, errs *[]error) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errs = append(*errs, errors.New("missing env: "+key))
	}
	return value
}

func envOrDefault(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	return value
}

func intEnv(key string, fallback int, errs *[]error) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, errors.New("conversion failed env: "+key))
		return fallback
	}
	return parsed
}
