package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"skyspeed/cfg"
	"skyspeed/internal/flight"
	"skyspeed/pkg/cache"
	"skyspeed/pkg/flightclient"
	"skyspeed/pkg/idgen"
	"skyspeed/pkg/logger"
	"skyspeed/pkg/ratelimit"
	"skyspeed/pkg/telemetry"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	// ============
	// config
	// ============
	config, errCfg := cfg.Load()
	if errCfg != nil {
		log.Fatal(errCfg)
	}

	// ============
	// logger
	// ============
	zlogger := logger.NewZeroLog(config.AppEnv)

	// ============
	// Otel
	// ============
	if config.Observability.OTLPEndpoint != "" {
		shutdownOtel, err := telemetry.Init(context.Background(),
			config.Observability.OTLPEndpoint,
			config.Observability.ServiceName,
			config.Observability.Environment,
		)
		if err != nil {
			zlogger.Warn("failed to initialize OpenTelemetry, continuing without tracing",
				logger.Field{Key: "err", Value: err})
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdownOtel(ctx); err != nil {
					zlogger.Error("failed to shutdown OpenTelemetry", logger.Field{Key: "err", Value: err})
				}
			}()
		}
	}

	// ============
	// Cache
	// ============
	var searchCache cache.Cache
	if config.CacheBackend == "redis" {
		redisAddr := config.RedisConfig.Host + ":" + config.RedisConfig.Port
		searchCache = cache.NewRedisCache(redisAddr, config.RedisConfig.Password)
	} else {
		searchCache = cache.NewMemoryCache(config.CacheMaxEntries)
	}

	// ============
	// External Service
	// ============
	httpClient := &http.Client{
		Timeout: 10 * time.Second,
	}
	limiter := ratelimit.NewProviderLimiter(ratelimit.DefaultConfig())
	amadeusClient := flightclient.NewAmadeusClient(httpClient,
		config.AmadeusClientConfig.BaseURL, config.AmadeusClientConfig.APIKey, limiter, zlogger)
	duffelClient := flightclient.NewDuffelClient(httpClient,
		config.DuffelClientConfig.BaseURL, config.DuffelClientConfig.APIToken, limiter, zlogger)
	flightClient := flightclient.NewFlightManager(amadeusClient, duffelClient, zlogger)
	historyClient := flightclient.NewAmadeusHistory(httpClient,
		config.AmadeusClientConfig.BaseURL, config.AmadeusClientConfig.APIKey, limiter, zlogger)

	// ============
	// Internal Service
	// ============
	ids, err := idgen.NewSnowflake(config.NodeID)
	if err != nil {
		log.Fatal(err)
	}

	flightSvc := flight.NewService(
		flightClient,
		historyClient,
		flight.NewCostVibeEnricher(),
		flight.NewStrategist(),
		searchCache,
		config.CacheTTLMinutes,
		config.SearchTimeoutSeconds,
		ids,
		zlogger,
	)
	flightHandler := flight.NewFlightHandler(flightSvc)

	// ============
	// HTTP
	// ============
	r := gin.Default()
	r.Use(otelgin.Middleware(config.Observability.ServiceName))

	flightHandler.RegisterRoutes(r)

	addr := fmt.Sprintf(":%s", config.AppPort)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
