package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Config bounds outbound request rates per upstream provider.
type Config struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 10,
		BurstSize:         20,
	}
}

// ProviderLimiter keeps one token bucket per provider name so a slow or
// throttled upstream cannot starve the others.
type ProviderLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults Config
}

func NewProviderLimiter(config Config) *ProviderLimiter {
	return &ProviderLimiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: config,
	}
}

func (p *ProviderLimiter) limiterFor(provider string) *rate.Limiter {
	p.mu.RLock()
	limiter, exists := p.limiters[provider]
	p.mu.RUnlock()

	if exists {
		return limiter
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if limiter, exists = p.limiters[provider]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(rate.Limit(p.defaults.RequestsPerSecond), p.defaults.BurstSize)
	p.limiters[provider] = limiter
	return limiter
}

// SetProviderLimit overrides the default bucket for one provider.
func (p *ProviderLimiter) SetProviderLimit(provider string, rps float64, burst int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.limiters[provider] = rate.NewLimiter(rate.Limit(rps), burst)
}

// Wait blocks until the provider's bucket grants a token or ctx is done.
func (p *ProviderLimiter) Wait(ctx context.Context, provider string) error {
	return p.limiterFor(provider).Wait(ctx)
}
