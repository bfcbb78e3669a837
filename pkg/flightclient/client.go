package flightclient

import (
	"context"
	"sync"

	"skyspeed/internal/flight"
	"skyspeed/pkg/logger"
)

// offerProvider is one upstream offer source behind the aggregator.
type offerProvider interface {
	SearchOffers(ctx context.Context, q flight.SearchQuery) ([]flight.Flight, *flight.Dictionaries, error)
}

type namedProvider struct {
	name     string
	provider offerProvider
}

// FlightManager fans a search out to every configured provider concurrently
// and merges whatever comes back. A provider failure costs its results, not
// the whole search.
type FlightManager struct {
	providers []namedProvider
	logger    logger.Client
}

func NewFlightManager(amadeus *AmadeusClient, duffel *DuffelClient, logger logger.Client) *FlightManager {
	providers := make([]namedProvider, 0, 2)
	if amadeus != nil {
		providers = append(providers, namedProvider{name: "amadeus", provider: amadeus})
	}
	if duffel != nil {
		providers = append(providers, namedProvider{name: "duffel", provider: duffel})
	}
	return &FlightManager{
		providers: providers,
		logger:    logger,
	}
}

type providerOutcome struct {
	name         string
	flights      []flight.Flight
	dictionaries *flight.Dictionaries
	err          error
}

func (m *FlightManager) Search(ctx context.Context, q flight.SearchQuery) (*flight.AggregationResult, error) {
	outcomes := make(chan providerOutcome, len(m.providers))

	var wg sync.WaitGroup
	for _, p := range m.providers {
		wg.Add(1)
		go func(p namedProvider) {
			defer wg.Done()
			flights, dicts, err := p.provider.SearchOffers(ctx, q)
			outcomes <- providerOutcome{name: p.name, flights: flights, dictionaries: dicts, err: err}
		}(p)
	}
	wg.Wait()
	close(outcomes)

	result := &flight.AggregationResult{
		Flights:          []flight.Flight{},
		ProvidersQueried: len(m.providers),
	}
	for outcome := range outcomes {
		if outcome.err != nil {
			result.ProvidersFailed++
			m.logger.Error("provider search failed",
				logger.Field{Key: "provider", Value: outcome.name},
				logger.Field{Key: "err", Value: outcome.err})
			continue
		}
		result.ProvidersSucceeded++
		result.Flights = append(result.Flights, outcome.flights...)
		result.Dictionaries = mergeDictionaries(result.Dictionaries, outcome.dictionaries)
	}

	result.Flights = dedupeFlights(result.Flights)
	return result, nil
}

func mergeDictionaries(base, extra *flight.Dictionaries) *flight.Dictionaries {
	if extra == nil {
		return base
	}
	if base == nil {
		return extra
	}
	base.Airlines = mergeLookup(base.Airlines, extra.Airlines)
	base.Carriers = mergeLookup(base.Carriers, extra.Carriers)
	base.Locations = mergeLookup(base.Locations, extra.Locations)
	base.Aircraft = mergeLookup(base.Aircraft, extra.Aircraft)
	base.Currencies = mergeLookup(base.Currencies, extra.Currencies)
	return base
}

func mergeLookup(base, extra map[string]string) map[string]string {
	if len(extra) == 0 {
		return base
	}
	if base == nil {
		base = make(map[string]string, len(extra))
	}
	for k, v := range extra {
		if _, exists := base[k]; !exists {
			base[k] = v
		}
	}
	return base
}
