package flight

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"skyspeed/pkg/cache"
	"skyspeed/pkg/idgen"
	"skyspeed/pkg/logger"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Service is the orchestrator: it validates the intent, memoizes the raw
// aggregation+enrichment result per trip signature, and runs the cheap
// facet/filter/sort/paginate/analyze pipeline on every request.
type Service struct {
	aggregator Aggregator
	history    HistorySource
	enricher   Enricher
	annotator  Annotator
	cache      cache.Cache
	ttl        time.Duration
	timeout    time.Duration
	ids        idgen.Generator
	logger     logger.Client
	tracer     trace.Tracer
}

func NewService(
	aggregator Aggregator,
	history HistorySource,
	enricher Enricher,
	annotator Annotator,
	c cache.Cache,
	ttlMinutes int,
	timeoutSeconds int,
	ids idgen.Generator,
	log logger.Client,
) *Service {
	return &Service{
		aggregator: aggregator,
		history:    history,
		enricher:   enricher,
		annotator:  annotator,
		cache:      c,
		ttl:        time.Duration(ttlMinutes) * time.Minute,
		timeout:    time.Duration(timeoutSeconds) * time.Second,
		ids:        ids,
		logger:     log,
		tracer:     otel.Tracer("skyspeed/internal/flight"),
	}
}

// cacheSignature derives the canonical cache key from the trip parameters
// only. Pagination, filters and sort are deliberately excluded: changing the
// page or a filter must hit the same raw result.
func (s *Service) cacheSignature(q SearchQuery) string {
	key := fmt.Sprintf("flight:%s:%s:%s:%s:%d:%s:%s",
		q.Origin,
		q.Destination,
		q.Date,
		q.ReturnDate,
		q.partySize(),
		q.CabinClass,
		q.Currency,
	)

	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("flight:search:%x", hash[:16])
}

func (q SearchQuery) partySize() int {
	if q.Pax > 0 {
		return q.Pax
	}
	if n := q.Adults + q.Children + q.Infants; n > 0 {
		return n
	}
	return 1
}

// Search runs the full pipeline for one request.
func (s *Service) Search(ctx context.Context, q SearchQuery) (*SearchResponse, error) {
	ctx, span := s.tracer.Start(ctx, "flight.Search",
		trace.WithAttributes(
			attribute.String("flight.origin", q.Origin),
			attribute.String("flight.destination", q.Destination),
		))
	defer span.End()

	startTime := time.Now()
	searchID := fmt.Sprintf("SRCH-%d", s.ids.GenerateID())
	page, limit := normalizePagination(q.Page, q.Limit)

	// A missing destination is not an error: it short-circuits to an empty,
	// well-formed result the UI can render.
	if q.Destination == "" {
		s.logger.Warn("search without destination", logger.Field{Key: "search_id", Value: searchID})
		resp := emptyResponse(page, limit)
		resp.Metadata = Metadata{SearchID: searchID, SearchTimeMs: time.Since(startTime).Milliseconds()}
		return resp, nil
	}

	signature := s.cacheSignature(q)
	entry, cacheHit := s.lookup(ctx, signature)
	if !cacheHit {
		s.logger.Info("cache miss, querying providers",
			logger.Field{Key: "search_id", Value: searchID},
			logger.Field{Key: "signature", Value: signature},
		)
		fetched, err := s.fetchUpstream(ctx, q)
		if err != nil {
			return nil, err
		}
		entry = fetched
		s.store(ctx, signature, entry)
	}

	// Facets always describe the full raw set so the UI can widen filters
	// back out; analysis describes everything matching the current filters,
	// not just the visible page.
	facets := ExtractFilters(entry.Flights)

	var criteria FilterCriteria
	if q.Filters != nil {
		criteria = *q.Filters
	}
	filtered := FilterFlights(entry.Flights, criteria)
	sorted := SortFlights(filtered, q.Sort)

	analysis := AnalyzeBatch(sorted, entry.PriceHistory)
	merged := MergeHistory(sorted, entry.PriceHistory)

	totalCount := len(sorted)
	totalPages := 0
	if totalCount > 0 {
		totalPages = (totalCount + limit - 1) / limit
	}
	pageFlights := []Flight{}
	if offset := (page - 1) * limit; offset < totalCount {
		end := offset + limit
		if end > totalCount {
			end = totalCount
		}
		pageFlights = sorted[offset:end]
	}

	return &SearchResponse{
		Flights:       pageFlights,
		PriceHistory:  merged,
		Dictionaries:  entry.Dictionaries,
		FilterOptions: facets,
		Pagination: Pagination{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalCount:  totalCount,
			Limit:       limit,
			HasMore:     page < totalPages,
		},
		FlightAnalysis: analysis,
		Metadata: Metadata{
			SearchID:     searchID,
			CacheHit:     cacheHit,
			SearchTimeMs: time.Since(startTime).Milliseconds(),
		},
	}, nil
}

// fetchUpstream issues the two network calls in parallel, then runs the two
// annotation stages settle-all: a failure in either only omits its
// annotation, never drops the flights.
func (s *Service) fetchUpstream(ctx context.Context, q SearchQuery) (*cacheEntry, error) {
	ctx, span := s.tracer.Start(ctx, "flight.fetchUpstream")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type aggOut struct {
		result *AggregationResult
		err    error
	}
	type histOut struct {
		points []PricePoint
		err    error
	}
	aggCh := make(chan aggOut, 1)
	histCh := make(chan histOut, 1)

	go func() {
		result, err := s.aggregator.Search(ctx, q)
		aggCh <- aggOut{result: result, err: err}
	}()
	go func() {
		points, err := s.history.CheapestDates(ctx, q.Origin, q.Destination)
		histCh <- histOut{points: points, err: err}
	}()

	agg := <-aggCh
	hist := <-histCh

	if agg.err != nil {
		return nil, fmt.Errorf("aggregation failed: %w", agg.err)
	}

	history := hist.points
	if hist.err != nil {
		// Results still render without a price graph.
		s.logger.Warn("history fetch failed, continuing without series",
			logger.Field{Key: "err", Value: hist.err.Error()})
		history = []PricePoint{}
	}

	raw := agg.result.Flights

	type settled struct {
		flights []Flight
		err     error
	}
	enrichCh := make(chan settled, 1)
	annotateCh := make(chan settled, 1)

	go func() {
		flights, err := s.enricher.Enrich(ctx, raw)
		enrichCh <- settled{flights: flights, err: err}
	}()
	go func() {
		flights, err := s.annotator.Annotate(ctx, raw)
		annotateCh <- settled{flights: flights, err: err}
	}()

	flights := raw
	if e := <-enrichCh; e.err == nil {
		flights = e.flights
	} else {
		s.logger.Error("enricher failed", logger.Field{Key: "err", Value: e.err.Error()})
	}

	if a := <-annotateCh; a.err == nil {
		flights = mergeAnnotations(flights, a.flights)
	} else {
		s.logger.Error("annotator failed", logger.Field{Key: "err", Value: a.err.Error()})
	}

	return &cacheEntry{
		Flights:      flights,
		PriceHistory: history,
		Dictionaries: agg.result.Dictionaries,
	}, nil
}

// mergeAnnotations merges by id lookup, not position: the annotating stage
// may reorder or partially fail.
func mergeAnnotations(base, annotated []Flight) []Flight {
	byID := make(map[string]Flight, len(annotated))
	for _, f := range annotated {
		byID[f.ID] = f
	}

	merged := make([]Flight, len(base))
	for i, f := range base {
		if a, ok := byID[f.ID]; ok {
			f.Analysis = a.Analysis
			f.Prediction = a.Prediction
		}
		merged[i] = f
	}
	return merged
}

func (s *Service) lookup(ctx context.Context, signature string) (*cacheEntry, bool) {
	cached, err := s.cache.Get(ctx, signature)
	if err != nil || cached == "" {
		return nil, false
	}

	var entry cacheEntry
	if err := json.Unmarshal([]byte(cached), &entry); err != nil {
		s.logger.Error("failed to unmarshal cached entry",
			logger.Field{Key: "err", Value: err.Error()},
			logger.Field{Key: "signature", Value: signature},
		)
		return nil, false
	}
	return &entry, true
}

func (s *Service) store(ctx context.Context, signature string, entry *cacheEntry) {
	payload, err := json.Marshal(entry)
	if err != nil {
		s.logger.Error("failed to marshal cache entry", logger.Field{Key: "err", Value: err.Error()})
		return
	}
	if err := s.cache.Set(ctx, signature, string(payload), s.ttl); err != nil {
		s.logger.Error("failed to cache search results",
			logger.Field{Key: "err", Value: err.Error()},
			logger.Field{Key: "signature", Value: signature},
		)
	}
}

// TrendsResponse feeds the price-trends graph for a route.
type TrendsResponse struct {
	PriceHistory  []MergedPricePoint `json:"priceHistory"`
	MarketAverage float64            `json:"marketAverage"`
	Intraday      []IntradayMetric   `json:"intraday"`
}

// Trends returns the merged market series for a route. Live flights from a
// still-cached search for the same trip sharpen the series and fill the
// intraday view; otherwise the raw history stands alone.
func (s *Service) Trends(ctx context.Context, q SearchQuery) (*TrendsResponse, error) {
	if q.Origin == "" || q.Destination == "" {
		return nil, NewAppError(400, ErrorCodeValidation, "origin and destination are required")
	}

	points, err := s.history.CheapestDates(ctx, q.Origin, q.Destination)
	if err != nil {
		return nil, fmt.Errorf("history fetch failed: %w", err)
	}

	var live []Flight
	if entry, ok := s.lookup(ctx, s.cacheSignature(q)); ok {
		live = entry.Flights
	}

	merged := MergeHistory(live, points)
	return &TrendsResponse{
		PriceHistory:  merged,
		MarketAverage: MarketAverage(merged),
		Intraday:      IntradayMetrics(live),
	}, nil
}

// InvalidateCache drops the memoized raw result for one trip signature.
func (s *Service) InvalidateCache(ctx context.Context, q SearchQuery) error {
	signature := s.cacheSignature(q)
	s.logger.Info("invalidating cache", logger.Field{Key: "signature", Value: signature})
	return s.cache.Del(ctx, signature)
}

func normalizePagination(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func emptyResponse(page, limit int) *SearchResponse {
	return &SearchResponse{
		Flights:       []Flight{},
		PriceHistory:  []MergedPricePoint{},
		FilterOptions: DefaultFilterOptions(),
		Pagination: Pagination{
			CurrentPage: page,
			Limit:       limit,
		},
	}
}
