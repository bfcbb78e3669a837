package flight

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skyspeed/pkg/cache"
	"skyspeed/pkg/logger"
)

type fakeAggregator struct {
	flights []Flight
	err     error
	calls   int
}

func (f *fakeAggregator) Search(_ context.Context, _ SearchQuery) (*AggregationResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &AggregationResult{
		Flights:            f.flights,
		ProvidersQueried:   1,
		ProvidersSucceeded: 1,
	}, nil
}

type fakeHistory struct {
	points []PricePoint
	err    error
	calls  int
}

func (f *fakeHistory) CheapestDates(_ context.Context, _, _ string) ([]PricePoint, error) {
	f.calls++
	return f.points, f.err
}

type fakeEnricher struct {
	err error
}

func (f *fakeEnricher) Enrich(_ context.Context, flights []Flight) ([]Flight, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]Flight, len(flights))
	for i, fl := range flights {
		fl.Vibe = &Vibe{Score: 8, Aircraft: "Test Aircraft"}
		out[i] = fl
	}
	return out, nil
}

type fakeAnnotator struct {
	err error
}

func (f *fakeAnnotator) Annotate(_ context.Context, flights []Flight) ([]Flight, error) {
	if f.err != nil {
		return nil, f.err
	}
	// Reversed on purpose: the orchestrator must merge by id, not position.
	out := make([]Flight, 0, len(flights))
	for i := len(flights) - 1; i >= 0; i-- {
		fl := flights[i]
		fl.Analysis = &Insight{Tags: []string{"tagged"}}
		out = append(out, fl)
	}
	return out, nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...logger.Field) {}
func (nopLogger) Info(string, ...logger.Field)  {}
func (nopLogger) Warn(string, ...logger.Field)  {}
func (nopLogger) Error(string, ...logger.Field) {}

type fakeIDs struct{ next int64 }

func (f *fakeIDs) GenerateID() int64 {
	f.next++
	return f.next
}

func serviceFixture() []Flight {
	flights := make([]Flight, 0, 5)
	for i := 1; i <= 5; i++ {
		flights = append(flights, Flight{
			ID:        fmt.Sprintf("f%d", i),
			Airline:   "GA",
			Departure: Leg{Code: "CGK", Time: fmt.Sprintf("2025-10-01T%02d:00:00", 5+i)},
			Arrival:   Leg{Code: "NRT", Time: fmt.Sprintf("2025-10-01T%02d:00:00", 13+i)},
			Duration:  "8h",
			Price:     float64(400 + 50*i),
		})
	}
	return flights
}

func newTestService(agg *fakeAggregator, hist *fakeHistory) *Service {
	return NewService(agg, hist, &fakeEnricher{}, &fakeAnnotator{},
		cache.NewMemoryCache(0), 60, 5, &fakeIDs{}, nopLogger{})
}

func TestSearch_MissingDestinationShortCircuits(t *testing.T) {
	agg := &fakeAggregator{flights: serviceFixture()}
	hist := &fakeHistory{}
	svc := newTestService(agg, hist)

	resp, err := svc.Search(context.Background(), SearchQuery{Origin: "CGK"})
	require.NoError(t, err)

	assert.Empty(t, resp.Flights)
	assert.Empty(t, resp.PriceHistory)
	assert.Equal(t, float64(1000), resp.FilterOptions.MaxPrice)
	assert.NotEmpty(t, resp.Metadata.SearchID)
	assert.Equal(t, 0, agg.calls, "providers are never queried")
}

func TestSearch_FullPipeline(t *testing.T) {
	agg := &fakeAggregator{flights: serviceFixture()}
	hist := &fakeHistory{points: []PricePoint{{Date: "2025-10-01", Price: 600, Min: 550, Max: 700}}}
	svc := newTestService(agg, hist)

	resp, err := svc.Search(context.Background(), SearchQuery{
		Origin: "CGK", Destination: "NRT", Date: "2025-10-01",
	})
	require.NoError(t, err)

	require.Len(t, resp.Flights, 5)
	assert.Equal(t, "f1", resp.Flights[0].ID, "default sort is price ascending")
	assert.False(t, resp.Metadata.CacheHit)
	assert.Contains(t, resp.Metadata.SearchID, "SRCH-")

	// Enrichment and annotation both landed despite the annotator reordering.
	require.NotNil(t, resp.Flights[0].Vibe)
	require.NotNil(t, resp.Flights[0].Analysis)
	assert.Equal(t, []string{"tagged"}, resp.Flights[0].Analysis.Tags)

	require.Len(t, resp.PriceHistory, 1)
	assert.Equal(t, SourceLive, resp.PriceHistory[0].Source)
	assert.Equal(t, float64(450), resp.PriceHistory[0].Price)

	assert.Equal(t, "f1", resp.FlightAnalysis.Cheapest)
}

func TestSearch_CacheHitAcrossPages(t *testing.T) {
	agg := &fakeAggregator{flights: serviceFixture()}
	hist := &fakeHistory{}
	svc := newTestService(agg, hist)

	q := SearchQuery{Origin: "CGK", Destination: "NRT", Date: "2025-10-01", Page: 1, Limit: 2}
	first, err := svc.Search(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, first.Metadata.CacheHit)

	// Pagination, filters and sort are excluded from the signature, so a
	// different page reuses the memoized raw result.
	q.Page = 2
	second, err := svc.Search(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, second.Metadata.CacheHit)
	assert.Equal(t, 1, agg.calls)
	assert.Equal(t, 1, hist.calls)

	q.Sort = SortDurationAsc
	q.Filters = &FilterCriteria{MaxPrice: 600}
	third, err := svc.Search(context.Background(), q)
	require.NoError(t, err)
	assert.True(t, third.Metadata.CacheHit)
	assert.Equal(t, 1, agg.calls)
}

func TestSearch_DifferentTripMissesCache(t *testing.T) {
	agg := &fakeAggregator{flights: serviceFixture()}
	svc := newTestService(agg, &fakeHistory{})

	q := SearchQuery{Origin: "CGK", Destination: "NRT", Date: "2025-10-01"}
	_, err := svc.Search(context.Background(), q)
	require.NoError(t, err)

	q.Date = "2025-10-02"
	_, err = svc.Search(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 2, agg.calls)
}

func TestSearch_PaginationEnvelope(t *testing.T) {
	agg := &fakeAggregator{flights: serviceFixture()}
	svc := newTestService(agg, &fakeHistory{})

	resp, err := svc.Search(context.Background(), SearchQuery{
		Origin: "CGK", Destination: "NRT", Date: "2025-10-01", Page: 2, Limit: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"f3", "f4"}, ids(resp.Flights))
	assert.Equal(t, 2, resp.Pagination.CurrentPage)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.Equal(t, 5, resp.Pagination.TotalCount)
	assert.True(t, resp.Pagination.HasMore)

	resp, err = svc.Search(context.Background(), SearchQuery{
		Origin: "CGK", Destination: "NRT", Date: "2025-10-01", Page: 3, Limit: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"f5"}, ids(resp.Flights))
	assert.False(t, resp.Pagination.HasMore)

	resp, err = svc.Search(context.Background(), SearchQuery{
		Origin: "CGK", Destination: "NRT", Date: "2025-10-01", Page: 9, Limit: 2,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Flights)
	assert.Equal(t, 5, resp.Pagination.TotalCount)
}

// Facets always describe the full raw set; analysis follows the active
// filters.
func TestSearch_FacetsFromRawAnalysisFromFiltered(t *testing.T) {
	agg := &fakeAggregator{flights: serviceFixture()}
	svc := newTestService(agg, &fakeHistory{})

	resp, err := svc.Search(context.Background(), SearchQuery{
		Origin: "CGK", Destination: "NRT", Date: "2025-10-01",
		Filters: &FilterCriteria{MaxPrice: 500},
	})
	require.NoError(t, err)

	assert.Equal(t, float64(650), resp.FilterOptions.MaxPrice, "facet bounds ignore the active filter")
	assert.Equal(t, 2, resp.Pagination.TotalCount)
	assert.InDelta(t, 475, resp.FlightAnalysis.MeanPrice, 0.01, "analysis covers only matching flights")
}

func TestSearch_AggregationFailurePropagates(t *testing.T) {
	agg := &fakeAggregator{err: errors.New("all providers down")}
	svc := newTestService(agg, &fakeHistory{})

	_, err := svc.Search(context.Background(), SearchQuery{Origin: "CGK", Destination: "NRT"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "aggregation failed")
}

func TestSearch_HistoryFailureTolerated(t *testing.T) {
	agg := &fakeAggregator{flights: serviceFixture()}
	hist := &fakeHistory{err: errors.New("quota exceeded")}
	svc := newTestService(agg, hist)

	resp, err := svc.Search(context.Background(), SearchQuery{Origin: "CGK", Destination: "NRT"})
	require.NoError(t, err)
	assert.Len(t, resp.Flights, 5)
	assert.Empty(t, resp.PriceHistory)
}

func TestSearch_EnricherFailureKeepsRawFlights(t *testing.T) {
	agg := &fakeAggregator{flights: serviceFixture()}
	svc := NewService(agg, &fakeHistory{}, &fakeEnricher{err: errors.New("boom")}, &fakeAnnotator{},
		cache.NewMemoryCache(0), 60, 5, &fakeIDs{}, nopLogger{})

	resp, err := svc.Search(context.Background(), SearchQuery{Origin: "CGK", Destination: "NRT"})
	require.NoError(t, err)
	require.Len(t, resp.Flights, 5)
	assert.Nil(t, resp.Flights[0].Vibe)
	assert.NotNil(t, resp.Flights[0].Analysis, "annotation still applied")
}

func TestSearch_AnnotatorFailureKeepsEnrichedFlights(t *testing.T) {
	agg := &fakeAggregator{flights: serviceFixture()}
	svc := NewService(agg, &fakeHistory{}, &fakeEnricher{}, &fakeAnnotator{err: errors.New("boom")},
		cache.NewMemoryCache(0), 60, 5, &fakeIDs{}, nopLogger{})

	resp, err := svc.Search(context.Background(), SearchQuery{Origin: "CGK", Destination: "NRT"})
	require.NoError(t, err)
	require.Len(t, resp.Flights, 5)
	assert.NotNil(t, resp.Flights[0].Vibe)
	assert.Nil(t, resp.Flights[0].Analysis)
}

func TestTrends_RequiresRoute(t *testing.T) {
	svc := newTestService(&fakeAggregator{}, &fakeHistory{})

	_, err := svc.Trends(context.Background(), SearchQuery{Origin: "CGK"})
	require.Error(t, err)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.Equal(t, ErrorCodeValidation, appErr.Code)
}

func TestTrends_MergesCachedLiveFlights(t *testing.T) {
	agg := &fakeAggregator{flights: serviceFixture()}
	hist := &fakeHistory{points: []PricePoint{
		{Date: "2025-10-01", Price: 800, Min: 750, Max: 880},
		{Date: "2025-10-05", Price: 700, Min: 650, Max: 760},
	}}
	svc := newTestService(agg, hist)

	q := SearchQuery{Origin: "CGK", Destination: "NRT", Date: "2025-10-01"}
	_, err := svc.Search(context.Background(), q)
	require.NoError(t, err)

	trends, err := svc.Trends(context.Background(), q)
	require.NoError(t, err)

	require.Len(t, trends.PriceHistory, 2)
	assert.Equal(t, SourceLive, trends.PriceHistory[0].Source)
	assert.Equal(t, float64(450), trends.PriceHistory[0].Price)
	assert.Equal(t, SourceHistory, trends.PriceHistory[1].Source)
	assert.InDelta(t, 575, trends.MarketAverage, 0.01)
	assert.NotEmpty(t, trends.Intraday)
}

func TestTrends_WithoutCachedSearch(t *testing.T) {
	hist := &fakeHistory{points: []PricePoint{{Date: "2025-10-01", Price: 800}}}
	svc := newTestService(&fakeAggregator{}, hist)

	trends, err := svc.Trends(context.Background(), SearchQuery{Origin: "CGK", Destination: "NRT"})
	require.NoError(t, err)

	require.Len(t, trends.PriceHistory, 1)
	assert.Equal(t, SourceHistory, trends.PriceHistory[0].Source)
	assert.Empty(t, trends.Intraday)
}

func TestInvalidateCache(t *testing.T) {
	agg := &fakeAggregator{flights: serviceFixture()}
	svc := newTestService(agg, &fakeHistory{})

	q := SearchQuery{Origin: "CGK", Destination: "NRT", Date: "2025-10-01"}
	_, err := svc.Search(context.Background(), q)
	require.NoError(t, err)

	require.NoError(t, svc.InvalidateCache(context.Background(), q))

	resp, err := svc.Search(context.Background(), q)
	require.NoError(t, err)
	assert.False(t, resp.Metadata.CacheHit)
	assert.Equal(t, 2, agg.calls)
}
