package flight

import "context"

type ErrorCode string

const (
	ErrorCodeValidation      ErrorCode = "VALIDATION"
	ErrorCodeTimeout         ErrorCode = "TIMEOUT"
	ErrorCodeInternalFailure ErrorCode = "INTERNAL_FAILURE"
)

// Leg is one end of an itinerary. Time is the local wall-clock timestamp at
// the airport as an ISO string ("2025-10-01T15:30:00"), never converted to a
// single observer timezone.
type Leg struct {
	City string `json:"city"`
	Code string `json:"code"`
	Time string `json:"time"`
}

type SegmentPoint struct {
	IATACode string `json:"iataCode"`
	At       string `json:"at"`
	Terminal string `json:"terminal,omitempty"`
}

// Segment is one physical aircraft movement.
type Segment struct {
	Departure   SegmentPoint `json:"departure"`
	Arrival     SegmentPoint `json:"arrival"`
	CarrierCode string       `json:"carrierCode"`
	Number      string       `json:"number"`
	Aircraft    string       `json:"aircraft,omitempty"`
	Duration    string       `json:"duration"`
}

// Layover is the gap between two consecutive segments.
type Layover struct {
	Airport  string `json:"airport"`
	Duration int    `json:"duration"` // minutes
}

type Baggage struct {
	Quantity int     `json:"quantity,omitempty"`
	Weight   float64 `json:"weight,omitempty"`
	Unit     string  `json:"unit,omitempty"`
}

// TrueCost breaks the headline price into the fees a traveller actually pays.
// BaseFare always equals the flight's Price.
type TrueCost struct {
	BaseFare         float64 `json:"baseFare"`
	BaggageFee       float64 `json:"baggageFee"`
	SeatSelectionFee float64 `json:"seatSelectionFee"`
	Total            float64 `json:"total"`
}

// Vibe is the aircraft-quality annotation (score 0-10).
type Vibe struct {
	Score       float64 `json:"score"`
	Aircraft    string  `json:"aircraft"`
	Description string  `json:"description"`
}

// Insight holds batch-relative tags attached by the strategist
// ("Cheapest", "Fastest", "Best Vibe", "Smart Deal").
type Insight struct {
	Tags []string `json:"tags"`
}

// Prediction is the legacy predictive-scoring annotation, merged by id
// because the producing stage may reorder or fail partially.
type Prediction struct {
	Trajectory     string `json:"trajectory"`
	Recommendation string `json:"recommendation"`
	Confidence     int    `json:"confidence"`
	Details        string `json:"details"`
}

// Itinerary is the return leg of a round trip, same shape as the outbound.
type Itinerary struct {
	Departure Leg       `json:"departure"`
	Arrival   Leg       `json:"arrival"`
	Duration  string    `json:"duration"`
	Stops     int       `json:"stops"`
	Segments  []Segment `json:"segments"`
	Layovers  []Layover `json:"layovers,omitempty"`
}

// Flight is the canonical normalized offer. Invariants:
// Stops == len(Segments)-1, len(Layovers) == len(Segments)-1, and
// Price == TrueCost.BaseFare when TrueCost is present. A Flight is immutable
// once aggregated; enrichment and analysis stages return copies with the
// additional fields set, since concurrent consumers share the collection.
type Flight struct {
	ID           string      `json:"id"`
	Airline      string      `json:"airline"`
	FlightNumber string      `json:"flightNumber"`
	Departure    Leg         `json:"departure"`
	Arrival      Leg         `json:"arrival"`
	Duration     string      `json:"duration"` // raw token, see ParseDuration
	Stops        int         `json:"stops"`
	Price        float64     `json:"price"`
	CabinClass   string      `json:"class"`
	Segments     []Segment   `json:"segments"`
	Layovers     []Layover   `json:"layovers,omitempty"`
	Baggage      *Baggage    `json:"baggage,omitempty"`
	ReturnFlight *Itinerary  `json:"returnFlight,omitempty"`
	TrueCost     *TrueCost   `json:"trueCost,omitempty"`
	Vibe         *Vibe       `json:"vibe,omitempty"`
	Analysis     *Insight    `json:"analysis,omitempty"`
	Prediction   *Prediction `json:"prediction,omitempty"`
}

// FilterCriteria is the user-chosen constraint set, rebuilt per request.
// Zero values mean "not active": MaxPrice 0 disables the price cap, empty
// slices allow everything, nil windows skip the time-of-day checks.
type FilterCriteria struct {
	MaxPrice           float64  `json:"maxPrice,omitempty"`
	Airlines           []string `json:"airlines,omitempty"`
	Stops              []int    `json:"stops,omitempty"`
	MaxDuration        int      `json:"maxDuration,omitempty"` // minutes
	DepartureWindow    *[2]int  `json:"departureWindow,omitempty"`
	ArrivalWindow      *[2]int  `json:"arrivalWindow,omitempty"`
	HasBaggage         bool     `json:"hasBaggage,omitempty"`
	MaxLayoverDuration int      `json:"maxLayoverDuration,omitempty"`
	ConnectingAirports []string `json:"connectingAirports,omitempty"`
}

// FilterOptions is the selectable filter space derived from an unfiltered
// result set. Histogram index is the local hour of day 0-23, the value the
// minimum observed price in that hour; 0 means no flights in the bucket.
type FilterOptions struct {
	MinPrice           float64   `json:"minPrice"`
	MaxPrice           float64   `json:"maxPrice"`
	Airlines           []string  `json:"airlines"`
	MinDuration        int       `json:"minDuration"`
	MaxDuration        int       `json:"maxDuration"`
	LayoverMin         int       `json:"layoverMin"`
	LayoverMax         int       `json:"layoverMax"`
	ConnectingAirports []string  `json:"connectingAirports"`
	DepartureHistogram []float64 `json:"departureHistogram"`
	ArrivalHistogram   []float64 `json:"arrivalHistogram"`
}

const (
	OpportunitySavings  = "savings"
	OpportunityScarcity = "scarcity"
	OpportunityUpgrade  = "upgrade"
)

type Opportunity struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// FlightAnalysis is the batch statistical summary. MeanPrice is anchored to
// the historical market series when one is available, otherwise it is the
// local batch mean.
type FlightAnalysis struct {
	MeanPrice         float64      `json:"meanPrice"`
	StandardDeviation float64      `json:"standardDeviation"`
	Cheapest          string       `json:"cheapest"`
	Fastest           string       `json:"fastest"`
	BestVibe          string       `json:"bestVibe"`
	Opportunity       *Opportunity `json:"opportunity,omitempty"`
}

// PricePoint is one day of the upstream historical price series.
type PricePoint struct {
	Date  string  `json:"date"` // YYYY-MM-DD
	Price float64 `json:"price"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

const (
	SourceHistory = "history"
	SourceLive    = "live"
)

// MergedPricePoint is a historical point reconciled against live results.
type MergedPricePoint struct {
	Date   string  `json:"date"`
	Price  float64 `json:"price"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Source string  `json:"source"`
}

type Dictionaries struct {
	Airlines   map[string]string `json:"airlines,omitempty"`
	Carriers   map[string]string `json:"carriers,omitempty"`
	Locations  map[string]string `json:"locations,omitempty"`
	Aircraft   map[string]string `json:"aircraft,omitempty"`
	Currencies map[string]string `json:"currencies,omitempty"`
}

// SearchQuery is the validated trip intent plus presentation parameters.
// Only the trip fields participate in the cache signature.
type SearchQuery struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Date        string `json:"date"`
	ReturnDate  string `json:"returnDate,omitempty"`
	Pax         int    `json:"pax,omitempty"`
	Adults      int    `json:"adults,omitempty"`
	Children    int    `json:"children,omitempty"`
	Infants     int    `json:"infants,omitempty"`
	CabinClass  string `json:"cabinClass,omitempty"`
	Currency    string `json:"currency,omitempty"`

	Page  int `json:"page,omitempty"`
	Limit int `json:"limit,omitempty"`

	Filters *FilterCriteria `json:"filters,omitempty"`
	Sort    SortOption      `json:"sort,omitempty"`
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalCount  int  `json:"totalCount"`
	Limit       int  `json:"limit"`
	HasMore     bool `json:"hasMore"`
}

type Metadata struct {
	SearchID     string `json:"searchId"`
	CacheHit     bool   `json:"cacheHit"`
	SearchTimeMs int64  `json:"searchTimeMs"`
}

// SearchResponse is the envelope consumed by presentation. FilterOptions
// always describe the full raw set; FlightAnalysis describes the
// filtered+sorted set, not just the visible page.
type SearchResponse struct {
	Flights        []Flight           `json:"flights"`
	PriceHistory   []MergedPricePoint `json:"priceHistory"`
	Dictionaries   *Dictionaries      `json:"dictionaries,omitempty"`
	FilterOptions  FilterOptions      `json:"filterOptions"`
	Pagination     Pagination         `json:"pagination"`
	FlightAnalysis FlightAnalysis     `json:"flightAnalysis"`
	Metadata       Metadata           `json:"metadata"`
}

// AggregationResult is what the provider fan-out hands the pipeline.
type AggregationResult struct {
	Flights            []Flight      `json:"flights"`
	Dictionaries       *Dictionaries `json:"dictionaries,omitempty"`
	ProvidersQueried   int           `json:"providersQueried"`
	ProvidersSucceeded int           `json:"providersSucceeded"`
	ProvidersFailed    int           `json:"providersFailed"`
}

// cacheEntry is the raw aggregation+enrichment output memoized per signature.
type cacheEntry struct {
	Flights      []Flight      `json:"flights"`
	PriceHistory []PricePoint  `json:"priceHistory"`
	Dictionaries *Dictionaries `json:"dictionaries,omitempty"`
}

// Aggregator fetches and normalizes offers from the configured providers.
type Aggregator interface {
	Search(ctx context.Context, q SearchQuery) (*AggregationResult, error)
}

// HistorySource returns an approximate per-day market price series for a
// route, independent of the live search's exact dates.
type HistorySource interface {
	CheapestDates(ctx context.Context, origin, destination string) ([]PricePoint, error)
}

// Enricher annotates raw flights with trueCost and vibe. Implementations must
// preserve order and the set of ids.
type Enricher interface {
	Enrich(ctx context.Context, flights []Flight) ([]Flight, error)
}

// Annotator attaches batch-relative analysis and the legacy prediction.
// Output may be reordered; the orchestrator merges by id.
type Annotator interface {
	Annotate(ctx context.Context, flights []Flight) ([]Flight, error)
}
