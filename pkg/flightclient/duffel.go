package flightclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"skyspeed/internal/flight"
	"skyspeed/pkg/logger"
	"skyspeed/pkg/ratelimit"
)

// DuffelClient talks to the Duffel offer request API.
type DuffelClient struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
	limiter    *ratelimit.ProviderLimiter
	logger     logger.Client
}

func NewDuffelClient(httpClient *http.Client, baseURL, apiToken string,
	limiter *ratelimit.ProviderLimiter, logger logger.Client) *DuffelClient {
	return &DuffelClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiToken:   apiToken,
		limiter:    limiter,
		logger:     logger,
	}
}

type duffelOfferRequest struct {
	Data duffelOfferRequestData `json:"data"`
}

type duffelOfferRequestData struct {
	Slices       []duffelSlice     `json:"slices"`
	Passengers   []duffelPassenger `json:"passengers"`
	CabinClass   string            `json:"cabin_class"`
	ReturnOffers bool              `json:"return_offers"`
}

type duffelSlice struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
}

type duffelPassenger struct {
	Type string `json:"type"`
}

type duffelOfferResponse struct {
	Data struct {
		Offers []duffelOffer `json:"offers"`
	} `json:"data"`
}

type duffelOffer struct {
	ID          string             `json:"id"`
	Owner       duffelCarrier      `json:"owner"`
	TotalAmount string             `json:"total_amount"`
	CabinClass  string             `json:"cabin_class"`
	Slices      []duffelOfferSlice `json:"slices"`
}

type duffelCarrier struct {
	IATACode string `json:"iata_code"`
	Name     string `json:"name"`
}

type duffelOfferSlice struct {
	Duration string          `json:"duration"` // ISO 8601
	Segments []duffelSegment `json:"segments"`
}

type duffelSegment struct {
	Origin                       duffelPlace     `json:"origin"`
	Destination                  duffelPlace     `json:"destination"`
	DepartingAt                  string          `json:"departing_at"`
	ArrivingAt                   string          `json:"arriving_at"`
	OriginTerminal               string          `json:"origin_terminal,omitempty"`
	DestinationTerminal          string          `json:"destination_terminal,omitempty"`
	OperatingCarrier             duffelCarrier   `json:"operating_carrier"`
	OperatingCarrierFlightNumber string          `json:"operating_carrier_flight_number"`
	Aircraft                     *duffelAircraft `json:"aircraft,omitempty"`
	Duration                     string          `json:"duration"`
}

type duffelPlace struct {
	IATACode string `json:"iata_code"`
}

type duffelAircraft struct {
	IATACode string `json:"iata_code"`
}

func (d *DuffelClient) SearchOffers(ctx context.Context, q flight.SearchQuery) ([]flight.Flight, *flight.Dictionaries, error) {
	if err := d.limiter.Wait(ctx, "duffel"); err != nil {
		return nil, nil, err
	}

	slices := []duffelSlice{{
		Origin:        strings.ToUpper(q.Origin),
		Destination:   strings.ToUpper(q.Destination),
		DepartureDate: q.Date,
	}}
	if q.ReturnDate != "" {
		slices = append(slices, duffelSlice{
			Origin:        strings.ToUpper(q.Destination),
			Destination:   strings.ToUpper(q.Origin),
			DepartureDate: q.ReturnDate,
		})
	}

	adults := q.Adults
	if adults == 0 {
		adults = q.Pax
	}
	if adults == 0 {
		adults = 1
	}
	passengers := make([]duffelPassenger, adults)
	for i := range passengers {
		passengers[i] = duffelPassenger{Type: "adult"}
	}

	cabin := "economy"
	if q.CabinClass != "" {
		cabin = strings.ToLower(q.CabinClass)
	}

	payload, err := json.Marshal(duffelOfferRequest{
		Data: duffelOfferRequestData{
			Slices:       slices,
			Passengers:   passengers,
			CabinClass:   cabin,
			ReturnOffers: true,
		},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode duffel request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/air/offer_requests?return_offers=true", d.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build duffel request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.apiToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Duffel-Version", "v2")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("duffel api call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, nil, fmt.Errorf("duffel api returned non-2xx status: %d", resp.StatusCode)
	}

	var apiResp duffelOfferResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, nil, fmt.Errorf("failed to decode duffel response: %w", err)
	}

	flights := make([]flight.Flight, 0, len(apiResp.Data.Offers))
	for _, offer := range apiResp.Data.Offers {
		mapped, ok := d.mapOffer(offer)
		if !ok {
			continue
		}
		flights = append(flights, mapped)
	}

	flights = dedupeFlights(flights)

	return flights, buildDictionaries(flights), nil
}

func (d *DuffelClient) mapOffer(offer duffelOffer) (flight.Flight, bool) {
	if len(offer.Slices) == 0 || len(offer.Slices[0].Segments) == 0 {
		return flight.Flight{}, false
	}

	outbound := offer.Slices[0]
	segments := mapDuffelSegments(outbound.Segments)
	first := segments[0]
	last := segments[len(segments)-1]

	price, err := strconv.ParseFloat(offer.TotalAmount, 64)
	if err != nil {
		d.logger.Warn("skipping duffel offer with unparsable price",
			logger.Field{Key: "offer_id", Value: offer.ID},
			logger.Field{Key: "total_amount", Value: offer.TotalAmount})
		return flight.Flight{}, false
	}

	cabin := offer.CabinClass
	if cabin == "" {
		cabin = "economy"
	}

	mapped := flight.Flight{
		ID:           offer.ID,
		Airline:      offer.Owner.IATACode,
		FlightNumber: first.CarrierCode + first.Number,
		Departure: flight.Leg{
			City: first.Departure.IATACode,
			Code: first.Departure.IATACode,
			Time: first.Departure.At,
		},
		Arrival: flight.Leg{
			City: last.Arrival.IATACode,
			Code: last.Arrival.IATACode,
			Time: last.Arrival.At,
		},
		Duration:   normalizeDurationToken(outbound.Duration),
		Stops:      len(segments) - 1,
		Price:      price,
		CabinClass: cabin,
		Segments:   segments,
		Layovers:   computeLayovers(segments),
	}

	if len(offer.Slices) > 1 && len(offer.Slices[1].Segments) > 0 {
		ret := offer.Slices[1]
		retSegments := mapDuffelSegments(ret.Segments)
		retFirst := retSegments[0]
		retLast := retSegments[len(retSegments)-1]
		mapped.ReturnFlight = &flight.Itinerary{
			Departure: flight.Leg{
				City: retFirst.Departure.IATACode,
				Code: retFirst.Departure.IATACode,
				Time: retFirst.Departure.At,
			},
			Arrival: flight.Leg{
				City: retLast.Arrival.IATACode,
				Code: retLast.Arrival.IATACode,
				Time: retLast.Arrival.At,
			},
			Duration: normalizeDurationToken(ret.Duration),
			Stops:    len(retSegments) - 1,
			Segments: retSegments,
			Layovers: computeLayovers(retSegments),
		}
	}

	return mapped, true
}

func mapDuffelSegments(segs []duffelSegment) []flight.Segment {
	mapped := make([]flight.Segment, 0, len(segs))
	for _, seg := range segs {
		aircraft := ""
		if seg.Aircraft != nil {
			aircraft = seg.Aircraft.IATACode
		}
		mapped = append(mapped, flight.Segment{
			Departure: flight.SegmentPoint{
				IATACode: seg.Origin.IATACode,
				At:       seg.DepartingAt,
				Terminal: seg.OriginTerminal,
			},
			Arrival: flight.SegmentPoint{
				IATACode: seg.Destination.IATACode,
				At:       seg.ArrivingAt,
				Terminal: seg.DestinationTerminal,
			},
			CarrierCode: seg.OperatingCarrier.IATACode,
			Number:      seg.OperatingCarrierFlightNumber,
			Aircraft:    aircraft,
			Duration:    normalizeDurationToken(seg.Duration),
		})
	}
	return mapped
}

// buildDictionaries derives airline and location lookups from the mapped
// flights. Duffel offers are self-contained, there is no response-level
// dictionary block to pass through.
func buildDictionaries(flights []flight.Flight) *flight.Dictionaries {
	if len(flights) == 0 {
		return nil
	}
	airlines := make(map[string]string)
	locations := make(map[string]string)
	for _, f := range flights {
		airlines[f.Airline] = f.Airline
		locations[f.Departure.Code] = f.Departure.City
		locations[f.Arrival.Code] = f.Arrival.City
		for _, s := range f.Segments {
			airlines[s.CarrierCode] = s.CarrierCode
			locations[s.Departure.IATACode] = s.Departure.IATACode
			locations[s.Arrival.IATACode] = s.Arrival.IATACode
		}
	}
	return &flight.Dictionaries{
		Airlines:  airlines,
		Locations: locations,
	}
}
