package flightclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"skyspeed/internal/flight"
	"skyspeed/pkg/logger"
	"skyspeed/pkg/ratelimit"
)

// AmadeusClient talks to the Amadeus self-service flight offers API.
type AmadeusClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *ratelimit.ProviderLimiter
	logger     logger.Client
}

func NewAmadeusClient(httpClient *http.Client, baseURL, apiKey string,
	limiter *ratelimit.ProviderLimiter, logger logger.Client) *AmadeusClient {
	return &AmadeusClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    limiter,
		logger:     logger,
	}
}

type amadeusOfferResponse struct {
	Data         []amadeusOffer       `json:"data"`
	Dictionaries *amadeusDictionaries `json:"dictionaries,omitempty"`
}

type amadeusOffer struct {
	ID               string                   `json:"id"`
	Itineraries      []amadeusItinerary       `json:"itineraries"`
	Price            amadeusPrice             `json:"price"`
	TravelerPricings []amadeusTravelerPricing `json:"travelerPricings,omitempty"`
}

type amadeusItinerary struct {
	Duration string           `json:"duration"` // ISO 8601, "PT7H30M"
	Segments []amadeusSegment `json:"segments"`
}

type amadeusSegment struct {
	Departure   amadeusPoint     `json:"departure"`
	Arrival     amadeusPoint     `json:"arrival"`
	CarrierCode string           `json:"carrierCode"`
	Number      string           `json:"number"`
	Aircraft    *amadeusAircraft `json:"aircraft,omitempty"`
	Duration    string           `json:"duration"`
}

type amadeusPoint struct {
	IATACode string `json:"iataCode"`
	At       string `json:"at"` // local wall-clock ISO, no offset
	Terminal string `json:"terminal,omitempty"`
}

type amadeusAircraft struct {
	Code string `json:"code"`
}

type amadeusPrice struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type amadeusTravelerPricing struct {
	FareDetailsBySegment []amadeusFareDetails `json:"fareDetailsBySegment,omitempty"`
}

type amadeusFareDetails struct {
	IncludedCheckedBags *amadeusCheckedBags `json:"includedCheckedBags,omitempty"`
}

type amadeusCheckedBags struct {
	Quantity   int     `json:"quantity,omitempty"`
	Weight     float64 `json:"weight,omitempty"`
	WeightUnit string  `json:"weightUnit,omitempty"`
}

type amadeusDictionaries struct {
	Carriers   map[string]string          `json:"carriers,omitempty"`
	Aircraft   map[string]string          `json:"aircraft,omitempty"`
	Currencies map[string]string          `json:"currencies,omitempty"`
	Locations  map[string]amadeusLocation `json:"locations,omitempty"`
}

type amadeusLocation struct {
	CityCode    string `json:"cityCode"`
	CountryCode string `json:"countryCode"`
}

func (a *AmadeusClient) SearchOffers(ctx context.Context, q flight.SearchQuery) ([]flight.Flight, *flight.Dictionaries, error) {
	if err := a.limiter.Wait(ctx, "amadeus"); err != nil {
		return nil, nil, err
	}

	params := url.Values{}
	params.Set("originLocationCode", strings.ToUpper(q.Origin))
	params.Set("destinationLocationCode", strings.ToUpper(q.Destination))
	params.Set("departureDate", q.Date)
	if q.ReturnDate != "" {
		params.Set("returnDate", q.ReturnDate)
	}
	adults := q.Adults
	if adults == 0 {
		adults = q.Pax
	}
	if adults == 0 {
		adults = 1
	}
	params.Set("adults", strconv.Itoa(adults))
	if q.Children > 0 {
		params.Set("children", strconv.Itoa(q.Children))
	}
	if q.Infants > 0 {
		params.Set("infants", strconv.Itoa(q.Infants))
	}
	travelClass := "ECONOMY"
	if q.CabinClass != "" {
		travelClass = strings.ToUpper(q.CabinClass)
	}
	params.Set("travelClass", travelClass)
	params.Set("max", "50")

	reqURL := fmt.Sprintf("%s/v2/shopping/flight-offers?%s", a.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build amadeus request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("amadeus api call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("amadeus api returned non-200 status: %d", resp.StatusCode)
	}

	var apiResp amadeusOfferResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, nil, fmt.Errorf("failed to decode amadeus response: %w", err)
	}

	flights := make([]flight.Flight, 0, len(apiResp.Data))
	for _, offer := range apiResp.Data {
		mapped, ok := a.mapOffer(offer, q)
		if !ok {
			continue
		}
		flights = append(flights, mapped)
	}

	flights = dedupeFlights(flights)
	flights = filterSameCarrierReturns(flights)

	return flights, mapAmadeusDictionaries(apiResp.Dictionaries), nil
}

func (a *AmadeusClient) mapOffer(offer amadeusOffer, q flight.SearchQuery) (flight.Flight, bool) {
	if len(offer.Itineraries) == 0 || len(offer.Itineraries[0].Segments) == 0 {
		return flight.Flight{}, false
	}

	outbound := offer.Itineraries[0]
	segments := mapAmadeusSegments(outbound.Segments)
	first := segments[0]
	last := segments[len(segments)-1]

	price, err := strconv.ParseFloat(offer.Price.Total, 64)
	if err != nil {
		a.logger.Warn("skipping amadeus offer with unparsable price",
			logger.Field{Key: "offer_id", Value: offer.ID},
			logger.Field{Key: "total", Value: offer.Price.Total})
		return flight.Flight{}, false
	}

	cabin := q.CabinClass
	if cabin == "" {
		cabin = "economy"
	}

	mapped := flight.Flight{
		ID:           offer.ID,
		Airline:      first.CarrierCode,
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
		Baggage:    mapAmadeusBaggage(offer.TravelerPricings),
	}

	if len(offer.Itineraries) > 1 && len(offer.Itineraries[1].Segments) > 0 {
		ret := offer.Itineraries[1]
		retSegments := mapAmadeusSegments(ret.Segments)
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

func mapAmadeusSegments(segs []amadeusSegment) []flight.Segment {
	mapped := make([]flight.Segment, 0, len(segs))
	for _, seg := range segs {
		aircraft := ""
		if seg.Aircraft != nil {
			aircraft = seg.Aircraft.Code
		}
		mapped = append(mapped, flight.Segment{
			Departure: flight.SegmentPoint{
				IATACode: seg.Departure.IATACode,
				At:       seg.Departure.At,
				Terminal: seg.Departure.Terminal,
			},
			Arrival: flight.SegmentPoint{
				IATACode: seg.Arrival.IATACode,
				At:       seg.Arrival.At,
				Terminal: seg.Arrival.Terminal,
			},
			CarrierCode: seg.CarrierCode,
			Number:      seg.Number,
			Aircraft:    aircraft,
			Duration:    normalizeDurationToken(seg.Duration),
		})
	}
	return mapped
}

func mapAmadeusBaggage(pricings []amadeusTravelerPricing) *flight.Baggage {
	if len(pricings) == 0 || len(pricings[0].FareDetailsBySegment) == 0 {
		return nil
	}
	bags := pricings[0].FareDetailsBySegment[0].IncludedCheckedBags
	if bags == nil {
		return nil
	}
	return &flight.Baggage{
		Quantity: bags.Quantity,
		Weight:   bags.Weight,
		Unit:     bags.WeightUnit,
	}
}

func mapAmadeusDictionaries(dicts *amadeusDictionaries) *flight.Dictionaries {
	if dicts == nil {
		return nil
	}
	out := &flight.Dictionaries{
		Carriers:   dicts.Carriers,
		Aircraft:   dicts.Aircraft,
		Currencies: dicts.Currencies,
	}
	if len(dicts.Locations) > 0 {
		out.Locations = make(map[string]string, len(dicts.Locations))
		for code, loc := range dicts.Locations {
			out.Locations[code] = loc.CityCode
		}
	}
	return out
}

// normalizeDurationToken rewrites "PT7H30M" as "7h30m". Unparsable tokens pass
// through untouched, downstream parsing treats them as zero.
func normalizeDurationToken(token string) string {
	if token == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(token, "PT"))
}

// computeLayovers derives the ground gaps between consecutive segments from
// their wall-clock timestamps.
func computeLayovers(segments []flight.Segment) []flight.Layover {
	if len(segments) < 2 {
		return nil
	}
	layovers := make([]flight.Layover, 0, len(segments)-1)
	for i := 0; i < len(segments)-1; i++ {
		arr := parseWhen(segments[i].Arrival.At)
		dep := parseWhen(segments[i+1].Departure.At)
		minutes := 0
		if !arr.IsZero() && !dep.IsZero() {
			minutes = int(dep.Sub(arr).Minutes())
		}
		layovers = append(layovers, flight.Layover{
			Airport:  segments[i].Arrival.IATACode,
			Duration: minutes,
		})
	}
	return layovers
}

var whenLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseWhen(iso string) time.Time {
	for _, layout := range whenLayouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return t
		}
	}
	return time.Time{}
}

// dedupeFlights drops offers that repeat the same carrier, flight number and
// departure time. Providers frequently return fare-bucket duplicates.
func dedupeFlights(flights []flight.Flight) []flight.Flight {
	seen := make(map[string]struct{}, len(flights))
	out := flights[:0]
	for _, f := range flights {
		signature := fmt.Sprintf("%s-%s-%s", f.Airline, f.FlightNumber, f.Departure.Time)
		if _, dup := seen[signature]; dup {
			continue
		}
		seen[signature] = struct{}{}
		out = append(out, f)
	}
	return out
}

// filterSameCarrierReturns keeps round trips only when the return leg is flown
// by the outbound carrier.
func filterSameCarrierReturns(flights []flight.Flight) []flight.Flight {
	out := flights[:0]
	for _, f := range flights {
		if f.ReturnFlight != nil && len(f.ReturnFlight.Segments) > 0 {
			if f.Airline != f.ReturnFlight.Segments[0].CarrierCode {
				continue
			}
		}
		out = append(out, f)
	}
	return out
}
