package flightclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"skyspeed/internal/flight"
	"skyspeed/pkg/logger"
	"skyspeed/pkg/ratelimit"
)

// AmadeusHistory fetches the cheapest-date price series for a route from the
// Amadeus flight-dates API. Dates are route-level, not tied to the live
// search's exact travel dates.
type AmadeusHistory struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *ratelimit.ProviderLimiter
	logger     logger.Client
}

func NewAmadeusHistory(httpClient *http.Client, baseURL, apiKey string,
	limiter *ratelimit.ProviderLimiter, logger logger.Client) *AmadeusHistory {
	return &AmadeusHistory{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    limiter,
		logger:     logger,
	}
}

type amadeusDatesResponse struct {
	Data []amadeusDate `json:"data"`
}

type amadeusDate struct {
	DepartureDate string `json:"departureDate"` // YYYY-MM-DD
	Price         struct {
		Total string `json:"total"`
	} `json:"price"`
}

func (h *AmadeusHistory) CheapestDates(ctx context.Context, origin, destination string) ([]flight.PricePoint, error) {
	if err := h.limiter.Wait(ctx, "amadeus"); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("origin", strings.ToUpper(origin))
	params.Set("destination", strings.ToUpper(destination))

	reqURL := fmt.Sprintf("%s/v1/shopping/flight-dates?%s", h.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build flight-dates request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.apiKey)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("flight-dates api call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("flight-dates api returned non-200 status: %d", resp.StatusCode)
	}

	var apiResp amadeusDatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode flight-dates response: %w", err)
	}

	points := make([]flight.PricePoint, 0, len(apiResp.Data))
	for _, d := range apiResp.Data {
		price, err := strconv.ParseFloat(d.Price.Total, 64)
		if err != nil {
			h.logger.Warn("skipping flight-dates entry with unparsable price",
				logger.Field{Key: "date", Value: d.DepartureDate},
				logger.Field{Key: "total", Value: d.Price.Total})
			continue
		}
		points = append(points, flight.PricePoint{
			Date:  d.DepartureDate,
			Price: price,
			Min:   price,
			Max:   price,
		})
	}
	return points, nil
}
