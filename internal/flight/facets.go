package flight

import (
	"math"
	"sort"
)

const histogramHours = 24

// DefaultFilterOptions is the facet set for an empty result collection, so
// sliders still render a usable range.
func DefaultFilterOptions() FilterOptions {
	return FilterOptions{
		MinPrice:           0,
		MaxPrice:           1000,
		Airlines:           []string{},
		ConnectingAirports: []string{},
		DepartureHistogram: make([]float64, histogramHours),
		ArrivalHistogram:   make([]float64, histogramHours),
	}
}

// ExtractFilters scans an unfiltered flight collection once and derives the
// full range of selectable filter values. Every flight in the input satisfies
// the returned bounds.
func ExtractFilters(flights []Flight) FilterOptions {
	if len(flights) == 0 {
		return DefaultFilterOptions()
	}

	minPrice, maxPrice := flights[0].Price, flights[0].Price
	minDuration, maxDuration := ParseDuration(flights[0].Duration), ParseDuration(flights[0].Duration)

	layoverMin, layoverMax := 0, 0
	haveLayover := false

	airlineSet := make(map[string]struct{})
	connectingSet := make(map[string]struct{})

	departureHistogram := make([]float64, histogramHours)
	arrivalHistogram := make([]float64, histogramHours)

	for _, f := range flights {
		if f.Price < minPrice {
			minPrice = f.Price
		}
		if f.Price > maxPrice {
			maxPrice = f.Price
		}

		d := ParseDuration(f.Duration)
		if d < minDuration {
			minDuration = d
		}
		if d > maxDuration {
			maxDuration = d
		}

		airlineSet[f.Airline] = struct{}{}

		for _, l := range f.Layovers {
			if !haveLayover {
				layoverMin, layoverMax = l.Duration, l.Duration
				haveLayover = true
			} else {
				if l.Duration < layoverMin {
					layoverMin = l.Duration
				}
				if l.Duration > layoverMax {
					layoverMax = l.Duration
				}
			}
			connectingSet[l.Airport] = struct{}{}
		}

		// Bucket value tracks the minimum price for that hour; 0 is the
		// "no flights" sentinel, so a first price always replaces it.
		if hour, ok := localHour(f.Departure.Time); ok {
			if departureHistogram[hour] == 0 || f.Price < departureHistogram[hour] {
				departureHistogram[hour] = f.Price
			}
		}
		if hour, ok := localHour(f.Arrival.Time); ok {
			if arrivalHistogram[hour] == 0 || f.Price < arrivalHistogram[hour] {
				arrivalHistogram[hour] = f.Price
			}
		}
	}

	airlines := make([]string, 0, len(airlineSet))
	for a := range airlineSet {
		airlines = append(airlines, a)
	}
	sort.Strings(airlines)

	connecting := make([]string, 0, len(connectingSet))
	for c := range connectingSet {
		connecting = append(connecting, c)
	}
	sort.Strings(connecting)

	return FilterOptions{
		MinPrice:           math.Floor(minPrice),
		MaxPrice:           math.Ceil(maxPrice),
		Airlines:           airlines,
		MinDuration:        minDuration,
		MaxDuration:        maxDuration,
		LayoverMin:         layoverMin,
		LayoverMax:         layoverMax,
		ConnectingAirports: connecting,
		DepartureHistogram: departureHistogram,
		ArrivalHistogram:   arrivalHistogram,
	}
}
