package flight

import "sort"

type SortOption string

const (
	SortBest          SortOption = "best" // cheapest first, the default
	SortDurationAsc   SortOption = "duration_asc"
	SortDepartureAsc  SortOption = "departure_asc"
	SortDepartureDesc SortOption = "departure_desc"
)

// SortFlights total-orders a copy of the collection by the given strategy.
// Unknown or absent strategies fall back to best. Sorting is stable to keep
// equal-valued flights from jumping between re-renders.
func SortFlights(flights []Flight, by SortOption) []Flight {
	sorted := make([]Flight, len(flights))
	copy(sorted, flights)

	switch by {
	case SortDurationAsc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return ParseDuration(sorted[i].Duration) < ParseDuration(sorted[j].Duration)
		})
	case SortDepartureAsc:
		// Departure ordering is genuinely chronological, so timestamps are
		// compared as instants rather than wall-clock substrings.
		sort.SliceStable(sorted, func(i, j int) bool {
			return parseInstant(sorted[i].Departure.Time) < parseInstant(sorted[j].Departure.Time)
		})
	case SortDepartureDesc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return parseInstant(sorted[i].Departure.Time) > parseInstant(sorted[j].Departure.Time)
		})
	case SortBest:
		fallthrough
	default:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price < sorted[j].Price
		})
	}

	return sorted
}
