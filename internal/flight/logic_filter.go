package flight

// filterContext precomputes lookup sets so the per-flight predicate does no
// slice scans or re-parsing inside the loop.
type filterContext struct {
	criteria   FilterCriteria
	airlines   map[string]struct{}
	stops      map[int]struct{}
	connecting map[string]struct{}
}

func newFilterContext(criteria FilterCriteria) *filterContext {
	fc := &filterContext{criteria: criteria}

	if len(criteria.Airlines) > 0 {
		fc.airlines = make(map[string]struct{}, len(criteria.Airlines))
		for _, a := range criteria.Airlines {
			fc.airlines[a] = struct{}{}
		}
	}
	if len(criteria.Stops) > 0 {
		fc.stops = make(map[int]struct{}, len(criteria.Stops))
		for _, s := range criteria.Stops {
			fc.stops[s] = struct{}{}
		}
	}
	if len(criteria.ConnectingAirports) > 0 {
		fc.connecting = make(map[string]struct{}, len(criteria.ConnectingAirports))
		for _, c := range criteria.ConnectingAirports {
			fc.connecting[c] = struct{}{}
		}
	}
	return fc
}

// FilterFlights retains the flights matching every active predicate,
// preserving relative order. The input slice is never mutated.
func FilterFlights(flights []Flight, criteria FilterCriteria) []Flight {
	fc := newFilterContext(criteria)

	filtered := make([]Flight, 0, len(flights))
	for _, f := range flights {
		if fc.matches(f) {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// matches returns true only if ALL active predicates pass.
func (fc *filterContext) matches(f Flight) bool {
	if fc.criteria.MaxPrice > 0 && f.Price > fc.criteria.MaxPrice {
		return false
	}

	if fc.airlines != nil {
		if _, ok := fc.airlines[f.Airline]; !ok {
			return false
		}
	}

	if fc.stops != nil {
		if _, ok := fc.stops[f.Stops]; !ok {
			return false
		}
	}

	if fc.criteria.MaxDuration > 0 && ParseDuration(f.Duration) > fc.criteria.MaxDuration {
		return false
	}

	if w := fc.criteria.DepartureWindow; w != nil {
		m := minutesOfDay(f.Departure.Time)
		if m < w[0] || m > w[1] {
			return false
		}
	}

	if w := fc.criteria.ArrivalWindow; w != nil {
		m := minutesOfDay(f.Arrival.Time)
		if m < w[0] || m > w[1] {
			return false
		}
	}

	if fc.criteria.HasBaggage {
		if f.Baggage == nil || f.Baggage.Quantity < 1 {
			return false
		}
	}

	if fc.criteria.MaxLayoverDuration > 0 {
		for _, l := range f.Layovers {
			if l.Duration > fc.criteria.MaxLayoverDuration {
				return false
			}
		}
	}

	// Connecting airports only constrain flights that actually have stops;
	// a direct flight is never excluded by this predicate.
	if fc.connecting != nil && f.Stops > 0 {
		connectsThere := false
		for _, l := range f.Layovers {
			if _, ok := fc.connecting[l.Airport]; ok {
				connectsThere = true
				break
			}
		}
		if !connectsThere {
			return false
		}
	}

	return true
}
