package flight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func filterFixture() []Flight {
	return []Flight{
		{
			ID:        "direct-cheap",
			Airline:   "GA",
			Departure: Leg{Time: "2025-10-01T08:00:00"},
			Arrival:   Leg{Time: "2025-10-01T15:00:00"},
			Duration:  "7h",
			Price:     420,
			Baggage:   &Baggage{Quantity: 1, Weight: 23, Unit: "kg"},
		},
		{
			ID:        "one-stop",
			Airline:   "SQ",
			Departure: Leg{Time: "2025-10-01T10:30:00"},
			Arrival:   Leg{Time: "2025-10-01T21:00:00"},
			Duration:  "9h30m",
			Price:     380,
			Stops:     1,
			Layovers:  []Layover{{Airport: "SIN", Duration: 110}},
		},
		{
			ID:        "expensive-redeye",
			Airline:   "EK",
			Departure: Leg{Time: "2025-10-01T23:45:00"},
			Arrival:   Leg{Time: "2025-10-02T12:00:00"},
			Duration:  "11h15m",
			Price:     1250,
			Stops:     1,
			Layovers:  []Layover{{Airport: "DXB", Duration: 240}},
		},
	}
}

func ids(flights []Flight) []string {
	out := make([]string, len(flights))
	for i, f := range flights {
		out[i] = f.ID
	}
	return out
}

func TestFilterFlights_NoCriteriaKeepsEverythingInOrder(t *testing.T) {
	flights := filterFixture()
	got := FilterFlights(flights, FilterCriteria{})

	assert.Equal(t, []string{"direct-cheap", "one-stop", "expensive-redeye"}, ids(got))
}

func TestFilterFlights_MaxPrice(t *testing.T) {
	got := FilterFlights(filterFixture(), FilterCriteria{MaxPrice: 500})
	assert.Equal(t, []string{"direct-cheap", "one-stop"}, ids(got))
}

func TestFilterFlights_Airlines(t *testing.T) {
	got := FilterFlights(filterFixture(), FilterCriteria{Airlines: []string{"GA", "EK"}})
	assert.Equal(t, []string{"direct-cheap", "expensive-redeye"}, ids(got))
}

func TestFilterFlights_Stops(t *testing.T) {
	got := FilterFlights(filterFixture(), FilterCriteria{Stops: []int{0}})
	assert.Equal(t, []string{"direct-cheap"}, ids(got))
}

func TestFilterFlights_MaxDuration(t *testing.T) {
	got := FilterFlights(filterFixture(), FilterCriteria{MaxDuration: 600})
	assert.Equal(t, []string{"direct-cheap", "one-stop"}, ids(got))
}

func TestFilterFlights_DepartureWindow(t *testing.T) {
	window := [2]int{9 * 60, 12 * 60}
	got := FilterFlights(filterFixture(), FilterCriteria{DepartureWindow: &window})
	assert.Equal(t, []string{"one-stop"}, ids(got))
}

func TestFilterFlights_ArrivalWindow(t *testing.T) {
	window := [2]int{14 * 60, 22 * 60}
	got := FilterFlights(filterFixture(), FilterCriteria{ArrivalWindow: &window})
	assert.Equal(t, []string{"direct-cheap", "one-stop"}, ids(got))
}

func TestFilterFlights_HasBaggage(t *testing.T) {
	got := FilterFlights(filterFixture(), FilterCriteria{HasBaggage: true})
	assert.Equal(t, []string{"direct-cheap"}, ids(got))
}

func TestFilterFlights_MaxLayoverDuration(t *testing.T) {
	got := FilterFlights(filterFixture(), FilterCriteria{MaxLayoverDuration: 120})
	assert.Equal(t, []string{"direct-cheap", "one-stop"}, ids(got))
}

// Direct flights have no layovers to check against the whitelist and must
// never be excluded by it.
func TestFilterFlights_ConnectingAirportsSpareDirectFlights(t *testing.T) {
	got := FilterFlights(filterFixture(), FilterCriteria{ConnectingAirports: []string{"DXB"}})
	assert.Equal(t, []string{"direct-cheap", "expensive-redeye"}, ids(got))
}

func TestFilterFlights_AllPredicatesMustPass(t *testing.T) {
	got := FilterFlights(filterFixture(), FilterCriteria{
		MaxPrice: 500,
		Stops:    []int{1},
	})
	assert.Equal(t, []string{"one-stop"}, ids(got))
}

func TestFilterFlights_InputNotMutated(t *testing.T) {
	flights := filterFixture()
	FilterFlights(flights, FilterCriteria{MaxPrice: 1})

	assert.Len(t, flights, 3)
	assert.Equal(t, "direct-cheap", flights[0].ID)
}
