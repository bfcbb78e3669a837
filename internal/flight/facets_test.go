package flight

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func facetFixture() []Flight {
	return []Flight{
		{
			ID:        "f1",
			Airline:   "GA",
			Departure: Leg{Code: "CGK", Time: "2025-10-01T06:30:00"},
			Arrival:   Leg{Code: "NRT", Time: "2025-10-01T15:45:00"},
			Duration:  "7h15m",
			Price:     512.40,
		},
		{
			ID:        "f2",
			Airline:   "SQ",
			Departure: Leg{Code: "CGK", Time: "2025-10-01T06:10:00"},
			Arrival:   Leg{Code: "NRT", Time: "2025-10-01T18:05:00"},
			Duration:  "9h55m",
			Price:     433.10,
			Stops:     1,
			Layovers:  []Layover{{Airport: "SIN", Duration: 95}},
		},
		{
			ID:        "f3",
			Airline:   "GA",
			Departure: Leg{Code: "CGK", Time: "2025-10-01T22:00:00"},
			Arrival:   Leg{Code: "NRT", Time: "2025-10-02T07:30:00"},
			Duration:  "7h30m",
			Price:     689.99,
			Stops:     1,
			Layovers:  []Layover{{Airport: "DPS", Duration: 140}},
		},
	}
}

func TestExtractFilters_EmptyCollection(t *testing.T) {
	got := ExtractFilters(nil)

	assert.Equal(t, float64(0), got.MinPrice)
	assert.Equal(t, float64(1000), got.MaxPrice)
	assert.Empty(t, got.Airlines)
	assert.Len(t, got.DepartureHistogram, 24)
	assert.Len(t, got.ArrivalHistogram, 24)
}

func TestExtractFilters_Bounds(t *testing.T) {
	got := ExtractFilters(facetFixture())

	assert.Equal(t, float64(433), got.MinPrice)
	assert.Equal(t, float64(690), got.MaxPrice)
	assert.Equal(t, 435, got.MinDuration)
	assert.Equal(t, 595, got.MaxDuration)
	assert.Equal(t, 95, got.LayoverMin)
	assert.Equal(t, 140, got.LayoverMax)
	assert.Equal(t, []string{"GA", "SQ"}, got.Airlines)
	assert.Equal(t, []string{"DPS", "SIN"}, got.ConnectingAirports)
}

// Every flight in the input must satisfy the returned bounds.
func TestExtractFilters_BoundsCoverInput(t *testing.T) {
	flights := facetFixture()
	got := ExtractFilters(flights)

	for _, f := range flights {
		assert.GreaterOrEqual(t, f.Price, got.MinPrice)
		assert.LessOrEqual(t, f.Price, got.MaxPrice)
		d := ParseDuration(f.Duration)
		assert.GreaterOrEqual(t, d, got.MinDuration)
		assert.LessOrEqual(t, d, got.MaxDuration)
	}
}

// Histogram buckets key off the wall-clock hour in the timestamp string, so a
// 06:xx departure lands in bucket 6 no matter where the test host runs.
func TestExtractFilters_HistogramUsesLocalHour(t *testing.T) {
	got := ExtractFilters(facetFixture())

	require.Len(t, got.DepartureHistogram, 24)
	assert.Equal(t, 433.10, got.DepartureHistogram[6], "both morning flights share the bucket, minimum wins")
	assert.Equal(t, 689.99, got.DepartureHistogram[22])
	assert.Equal(t, float64(0), got.DepartureHistogram[12], "empty bucket keeps the zero sentinel")

	assert.Equal(t, 512.40, got.ArrivalHistogram[15])
	assert.Equal(t, 433.10, got.ArrivalHistogram[18])
	assert.Equal(t, 689.99, got.ArrivalHistogram[7])
}
