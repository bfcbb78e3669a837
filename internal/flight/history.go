package flight

import (
	"sort"
	"strconv"
)

// MergeHistory reconciles a per-day historical price series with the live
// result set. Where live flights depart on a historical point's calendar
// date, the point is replaced by the minimum observed live price; otherwise
// the historical point is kept verbatim. Output preserves the input series'
// order and length.
func MergeHistory(flights []Flight, history []PricePoint) []MergedPricePoint {
	if len(history) == 0 {
		return []MergedPricePoint{}
	}

	liveMin := make(map[string]float64, len(flights))
	for _, f := range flights {
		date := calendarDate(f.Departure.Time)
		if date == "" {
			continue
		}
		if current, ok := liveMin[date]; !ok || f.Price < current {
			liveMin[date] = f.Price
		}
	}

	merged := make([]MergedPricePoint, 0, len(history))
	for _, p := range history {
		if lowest, ok := liveMin[p.Date]; ok {
			merged = append(merged, MergedPricePoint{
				Date:   p.Date,
				Price:  lowest,
				Min:    lowest,
				Max:    lowest,
				Source: SourceLive,
			})
			continue
		}
		merged = append(merged, MergedPricePoint{
			Date:   p.Date,
			Price:  p.Price,
			Min:    p.Min,
			Max:    p.Max,
			Source: SourceHistory,
		})
	}
	return merged
}

// MarketAverage is the mean price across a merged series.
func MarketAverage(merged []MergedPricePoint) float64 {
	if len(merged) == 0 {
		return 0
	}
	var sum float64
	for _, p := range merged {
		sum += p.Price
	}
	return sum / float64(len(merged))
}

// IntradayMetric summarizes prices for one hour of the day.
type IntradayMetric struct {
	Hour     int     `json:"hour"`
	Label    string  `json:"label"`
	MinPrice float64 `json:"minPrice"`
	AvgPrice float64 `json:"avgPrice"`
	Count    int     `json:"count"`
}

// IntradayMetrics buckets flights by local departure hour, surfacing the
// cheapest time of day to fly. Hours with no flights are omitted.
func IntradayMetrics(flights []Flight) []IntradayMetric {
	if len(flights) == 0 {
		return []IntradayMetric{}
	}

	type bucket struct {
		min   float64
		sum   float64
		count int
	}
	buckets := make(map[int]*bucket, histogramHours)

	for _, f := range flights {
		hour, ok := localHour(f.Departure.Time)
		if !ok {
			continue
		}
		b := buckets[hour]
		if b == nil {
			b = &bucket{min: f.Price}
			buckets[hour] = b
		} else if f.Price < b.min {
			b.min = f.Price
		}
		b.sum += f.Price
		b.count++
	}

	metrics := make([]IntradayMetric, 0, len(buckets))
	for hour, b := range buckets {
		metrics = append(metrics, IntradayMetric{
			Hour:     hour,
			Label:    labelForHour(hour),
			MinPrice: b.min,
			AvgPrice: b.sum / float64(b.count),
			Count:    b.count,
		})
	}
	sort.Slice(metrics, func(i, j int) bool { return metrics[i].Hour < metrics[j].Hour })
	return metrics
}

func labelForHour(hour int) string {
	return strconv.Itoa(hour) + ":00"
}
