package flight

import (
	"context"
	"fmt"
	"math"
)

// Flights priced above this are treated as a demand signal regardless of
// currency; the threshold is deliberately not FX-normalized.
const scarcityPriceFloor = 1000

const defaultVibeScore = 5

func vibeScore(f Flight) float64 {
	if f.Vibe == nil {
		return defaultVibeScore
	}
	return f.Vibe.Score
}

// AnalyzeBatch computes the statistical summary of a flight collection in a
// single pass over the flights: price extrema, duration extrema, best vibe
// score and the price sum for the mean.
//
// When a historical series is supplied, the reported mean is the market mean
// from that series instead of the local batch mean. Standard deviation is
// still computed over the local batch's prices, centered on whichever mean
// was selected: it measures local dispersion around the reference point.
func AnalyzeBatch(flights []Flight, history []PricePoint) FlightAnalysis {
	if len(flights) == 0 {
		return FlightAnalysis{}
	}

	var (
		sum         float64
		minPrice    = flights[0].Price
		cheapestID  = flights[0].ID
		minDuration = ParseDuration(flights[0].Duration)
		fastestID   = flights[0].ID
		bestVibe    = vibeScore(flights[0])
		bestVibeID  = flights[0].ID
	)

	for _, f := range flights {
		sum += f.Price
		if f.Price < minPrice {
			minPrice = f.Price
			cheapestID = f.ID
		}
		if d := ParseDuration(f.Duration); d < minDuration {
			minDuration = d
			fastestID = f.ID
		}
		if v := vibeScore(f); v > bestVibe {
			bestVibe = v
			bestVibeID = f.ID
		}
	}

	mean := sum / float64(len(flights))
	if len(history) > 0 {
		var historySum float64
		for _, p := range history {
			historySum += p.Price
		}
		mean = historySum / float64(len(history))
	}

	var variance float64
	for _, f := range flights {
		d := f.Price - mean
		variance += d * d
	}
	variance /= float64(len(flights))
	stdDev := math.Sqrt(variance)

	var opportunity *Opportunity
	switch {
	case mean-minPrice > stdDev:
		opportunity = &Opportunity{
			Type:    OpportunitySavings,
			Message: fmt.Sprintf("Save $%.2f by choosing our Smart Deal today.", mean-minPrice),
		}
	case minPrice > scarcityPriceFloor:
		opportunity = &Opportunity{
			Type:    OpportunityScarcity,
			Message: "Prices are high likely due to demand. Book soon.",
		}
	}

	return FlightAnalysis{
		MeanPrice:         mean,
		StandardDeviation: stdDev,
		Cheapest:          cheapestID,
		Fastest:           fastestID,
		BestVibe:          bestVibeID,
		Opportunity:       opportunity,
	}
}

type Recommendation string

const (
	RecommendBuy     Recommendation = "buy"
	RecommendMonitor Recommendation = "monitor"
	RecommendFair    Recommendation = "fair"
)

// RecommendationType classifies one flight against the batch statistics into
// three bands. Kept as a pure function so callers can reuse the banding
// without generating prose.
func RecommendationType(f Flight, analysis FlightAnalysis) Recommendation {
	switch {
	case f.Price < analysis.MeanPrice-analysis.StandardDeviation/2:
		return RecommendBuy
	case f.Price > analysis.MeanPrice+analysis.StandardDeviation:
		return RecommendMonitor
	default:
		return RecommendFair
	}
}

// FlightInsight is the natural-language assessment of a single flight
// relative to its batch.
type FlightInsight struct {
	PriceInsight string `json:"priceInsight"`
	TimeInsight  string `json:"timeInsight"`
	Prediction   string `json:"prediction"`
}

// GenerateFlightAnalysis produces the per-flight insight relative to the
// batch mean and spread.
func GenerateFlightAnalysis(f Flight, analysis FlightAnalysis) FlightInsight {
	priceDiff := math.Abs(f.Price - analysis.MeanPrice)

	var priceInsight string
	if f.Price < analysis.MeanPrice {
		priceInsight = fmt.Sprintf("This flight is $%.2f cheaper than the average market price of $%.2f.", priceDiff, analysis.MeanPrice)
	} else {
		priceInsight = fmt.Sprintf("This flight is $%.2f above the average, reflecting its premium convenience or carrier.", priceDiff)
	}

	var timeInsight string
	if f.Stops == 0 {
		timeInsight = "It is a non-stop flight, offering the most efficient travel time."
	} else {
		timeInsight = fmt.Sprintf("This route includes %d stop(s).", f.Stops)
	}

	var prediction string
	switch RecommendationType(f, analysis) {
	case RecommendBuy:
		prediction = "STRONG BUY: The price is significantly lower than similar flights found today."
	case RecommendMonitor:
		prediction = "MONITOR: Prices are trending high. Unless you need this specific schedule, you might find better value by adjusting dates."
	default:
		prediction = "FAIR VALUE: This price aligns with current market rates for this route."
	}

	return FlightInsight{
		PriceInsight: priceInsight,
		TimeInsight:  timeInsight,
		Prediction:   prediction,
	}
}

// Strategist implements Annotator: it tags each flight relative to the batch
// and attaches the legacy prediction placeholder.
type Strategist struct{}

func NewStrategist() Strategist { return Strategist{} }

func (Strategist) Annotate(_ context.Context, flights []Flight) ([]Flight, error) {
	if len(flights) == 0 {
		return []Flight{}, nil
	}

	analysis := AnalyzeBatch(flights, nil)

	annotated := make([]Flight, len(flights))
	for i, f := range flights {
		tags := make([]string, 0, 4)
		if f.ID == analysis.Cheapest {
			tags = append(tags, "Cheapest")
		}
		if f.ID == analysis.Fastest {
			tags = append(tags, "Fastest")
		}
		if f.ID == analysis.BestVibe {
			tags = append(tags, "Best Vibe")
		}
		if analysis.Opportunity != nil && analysis.Opportunity.Type == OpportunitySavings && f.ID == analysis.Cheapest {
			tags = append(tags, "Smart Deal")
		}

		f.Analysis = &Insight{Tags: tags}
		f.Prediction = &Prediction{
			Trajectory:     "stable",
			Recommendation: string(RecommendBuy),
			Confidence:     85,
			Details:        "AI Analysis Complete",
		}
		annotated[i] = f
	}

	return annotated, nil
}
