package forecast

import (
	"math"
	"time"

	"github.com/MerlinStacks/woodash-forecast/internal/config"
	"github.com/MerlinStacks/woodash-forecast/internal/domain"
)

// Prediction is the output of the ensemble demand predictor for one entity.
type Prediction struct {
	DailyDemand       float64
	Confidence        float64
	SeasonalityFactor float64
	TrendDirection    domain.TrendDirection
	TrendPercent      float64
}

// Predictor combines a recency-weighted moving average with seasonality and
// trend adjustment into a single predicted daily demand value.
type Predictor struct {
	policy config.ForecastPolicy
}

func NewPredictor(policy config.ForecastPolicy) *Predictor {
	return &Predictor{policy: policy}
}

// Predict computes daily demand for the target month from a zero-filled
// daily series (oldest first). With no sales history the prediction is zero
// demand at zero confidence, never an error.
func (p *Predictor) Predict(series []float64, targetMonth time.Month, season Seasonality) Prediction {
	prediction := Prediction{
		SeasonalityFactor: season.Factor(targetMonth),
		TrendDirection:    domain.TrendStable,
	}

	base := WeightedMovingAverage(series)
	if base == 0 {
		return prediction
	}

	direction, trendPercent := Trend(series, p.policy.TrendSampleDays)
	prediction.TrendDirection = direction
	prediction.TrendPercent = trendPercent

	demand := base * prediction.SeasonalityFactor * (1 + trendPercent/100)
	prediction.DailyDemand = math.Max(0, demand)
	prediction.Confidence = confidenceScore(series)

	return prediction
}

// WeightedMovingAverage averages the series with linearly increasing weights,
// so no older day ever outweighs a more recent one.
func WeightedMovingAverage(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}

	var weightedSum, weightTotal float64
	for i, v := range series {
		weight := float64(i + 1)
		weightedSum += v * weight
		weightTotal += weight
	}
	return weightedSum / weightTotal
}

// confidenceScore scores a series on history coverage, stability and volume.
// Zero history scores zero; the score approaches 100 only for long,
// low-variance, high-volume series.
func confidenceScore(series []float64) float64 {
	n := len(series)
	if n == 0 {
		return 0
	}

	var total float64
	firstSale := -1
	for i, v := range series {
		total += v
		if v > 0 && firstSale == -1 {
			firstSale = i
		}
	}
	if total == 0 {
		return 0
	}

	mean := total / float64(n)
	var variance float64
	for _, v := range series {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n)
	stdDev := math.Sqrt(variance)

	coverage := float64(n-firstSale) / float64(n)
	stability := 1 / (1 + stdDev/mean)
	volume := mean / (mean + 2)

	score := 100 * coverage * stability * volume
	return math.Min(100, math.Max(0, score))
}
