package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/MerlinStacks/woodash-forecast/internal/config"
)

func constantSeries(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func TestWeightedMovingAverage_ConstantSeries(t *testing.T) {
	if got := WeightedMovingAverage(constantSeries(90, 5)); math.Abs(got-5) > 1e-9 {
		t.Errorf("expected 5, got %v", got)
	}
}

func TestWeightedMovingAverage_RecencyWeighting(t *testing.T) {
	// A sale on the most recent day must move the average more than the same
	// sale on the oldest day.
	recent := constantSeries(30, 0)
	recent[29] = 10
	old := constantSeries(30, 0)
	old[0] = 10

	if WeightedMovingAverage(recent) <= WeightedMovingAverage(old) {
		t.Error("recent sales must outweigh old sales")
	}
}

func TestWeightedMovingAverage_Empty(t *testing.T) {
	if got := WeightedMovingAverage(nil); got != 0 {
		t.Errorf("expected 0 for empty series, got %v", got)
	}
}

func TestPredict_NoHistory(t *testing.T) {
	p := NewPredictor(config.DefaultForecastPolicy())

	pred := p.Predict(constantSeries(90, 0), time.June, nil)
	if pred.DailyDemand != 0 {
		t.Errorf("expected zero demand, got %v", pred.DailyDemand)
	}
	if pred.Confidence != 0 {
		t.Errorf("expected zero confidence with no history, got %v", pred.Confidence)
	}
}

func TestPredict_SeasonalityApplied(t *testing.T) {
	p := NewPredictor(config.DefaultForecastPolicy())
	season := Seasonality{time.June: 2.0}

	pred := p.Predict(constantSeries(90, 5), time.June, season)
	if math.Abs(pred.DailyDemand-10) > 1e-9 {
		t.Errorf("expected demand 10 with 2.0 seasonality, got %v", pred.DailyDemand)
	}
	if pred.SeasonalityFactor != 2.0 {
		t.Errorf("expected seasonality factor 2.0, got %v", pred.SeasonalityFactor)
	}
}

func TestPredict_TrendAdjustment(t *testing.T) {
	p := NewPredictor(config.DefaultForecastPolicy())

	// Sales double from the earliest 5 days to the most recent 5 days.
	series := constantSeries(90, 4)
	for i := 0; i < 5; i++ {
		series[i] = 2
	}
	for i := 85; i < 90; i++ {
		series[i] = 4
	}

	pred := p.Predict(series, time.June, nil)
	if pred.TrendPercent <= 5 {
		t.Errorf("expected upward trend above the stable band, got %v", pred.TrendPercent)
	}
	base := WeightedMovingAverage(series)
	want := base * (1 + pred.TrendPercent/100)
	if math.Abs(pred.DailyDemand-want) > 1e-9 {
		t.Errorf("expected demand %v, got %v", want, pred.DailyDemand)
	}
}

func TestPredict_DemandNeverNegative(t *testing.T) {
	p := NewPredictor(config.DefaultForecastPolicy())

	// Steep decline: past 5 days at 100, recent 5 days at 0.
	series := constantSeries(90, 1)
	for i := 0; i < 5; i++ {
		series[i] = 100
	}
	for i := 85; i < 90; i++ {
		series[i] = 0
	}

	pred := p.Predict(series, time.June, nil)
	if pred.DailyDemand < 0 {
		t.Errorf("demand must never go negative, got %v", pred.DailyDemand)
	}
}

func TestConfidence_Ordering(t *testing.T) {
	// Longer, steadier, higher-volume history must never score lower.
	steady := confidenceScore(constantSeries(90, 20))
	noisy := make([]float64, 90)
	for i := range noisy {
		if i%2 == 0 {
			noisy[i] = 40
		}
	}
	noisyScore := confidenceScore(noisy)

	short := constantSeries(90, 0)
	for i := 80; i < 90; i++ {
		short[i] = 20
	}
	shortScore := confidenceScore(short)

	if steady <= noisyScore {
		t.Errorf("steady history (%v) must outscore noisy history (%v)", steady, noisyScore)
	}
	if steady <= shortScore {
		t.Errorf("long history (%v) must outscore short history (%v)", steady, shortScore)
	}
	if steady > 100 || steady < 0 {
		t.Errorf("confidence out of range: %v", steady)
	}
}
