package forecast

import (
	"math"
	"time"

	"github.com/MerlinStacks/woodash-forecast/internal/domain"
)

// GenerateCurve projects a stock-depletion curve with confidence bands over
// the horizon, one point per day starting at day zero. Band half-width grows
// linearly with the day index and shrinks with confidence; bounds never go
// below zero or cross the predicted line.
func GenerateCurve(currentStock int, totalDemand, confidence float64, horizonDays int, start time.Time) []domain.ForecastCurvePoint {
	if horizonDays <= 0 {
		horizonDays = 30
	}

	uncertainty := (100 - math.Min(100, math.Max(0, confidence))) / 100
	points := make([]domain.ForecastCurvePoint, 0, horizonDays+1)

	for i := 0; i <= horizonDays; i++ {
		predicted := math.Max(0, float64(currentStock)-totalDemand*float64(i))
		halfWidth := totalDemand * float64(i) * (0.1 + 0.9*uncertainty)

		points = append(points, domain.ForecastCurvePoint{
			Date:           start.AddDate(0, 0, i).Format("2006-01-02"),
			PredictedStock: predicted,
			UpperBound:     predicted + halfWidth,
			LowerBound:     math.Max(0, predicted-halfWidth),
		})
	}

	return points
}
