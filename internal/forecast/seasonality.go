package forecast

import (
	"time"

	"github.com/MerlinStacks/woodash-forecast/internal/domain"
)

// Seasonality maps a calendar month to its demand coefficient relative to a
// uniform monthly share. 1.0 is neutral.
type Seasonality map[time.Month]float64

// Factor returns the coefficient for a month, defaulting to neutral.
func (s Seasonality) Factor(month time.Month) float64 {
	if s == nil {
		return 1.0
	}
	if f, ok := s[month]; ok && f > 0 {
		return f
	}
	return 1.0
}

// MonthlyCoefficients buckets a year of sales by calendar month and computes
// each month's coefficient as monthTotal / (yearTotal / 12). Months with no
// data stay neutral. When the observed history spans less than minSpanDays
// the whole map is neutral, because a partial year would mistake missing
// months for low season.
func MonthlyCoefficients(points []domain.DailySalesPoint, minSpanDays int) Seasonality {
	coefficients := make(Seasonality, 12)
	for m := time.January; m <= time.December; m++ {
		coefficients[m] = 1.0
	}

	if len(points) == 0 {
		return coefficients
	}

	var (
		first, last time.Time
		yearTotal   float64
	)
	monthTotals := make(map[time.Month]float64, 12)

	for _, point := range points {
		if point.Quantity <= 0 {
			continue
		}
		day := point.Date
		if first.IsZero() || day.Before(first) {
			first = day
		}
		if last.IsZero() || day.After(last) {
			last = day
		}
		monthTotals[day.Month()] += float64(point.Quantity)
		yearTotal += float64(point.Quantity)
	}

	if yearTotal == 0 {
		return coefficients
	}
	if spanDays := int(last.Sub(first).Hours() / 24); spanDays < minSpanDays {
		return coefficients
	}

	uniformShare := yearTotal / 12
	for month, total := range monthTotals {
		if total > 0 {
			coefficients[month] = total / uniformShare
		}
	}

	return coefficients
}

// Trend compares the mean of the most recent sampleDays of the series against
// the mean of the earliest sampleDays. The direction is stable inside a ±5%
// band.
func Trend(series []float64, sampleDays int) (domain.TrendDirection, float64) {
	if sampleDays <= 0 {
		sampleDays = 5
	}
	if len(series) < sampleDays*2 {
		return domain.TrendStable, 0
	}

	var pastSum, recentSum float64
	for i := 0; i < sampleDays; i++ {
		pastSum += series[i]
		recentSum += series[len(series)-sampleDays+i]
	}
	pastAvg := pastSum / float64(sampleDays)
	recentAvg := recentSum / float64(sampleDays)

	if pastAvg == 0 {
		return domain.TrendStable, 0
	}

	trendPercent := (recentAvg - pastAvg) / pastAvg * 100
	switch {
	case trendPercent > 5:
		return domain.TrendUp, trendPercent
	case trendPercent < -5:
		return domain.TrendDown, trendPercent
	default:
		return domain.TrendStable, trendPercent
	}
}
