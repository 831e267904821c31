package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/MerlinStacks/woodash-forecast/internal/domain"
)

func salesPoint(entityID string, date time.Time, qty int) domain.DailySalesPoint {
	return domain.DailySalesPoint{EntityID: entityID, Date: date, Quantity: qty}
}

func TestMonthlyCoefficients_FullYear(t *testing.T) {
	// 10 units on the first of every month, except June with 40.
	points := make([]domain.DailySalesPoint, 0, 12)
	for m := time.January; m <= time.December; m++ {
		qty := 10
		if m == time.June {
			qty = 40
		}
		points = append(points, salesPoint("e", time.Date(2024, m, 1, 0, 0, 0, 0, time.UTC), qty))
	}

	season := MonthlyCoefficients(points, 180)

	// yearTotal = 150, uniform share = 12.5
	if got := season.Factor(time.June); math.Abs(got-3.2) > 1e-9 {
		t.Errorf("expected June coefficient 3.2, got %v", got)
	}
	if got := season.Factor(time.March); math.Abs(got-0.8) > 1e-9 {
		t.Errorf("expected March coefficient 0.8, got %v", got)
	}
}

func TestMonthlyCoefficients_InsufficientSpanIsNeutral(t *testing.T) {
	points := []domain.DailySalesPoint{
		salesPoint("e", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), 100),
		salesPoint("e", time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC), 5),
	}

	season := MonthlyCoefficients(points, 180)
	for m := time.January; m <= time.December; m++ {
		if got := season.Factor(m); got != 1.0 {
			t.Fatalf("expected neutral coefficient for %v, got %v", m, got)
		}
	}
}

func TestMonthlyCoefficients_NoData(t *testing.T) {
	season := MonthlyCoefficients(nil, 180)
	if got := season.Factor(time.December); got != 1.0 {
		t.Errorf("expected neutral coefficient, got %v", got)
	}
}

func TestMonthlyCoefficients_MissingMonthStaysNeutral(t *testing.T) {
	// Sales in every month except February, spanning a full year.
	points := make([]domain.DailySalesPoint, 0, 11)
	for m := time.January; m <= time.December; m++ {
		if m == time.February {
			continue
		}
		points = append(points, salesPoint("e", time.Date(2024, m, 10, 0, 0, 0, 0, time.UTC), 12))
	}

	season := MonthlyCoefficients(points, 180)
	if got := season.Factor(time.February); got != 1.0 {
		t.Errorf("expected neutral coefficient for missing month, got %v", got)
	}
}

func TestTrend_Directions(t *testing.T) {
	tests := []struct {
		name        string
		series      []float64
		wantDir     domain.TrendDirection
		wantPercent float64
	}{
		{
			name:        "upward",
			series:      []float64{2, 2, 2, 2, 2, 0, 0, 4, 4, 4, 4, 4},
			wantDir:     domain.TrendUp,
			wantPercent: 100,
		},
		{
			name:        "downward",
			series:      []float64{10, 10, 10, 10, 10, 0, 0, 5, 5, 5, 5, 5},
			wantDir:     domain.TrendDown,
			wantPercent: -50,
		},
		{
			name:        "stable_within_band",
			series:      []float64{10, 10, 10, 10, 10, 0, 0, 10, 10, 10, 10, 10.5},
			wantDir:     domain.TrendStable,
			wantPercent: 1,
		},
		{
			name:    "zero_past_is_stable",
			series:  []float64{0, 0, 0, 0, 0, 0, 0, 3, 3, 3, 3, 3},
			wantDir: domain.TrendStable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir, pct := Trend(tt.series, 5)
			if dir != tt.wantDir {
				t.Errorf("expected direction %s, got %s", tt.wantDir, dir)
			}
			if math.Abs(pct-tt.wantPercent) > 1e-9 {
				t.Errorf("expected trend percent %v, got %v", tt.wantPercent, pct)
			}
		})
	}
}

func TestTrend_ShortSeriesIsStable(t *testing.T) {
	dir, pct := Trend([]float64{1, 2, 3}, 5)
	if dir != domain.TrendStable || pct != 0 {
		t.Errorf("expected stable/0 for short series, got %s/%v", dir, pct)
	}
}
