package forecast

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MerlinStacks/woodash-forecast/internal/domain"
	"github.com/MerlinStacks/woodash-forecast/internal/repository"
)

// Aggregator fetches per-entity daily sales through the history collaborator
// and degrades to empty series when the collaborator is unavailable, so a
// query failure never fails the forecast run.
type Aggregator struct {
	sales repository.SalesHistoryReader
}

func NewAggregator(sales repository.SalesHistoryReader) *Aggregator {
	return &Aggregator{sales: sales}
}

// Fetch returns the daily sales map for the given references. On collaborator
// failure it logs and returns an empty map; downstream stages treat missing
// history as zero demand with zero confidence.
func (a *Aggregator) Fetch(ctx context.Context, accountID int64, productIDs, variationIDs []int64, days int) map[string][]domain.DailySalesPoint {
	if a.sales == nil || (len(productIDs) == 0 && len(variationIDs) == 0) {
		return map[string][]domain.DailySalesPoint{}
	}

	result, err := a.sales.DailySales(ctx, accountID, productIDs, variationIDs, days)
	if err != nil {
		log.Warn().Err(err).
			Int64("account_id", accountID).
			Int("products", len(productIDs)).
			Int("variations", len(variationIDs)).
			Msg("sales history query failed, continuing with empty series")
		return map[string][]domain.DailySalesPoint{}
	}
	if result == nil {
		result = map[string][]domain.DailySalesPoint{}
	}
	return result
}

// DenseSeries expands sparse sales points into a zero-filled daily quantity
// series covering the trailing window, oldest day first, ending yesterday
// relative to now. Points outside the window are ignored.
func DenseSeries(points []domain.DailySalesPoint, days int, now time.Time) []float64 {
	if days <= 0 {
		return nil
	}

	series := make([]float64, days)
	end := now.Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -days)

	for _, point := range points {
		day := point.Date.Truncate(24 * time.Hour)
		if day.Before(start) || !day.Before(end) {
			continue
		}
		idx := int(day.Sub(start).Hours() / 24)
		if idx >= 0 && idx < days {
			series[idx] += float64(point.Quantity)
		}
	}

	return series
}

// WindowPoints filters sparse points down to the trailing window, for the raw
// history payload of detail views.
func WindowPoints(points []domain.DailySalesPoint, days int, now time.Time) []domain.DailySalesPoint {
	end := now.Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -days)

	out := make([]domain.DailySalesPoint, 0, len(points))
	for _, point := range points {
		day := point.Date.Truncate(24 * time.Hour)
		if day.Before(start) || !day.Before(end) {
			continue
		}
		out = append(out, point)
	}
	return out
}
