package repository

import (
	"context"

	"github.com/MerlinStacks/woodash-forecast/internal/domain"
)

// CatalogReader provides a read-only, point-in-time view of an account's
// catalog: products with variations and BOM definitions, plus internal
// components. The forecasting engine never writes back.
type CatalogReader interface {
	Snapshot(ctx context.Context, accountID int64) (*domain.CatalogSnapshot, error)
}

// SalesHistoryReader returns per-entity daily sold quantities for the given
// product and variation references over a trailing day window. Only orders in
// revenue-counting statuses are included. The result is keyed by forecast
// entity id; entities without sales in the window are simply absent.
type SalesHistoryReader interface {
	DailySales(ctx context.Context, accountID int64, productIDs, variationIDs []int64, days int) (map[string][]domain.DailySalesPoint, error)
}
