package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/MerlinStacks/woodash-forecast/internal/domain"
	"github.com/MerlinStacks/woodash-forecast/internal/repository"
)

// revenueStatuses are the order statuses that count toward demand. Cancelled,
// refunded and pending orders never do.
var revenueStatuses = []string{"completed", "processing"}

type salesRepository struct {
	db *DB
}

func NewSalesRepository(db *DB) repository.SalesHistoryReader {
	return &salesRepository{db: db}
}

type dailySalesRow struct {
	ProductExternalID   int64     `db:"product_external_id"`
	VariationExternalID int64     `db:"variation_external_id"`
	Day                 time.Time `db:"day"`
	Quantity            int       `db:"quantity"`
}

// DailySales aggregates sold quantities per entity per calendar day for the
// trailing window. Simple products are matched by direct product reference
// (no variation on the line item), variations by variation reference. Both
// sets are fetched in a single query.
func (r *salesRepository) DailySales(ctx context.Context, accountID int64, productIDs, variationIDs []int64, days int) (map[string][]domain.DailySalesPoint, error) {
	result := make(map[string][]domain.DailySalesPoint)
	if len(productIDs) == 0 && len(variationIDs) == 0 {
		return result, nil
	}
	if days <= 0 {
		days = 90
	}

	// sqlx.In cannot expand empty slices; substitute an impossible id.
	if len(productIDs) == 0 {
		productIDs = []int64{-1}
	}
	if len(variationIDs) == 0 {
		variationIDs = []int64{-1}
	}

	query := `
		SELECT
			oi.product_external_id,
			COALESCE(oi.variation_external_id, 0) AS variation_external_id,
			DATE_TRUNC('day', o.placed_at)::date AS day,
			SUM(oi.quantity)::int AS quantity
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.account_id = ?
		  AND o.status IN (?)
		  AND o.placed_at >= NOW() - (? * INTERVAL '1 day')
		  AND (
			(COALESCE(oi.variation_external_id, 0) = 0 AND oi.product_external_id IN (?))
			OR COALESCE(oi.variation_external_id, 0) IN (?)
		  )
		GROUP BY oi.product_external_id, COALESCE(oi.variation_external_id, 0), day
		ORDER BY day
	`

	query, args, err := sqlx.In(query, accountID, revenueStatuses, days, productIDs, variationIDs)
	if err != nil {
		return nil, fmt.Errorf("error building daily sales query: %w", err)
	}

	var rows []dailySalesRow
	err = r.db.WithRead(ctx, func(db *sqlx.DB) error {
		return db.SelectContext(ctx, &rows, db.Rebind(query), args...)
	})
	if err != nil {
		return nil, fmt.Errorf("error querying daily sales: %w", err)
	}

	for _, row := range rows {
		var entityID string
		if row.VariationExternalID != 0 {
			entityID = domain.VariationEntityID(row.VariationExternalID)
		} else {
			entityID = domain.ProductEntityID(row.ProductExternalID)
		}
		result[entityID] = append(result[entityID], domain.DailySalesPoint{
			EntityID: entityID,
			Date:     row.Day,
			Quantity: row.Quantity,
		})
	}

	return result, nil
}
