package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/MerlinStacks/woodash-forecast/internal/domain"
	"github.com/MerlinStacks/woodash-forecast/internal/repository"
)

type catalogRepository struct {
	db *DB
}

func NewCatalogRepository(db *DB) repository.CatalogReader {
	return &catalogRepository{db: db}
}

type productRow struct {
	ExternalID    int64          `db:"external_id"`
	Name          string         `db:"name"`
	SKU           sql.NullString `db:"sku"`
	ManagesStock  bool           `db:"manages_stock"`
	StockQuantity sql.NullInt64  `db:"stock_quantity"`
	LeadTimeDays  sql.NullInt64  `db:"supplier_lead_time_days"`
}

type variationRow struct {
	ProductExternalID int64          `db:"product_external_id"`
	ExternalID        int64          `db:"external_id"`
	Name              string         `db:"name"`
	SKU               sql.NullString `db:"sku"`
	ManagesStock      bool           `db:"manages_stock"`
	StockQuantity     sql.NullInt64  `db:"stock_quantity"`
	LeadTimeDays      sql.NullInt64  `db:"supplier_lead_time_days"`
}

type componentRow struct {
	ID            string         `db:"id"`
	Name          string         `db:"name"`
	SKU           sql.NullString `db:"sku"`
	StockQuantity int            `db:"stock_quantity"`
	LeadTimeDays  sql.NullInt64  `db:"supplier_lead_time_days"`
}

type bomRow struct {
	OwnerKind       string  `db:"owner_kind"`
	OwnerExternalID int64   `db:"owner_external_id"`
	ComponentID     string  `db:"component_id"`
	QuantityPerUnit float64 `db:"quantity_per_unit"`
	WasteFactor     float64 `db:"waste_factor"`
}

// Snapshot assembles the full catalog view for one account in four reads.
// BOM rows are attached to their owning product or variation; rows whose
// owner no longer exists are dropped here, not downstream.
func (r *catalogRepository) Snapshot(ctx context.Context, accountID int64) (*domain.CatalogSnapshot, error) {
	var (
		products   []productRow
		variations []variationRow
		components []componentRow
		bomRows    []bomRow
	)

	err := r.db.WithRead(ctx, func(db *sqlx.DB) error {
		if err := db.SelectContext(ctx, &products, `
			SELECT external_id, name, sku, manages_stock, stock_quantity, supplier_lead_time_days
			FROM products
			WHERE account_id = $1 AND deleted_at IS NULL
		`, accountID); err != nil {
			return fmt.Errorf("error loading products: %w", err)
		}

		if err := db.SelectContext(ctx, &variations, `
			SELECT product_external_id, external_id, name, sku, manages_stock, stock_quantity, supplier_lead_time_days
			FROM product_variations
			WHERE account_id = $1 AND deleted_at IS NULL
		`, accountID); err != nil {
			return fmt.Errorf("error loading variations: %w", err)
		}

		if err := db.SelectContext(ctx, &components, `
			SELECT id, name, sku, stock_quantity, supplier_lead_time_days
			FROM components
			WHERE account_id = $1 AND deleted_at IS NULL
		`, accountID); err != nil {
			return fmt.Errorf("error loading components: %w", err)
		}

		if err := db.SelectContext(ctx, &bomRows, `
			SELECT owner_kind, owner_external_id, component_id, quantity_per_unit, waste_factor
			FROM bom_items
			WHERE account_id = $1 AND quantity_per_unit > 0
		`, accountID); err != nil {
			return fmt.Errorf("error loading bom items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	productBOMs := make(map[int64][]domain.BOMItem)
	variationBOMs := make(map[int64][]domain.BOMItem)
	for _, row := range bomRows {
		item := domain.BOMItem{
			ComponentID:     row.ComponentID,
			QuantityPerUnit: row.QuantityPerUnit,
			WasteFactor:     row.WasteFactor,
		}
		switch row.OwnerKind {
		case "product":
			productBOMs[row.OwnerExternalID] = append(productBOMs[row.OwnerExternalID], item)
		case "variation":
			variationBOMs[row.OwnerExternalID] = append(variationBOMs[row.OwnerExternalID], item)
		}
	}

	variationsByProduct := make(map[int64][]domain.CatalogVariation)
	for _, row := range variations {
		variationsByProduct[row.ProductExternalID] = append(variationsByProduct[row.ProductExternalID], domain.CatalogVariation{
			ExternalID:           row.ExternalID,
			Name:                 row.Name,
			SKU:                  row.SKU.String,
			ManagesStock:         row.ManagesStock,
			StockQuantity:        nullableInt(row.StockQuantity),
			SupplierLeadTimeDays: int(row.LeadTimeDays.Int64),
			BOM:                  variationBOMs[row.ExternalID],
		})
	}

	snapshot := &domain.CatalogSnapshot{
		Products:   make([]domain.CatalogProduct, 0, len(products)),
		Components: make([]domain.InternalComponent, 0, len(components)),
	}

	for _, row := range products {
		snapshot.Products = append(snapshot.Products, domain.CatalogProduct{
			ExternalID:           row.ExternalID,
			Name:                 row.Name,
			SKU:                  row.SKU.String,
			ManagesStock:         row.ManagesStock,
			StockQuantity:        nullableInt(row.StockQuantity),
			SupplierLeadTimeDays: int(row.LeadTimeDays.Int64),
			BOM:                  productBOMs[row.ExternalID],
			Variations:           variationsByProduct[row.ExternalID],
		})
	}

	for _, row := range components {
		snapshot.Components = append(snapshot.Components, domain.InternalComponent{
			ID:                   row.ID,
			Name:                 row.Name,
			SKU:                  row.SKU.String,
			StockQuantity:        row.StockQuantity,
			SupplierLeadTimeDays: int(row.LeadTimeDays.Int64),
		})
	}

	return snapshot, nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
