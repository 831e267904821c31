package forecast

import (
	"github.com/MerlinStacks/woodash-forecast/internal/domain"
)

// ResolveEntities flattens a catalog snapshot into the list of leaf entities
// the engine forecasts. A product or variation that is assembled from
// tracked components is excluded; its demand reaches the components through
// BOM propagation instead. Entities without numeric stock tracking are
// silently skipped.
func ResolveEntities(snapshot *domain.CatalogSnapshot) []domain.StockTrackedEntity {
	if snapshot == nil {
		return nil
	}

	entities := make([]domain.StockTrackedEntity, 0, len(snapshot.Products)+len(snapshot.Components))

	for _, product := range snapshot.Products {
		hasParentBOM := len(product.BOM) > 0

		anyVariationHasBOM := false
		hasStockManagedVariations := false
		for _, variation := range product.Variations {
			if len(variation.BOM) > 0 {
				anyVariationHasBOM = true
			}
			if variation.ManagesStock && variation.StockQuantity != nil {
				hasStockManagedVariations = true
			}
		}

		if !hasParentBOM && !anyVariationHasBOM && !hasStockManagedVariations &&
			product.ManagesStock && product.StockQuantity != nil {
			entities = append(entities, domain.StockTrackedEntity{
				ID:                   domain.ProductEntityID(product.ExternalID),
				Kind:                 domain.KindProduct,
				ExternalID:           product.ExternalID,
				Name:                 product.Name,
				SKU:                  product.SKU,
				CurrentStock:         *product.StockQuantity,
				SupplierLeadTimeDays: product.SupplierLeadTimeDays,
			})
		}

		for _, variation := range product.Variations {
			if hasParentBOM || len(variation.BOM) > 0 {
				continue
			}
			if !variation.ManagesStock || variation.StockQuantity == nil {
				continue
			}
			leadTime := variation.SupplierLeadTimeDays
			if leadTime == 0 {
				leadTime = product.SupplierLeadTimeDays
			}
			entities = append(entities, domain.StockTrackedEntity{
				ID:                   domain.VariationEntityID(variation.ExternalID),
				Kind:                 domain.KindVariation,
				ExternalID:           variation.ExternalID,
				ParentExternalID:     product.ExternalID,
				Name:                 variation.Name,
				SKU:                  variation.SKU,
				CurrentStock:         *variation.StockQuantity,
				SupplierLeadTimeDays: leadTime,
			})
		}
	}

	// Internal components have no catalog parent to defer to and are always
	// forecast targets.
	for _, component := range snapshot.Components {
		entities = append(entities, domain.StockTrackedEntity{
			ID:                   domain.ComponentEntityID(component.ID),
			Kind:                 domain.KindComponent,
			Name:                 component.Name,
			SKU:                  component.SKU,
			CurrentStock:         component.StockQuantity,
			SupplierLeadTimeDays: component.SupplierLeadTimeDays,
		})
	}

	return entities
}
