package domain

import "fmt"

// CatalogSnapshot is a point-in-time, read-only view of an account's catalog
// as returned by the catalog collaborator. It is built once at the
// collaborator boundary; nothing downstream mutates it.
type CatalogSnapshot struct {
	Products   []CatalogProduct
	Components []InternalComponent
}

// CatalogProduct is a catalog product, possibly with variations and an
// assembly (BOM) definition keyed at the parent level.
type CatalogProduct struct {
	ExternalID           int64
	Name                 string
	SKU                  string
	ManagesStock         bool
	StockQuantity        *int
	SupplierLeadTimeDays int
	BOM                  []BOMItem
	Variations           []CatalogVariation
}

// CatalogVariation is a single variation of a parent product. A variation may
// track stock independently and may carry its own BOM.
type CatalogVariation struct {
	ExternalID           int64
	Name                 string
	SKU                  string
	ManagesStock         bool
	StockQuantity        *int
	SupplierLeadTimeDays int
	BOM                  []BOMItem
}

// BOMItem declares that one unit of the owning product or variation consumes
// QuantityPerUnit units of the referenced component, plus waste.
type BOMItem struct {
	ComponentID     string
	QuantityPerUnit float64
	WasteFactor     float64
}

// InternalComponent is a stock-tracked item with no catalog representation,
// consumed only through assemblies or sold internally.
type InternalComponent struct {
	ID                   string
	Name                 string
	SKU                  string
	StockQuantity        int
	SupplierLeadTimeDays int
}

// Entity id helpers. Forecast entities are keyed uniformly regardless of
// whether they originate from a product, a variation or an internal
// component, so sales series and BOM edges can share one keyspace.

func ProductEntityID(externalID int64) string {
	return fmt.Sprintf("product:%d", externalID)
}

func VariationEntityID(externalID int64) string {
	return fmt.Sprintf("variation:%d", externalID)
}

func ComponentEntityID(id string) string {
	return "component:" + id
}
