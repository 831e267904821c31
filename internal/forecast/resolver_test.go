package forecast

import (
	"testing"

	"github.com/MerlinStacks/woodash-forecast/internal/domain"
)

func intPtr(v int) *int {
	return &v
}

func TestResolveEntities_SimpleProduct(t *testing.T) {
	snapshot := &domain.CatalogSnapshot{
		Products: []domain.CatalogProduct{
			{
				ExternalID:           10,
				Name:                 "Plain Widget",
				SKU:                  "PW-1",
				ManagesStock:         true,
				StockQuantity:        intPtr(25),
				SupplierLeadTimeDays: 5,
			},
		},
	}

	entities := ResolveEntities(snapshot)
	if len(entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(entities))
	}
	e := entities[0]
	if e.ID != "product:10" || e.Kind != domain.KindProduct {
		t.Errorf("unexpected entity identity: %+v", e)
	}
	if e.CurrentStock != 25 || e.SupplierLeadTimeDays != 5 {
		t.Errorf("unexpected stock fields: %+v", e)
	}
}

func TestResolveEntities_ExclusionRules(t *testing.T) {
	tests := []struct {
		name    string
		product domain.CatalogProduct
		wantIDs []string
	}{
		{
			name: "parent_with_bom_excluded",
			product: domain.CatalogProduct{
				ExternalID:    20,
				ManagesStock:  true,
				StockQuantity: intPtr(10),
				BOM:           []domain.BOMItem{{ComponentID: "c1", QuantityPerUnit: 2}},
			},
			wantIDs: nil,
		},
		{
			name: "empty_bom_treated_as_no_bom",
			product: domain.CatalogProduct{
				ExternalID:    21,
				ManagesStock:  true,
				StockQuantity: intPtr(10),
				BOM:           []domain.BOMItem{},
			},
			wantIDs: []string{"product:21"},
		},
		{
			name: "parent_without_numeric_stock_excluded",
			product: domain.CatalogProduct{
				ExternalID:   22,
				ManagesStock: true,
			},
			wantIDs: nil,
		},
		{
			name: "parent_not_managing_stock_excluded",
			product: domain.CatalogProduct{
				ExternalID:    23,
				ManagesStock:  false,
				StockQuantity: intPtr(10),
			},
			wantIDs: nil,
		},
		{
			name: "stock_managed_variation_displaces_parent",
			product: domain.CatalogProduct{
				ExternalID:    24,
				ManagesStock:  true,
				StockQuantity: intPtr(10),
				Variations: []domain.CatalogVariation{
					{ExternalID: 240, ManagesStock: true, StockQuantity: intPtr(4)},
				},
			},
			wantIDs: []string{"variation:240"},
		},
		{
			name: "variation_with_own_bom_excluded",
			product: domain.CatalogProduct{
				ExternalID:    25,
				ManagesStock:  true,
				StockQuantity: intPtr(10),
				Variations: []domain.CatalogVariation{
					{ExternalID: 250, ManagesStock: true, StockQuantity: intPtr(4),
						BOM: []domain.BOMItem{{ComponentID: "c1", QuantityPerUnit: 1}}},
					{ExternalID: 251, ManagesStock: true, StockQuantity: intPtr(6)},
				},
			},
			wantIDs: []string{"variation:251"},
		},
		{
			name: "parent_bom_excludes_all_variations",
			product: domain.CatalogProduct{
				ExternalID:    26,
				ManagesStock:  true,
				StockQuantity: intPtr(10),
				BOM:           []domain.BOMItem{{ComponentID: "c1", QuantityPerUnit: 1}},
				Variations: []domain.CatalogVariation{
					{ExternalID: 260, ManagesStock: true, StockQuantity: intPtr(4)},
				},
			},
			wantIDs: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities := ResolveEntities(&domain.CatalogSnapshot{Products: []domain.CatalogProduct{tt.product}})
			got := make([]string, 0, len(entities))
			for _, e := range entities {
				got = append(got, e.ID)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("expected ids %v, got %v", tt.wantIDs, got)
			}
			for i := range got {
				if got[i] != tt.wantIDs[i] {
					t.Errorf("expected ids %v, got %v", tt.wantIDs, got)
				}
			}
		})
	}
}

func TestResolveEntities_ComponentsAlwaysIncluded(t *testing.T) {
	snapshot := &domain.CatalogSnapshot{
		Components: []domain.InternalComponent{
			{ID: "core", Name: "Widget Core", StockQuantity: 50, SupplierLeadTimeDays: 7},
			{ID: "shell", Name: "Widget Shell", StockQuantity: 0},
		},
	}

	entities := ResolveEntities(snapshot)
	if len(entities) != 2 {
		t.Fatalf("expected 2 component entities, got %d", len(entities))
	}
	if entities[0].ID != "component:core" || entities[0].Kind != domain.KindComponent {
		t.Errorf("unexpected component entity: %+v", entities[0])
	}
	if entities[0].ExternalID != 0 {
		t.Errorf("components must have no external id, got %d", entities[0].ExternalID)
	}
}

func TestResolveEntities_VariationInheritsParentLeadTime(t *testing.T) {
	snapshot := &domain.CatalogSnapshot{
		Products: []domain.CatalogProduct{
			{
				ExternalID:           30,
				ManagesStock:         false,
				SupplierLeadTimeDays: 12,
				Variations: []domain.CatalogVariation{
					{ExternalID: 300, ManagesStock: true, StockQuantity: intPtr(8)},
				},
			},
		},
	}

	entities := ResolveEntities(snapshot)
	if len(entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(entities))
	}
	if entities[0].SupplierLeadTimeDays != 12 {
		t.Errorf("expected inherited lead time 12, got %d", entities[0].SupplierLeadTimeDays)
	}
	if entities[0].ParentExternalID != 30 {
		t.Errorf("expected parent external id 30, got %d", entities[0].ParentExternalID)
	}
}
