package forecast

import (
	"github.com/rs/zerolog/log"

	"github.com/MerlinStacks/woodash-forecast/internal/domain"
)

// ParentRefs collects the catalog references of every assembly parent found
// while building the component mappings, so parent sales can be fetched in
// one batched query instead of per-component round trips.
type ParentRefs struct {
	ProductIDs   []int64
	VariationIDs []int64
}

// BuildComponentMappings walks the snapshot's BOM definitions and inverts
// them into component -> parent edges, restricted to components that are
// forecast targets in this run. Edges referencing unknown components are
// skipped with a warning; the catalog guarantees acyclicity, so no cycle
// handling happens here.
func BuildComponentMappings(snapshot *domain.CatalogSnapshot, entityIDs map[string]struct{}) (domain.BOMComponentMapping, ParentRefs) {
	mappings := make(domain.BOMComponentMapping)
	refs := ParentRefs{}
	seenProducts := make(map[int64]struct{})
	seenVariations := make(map[int64]struct{})

	addEdges := func(items []domain.BOMItem, parentEntityID string, parentExternalID int64, isVariation bool) {
		attached := false
		for _, item := range items {
			componentEntityID := domain.ComponentEntityID(item.ComponentID)
			if _, ok := entityIDs[componentEntityID]; !ok {
				log.Warn().
					Str("component_id", item.ComponentID).
					Str("parent", parentEntityID).
					Msg("bom item references unknown component, skipping edge")
				continue
			}
			if item.QuantityPerUnit <= 0 {
				continue
			}
			mappings[componentEntityID] = append(mappings[componentEntityID], domain.BOMParentEdge{
				ParentEntityID:    parentEntityID,
				ParentExternalID:  parentExternalID,
				ParentIsVariation: isVariation,
				QuantityPerUnit:   item.QuantityPerUnit,
				WasteFactor:       item.WasteFactor,
			})
			attached = true
		}
		if !attached {
			return
		}
		if isVariation {
			if _, ok := seenVariations[parentExternalID]; !ok {
				seenVariations[parentExternalID] = struct{}{}
				refs.VariationIDs = append(refs.VariationIDs, parentExternalID)
			}
		} else {
			if _, ok := seenProducts[parentExternalID]; !ok {
				seenProducts[parentExternalID] = struct{}{}
				refs.ProductIDs = append(refs.ProductIDs, parentExternalID)
			}
		}
	}

	for _, product := range snapshot.Products {
		addEdges(product.BOM, domain.ProductEntityID(product.ExternalID), product.ExternalID, false)
		for _, variation := range product.Variations {
			addEdges(variation.BOM, domain.VariationEntityID(variation.ExternalID), variation.ExternalID, true)
		}
	}

	return mappings, refs
}

// DerivedDemand converts each assembly parent's predicted daily demand into
// demand on its components. Every edge is visited exactly once, so a
// component shared by several assemblies accumulates without double
// counting.
func DerivedDemand(mappings domain.BOMComponentMapping, parentDemand map[string]float64) map[string]float64 {
	derived := make(map[string]float64, len(mappings))
	for componentID, edges := range mappings {
		var total float64
		for _, edge := range edges {
			demand, ok := parentDemand[edge.ParentEntityID]
			if !ok || demand <= 0 {
				continue
			}
			total += demand * edge.QuantityPerUnit * (1 + edge.WasteFactor)
		}
		if total > 0 {
			derived[componentID] = total
		}
	}
	return derived
}
