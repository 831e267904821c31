package forecast

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/MerlinStacks/woodash-forecast/internal/config"
	"github.com/MerlinStacks/woodash-forecast/internal/domain"
	"github.com/MerlinStacks/woodash-forecast/internal/repository"
)

// Engine runs the full forecast computation for one account: resolve
// entities, fetch history, predict direct demand, propagate BOM demand,
// classify risk. A run is a pure function of the collaborator snapshots; it
// holds no state between invocations and writes nothing back.
type Engine struct {
	catalog    repository.CatalogReader
	aggregator *Aggregator
	predictor  *Predictor
	risk       *RiskCalculator
	policy     config.ForecastPolicy

	// now is swappable for deterministic tests.
	now func() time.Time
}

func NewEngine(catalog repository.CatalogReader, sales repository.SalesHistoryReader, policy config.ForecastPolicy) *Engine {
	return &Engine{
		catalog:    catalog,
		aggregator: NewAggregator(sales),
		predictor:  NewPredictor(policy),
		risk:       NewRiskCalculator(policy),
		policy:     policy,
		now:        time.Now,
	}
}

type runResult struct {
	forecasts []domain.SkuForecast
	entities  map[string]domain.StockTrackedEntity
	history   map[string][]domain.DailySalesPoint
}

// Run computes the sorted forecast list for an account. Collaborator
// failures degrade to empty inputs for the affected entities; a run never
// fails because one entity's data is missing.
func (e *Engine) Run(ctx context.Context, accountID int64) ([]domain.SkuForecast, error) {
	result, err := e.compute(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return result.forecasts, nil
}

// Detail computes the forecast for a single catalog entity plus its
// projection curve and raw sales history. Returns domain.ErrEntityNotFound
// when the external id does not resolve to a current forecast target.
func (e *Engine) Detail(ctx context.Context, accountID, externalID int64, horizonDays int) (*domain.SkuForecastDetail, error) {
	if horizonDays <= 0 {
		horizonDays = e.policy.CurveHorizonDays
	}

	result, err := e.compute(ctx, accountID)
	if err != nil {
		return nil, err
	}

	for _, forecast := range result.forecasts {
		if forecast.ExternalID == 0 || forecast.ExternalID != externalID {
			continue
		}
		now := e.now()
		return &domain.SkuForecastDetail{
			SkuForecast: forecast,
			ForecastCurve: GenerateCurve(forecast.CurrentStock, forecast.TotalDemand,
				forecast.Confidence, horizonDays, now),
			HistoricalDemand: WindowPoints(result.history[forecast.EntityID], e.policy.LookbackDays, now),
		}, nil
	}

	return nil, domain.ErrEntityNotFound
}

func (e *Engine) compute(ctx context.Context, accountID int64) (*runResult, error) {
	empty := &runResult{
		forecasts: []domain.SkuForecast{},
		entities:  map[string]domain.StockTrackedEntity{},
		history:   map[string][]domain.DailySalesPoint{},
	}

	snapshot, err := e.catalog.Snapshot(ctx, accountID)
	if err != nil {
		// Catalog unavailable degrades the run to an empty result rather
		// than failing the caller.
		log.Warn().Err(err).Int64("account_id", accountID).Msg("catalog snapshot failed, returning empty forecast")
		return empty, nil
	}

	entities := ResolveEntities(snapshot)
	if len(entities) == 0 {
		return empty, nil
	}

	entityIDs := make(map[string]struct{}, len(entities))
	entityByID := make(map[string]domain.StockTrackedEntity, len(entities))
	var productIDs, variationIDs []int64
	for _, entity := range entities {
		entityIDs[entity.ID] = struct{}{}
		entityByID[entity.ID] = entity
		switch entity.Kind {
		case domain.KindProduct:
			productIDs = append(productIDs, entity.ExternalID)
		case domain.KindVariation:
			variationIDs = append(variationIDs, entity.ExternalID)
		}
	}

	mappings, parentRefs := BuildComponentMappings(snapshot, entityIDs)

	// Direct-entity sales and BOM-parent sales are independent read-only
	// queries; fetch them concurrently. The window covers a full year so
	// seasonality and the prediction window come from a single batch.
	var (
		directSales map[string][]domain.DailySalesPoint
		parentSales map[string][]domain.DailySalesPoint
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		directSales = e.aggregator.Fetch(gctx, accountID, productIDs, variationIDs, e.policy.SeasonalityWindowDays)
		return nil
	})
	g.Go(func() error {
		parentSales = e.aggregator.Fetch(gctx, accountID, parentRefs.ProductIDs, parentRefs.VariationIDs, e.policy.SeasonalityWindowDays)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := e.now()
	targetMonth := now.Month()

	// Parent demand is computed from the parent's own sales with the same
	// window as direct demand, whether or not the parent is itself a
	// forecast target.
	parentDemand := make(map[string]float64)
	for componentID := range mappings {
		for _, edge := range mappings[componentID] {
			if _, done := parentDemand[edge.ParentEntityID]; done {
				continue
			}
			points := parentSales[edge.ParentEntityID]
			season := MonthlyCoefficients(points, e.policy.SeasonalityMinSpanDays)
			series := DenseSeries(points, e.policy.LookbackDays, now)
			parentDemand[edge.ParentEntityID] = e.predictor.Predict(series, targetMonth, season).DailyDemand
		}
	}

	derived := DerivedDemand(mappings, parentDemand)

	forecasts := make([]domain.SkuForecast, 0, len(entities))
	for _, entity := range entities {
		points := directSales[entity.ID]
		season := MonthlyCoefficients(points, e.policy.SeasonalityMinSpanDays)
		series := DenseSeries(points, e.policy.LookbackDays, now)
		prediction := e.predictor.Predict(series, targetMonth, season)

		totalDemand := prediction.DailyDemand + derived[entity.ID]
		leadTime := e.risk.LeadTime(entity.SupplierLeadTimeDays)
		days, tier := e.risk.Classify(entity.CurrentStock, totalDemand, leadTime)
		reorderPoint, reorderQty := e.risk.Reorder(totalDemand, leadTime)

		forecasts = append(forecasts, domain.SkuForecast{
			EntityID:              entity.ID,
			Kind:                  entity.Kind,
			ExternalID:            entity.ExternalID,
			Name:                  entity.Name,
			SKU:                   entity.SKU,
			CurrentStock:          entity.CurrentStock,
			DailyDemand:           prediction.DailyDemand,
			DerivedDemand:         derived[entity.ID],
			TotalDemand:           totalDemand,
			DaysUntilStockout:     days,
			StockoutRisk:          tier,
			Confidence:            prediction.Confidence,
			SeasonalityFactor:     prediction.SeasonalityFactor,
			TrendDirection:        prediction.TrendDirection,
			TrendPercent:          prediction.TrendPercent,
			RecommendedReorderQty: reorderQty,
			ReorderPoint:          reorderPoint,
			LeadTimeDays:          leadTime,
		})
	}

	sort.SliceStable(forecasts, func(i, j int) bool {
		if forecasts[i].StockoutRisk != forecasts[j].StockoutRisk {
			return forecasts[i].StockoutRisk.Severity() < forecasts[j].StockoutRisk.Severity()
		}
		return forecasts[i].DaysUntilStockout < forecasts[j].DaysUntilStockout
	})

	return &runResult{
		forecasts: forecasts,
		entities:  entityByID,
		history:   directSales,
	}, nil
}
