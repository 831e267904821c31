package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/MerlinStacks/woodash-forecast/internal/alert"
	"github.com/MerlinStacks/woodash-forecast/internal/cache"
	"github.com/MerlinStacks/woodash-forecast/internal/config"
	"github.com/MerlinStacks/woodash-forecast/internal/domain"
	"github.com/MerlinStacks/woodash-forecast/internal/forecast"
)

// ForecastService fronts the engine with result caching, alert publication
// and report export. All engine work stays pure; side effects live here and
// are fire-and-forget.
type ForecastService struct {
	engine *forecast.Engine
	cache  cache.ForecastCache
	alerts alert.Sink
	store  ReportStore
	policy config.ForecastPolicy
}

// ReportStore is the slice of object storage the exporter needs.
type ReportStore interface {
	UploadObject(ctx context.Context, key string, contentType string, data []byte) error
}

func NewForecastService(engine *forecast.Engine, cacheImpl cache.ForecastCache, alertSink alert.Sink, store ReportStore, policy config.ForecastPolicy) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	if alertSink == nil {
		alertSink = alert.NewNoopSink()
	}
	return &ForecastService{
		engine: engine,
		cache:  cacheImpl,
		alerts: alertSink,
		store:  store,
		policy: policy,
	}
}

// GetSkuForecasts returns the full forecast list for an account, sorted by
// risk tier then ascending days-until-stockout, serving from cache when a
// fresh entry exists.
func (s *ForecastService) GetSkuForecasts(ctx context.Context, accountID int64, horizonDays int) ([]domain.SkuForecast, error) {
	if horizonDays <= 0 {
		horizonDays = s.policy.CurveHorizonDays
	}

	if forecasts, ok, err := s.cache.GetForecasts(ctx, accountID, horizonDays); err == nil && ok {
		return forecasts, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast: cache get failed")
	}

	forecasts, err := s.engine.Run(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetForecasts(ctx, accountID, horizonDays, forecasts); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set failed")
	}

	return forecasts, nil
}

// GetStockoutAlerts groups at-risk entities by tier for entities projected
// to stock out within thresholdDays. The batch is also handed to the
// notification sink; publication never blocks or fails the response.
func (s *ForecastService) GetStockoutAlerts(ctx context.Context, accountID int64, thresholdDays int) (*domain.StockoutAlerts, error) {
	if thresholdDays <= 0 {
		thresholdDays = s.policy.MediumRiskThresholdDays
	}

	forecasts, err := s.GetSkuForecasts(ctx, accountID, 0)
	if err != nil {
		return nil, err
	}

	alerts := &domain.StockoutAlerts{
		Critical: []domain.AlertItem{},
		High:     []domain.AlertItem{},
		Medium:   []domain.AlertItem{},
		Summary: domain.AlertSummary{
			ThresholdDays: thresholdDays,
			GeneratedAt:   time.Now().UTC(),
		},
	}

	batch := make([]domain.AlertItem, 0)
	for _, f := range forecasts {
		if f.StockoutRisk == domain.RiskLow || f.DaysUntilStockout > float64(thresholdDays) {
			continue
		}
		item := domain.AlertItem{
			EntityID:              f.EntityID,
			Name:                  f.Name,
			SKU:                   f.SKU,
			CurrentStock:          f.CurrentStock,
			DaysUntilStockout:     f.DaysUntilStockout,
			StockoutRisk:          f.StockoutRisk,
			RecommendedReorderQty: f.RecommendedReorderQty,
		}
		switch f.StockoutRisk {
		case domain.RiskCritical:
			alerts.Critical = append(alerts.Critical, item)
			alerts.Summary.CriticalCount++
		case domain.RiskHigh:
			alerts.High = append(alerts.High, item)
			alerts.Summary.HighCount++
		case domain.RiskMedium:
			alerts.Medium = append(alerts.Medium, item)
			alerts.Summary.MediumCount++
		}
		batch = append(batch, item)
	}
	alerts.Summary.TotalAtRisk = len(batch)

	s.publishAsync(ctx, accountID, batch)

	return alerts, nil
}

// GetSkuForecastDetail returns a single entity's forecast with the depletion
// curve and raw sales history.
func (s *ForecastService) GetSkuForecastDetail(ctx context.Context, accountID, externalID int64, horizonDays int) (*domain.SkuForecastDetail, error) {
	return s.engine.Detail(ctx, accountID, externalID, horizonDays)
}

// ExportAlertReport writes the current alert batch as CSV to object storage
// and returns the object key.
func (s *ForecastService) ExportAlertReport(ctx context.Context, accountID int64, thresholdDays int) (string, error) {
	if s.store == nil {
		return "", fmt.Errorf("report export is not configured")
	}

	alerts, err := s.GetStockoutAlerts(ctx, accountID, thresholdDays)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"entity_id", "name", "sku", "current_stock", "days_until_stockout", "risk", "recommended_reorder_qty"}); err != nil {
		return "", err
	}
	writeItems := func(items []domain.AlertItem) error {
		for _, item := range items {
			record := []string{
				item.EntityID,
				item.Name,
				item.SKU,
				strconv.Itoa(item.CurrentStock),
				strconv.FormatFloat(item.DaysUntilStockout, 'f', 1, 64),
				string(item.StockoutRisk),
				strconv.Itoa(item.RecommendedReorderQty),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	}
	for _, items := range [][]domain.AlertItem{alerts.Critical, alerts.High, alerts.Medium} {
		if err := writeItems(items); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	key := fmt.Sprintf("alerts/%d/%s.csv", accountID, time.Now().UTC().Format("20060102T150405"))
	if err := s.store.UploadObject(ctx, key, "text/csv", buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed uploading alert report: %w", err)
	}

	log.Info().Int64("account_id", accountID).Str("key", key).Int("items", alerts.Summary.TotalAtRisk).
		Msg("alert report exported")

	return key, nil
}

// publishAsync hands the batch to the notification sink without tying its
// fate to the caller's request. Failures are logged, never surfaced.
func (s *ForecastService) publishAsync(ctx context.Context, accountID int64, items []domain.AlertItem) {
	if len(items) == 0 {
		return
	}

	detached := context.WithoutCancel(ctx)
	go func() {
		publishCtx, cancel := context.WithTimeout(detached, 10*time.Second)
		defer cancel()
		if err := s.alerts.Publish(publishCtx, accountID, items); err != nil {
			log.Warn().Err(err).Int64("account_id", accountID).Int("items", len(items)).
				Msg("forecast: alert publish failed")
		}
	}()
}
