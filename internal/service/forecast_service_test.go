package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/MerlinStacks/woodash-forecast/internal/alert"
	"github.com/MerlinStacks/woodash-forecast/internal/cache"
	"github.com/MerlinStacks/woodash-forecast/internal/config"
	"github.com/MerlinStacks/woodash-forecast/internal/domain"
	"github.com/MerlinStacks/woodash-forecast/internal/forecast"
)

type fakeCatalog struct {
	mu       sync.Mutex
	snapshot *domain.CatalogSnapshot
	err      error
}

func (f *fakeCatalog) Snapshot(ctx context.Context, accountID int64) (*domain.CatalogSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshot, nil
}

func (f *fakeCatalog) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakeSales struct {
	data map[string][]domain.DailySalesPoint
}

func (f *fakeSales) DailySales(ctx context.Context, accountID int64, productIDs, variationIDs []int64, days int) (map[string][]domain.DailySalesPoint, error) {
	out := make(map[string][]domain.DailySalesPoint)
	for _, id := range productIDs {
		key := domain.ProductEntityID(id)
		if points, ok := f.data[key]; ok {
			out[key] = points
		}
	}
	for _, id := range variationIDs {
		key := domain.VariationEntityID(id)
		if points, ok := f.data[key]; ok {
			out[key] = points
		}
	}
	return out, nil
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]domain.SkuForecast
	gets    int
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]domain.SkuForecast{}}
}

func (c *memoryCache) GetForecasts(ctx context.Context, accountID int64, horizonDays int) ([]domain.SkuForecast, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	forecasts, ok := c.entries[fmt.Sprintf("%d:%d", accountID, horizonDays)]
	return forecasts, ok, nil
}

func (c *memoryCache) SetForecasts(ctx context.Context, accountID int64, horizonDays int, forecasts []domain.SkuForecast) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.entries[fmt.Sprintf("%d:%d", accountID, horizonDays)] = forecasts
	return nil
}

func (c *memoryCache) InvalidateAccount(ctx context.Context, accountID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string][]domain.SkuForecast{}
	return nil
}

type publishedBatch struct {
	accountID int64
	items     []domain.AlertItem
}

type captureSink struct {
	batches chan publishedBatch
}

func newCaptureSink() *captureSink {
	return &captureSink{batches: make(chan publishedBatch, 4)}
}

func (s *captureSink) Publish(ctx context.Context, accountID int64, items []domain.AlertItem) error {
	s.batches <- publishedBatch{accountID: accountID, items: items}
	return nil
}

type memoryStore struct {
	mu          sync.Mutex
	key         string
	contentType string
	data        []byte
}

func (m *memoryStore) UploadObject(ctx context.Context, key string, contentType string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.key = key
	m.contentType = contentType
	m.data = append([]byte(nil), data...)
	return nil
}

func intPtr(v int) *int {
	return &v
}

// steadySales generates perDay units on each of the trailing 90 days ending
// yesterday, which keeps seasonality neutral and the daily demand exact.
func steadySales(entityID string, perDay int) []domain.DailySalesPoint {
	end := time.Now().UTC().Truncate(24 * time.Hour)
	points := make([]domain.DailySalesPoint, 0, 90)
	for i := 90; i >= 1; i-- {
		points = append(points, domain.DailySalesPoint{
			EntityID: entityID,
			Date:     end.AddDate(0, 0, -i),
			Quantity: perDay,
		})
	}
	return points
}

// testFixture builds a service over three products selling 2/day: one about
// to stock out, one inside the high-risk window, one comfortably stocked.
func testFixture(cacheImpl *memoryCache, sink alert.Sink, store ReportStore) (*ForecastService, *fakeCatalog) {
	catalog := &fakeCatalog{snapshot: &domain.CatalogSnapshot{
		Products: []domain.CatalogProduct{
			{ExternalID: 1, Name: "Urgent", SKU: "URG-1", ManagesStock: true, StockQuantity: intPtr(4)},
			{ExternalID: 2, Name: "Soon", SKU: "SN-1", ManagesStock: true, StockQuantity: intPtr(20)},
			{ExternalID: 3, Name: "Safe", SKU: "SF-1", ManagesStock: true, StockQuantity: intPtr(200)},
		},
	}}
	sales := &fakeSales{data: map[string][]domain.DailySalesPoint{
		"product:1": steadySales("product:1", 2),
		"product:2": steadySales("product:2", 2),
		"product:3": steadySales("product:3", 2),
	}}

	policy := config.DefaultForecastPolicy()
	engine := forecast.NewEngine(catalog, sales, policy)

	var cacheArg cache.ForecastCache
	if cacheImpl != nil {
		cacheArg = cacheImpl
	}
	return NewForecastService(engine, cacheArg, sink, store, policy), catalog
}

func TestGetSkuForecasts_ServesFromCache(t *testing.T) {
	cacheImpl := newMemoryCache()
	svc, catalog := testFixture(cacheImpl, nil, nil)

	first, err := svc.GetSkuForecasts(context.Background(), 1, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 forecasts, got %d", len(first))
	}
	if cacheImpl.sets != 1 {
		t.Fatalf("expected one cache write, got %d", cacheImpl.sets)
	}

	// Break the catalog: the second call must come from the cache, not a
	// fresh engine run.
	catalog.fail(errors.New("connection refused"))

	second, err := svc.GetSkuForecasts(context.Background(), 1, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second) != 3 {
		t.Errorf("expected cached list of 3, got %d", len(second))
	}
	if cacheImpl.sets != 1 {
		t.Errorf("cache hit must not rewrite the entry, writes=%d", cacheImpl.sets)
	}
}

func TestGetStockoutAlerts_GroupsByTier(t *testing.T) {
	svc, _ := testFixture(nil, nil, nil)

	alerts, err := svc.GetStockoutAlerts(context.Background(), 1, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(alerts.Critical) != 1 || alerts.Critical[0].Name != "Urgent" {
		t.Errorf("expected Urgent in critical tier, got %+v", alerts.Critical)
	}
	if len(alerts.High) != 1 || alerts.High[0].Name != "Soon" {
		t.Errorf("expected Soon in high tier, got %+v", alerts.High)
	}
	if len(alerts.Medium) != 0 {
		t.Errorf("expected empty medium tier, got %+v", alerts.Medium)
	}
	if alerts.Summary.TotalAtRisk != 2 || alerts.Summary.CriticalCount != 1 || alerts.Summary.HighCount != 1 {
		t.Errorf("unexpected summary: %+v", alerts.Summary)
	}
	if alerts.Summary.ThresholdDays != 30 {
		t.Errorf("expected threshold 30 in summary, got %d", alerts.Summary.ThresholdDays)
	}
}

func TestGetStockoutAlerts_ThresholdFilters(t *testing.T) {
	svc, _ := testFixture(nil, nil, nil)

	// Only the 2-day entity stocks out within 5 days.
	alerts, err := svc.GetStockoutAlerts(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if alerts.Summary.TotalAtRisk != 1 {
		t.Errorf("expected 1 entity within 5 days, got %d", alerts.Summary.TotalAtRisk)
	}
	if len(alerts.High) != 0 {
		t.Errorf("10-day entity must be filtered out, got %+v", alerts.High)
	}
}

func TestGetStockoutAlerts_PublishesBatch(t *testing.T) {
	sink := newCaptureSink()
	svc, _ := testFixture(nil, sink, nil)

	if _, err := svc.GetStockoutAlerts(context.Background(), 7, 30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case batch := <-sink.batches:
		if batch.accountID != 7 {
			t.Errorf("expected account 7 in published batch, got %d", batch.accountID)
		}
		if len(batch.items) != 2 {
			t.Errorf("expected 2 published items, got %d", len(batch.items))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("alert batch was never published")
	}
}

func TestExportAlertReport_WritesCSV(t *testing.T) {
	store := &memoryStore{}
	svc, _ := testFixture(nil, nil, store)

	key, err := svc.ExportAlertReport(context.Background(), 1, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(key, "alerts/1/") || !strings.HasSuffix(key, ".csv") {
		t.Errorf("unexpected object key: %s", key)
	}
	if store.key != key || store.contentType != "text/csv" {
		t.Errorf("unexpected upload: key=%s content-type=%s", store.key, store.contentType)
	}

	records, err := csv.NewReader(bytes.NewReader(store.data)).ReadAll()
	if err != nil {
		t.Fatalf("uploaded payload is not valid CSV: %v", err)
	}
	if len(records) != 3 { // header + critical + high
		t.Fatalf("expected 3 CSV records, got %d", len(records))
	}
	if records[0][0] != "entity_id" {
		t.Errorf("expected header row, got %v", records[0])
	}
	if records[1][1] != "Urgent" || records[2][1] != "Soon" {
		t.Errorf("expected rows ordered by severity, got %v / %v", records[1], records[2])
	}
}

func TestExportAlertReport_Unconfigured(t *testing.T) {
	svc, _ := testFixture(nil, nil, nil)

	if _, err := svc.ExportAlertReport(context.Background(), 1, 30); err == nil {
		t.Error("expected error when no report store is configured")
	}
}

func TestGetSkuForecastDetail_NotFound(t *testing.T) {
	svc, _ := testFixture(nil, nil, nil)

	_, err := svc.GetSkuForecastDetail(context.Background(), 1, 999, 30)
	if !errors.Is(err, domain.ErrEntityNotFound) {
		t.Errorf("expected ErrEntityNotFound, got %v", err)
	}
}
