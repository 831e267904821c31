package domain

import (
	"errors"
	"time"
)

// ErrEntityNotFound is returned by detail lookups when the requested entity
// is not currently a forecast target. Distinct from a zero-demand forecast.
var ErrEntityNotFound = errors.New("forecast entity not found")

// EntityKind says where a forecast entity originates in the catalog.
type EntityKind string

const (
	KindProduct   EntityKind = "product"
	KindVariation EntityKind = "variation"
	KindComponent EntityKind = "component"
)

// StockTrackedEntity is one forecastable inventory unit. Every entity is a
// leaf: products and variations that are assembled from tracked components
// never become entities, their demand lands on the components instead.
type StockTrackedEntity struct {
	ID                   string     `json:"id"`
	Kind                 EntityKind `json:"kind"`
	ExternalID           int64      `json:"external_id"`
	ParentExternalID     int64      `json:"parent_external_id,omitempty"`
	Name                 string     `json:"name"`
	SKU                  string     `json:"sku,omitempty"`
	CurrentStock         int        `json:"current_stock"`
	SupplierLeadTimeDays int        `json:"supplier_lead_time_days,omitempty"`
}

// DailySalesPoint is one per-entity per-day sold-quantity aggregate. Days
// without a sale are implicit zeros and never stored.
type DailySalesPoint struct {
	EntityID string    `json:"entity_id"`
	Date     time.Time `json:"date"`
	Quantity int       `json:"quantity"`
}

// BOMParentEdge is one directed component -> parent consumption edge.
// Effective consumption per unit of parent demand is
// QuantityPerUnit * (1 + WasteFactor).
type BOMParentEdge struct {
	ParentEntityID    string  `json:"parent_entity_id"`
	ParentExternalID  int64   `json:"parent_external_id"`
	ParentIsVariation bool    `json:"parent_is_variation"`
	QuantityPerUnit   float64 `json:"quantity_per_unit"`
	WasteFactor       float64 `json:"waste_factor"`
}

// BOMComponentMapping maps each component entity id to the parents that
// consume it. A component shared by multiple assemblies has one edge per
// parent.
type BOMComponentMapping map[string][]BOMParentEdge

// SkuForecast is the per-entity output of a forecast run. It is computed
// fresh on every run and never persisted.
type SkuForecast struct {
	EntityID              string         `json:"entity_id"`
	Kind                  EntityKind     `json:"kind"`
	ExternalID            int64          `json:"external_id"`
	Name                  string         `json:"name"`
	SKU                   string         `json:"sku,omitempty"`
	CurrentStock          int            `json:"current_stock"`
	DailyDemand           float64        `json:"daily_demand"`
	DerivedDemand         float64        `json:"derived_demand"`
	TotalDemand           float64        `json:"total_demand"`
	DaysUntilStockout     float64        `json:"days_until_stockout"`
	StockoutRisk          RiskTier       `json:"stockout_risk"`
	Confidence            float64        `json:"confidence"`
	SeasonalityFactor     float64        `json:"seasonality_factor"`
	TrendDirection        TrendDirection `json:"trend_direction"`
	TrendPercent          float64        `json:"trend_percent"`
	RecommendedReorderQty int            `json:"recommended_reorder_qty"`
	ReorderPoint          int            `json:"reorder_point"`
	LeadTimeDays          int            `json:"lead_time_days"`
}

// ForecastCurvePoint is one day of the projected stock-depletion curve with
// confidence bands, for charting detail views.
type ForecastCurvePoint struct {
	Date           string  `json:"date"`
	PredictedStock float64 `json:"predicted_stock"`
	UpperBound     float64 `json:"upper_bound"`
	LowerBound     float64 `json:"lower_bound"`
}

// SkuForecastDetail extends a forecast with the projection curve and the raw
// daily history behind it.
type SkuForecastDetail struct {
	SkuForecast
	ForecastCurve    []ForecastCurvePoint `json:"forecast_curve"`
	HistoricalDemand []DailySalesPoint    `json:"historical_demand"`
}

// AlertItem is the payload handed to the notification collaborator for one
// at-risk entity. Delivery is out of scope for the engine.
type AlertItem struct {
	EntityID              string   `json:"entity_id"`
	Name                  string   `json:"name"`
	SKU                   string   `json:"sku,omitempty"`
	CurrentStock          int      `json:"current_stock"`
	DaysUntilStockout     float64  `json:"days_until_stockout"`
	StockoutRisk          RiskTier `json:"stockout_risk"`
	RecommendedReorderQty int      `json:"recommended_reorder_qty"`
}

// AlertSummary aggregates an alert batch.
type AlertSummary struct {
	TotalAtRisk   int       `json:"total_at_risk"`
	CriticalCount int       `json:"critical_count"`
	HighCount     int       `json:"high_count"`
	MediumCount   int       `json:"medium_count"`
	ThresholdDays int       `json:"threshold_days"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// StockoutAlerts groups at-risk entities by tier for the alerting surface.
type StockoutAlerts struct {
	Critical []AlertItem  `json:"critical"`
	High     []AlertItem  `json:"high"`
	Medium   []AlertItem  `json:"medium"`
	Summary  AlertSummary `json:"summary"`
}
