package forecast

import (
	"math"

	"github.com/MerlinStacks/woodash-forecast/internal/config"
	"github.com/MerlinStacks/woodash-forecast/internal/domain"
)

// RiskCalculator turns stock, demand and lead time into days-until-stockout,
// a risk tier and reorder recommendations. Tier thresholds come from policy
// configuration, not from the algorithm.
type RiskCalculator struct {
	policy config.ForecastPolicy
}

func NewRiskCalculator(policy config.ForecastPolicy) *RiskCalculator {
	return &RiskCalculator{policy: policy}
}

// LeadTime returns the effective supplier lead time, falling back to the
// policy default when the entity has none on record.
func (rc *RiskCalculator) LeadTime(supplierLeadTimeDays int) int {
	if supplierLeadTimeDays > 0 {
		return supplierLeadTimeDays
	}
	return rc.policy.DefaultLeadTimeDays
}

// Classify computes days-until-stockout and the risk tier. Zero demand means
// no depletion: the sentinel day count is reported and the tier is LOW
// regardless of stock on hand.
func (rc *RiskCalculator) Classify(currentStock int, totalDemand float64, leadTimeDays int) (float64, domain.RiskTier) {
	if totalDemand <= 0 {
		return rc.policy.StockoutSentinelDays, domain.RiskLow
	}

	days := float64(currentStock) / totalDemand

	switch {
	case days <= float64(leadTimeDays):
		return days, domain.RiskCritical
	case days <= float64(leadTimeDays+rc.policy.HighRiskBufferDays):
		return days, domain.RiskHigh
	case days <= float64(rc.policy.MediumRiskThresholdDays):
		return days, domain.RiskMedium
	default:
		return days, domain.RiskLow
	}
}

// Reorder computes the reorder point and the recommended order quantity,
// both covering demand through replenishment plus the safety-stock buffer.
func (rc *RiskCalculator) Reorder(totalDemand float64, leadTimeDays int) (reorderPoint, reorderQty int) {
	if totalDemand <= 0 {
		return 0, 0
	}
	coverDays := float64(leadTimeDays + rc.policy.SafetyStockDays)
	qty := int(math.Ceil(totalDemand * coverDays))
	if qty < 0 {
		qty = 0
	}
	return qty, qty
}
