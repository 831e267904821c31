package domain

// RiskTier classifies how close an entity is to a stockout.
type RiskTier string

const (
	RiskCritical RiskTier = "CRITICAL"
	RiskHigh     RiskTier = "HIGH"
	RiskMedium   RiskTier = "MEDIUM"
	RiskLow      RiskTier = "LOW"
)

var riskSeverity = map[RiskTier]int{
	RiskCritical: 0,
	RiskHigh:     1,
	RiskMedium:   2,
	RiskLow:      3,
}

// Severity returns the sort rank of a tier, most severe first.
func (r RiskTier) Severity() int {
	if rank, ok := riskSeverity[r]; ok {
		return rank
	}
	return len(riskSeverity)
}

// MoreSevereThan reports whether r outranks other.
func (r RiskTier) MoreSevereThan(other RiskTier) bool {
	return r.Severity() < other.Severity()
}

// TrendDirection describes the recent sales trajectory of an entity.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)
