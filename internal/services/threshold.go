package services

import (
	"context"

	"github.com/shopspring/decimal"
)

// ThresholdStatus reports annual paid revenue against the configured
// regulatory ceiling. The ceiling and alert percentage are configuration,
// not ledger state, so the arithmetic lives here and not in the aggregator.
type ThresholdStatus struct {
	Year    int
	Revenue decimal.Decimal
	Ceiling decimal.Decimal
	Percent decimal.Decimal
	Alert   bool
}

// EvaluateThreshold computes revenue/ceiling as a percentage. A ceiling of
// zero or less yields zero percent and no alert.
func EvaluateThreshold(year int, revenue, ceiling decimal.Decimal, alertPercent int) ThresholdStatus {
	status := ThresholdStatus{
		Year:    year,
		Revenue: revenue,
		Ceiling: ceiling,
		Percent: decimal.Zero,
	}
	if ceiling.LessThanOrEqual(decimal.Zero) {
		return status
	}
	status.Percent = revenue.Div(ceiling).Mul(decimal.NewFromInt(100))
	status.Alert = status.Percent.GreaterThanOrEqual(decimal.NewFromInt(int64(alertPercent)))
	return status
}

// Threshold evaluates the configured ceiling against the year's paid
// revenue.
func (s *DocumentService) Threshold(ctx context.Context, year int, ceiling decimal.Decimal, alertPercent int) (ThresholdStatus, error) {
	revenue, err := s.storage.AnnualRevenue(ctx, year)
	if err != nil {
		return ThresholdStatus{}, err
	}
	return EvaluateThreshold(year, revenue, ceiling, alertPercent), nil
}
