// Package core holds the domain types and the pure calculation rules of the
// ledger: dual-mode pricing, the due-date rule and document numbering.
package core

import "github.com/shopspring/decimal"

// PricingResult carries the effective financial fields of a document. The
// fields of the mode not in use are zero, never stale input values.
type PricingResult struct {
	DailyRate decimal.Decimal
	Days      decimal.Decimal
	TotalHT   decimal.Decimal
	TotalTTC  decimal.Decimal
}

// Price derives the stored financial fields from the pricing inputs.
//
// Rate mode: total = rate × days. Flat mode: total = flatAmount with rate and
// days forced to zero. TotalTTC is stored equal to TotalHT; the VAT-gated
// gross figure is a display concern, see GrossTotal.
func Price(mode PricingMode, rate, days, flatAmount decimal.Decimal) (PricingResult, error) {
	switch mode {
	case PricingRate:
		if rate.IsNegative() || days.IsNegative() {
			return PricingResult{}, ErrInvalidAmount
		}
		total := rate.Mul(days)
		return PricingResult{DailyRate: rate, Days: days, TotalHT: total, TotalTTC: total}, nil
	case PricingFlat:
		if flatAmount.IsNegative() {
			return PricingResult{}, ErrInvalidAmount
		}
		return PricingResult{DailyRate: decimal.Zero, Days: decimal.Zero, TotalHT: flatAmount, TotalTTC: flatAmount}, nil
	default:
		return PricingResult{}, ErrInvalidPricingMode
	}
}

// GrossTotal returns the tax-inclusive amount for display. Without an
// applicable VAT regime the net amount passes through untouched.
func GrossTotal(net decimal.Decimal, vatApplicable bool, vatRate decimal.Decimal) decimal.Decimal {
	if !vatApplicable {
		return net
	}
	return net.Mul(decimal.NewFromInt(1).Add(vatRate)).Round(2)
}
