package finance

import (
	"buildflow/pkg/apperr"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Breakdown holds the derived monetary figures for a quote. All values are
// rounded to 2 decimal places, half away from zero.
type Breakdown struct {
	TaxableAmount decimal.Decimal
	TaxAmount     decimal.Decimal
	FinalAmount   decimal.Decimal
}

// Compute derives taxable, tax, and final amounts from the three driving
// fields. It is the single place financial math happens: create and update
// paths both go through here so the stored derived columns can never drift.
//
//	taxable = total - discount
//	tax     = taxable * rate / 100
//	final   = taxable + tax
func Compute(totalAmount, discountAmount, taxRate decimal.Decimal) (Breakdown, error) {
	if totalAmount.IsNegative() {
		return Breakdown{}, apperr.NewValidation("total_amount", "must not be negative")
	}
	if discountAmount.IsNegative() {
		return Breakdown{}, apperr.NewValidation("discount_amount", "must not be negative")
	}
	if discountAmount.GreaterThan(totalAmount) {
		return Breakdown{}, apperr.NewValidation("discount_amount", "must not exceed total_amount")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(hundred) {
		return Breakdown{}, apperr.NewValidation("tax_rate", "must be between 0 and 100")
	}

	taxable := totalAmount.Sub(discountAmount)
	tax := taxable.Mul(taxRate).Div(hundred)

	return Breakdown{
		TaxableAmount: taxable.Round(2),
		TaxAmount:     tax.Round(2),
		FinalAmount:   taxable.Add(tax).Round(2),
	}, nil
}
