package finance

import (
	"testing"

	"buildflow/pkg/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestCompute(t *testing.T) {
	cases := []struct {
		name     string
		total    string
		discount string
		taxRate  string
		taxable  string
		tax      string
		final    string
	}{
		{"standard quote", "1000", "100", "10", "900", "90", "990"},
		{"no discount no tax", "500", "0", "0", "500", "0", "500"},
		{"full discount", "250", "250", "20", "0", "0", "0"},
		{"max tax rate", "100", "0", "100", "100", "100", "200"},
		{"fractional rounding", "100.05", "0.05", "7.5", "100", "7.5", "107.5"},
		{"half rounds up", "0.03", "0", "50", "0.03", "0.02", "0.05"},
		{"zero everything", "0", "0", "0", "0", "0", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Compute(d(tc.total), d(tc.discount), d(tc.taxRate))
			require.NoError(t, err)
			assert.True(t, got.TaxableAmount.Equal(d(tc.taxable)), "taxable: got %s want %s", got.TaxableAmount, tc.taxable)
			assert.True(t, got.TaxAmount.Equal(d(tc.tax)), "tax: got %s want %s", got.TaxAmount, tc.tax)
			assert.True(t, got.FinalAmount.Equal(d(tc.final)), "final: got %s want %s", got.FinalAmount, tc.final)
		})
	}
}

func TestComputeValidation(t *testing.T) {
	cases := []struct {
		name     string
		total    string
		discount string
		taxRate  string
		field    string
	}{
		{"negative total", "-1", "0", "10", "total_amount"},
		{"negative discount", "100", "-5", "10", "discount_amount"},
		{"discount exceeds total", "100", "100.01", "10", "discount_amount"},
		{"negative tax rate", "100", "0", "-0.01", "tax_rate"},
		{"tax rate above 100", "100", "0", "100.01", "tax_rate"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compute(d(tc.total), d(tc.discount), d(tc.taxRate))
			require.Error(t, err)

			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

// final must always equal round2((total-discount)*(1+rate/100)) for a spread
// of values, not just the hand-picked cases above.
func TestComputeFinalMatchesClosedForm(t *testing.T) {
	totals := []string{"0", "0.01", "99.99", "1000", "123456.78"}
	rates := []string{"0", "5", "7.25", "33.33", "100"}

	one := decimal.NewFromInt(1)
	for _, ts := range totals {
		for _, rs := range rates {
			total, rate := d(ts), d(rs)
			discount := total.Div(decimal.NewFromInt(3)).Round(2)

			got, err := Compute(total, discount, rate)
			require.NoError(t, err)

			want := total.Sub(discount).Mul(one.Add(rate.Div(hundred))).Round(2)
			assert.True(t, got.FinalAmount.Equal(want),
				"total=%s rate=%s: got %s want %s", ts, rs, got.FinalAmount, want)
		}
	}
}
