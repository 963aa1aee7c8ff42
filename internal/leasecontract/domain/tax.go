package domain

import (
	"encoding/json"

	scheduledomain "github.com/masarmall/leasing/internal/schedule/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Rates decodes the template's tax rows.
func (t TaxTemplate) Rates() ([]TaxRate, error) {
	if len(t.Taxes) == 0 {
		return nil, nil
	}
	var rates []TaxRate
	if err := json.Unmarshal(t.Taxes, &rates); err != nil {
		return nil, err
	}
	return rates, nil
}

// TaxFlag is Taxable when VAT is included and the template carries a tax row.
func TaxFlag(includeVAT bool, template *TaxTemplate) string {
	if !includeVAT || template == nil {
		return scheduledomain.TaxExempt
	}
	rates, err := template.Rates()
	if err != nil || len(rates) == 0 {
		return scheduledomain.TaxExempt
	}
	return scheduledomain.TaxTaxable
}

// ComputeTaxes applies each rate to amount, rounded to cents.
func ComputeTaxes(rates []TaxRate, amount decimal.Decimal) ([]TaxAmount, decimal.Decimal) {
	total := decimal.Zero
	out := make([]TaxAmount, 0, len(rates))
	for _, rate := range rates {
		value := amount.Mul(rate.Rate).Div(hundred).Round(2)
		total = total.Add(value)
		out = append(out, TaxAmount{
			AccountHead: rate.AccountHead,
			Rate:        rate.Rate,
			Amount:      value,
		})
	}
	return out, total
}
