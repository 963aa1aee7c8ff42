package domain

import (
	"testing"

	scheduledomain "github.com/masarmall/leasing/internal/schedule/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestTaxFlag(t *testing.T) {
	withTax := &TaxTemplate{Taxes: datatypes.JSON(`[{"account_head":"VAT","rate":"11"}]`)}
	empty := &TaxTemplate{Taxes: datatypes.JSON(`[]`)}

	assert.Equal(t, scheduledomain.TaxTaxable, TaxFlag(true, withTax))
	assert.Equal(t, scheduledomain.TaxExempt, TaxFlag(false, withTax))
	assert.Equal(t, scheduledomain.TaxExempt, TaxFlag(true, empty))
	assert.Equal(t, scheduledomain.TaxExempt, TaxFlag(true, nil))
}

func TestComputeTaxes(t *testing.T) {
	template := TaxTemplate{Taxes: datatypes.JSON(`[{"account_head":"VAT","rate":"11"},{"account_head":"Levy","rate":"0.5"}]`)}
	rates, err := template.Rates()
	require.NoError(t, err)

	lines, total := ComputeTaxes(rates, decimal.NewFromInt(1000))

	require.Len(t, lines, 2)
	assert.True(t, decimal.NewFromInt(110).Equal(lines[0].Amount))
	assert.True(t, decimal.NewFromInt(5).Equal(lines[1].Amount))
	assert.True(t, decimal.NewFromInt(115).Equal(total))
}
