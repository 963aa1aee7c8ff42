package service

import (
	"github.com/masarmall/leasing/internal/leaseline/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Recompute derives every line amount and the document totals.
// Fixed-rate lines are priced first; percentage lines apply to their sum.
func Recompute(lines []domain.LeaseLine) domain.LeaseDocument {
	out := make([]domain.LeaseLine, len(lines))
	copy(out, lines)

	fixedTotal := decimal.Zero
	for i := range out {
		if !out[i].IsFixedRateItem {
			continue
		}
		out[i].Amount = domain.NewNumeric(fixedAmount(out[i]))
		fixedTotal = fixedTotal.Add(out[i].Amount.Decimal())
	}

	for i := range out {
		if out[i].IsFixedRateItem {
			continue
		}
		out[i].Amount = domain.NewNumeric(percentageAmount(out[i], fixedTotal))
	}

	doc := domain.LeaseDocument{Lines: out, TotalAmount: decimal.Zero}
	for _, line := range out {
		if !line.Amount.Defined() {
			continue
		}
		doc.TotalLineCount++
		doc.TotalAmount = doc.TotalAmount.Add(line.Amount.Decimal())
	}
	return doc
}

func fixedAmount(line domain.LeaseLine) decimal.Decimal {
	if line.IsAreaBased {
		return line.Area.Decimal().Mul(line.Rate.Decimal())
	}
	return line.Rate.Decimal()
}

func percentageAmount(line domain.LeaseLine, fixedTotal decimal.Decimal) decimal.Decimal {
	pct := line.ServicePercentage.Decimal()
	if pct.GreaterThan(decimal.Zero) {
		return pct.Div(hundred).Mul(fixedTotal)
	}
	return line.Rate.Decimal()
}
