package domain

import (
	"github.com/shopspring/decimal"
)

// LeaseLine is one rent detail row of a lease.
type LeaseLine struct {
	ItemReference     string  `json:"item_reference,omitempty"`
	IsAreaBased       bool    `json:"is_area_based"`
	IsFixedRateItem   bool    `json:"is_fixed_rate_item"`
	Area              Numeric `json:"area"`
	Rate              Numeric `json:"rate"`
	ServicePercentage Numeric `json:"service_percentage"`
	Amount            Numeric `json:"amount"`
}

// LeaseDocument is the set of lines plus the derived totals.
type LeaseDocument struct {
	Lines          []LeaseLine     `json:"lines"`
	TotalLineCount int             `json:"total_line_count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}
