package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// PercentageLookup resolves the service percentage configured on an item.
type PercentageLookup interface {
	ServicePercentage(ctx context.Context, itemReference string) (decimal.Decimal, bool, error)
}

type RecomputeRequest struct {
	Lines []LeaseLine `json:"lines"`
}

type Service interface {
	// Recompute refreshes item percentages and returns the recalculated document.
	Recompute(ctx context.Context, lines []LeaseLine) LeaseDocument
}
