package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementReason explains why a part's quantity changed.
type MovementReason string

const (
	ReasonInitial    MovementReason = "INITIAL"
	ReasonPurchase   MovementReason = "PURCHASE"
	ReasonJobUsage   MovementReason = "JOB_USAGE"
	ReasonSale       MovementReason = "SALE"
	ReasonReturn     MovementReason = "RETURN"
	ReasonAdjustment MovementReason = "ADJUSTMENT"
	ReasonCorrection MovementReason = "CORRECTION"
)

var validReasons = map[MovementReason]bool{
	ReasonInitial:    true,
	ReasonPurchase:   true,
	ReasonJobUsage:   true,
	ReasonSale:       true,
	ReasonReturn:     true,
	ReasonAdjustment: true,
	ReasonCorrection: true,
}

// IsValid reports whether r is a known reason.
func (r MovementReason) IsValid() bool {
	return validReasons[r]
}

// AllowsDelta reports whether the sign of delta fits the reason.
// Adjustments and corrections may go either way.
func (r MovementReason) AllowsDelta(delta int64) bool {
	switch r {
	case ReasonInitial, ReasonPurchase, ReasonReturn:
		return delta > 0
	case ReasonJobUsage, ReasonSale:
		return delta < 0
	default:
		return delta != 0
	}
}

// StockMovement is an immutable ledger row. It is written once, in the same
// transaction as the part update it explains.
type StockMovement struct {
	ID             string
	Number         string
	PartID         string
	Reason         MovementReason
	Delta          int64
	BalanceBefore  int64
	BalanceAfter   int64
	UnitCost       decimal.Decimal
	TotalValue     decimal.Decimal
	Notes          string
	JobID          *string
	CorrectsNumber *string
	PerformedBy    string
	CreatedAt      time.Time
}

// MovementTotals summarizes a part's ledger: the sum of its deltas, how many
// movements there are and the balance recorded on the newest one.
type MovementTotals struct {
	Sum              int64
	Count            int64
	LastBalanceAfter *int64
}

// MovementValue is the signed value of a movement at unit cost.
func MovementValue(delta int64, unitCost decimal.Decimal) decimal.Decimal {
	return unitCost.Mul(decimal.NewFromInt(delta)).Round(2)
}
