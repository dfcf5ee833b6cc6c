package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Part is a stocked item. Quantity is only changed through stock movements.
type Part struct {
	ID           string
	Code         string
	Name         string
	Quantity     int64
	UnitCost     decimal.Decimal
	TotalValue   decimal.Decimal
	LowThreshold int64
	StockLevel   StockLevel
	Version      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BalanceChange is the before/after view of a validated delta.
type BalanceChange struct {
	Before   int64
	After    int64
	UnitCost decimal.Decimal
}

// Validate checks the static fields of a part.
func (p *Part) Validate() error {
	if err := ValidatePartCode(p.Code); err != nil {
		return err
	}
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	if p.LowThreshold < 0 {
		return ErrInvalidThreshold
	}
	if p.UnitCost.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// ApplyDelta validates delta against the current quantity and returns the
// resulting balance. It does not mutate the part.
// An inbound delta with a positive inboundCost moves UnitCost to the
// weighted average of the stock on hand and the received lot.
func (p *Part) ApplyDelta(delta int64, inboundCost *decimal.Decimal) (BalanceChange, error) {
	if delta == 0 {
		return BalanceChange{}, ErrInvalidQuantity
	}

	after := p.Quantity + delta
	if after < 0 {
		return BalanceChange{}, ErrInsufficientStock
	}

	cost := p.UnitCost
	if delta > 0 && inboundCost != nil && !inboundCost.IsNegative() {
		cost = WeightedAverageCost(p.Quantity, p.UnitCost, delta, *inboundCost)
	}

	return BalanceChange{Before: p.Quantity, After: after, UnitCost: cost}, nil
}

// Commit writes a validated change onto the part and reclassifies it.
func (p *Part) Commit(change BalanceChange, at time.Time) {
	p.Quantity = change.After
	p.UnitCost = change.UnitCost
	p.TotalValue = StockValue(change.After, change.UnitCost)
	p.StockLevel = ClassifyStock(change.After, p.LowThreshold)
	p.Version++
	p.UpdatedAt = at
}

// StockValue is quantity times unit cost at money precision.
func StockValue(quantity int64, unitCost decimal.Decimal) decimal.Decimal {
	return unitCost.Mul(decimal.NewFromInt(quantity)).Round(2)
}

// WeightedAverageCost blends the cost of stock on hand with an inbound lot.
func WeightedAverageCost(onHand int64, onHandCost decimal.Decimal, inbound int64, inboundCost decimal.Decimal) decimal.Decimal {
	total := onHand + inbound
	if total <= 0 {
		return inboundCost
	}
	if onHand <= 0 {
		return inboundCost.Round(4)
	}

	current := onHandCost.Mul(decimal.NewFromInt(onHand))
	incoming := inboundCost.Mul(decimal.NewFromInt(inbound))

	return current.Add(incoming).Div(decimal.NewFromInt(total)).Round(4)
}

// NormalizePartCode upper-cases and trims a part code.
func NormalizePartCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
