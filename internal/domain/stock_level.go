package domain

import "github.com/shopspring/decimal"

// StockLevel is the band a part's quantity falls into relative to its low threshold.
type StockLevel string

const (
	StockLevelCritical StockLevel = "CRITICAL"
	StockLevelLow      StockLevel = "LOW"
	StockLevelNormal   StockLevel = "NORMAL"
	StockLevelHigh     StockLevel = "HIGH"
)

var (
	criticalRatio = decimal.RequireFromString("0.3")
	highRatio     = decimal.NewFromInt(3)
)

// ClassifyStock maps a balance to its stock level. Rules are evaluated in order:
// zero, below 30% of threshold, below threshold, above three times threshold.
func ClassifyStock(balance, lowThreshold int64) StockLevel {
	if balance == 0 {
		return StockLevelCritical
	}

	b := decimal.NewFromInt(balance)
	low := decimal.NewFromInt(lowThreshold)

	switch {
	case b.LessThan(low.Mul(criticalRatio)):
		return StockLevelCritical
	case b.LessThan(low):
		return StockLevelLow
	case b.GreaterThan(low.Mul(highRatio)):
		return StockLevelHigh
	default:
		return StockLevelNormal
	}
}

// IsCriticalBalance reports whether balance is zero or below 30% of the threshold.
func IsCriticalBalance(balance, lowThreshold int64) bool {
	if balance == 0 {
		return true
	}
	return decimal.NewFromInt(balance).LessThan(decimal.NewFromInt(lowThreshold).Mul(criticalRatio))
}
