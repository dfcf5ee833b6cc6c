package generated

import (
	"time"

	"github.com/shopspring/decimal"
)

type DocumentSequence struct {
	Prefix    string `json:"prefix"`
	Year      int32  `json:"year"`
	LastValue int64  `json:"last_value"`
}

type OutboxEvent struct {
	ID            string     `json:"id"`
	AggregateID   string     `json:"aggregate_id"`
	AggregateType string     `json:"aggregate_type"`
	EventType     string     `json:"event_type"`
	Payload       []byte     `json:"payload"`
	CreatedAt     time.Time  `json:"created_at"`
	Published     bool       `json:"published"`
	PublishedAt   *time.Time `json:"published_at"`
}

type Part struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Quantity     int64           `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalValue   decimal.Decimal `json:"total_value"`
	LowThreshold int64           `json:"low_threshold"`
	StockLevel   string          `json:"stock_level"`
	Version      int64           `json:"version"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type StockAlert struct {
	ID           string     `json:"id"`
	PartID       string     `json:"part_id"`
	Severity     string     `json:"severity"`
	Message      string     `json:"message"`
	Balance      int64      `json:"balance"`
	LowThreshold int64      `json:"low_threshold"`
	IsRead       bool       `json:"is_read"`
	ReadBy       string     `json:"read_by"`
	ReadAt       *time.Time `json:"read_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type StockMovement struct {
	ID             string          `json:"id"`
	Number         string          `json:"number"`
	PartID         string          `json:"part_id"`
	Reason         string          `json:"reason"`
	Delta          int64           `json:"delta"`
	BalanceBefore  int64           `json:"balance_before"`
	BalanceAfter   int64           `json:"balance_after"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	TotalValue     decimal.Decimal `json:"total_value"`
	Notes          string          `json:"notes"`
	JobID          *string         `json:"job_id"`
	CorrectsNumber *string         `json:"corrects_number"`
	PerformedBy    string          `json:"performed_by"`
	CreatedAt      time.Time       `json:"created_at"`
}
