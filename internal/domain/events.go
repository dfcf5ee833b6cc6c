package domain

import "time"

// Event types
const (
	EventTypeStockMoved        = "stock.moved"
	EventTypeStockAlertRaised  = "stock.alert_raised"
	EventTypeAlertAcknowledged = "stock.alert_acknowledged"
	EventTypePartCreated       = "part.created"
	EventTypeInvoiceIssued     = "invoice.issued"
	EventTypeInvoiceCancelled  = "invoice.cancelled"
	EventTypePaymentRecorded   = "payment.recorded"
	EventTypeExpenseRecorded   = "expense.recorded"
	EventTypeJobStatusChanged  = "job.status_changed"
)

// Aggregate types
const (
	AggregateTypePart    = "part"
	AggregateTypeInvoice = "invoice"
	AggregateTypeExpense = "expense"
	AggregateTypeJob     = "job"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewOutboxEvent builds an unpublished event.
func NewOutboxEvent(id, aggregateType, aggregateID, eventType string, payload map[string]any, at time.Time) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     at,
	}
}

// StockMovedPayload is the outbox payload for a recorded movement.
func StockMovedPayload(m *StockMovement, p *Part) map[string]any {
	return map[string]any{
		"movement_number": m.Number,
		"part_id":         p.ID,
		"part_code":       p.Code,
		"reason":          string(m.Reason),
		"delta":           m.Delta,
		"balance_before":  m.BalanceBefore,
		"balance_after":   m.BalanceAfter,
		"stock_level":     string(p.StockLevel),
	}
}

// StockAlertPayload is the outbox payload for a raised or refreshed alert.
func StockAlertPayload(a *StockAlert, p *Part) map[string]any {
	return map[string]any{
		"alert_id":      a.ID,
		"part_id":       p.ID,
		"part_code":     p.Code,
		"severity":      string(a.Severity),
		"message":       a.Message,
		"balance":       a.Balance,
		"low_threshold": a.LowThreshold,
	}
}
