package domain

import (
	"fmt"
	"time"
)

// AlertSeverity grades a low stock alert.
type AlertSeverity string

const (
	AlertSeverityWarning  AlertSeverity = "WARNING"
	AlertSeverityCritical AlertSeverity = "CRITICAL"
)

// StockAlert is raised when a part drops below its low threshold.
// At most one unread alert exists per part; later crossings refresh it.
type StockAlert struct {
	ID           string
	PartID       string
	Severity     AlertSeverity
	Message      string
	Balance      int64
	LowThreshold int64
	IsRead       bool
	ReadBy       string
	ReadAt       *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EvaluateAlert returns the alert a balance warrants, or nil when the balance
// is at or above the part's low threshold. ID and timestamps are left to the caller.
func EvaluateAlert(part *Part, balanceAfter int64) *StockAlert {
	if balanceAfter >= part.LowThreshold {
		return nil
	}

	severity := AlertSeverityWarning
	if IsCriticalBalance(balanceAfter, part.LowThreshold) {
		severity = AlertSeverityCritical
	}

	return &StockAlert{
		PartID:       part.ID,
		Severity:     severity,
		Message:      AlertMessage(part, balanceAfter),
		Balance:      balanceAfter,
		LowThreshold: part.LowThreshold,
	}
}

// AlertMessage renders the operator facing text for a low stock alert.
func AlertMessage(part *Part, balance int64) string {
	if balance == 0 {
		return fmt.Sprintf("%s %s is out of stock (threshold %d)", part.Code, part.Name, part.LowThreshold)
	}
	return fmt.Sprintf("%s %s stock is %d, below threshold %d", part.Code, part.Name, balance, part.LowThreshold)
}

// Refresh copies severity and message from a newer evaluation.
func (a *StockAlert) Refresh(next *StockAlert, at time.Time) {
	a.Severity = next.Severity
	a.Message = next.Message
	a.Balance = next.Balance
	a.LowThreshold = next.LowThreshold
	a.UpdatedAt = at
}

// AlertFilter narrows alert listings.
type AlertFilter struct {
	PartID     string
	UnreadOnly bool
	Limit      int
	Offset     int
}
