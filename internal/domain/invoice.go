package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrInvalidInvoice     = errors.New("invalid invoice")
	ErrInvoiceCancelled   = errors.New("invoice is cancelled")
	ErrInvoiceHasPayments = errors.New("invoice has payments")
	ErrOverpayment        = errors.New("payment exceeds outstanding balance")
)

type InvoiceStatus string

const (
	InvoiceStatusIssued        InvoiceStatus = "ISSUED"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
)

type InvoiceItemKind string

const (
	ItemKindLabor InvoiceItemKind = "LABOR"
	ItemKindPart  InvoiceItemKind = "PART"
	ItemKindOther InvoiceItemKind = "OTHER"
)

type Invoice struct {
	ID         string
	Number     string
	CustomerID string
	JobID      *string
	Status     InvoiceStatus
	Items      []InvoiceItem
	Subtotal   decimal.Decimal
	TaxRate    decimal.Decimal
	TaxAmount  decimal.Decimal
	Total      decimal.Decimal
	AmountPaid decimal.Decimal
	Notes      string
	IssuedAt   time.Time
	DueAt      time.Time
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type InvoiceItem struct {
	ID          string
	InvoiceID   string
	Kind        InvoiceItemKind
	Description string
	PartID      *string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// ComputeTotals fills line totals, subtotal, tax and total.
// Every amount is rounded to cents before it is summed.
func (inv *Invoice) ComputeTotals() error {
	if len(inv.Items) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidInvoice)
	}
	if inv.TaxRate.IsNegative() {
		return fmt.Errorf("%w: tax rate must not be negative", ErrInvalidInvoice)
	}

	subtotal := decimal.Zero
	for i := range inv.Items {
		item := &inv.Items[i]
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: item %d quantity must be positive", ErrInvalidInvoice, i+1)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: item %d price must not be negative", ErrInvalidInvoice, i+1)
		}
		if item.Kind == "" {
			item.Kind = ItemKindOther
		}
		item.LineTotal = item.Quantity.Mul(item.UnitPrice).Round(2)
		subtotal = subtotal.Add(item.LineTotal)
	}

	inv.Subtotal = subtotal
	inv.TaxAmount = subtotal.Mul(inv.TaxRate).Round(2)
	inv.Total = inv.Subtotal.Add(inv.TaxAmount)

	return nil
}

// Outstanding is what remains to be paid.
func (inv *Invoice) Outstanding() decimal.Decimal {
	return inv.Total.Sub(inv.AmountPaid)
}

// ApplyPayment validates amount and moves AmountPaid and Status forward.
func (inv *Invoice) ApplyPayment(amount decimal.Decimal, at time.Time) error {
	if inv.Status == InvoiceStatusCancelled {
		return ErrInvoiceCancelled
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if amount.GreaterThan(inv.Outstanding()) {
		return ErrOverpayment
	}

	inv.AmountPaid = inv.AmountPaid.Add(amount)
	if inv.AmountPaid.Equal(inv.Total) {
		inv.Status = InvoiceStatusPaid
	} else {
		inv.Status = InvoiceStatusPartiallyPaid
	}
	inv.UpdatedAt = at

	return nil
}

// Cancel marks an unpaid invoice as cancelled.
func (inv *Invoice) Cancel(at time.Time) error {
	if inv.Status == InvoiceStatusCancelled {
		return ErrInvoiceCancelled
	}
	if inv.AmountPaid.IsPositive() {
		return ErrInvoiceHasPayments
	}
	inv.Status = InvoiceStatusCancelled
	inv.UpdatedAt = at
	return nil
}

type InvoiceFilter struct {
	Status     InvoiceStatus
	CustomerID string
	Limit      int
	Offset     int
}
