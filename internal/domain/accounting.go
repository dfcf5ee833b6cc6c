package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrExpenseNotFound = errors.New("expense not found")

// RecordType classifies an accounting record.
type RecordType string

const (
	RecordTypeIncome  RecordType = "INCOME"
	RecordTypeExpense RecordType = "EXPENSE"
	RecordTypePayment RecordType = "PAYMENT"
)

// AccountingRecord is an immutable, numbered bookkeeping row.
// Reversals are new records that point at the number they reverse.
type AccountingRecord struct {
	ID             string
	Number         string
	Type           RecordType
	Category       string
	Amount         decimal.Decimal
	Description    string
	InvoiceID      *string
	ExpenseID      *string
	PaymentID      *string
	ReversesNumber *string
	PerformedBy    string
	RecordedAt     time.Time
}

type Expense struct {
	ID          string
	Category    string
	Amount      decimal.Decimal
	Description string
	Supplier    string
	PaidAt      time.Time
	RecordedBy  string
	CreatedAt   time.Time
}

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
)

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer:
		return true
	}
	return false
}

type Payment struct {
	ID         string
	InvoiceID  string
	Amount     decimal.Decimal
	Method     PaymentMethod
	Reference  string
	ReceivedBy string
	ReceivedAt time.Time
}

type RecordFilter struct {
	Type   RecordType
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// AccountingSummary aggregates records over a period.
type AccountingSummary struct {
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Income    decimal.Decimal `json:"income"`
	Expenses  decimal.Decimal `json:"expenses"`
	Collected decimal.Decimal `json:"collected"`
	Net       decimal.Decimal `json:"net"`
}

// SummaryPeriod returns the [from, to) window for a year and optional month.
// Month 0 selects the whole year.
func SummaryPeriod(year, month int) (time.Time, time.Time) {
	if month < 1 || month > 12 {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(1, 0, 0)
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}
