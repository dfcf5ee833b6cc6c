package memory

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

// AccountingRepository implements usecase.AccountingRepository.
type AccountingRepository struct {
	store *Store
}

// NewAccountingRepository creates a new AccountingRepository.
func NewAccountingRepository(store *Store) *AccountingRepository {
	return &AccountingRepository{store: store}
}

// Create appends a record. Numbers are unique.
func (r *AccountingRepository) Create(_ context.Context, tx usecase.Transaction, record *domain.AccountingRecord) error {
	return r.store.write(tx, func(s *state) error {
		for i := range s.records {
			if s.records[i].Number == record.Number {
				return domain.ErrDuplicateSequence
			}
		}
		s.records = append(s.records, *record)
		return nil
	})
}

// GetByInvoice returns the records linked to an invoice in booking order.
func (r *AccountingRepository) GetByInvoice(_ context.Context, invoiceID string) ([]*domain.AccountingRecord, error) {
	var records []*domain.AccountingRecord
	_ = r.store.read(func(s *state) error {
		for i := range s.records {
			if s.records[i].InvoiceID != nil && *s.records[i].InvoiceID == invoiceID {
				rec := s.records[i]
				records = append(records, &rec)
			}
		}
		return nil
	})
	return records, nil
}

// List returns records, newest first.
func (r *AccountingRepository) List(_ context.Context, filter domain.RecordFilter) ([]*domain.AccountingRecord, error) {
	var records []*domain.AccountingRecord
	_ = r.store.read(func(s *state) error {
		for i := len(s.records) - 1; i >= 0; i-- {
			rec := s.records[i]
			if filter.Type != "" && rec.Type != filter.Type {
				continue
			}
			if !inPeriod(rec.RecordedAt, filter.From, filter.To) {
				continue
			}
			records = append(records, &rec)
		}
		return nil
	})
	return page(records, filter.Limit, filter.Offset), nil
}

// Totals sums record amounts by type over [from, to).
func (r *AccountingRepository) Totals(_ context.Context, from, to time.Time) (map[domain.RecordType]decimal.Decimal, error) {
	totals := map[domain.RecordType]decimal.Decimal{
		domain.RecordTypeIncome:  decimal.Zero,
		domain.RecordTypeExpense: decimal.Zero,
		domain.RecordTypePayment: decimal.Zero,
	}
	_ = r.store.read(func(s *state) error {
		for i := range s.records {
			rec := s.records[i]
			if rec.RecordedAt.Before(from) || !rec.RecordedAt.Before(to) {
				continue
			}
			totals[rec.Type] = totals[rec.Type].Add(rec.Amount)
		}
		return nil
	})
	return totals, nil
}

func inPeriod(at time.Time, from, to *time.Time) bool {
	if from != nil && at.Before(*from) {
		return false
	}
	if to != nil && !at.Before(*to) {
		return false
	}
	return true
}

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	store *Store
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(store *Store) *ExpenseRepository {
	return &ExpenseRepository{store: store}
}

func (r *ExpenseRepository) Create(_ context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	return r.store.write(tx, func(s *state) error {
		s.expenses[expense.ID] = *expense
		return nil
	})
}

func (r *ExpenseRepository) GetByID(_ context.Context, id string) (*domain.Expense, error) {
	var expense domain.Expense
	err := r.store.read(func(s *state) error {
		e, ok := s.expenses[id]
		if !ok {
			return domain.ErrExpenseNotFound
		}
		expense = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	store *Store
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(store *Store) *PaymentRepository {
	return &PaymentRepository{store: store}
}

func (r *PaymentRepository) Create(_ context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	return r.store.write(tx, func(s *state) error {
		s.payments = append(s.payments, *payment)
		return nil
	})
}

func (r *PaymentRepository) ListByInvoice(_ context.Context, invoiceID string) ([]*domain.Payment, error) {
	var payments []*domain.Payment
	_ = r.store.read(func(s *state) error {
		for i := range s.payments {
			if s.payments[i].InvoiceID == invoiceID {
				p := s.payments[i]
				payments = append(payments, &p)
			}
		}
		return nil
	})
	return payments, nil
}
