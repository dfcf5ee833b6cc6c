package memory

import (
	"context"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

// InvoiceRepository implements usecase.InvoiceRepository.
type InvoiceRepository struct {
	store *Store
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(store *Store) *InvoiceRepository {
	return &InvoiceRepository{store: store}
}

func copyInvoice(inv domain.Invoice) *domain.Invoice {
	inv.Items = append([]domain.InvoiceItem(nil), inv.Items...)
	return &inv
}

// Create inserts an invoice with its items. Numbers are unique.
func (r *InvoiceRepository) Create(_ context.Context, tx usecase.Transaction, invoice *domain.Invoice) error {
	return r.store.write(tx, func(s *state) error {
		for _, existing := range s.invoices {
			if existing.Number == invoice.Number {
				return domain.ErrDuplicateSequence
			}
		}
		s.invoices[invoice.ID] = *copyInvoice(*invoice)
		return nil
	})
}

// GetByID returns a copy of the invoice.
func (r *InvoiceRepository) GetByID(_ context.Context, id string) (*domain.Invoice, error) {
	var invoice *domain.Invoice
	err := r.store.read(func(s *state) error {
		inv, ok := s.invoices[id]
		if !ok {
			return domain.ErrInvoiceNotFound
		}
		invoice = copyInvoice(inv)
		return nil
	})
	return invoice, err
}

// GetByIDForUpdate returns a copy the caller may mutate before UpdateStatus.
func (r *InvoiceRepository) GetByIDForUpdate(_ context.Context, tx usecase.Transaction, id string) (*domain.Invoice, error) {
	var invoice *domain.Invoice
	err := r.store.write(tx, func(s *state) error {
		inv, ok := s.invoices[id]
		if !ok {
			return domain.ErrInvoiceNotFound
		}
		invoice = copyInvoice(inv)
		return nil
	})
	return invoice, err
}

// UpdateStatus stores the invoice's status and amount paid.
func (r *InvoiceRepository) UpdateStatus(_ context.Context, tx usecase.Transaction, invoice *domain.Invoice) error {
	return r.store.write(tx, func(s *state) error {
		stored, ok := s.invoices[invoice.ID]
		if !ok {
			return domain.ErrInvoiceNotFound
		}
		stored.Status = invoice.Status
		stored.AmountPaid = invoice.AmountPaid
		stored.UpdatedAt = invoice.UpdatedAt
		s.invoices[invoice.ID] = stored
		return nil
	})
}

// List returns invoices, newest number first.
func (r *InvoiceRepository) List(_ context.Context, filter domain.InvoiceFilter) ([]*domain.Invoice, error) {
	var invoices []*domain.Invoice
	_ = r.store.read(func(s *state) error {
		all := sortedValues(s.invoices, func(a, b *domain.Invoice) bool { return a.Number > b.Number })
		for _, inv := range all {
			if filter.Status != "" && inv.Status != filter.Status {
				continue
			}
			if filter.CustomerID != "" && inv.CustomerID != filter.CustomerID {
				continue
			}
			invoices = append(invoices, copyInvoice(*inv))
		}
		return nil
	})
	return page(invoices, filter.Limit, filter.Offset), nil
}
