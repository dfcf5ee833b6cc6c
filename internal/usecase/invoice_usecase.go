package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/infrastructure/logger"
	"github.com/gtservice/gtledger/internal/infrastructure/metrics"
)

// InvoiceUseCase issues and cancels invoices. Issuing numbers the invoice and
// books a linked INCOME record in the same transaction.
type InvoiceUseCase struct {
	txManager      TransactionManager
	invoiceRepo    InvoiceRepository
	accountingRepo AccountingRepository
	sequenceRepo   SequenceRepository
	outboxRepo     OutboxRepository
	auditRepo      AuditRepository
	idGen          IDGenerator
	taxRate        decimal.Decimal
	dueDays        int
	summaryCache   Cache
	metrics        *metrics.Metrics
	logger         zerolog.Logger
}

// InvoiceSettings carries the configured invoicing defaults. SummaryCache is
// optional and is invalidated whenever an invoice books income.
type InvoiceSettings struct {
	TaxRate      decimal.Decimal
	DueDays      int
	SummaryCache Cache
}

// NewInvoiceUseCase creates a new InvoiceUseCase.
func NewInvoiceUseCase(
	txManager TransactionManager,
	invoiceRepo InvoiceRepository,
	accountingRepo AccountingRepository,
	sequenceRepo SequenceRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	settings InvoiceSettings,
	metrics *metrics.Metrics,
	log zerolog.Logger,
) *InvoiceUseCase {
	if settings.DueDays <= 0 {
		settings.DueDays = DefaultInvoiceDueDays
	}

	return &InvoiceUseCase{
		txManager:      txManager,
		invoiceRepo:    invoiceRepo,
		accountingRepo: accountingRepo,
		sequenceRepo:   sequenceRepo,
		outboxRepo:     outboxRepo,
		auditRepo:      auditRepo,
		idGen:          idGen,
		taxRate:        settings.TaxRate,
		dueDays:        settings.DueDays,
		summaryCache:   settings.SummaryCache,
		metrics:        metrics,
		logger:         log,
	}
}

// InvoiceItemInput is one line on a new invoice.
type InvoiceItemInput struct {
	Kind        domain.InvoiceItemKind
	Description string
	PartID      *string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// CreateInvoiceInput represents input for issuing an invoice.
type CreateInvoiceInput struct {
	CustomerID string
	JobID      *string
	Items      []InvoiceItemInput
	TaxRate    *decimal.Decimal
	Notes      string
}

// CreateInvoice issues a numbered invoice with its income record.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*domain.Invoice, error) {
	if input.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer is required", domain.ErrInvalidInvoice)
	}

	now := time.Now().UTC()
	actor := domain.ActorFromContext(ctx)

	rate := uc.taxRate
	if input.TaxRate != nil {
		rate = *input.TaxRate
	}

	draft := &domain.Invoice{
		CustomerID: input.CustomerID,
		JobID:      input.JobID,
		Status:     domain.InvoiceStatusIssued,
		TaxRate:    rate,
		AmountPaid: decimal.Zero,
		Notes:      input.Notes,
		IssuedAt:   now,
		DueAt:      now.AddDate(0, 0, uc.dueDays),
		CreatedBy:  actor,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, item := range input.Items {
		draft.Items = append(draft.Items, domain.InvoiceItem{
			Kind:        item.Kind,
			Description: item.Description,
			PartID:      item.PartID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	if err := draft.ComputeTotals(); err != nil {
		return nil, err
	}

	invoice, err := inTransaction(ctx, uc.txManager, "create invoice", func(txCtx context.Context, tx Transaction) (*domain.Invoice, error) {
		invoice, err := appendNumbered(txCtx, tx, uc.sequenceRepo, domain.DocInvoice, now,
			func(number string) *domain.Invoice {
				inv := *draft
				inv.ID = uc.idGen.Generate()
				inv.Number = number
				inv.Items = make([]domain.InvoiceItem, len(draft.Items))
				for i, item := range draft.Items {
					item.ID = uc.idGen.Generate()
					item.InvoiceID = inv.ID
					inv.Items[i] = item
				}
				return &inv
			},
			uc.invoiceRepo.Create,
		)
		if err != nil {
			return nil, err
		}

		_, err = appendNumbered(txCtx, tx, uc.sequenceRepo, domain.DocAccountingRecord, now,
			func(number string) *domain.AccountingRecord {
				return &domain.AccountingRecord{
					ID:          uc.idGen.Generate(),
					Number:      number,
					Type:        domain.RecordTypeIncome,
					Category:    "invoice",
					Amount:      invoice.Total,
					Description: "Invoice " + invoice.Number,
					InvoiceID:   &invoice.ID,
					PerformedBy: actor,
					RecordedAt:  now,
				}
			},
			uc.accountingRepo.Create,
		)
		if err != nil {
			return nil, err
		}

		err = writeOutbox(txCtx, tx, uc.outboxRepo, domain.NewOutboxEvent(
			uc.idGen.Generate(), domain.AggregateTypeInvoice, invoice.ID, domain.EventTypeInvoiceIssued,
			map[string]any{
				"invoice_id":  invoice.ID,
				"number":      invoice.Number,
				"customer_id": invoice.CustomerID,
				"total":       invoice.Total.StringFixed(2),
			},
			now,
		))
		if err != nil {
			return nil, err
		}

		if err := writeAudit(txCtx, tx, uc.auditRepo, domain.NewAuditLog(
			ctx, uc.idGen.Generate(), domain.AuditActionInvoiceIssue, "invoice", invoice.ID, invoice,
		)); err != nil {
			return nil, err
		}

		return invoice, nil
	})
	if err != nil {
		return nil, err
	}

	invalidateSummary(ctx, uc.summaryCache, uc.logger, now)

	if uc.metrics != nil {
		uc.metrics.InvoicesIssued.Inc()
		uc.metrics.InvoiceTotal.Observe(invoice.Total.InexactFloat64())
		uc.metrics.SequenceNumbers.WithLabelValues(domain.DocInvoice.Prefix).Inc()
		uc.metrics.SequenceNumbers.WithLabelValues(domain.DocAccountingRecord.Prefix).Inc()
	}

	logger.FromContext(ctx, uc.logger).Info().
		Str("invoice", invoice.Number).
		Str("total", invoice.Total.StringFixed(2)).
		Msg("invoice issued")

	return invoice, nil
}

// CancelInvoice cancels an unpaid invoice and books a compensating record
// that reverses its income. Existing records are never modified.
func (uc *InvoiceUseCase) CancelInvoice(ctx context.Context, id, reason string) (*domain.Invoice, error) {
	now := time.Now().UTC()
	actor := domain.ActorFromContext(ctx)

	invoice, err := inTransaction(ctx, uc.txManager, "cancel invoice", func(txCtx context.Context, tx Transaction) (*domain.Invoice, error) {
		invoice, err := uc.invoiceRepo.GetByIDForUpdate(txCtx, tx, id)
		if err != nil {
			return nil, domain.NewPersistenceError("lock invoice", err)
		}

		if err := invoice.Cancel(now); err != nil {
			return nil, err
		}

		if err := uc.invoiceRepo.UpdateStatus(txCtx, tx, invoice); err != nil {
			return nil, domain.NewPersistenceError("update invoice", err)
		}

		records, err := uc.accountingRepo.GetByInvoice(txCtx, invoice.ID)
		if err != nil {
			return nil, domain.NewPersistenceError("load invoice records", err)
		}

		var reverses *string
		for _, rec := range records {
			if rec.Type == domain.RecordTypeIncome && rec.ReversesNumber == nil {
				number := rec.Number
				reverses = &number
				break
			}
		}

		description := "Cancellation of invoice " + invoice.Number
		if reason != "" {
			description += ": " + reason
		}

		_, err = appendNumbered(txCtx, tx, uc.sequenceRepo, domain.DocAccountingRecord, now,
			func(number string) *domain.AccountingRecord {
				return &domain.AccountingRecord{
					ID:             uc.idGen.Generate(),
					Number:         number,
					Type:           domain.RecordTypeIncome,
					Category:       "invoice_cancellation",
					Amount:         invoice.Total.Neg(),
					Description:    description,
					InvoiceID:      &invoice.ID,
					ReversesNumber: reverses,
					PerformedBy:    actor,
					RecordedAt:     now,
				}
			},
			uc.accountingRepo.Create,
		)
		if err != nil {
			return nil, err
		}

		err = writeOutbox(txCtx, tx, uc.outboxRepo, domain.NewOutboxEvent(
			uc.idGen.Generate(), domain.AggregateTypeInvoice, invoice.ID, domain.EventTypeInvoiceCancelled,
			map[string]any{"invoice_id": invoice.ID, "number": invoice.Number, "reason": reason},
			now,
		))
		if err != nil {
			return nil, err
		}

		if err := writeAudit(txCtx, tx, uc.auditRepo, domain.NewAuditLog(
			ctx, uc.idGen.Generate(), domain.AuditActionInvoiceCancel, "invoice", invoice.ID, invoice,
		)); err != nil {
			return nil, err
		}

		return invoice, nil
	})
	if err != nil {
		return nil, err
	}

	invalidateSummary(ctx, uc.summaryCache, uc.logger, now)

	if uc.metrics != nil {
		uc.metrics.InvoicesCancelled.Inc()
		uc.metrics.SequenceNumbers.WithLabelValues(domain.DocAccountingRecord.Prefix).Inc()
	}

	logger.FromContext(ctx, uc.logger).Info().Str("invoice", invoice.Number).Msg("invoice cancelled")

	return invoice, nil
}

// GetInvoice retrieves an invoice with its items.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, id string) (*domain.Invoice, error) {
	invoice, err := uc.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewPersistenceError("get invoice", err)
	}
	return invoice, nil
}

// ListInvoices lists invoices, newest first.
func (uc *InvoiceUseCase) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]*domain.Invoice, error) {
	filter.Limit, filter.Offset = domain.ClampPagination(filter.Limit, filter.Offset)
	invoices, err := uc.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.NewPersistenceError("list invoices", err)
	}
	return invoices, nil
}
