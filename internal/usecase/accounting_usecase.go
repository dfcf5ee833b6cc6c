package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/infrastructure/logger"
	"github.com/gtservice/gtledger/internal/infrastructure/metrics"
)

// AccountingUseCase records expenses and payments and reports on the books.
type AccountingUseCase struct {
	txManager      TransactionManager
	accountingRepo AccountingRepository
	expenseRepo    ExpenseRepository
	paymentRepo    PaymentRepository
	invoiceRepo    InvoiceRepository
	sequenceRepo   SequenceRepository
	outboxRepo     OutboxRepository
	auditRepo      AuditRepository
	idGen          IDGenerator
	cache          Cache
	cacheTTL       time.Duration
	metrics        *metrics.Metrics
	logger         zerolog.Logger
}

// NewAccountingUseCase creates a new AccountingUseCase. cache may be nil.
func NewAccountingUseCase(
	txManager TransactionManager,
	accountingRepo AccountingRepository,
	expenseRepo ExpenseRepository,
	paymentRepo PaymentRepository,
	invoiceRepo InvoiceRepository,
	sequenceRepo SequenceRepository,
	outboxRepo OutboxRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	cache Cache,
	cacheTTL time.Duration,
	metrics *metrics.Metrics,
	log zerolog.Logger,
) *AccountingUseCase {
	return &AccountingUseCase{
		txManager:      txManager,
		accountingRepo: accountingRepo,
		expenseRepo:    expenseRepo,
		paymentRepo:    paymentRepo,
		invoiceRepo:    invoiceRepo,
		sequenceRepo:   sequenceRepo,
		outboxRepo:     outboxRepo,
		auditRepo:      auditRepo,
		idGen:          idGen,
		cache:          cache,
		cacheTTL:       cacheTTL,
		metrics:        metrics,
		logger:         log,
	}
}

// RecordExpenseInput represents input for recording an expense.
type RecordExpenseInput struct {
	Category    string
	Amount      decimal.Decimal
	Description string
	Supplier    string
	PaidAt      *time.Time
}

// RecordExpense stores an expense and its numbered EXPENSE record.
func (uc *AccountingUseCase) RecordExpense(ctx context.Context, input RecordExpenseInput) (*domain.Expense, *domain.AccountingRecord, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, nil, err
	}
	category := strings.ToLower(strings.TrimSpace(input.Category))
	if err := domain.ValidateName(category); err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	actor := domain.ActorFromContext(ctx)

	paidAt := now
	if input.PaidAt != nil {
		paidAt = input.PaidAt.UTC()
	}

	expense := &domain.Expense{
		ID:          uc.idGen.Generate(),
		Category:    category,
		Amount:      input.Amount.Round(2),
		Description: input.Description,
		Supplier:    input.Supplier,
		PaidAt:      paidAt,
		RecordedBy:  actor,
		CreatedAt:   now,
	}

	record, err := inTransaction(ctx, uc.txManager, "record expense", func(txCtx context.Context, tx Transaction) (*domain.AccountingRecord, error) {
		if err := uc.expenseRepo.Create(txCtx, tx, expense); err != nil {
			return nil, domain.NewPersistenceError("insert expense", err)
		}

		record, err := appendNumbered(txCtx, tx, uc.sequenceRepo, domain.DocAccountingRecord, paidAt,
			func(number string) *domain.AccountingRecord {
				return &domain.AccountingRecord{
					ID:          uc.idGen.Generate(),
					Number:      number,
					Type:        domain.RecordTypeExpense,
					Category:    category,
					Amount:      expense.Amount,
					Description: expense.Description,
					ExpenseID:   &expense.ID,
					PerformedBy: actor,
					RecordedAt:  paidAt,
				}
			},
			uc.accountingRepo.Create,
		)
		if err != nil {
			return nil, err
		}

		err = writeOutbox(txCtx, tx, uc.outboxRepo, domain.NewOutboxEvent(
			uc.idGen.Generate(), domain.AggregateTypeExpense, expense.ID, domain.EventTypeExpenseRecorded,
			map[string]any{"expense_id": expense.ID, "record": record.Number, "amount": expense.Amount.StringFixed(2)},
			now,
		))
		if err != nil {
			return nil, err
		}

		if err := writeAudit(txCtx, tx, uc.auditRepo, domain.NewAuditLog(
			ctx, uc.idGen.Generate(), domain.AuditActionExpenseRecord, "expense", expense.ID, expense,
		)); err != nil {
			return nil, err
		}

		return record, nil
	})
	if err != nil {
		return nil, nil, err
	}

	if uc.metrics != nil {
		uc.metrics.ExpensesRecorded.Inc()
		uc.metrics.SequenceNumbers.WithLabelValues(domain.DocAccountingRecord.Prefix).Inc()
	}
	invalidateSummary(ctx, uc.cache, uc.logger, paidAt)

	return expense, record, nil
}

// RecordPaymentInput represents input for a payment against an invoice.
type RecordPaymentInput struct {
	InvoiceID string
	Amount    decimal.Decimal
	Method    domain.PaymentMethod
	Reference string
}

// PaymentResult is what a recorded payment produced.
type PaymentResult struct {
	Invoice *domain.Invoice
	Payment *domain.Payment
	Record  *domain.AccountingRecord
}

// RecordPayment applies a payment to an invoice under a row lock so that
// concurrent payments can never overpay it.
func (uc *AccountingUseCase) RecordPayment(ctx context.Context, input RecordPaymentInput) (*PaymentResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}
	if !input.Method.IsValid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrInvalidPaymentMethod, input.Method)
	}

	now := time.Now().UTC()
	actor := domain.ActorFromContext(ctx)
	amount := input.Amount.Round(2)

	result, err := inTransaction(ctx, uc.txManager, "record payment", func(txCtx context.Context, tx Transaction) (*PaymentResult, error) {
		invoice, err := uc.invoiceRepo.GetByIDForUpdate(txCtx, tx, input.InvoiceID)
		if err != nil {
			return nil, domain.NewPersistenceError("lock invoice", err)
		}

		if err := invoice.ApplyPayment(amount, now); err != nil {
			return nil, err
		}

		payment := &domain.Payment{
			ID:         uc.idGen.Generate(),
			InvoiceID:  invoice.ID,
			Amount:     amount,
			Method:     input.Method,
			Reference:  input.Reference,
			ReceivedBy: actor,
			ReceivedAt: now,
		}
		if err := uc.paymentRepo.Create(txCtx, tx, payment); err != nil {
			return nil, domain.NewPersistenceError("insert payment", err)
		}

		if err := uc.invoiceRepo.UpdateStatus(txCtx, tx, invoice); err != nil {
			return nil, domain.NewPersistenceError("update invoice", err)
		}

		record, err := appendNumbered(txCtx, tx, uc.sequenceRepo, domain.DocAccountingRecord, now,
			func(number string) *domain.AccountingRecord {
				return &domain.AccountingRecord{
					ID:          uc.idGen.Generate(),
					Number:      number,
					Type:        domain.RecordTypePayment,
					Category:    strings.ToLower(string(input.Method)),
					Amount:      amount,
					Description: "Payment for invoice " + invoice.Number,
					InvoiceID:   &invoice.ID,
					PaymentID:   &payment.ID,
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
			uc.idGen.Generate(), domain.AggregateTypeInvoice, invoice.ID, domain.EventTypePaymentRecorded,
			map[string]any{
				"invoice_id":  invoice.ID,
				"payment_id":  payment.ID,
				"amount":      amount.StringFixed(2),
				"status":      string(invoice.Status),
				"outstanding": invoice.Outstanding().StringFixed(2),
			},
			now,
		))
		if err != nil {
			return nil, err
		}

		if err := writeAudit(txCtx, tx, uc.auditRepo, domain.NewAuditLog(
			ctx, uc.idGen.Generate(), domain.AuditActionPaymentRecord, "invoice", invoice.ID, payment,
		)); err != nil {
			return nil, err
		}

		return &PaymentResult{Invoice: invoice, Payment: payment, Record: record}, nil
	})
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PaymentsRecorded.WithLabelValues(string(input.Method)).Inc()
		uc.metrics.SequenceNumbers.WithLabelValues(domain.DocAccountingRecord.Prefix).Inc()
	}
	invalidateSummary(ctx, uc.cache, uc.logger, now)

	logger.FromContext(ctx, uc.logger).Info().
		Str("invoice", result.Invoice.Number).
		Str("amount", amount.StringFixed(2)).
		Str("status", string(result.Invoice.Status)).
		Msg("payment recorded")

	return result, nil
}

// ListPayments lists payments made against an invoice.
func (uc *AccountingUseCase) ListPayments(ctx context.Context, invoiceID string) ([]*domain.Payment, error) {
	payments, err := uc.paymentRepo.ListByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, domain.NewPersistenceError("list payments", err)
	}
	return payments, nil
}

// ListRecords lists accounting records.
func (uc *AccountingUseCase) ListRecords(ctx context.Context, filter domain.RecordFilter) ([]*domain.AccountingRecord, error) {
	filter.Limit, filter.Offset = domain.ClampPagination(filter.Limit, filter.Offset)
	records, err := uc.accountingRepo.List(ctx, filter)
	if err != nil {
		return nil, domain.NewPersistenceError("list accounting records", err)
	}
	return records, nil
}

// Summary aggregates the books for a year, or one month of it when month is 1..12.
// Results are cached briefly when a cache is configured.
func (uc *AccountingUseCase) Summary(ctx context.Context, year, month int) (*domain.AccountingSummary, error) {
	if month < 0 || month > 12 {
		return nil, fmt.Errorf("%w: month %d", domain.ErrInvalidAmount, month)
	}

	key := summaryCacheKey(year, month)
	if cached := uc.cachedSummary(ctx, key); cached != nil {
		return cached, nil
	}

	from, to := domain.SummaryPeriod(year, month)
	totals, err := uc.accountingRepo.Totals(ctx, from, to)
	if err != nil {
		return nil, domain.NewPersistenceError("summarize accounting records", err)
	}

	summary := &domain.AccountingSummary{
		Year:      year,
		Month:     month,
		Income:    totals[domain.RecordTypeIncome],
		Expenses:  totals[domain.RecordTypeExpense],
		Collected: totals[domain.RecordTypePayment],
	}
	summary.Net = summary.Income.Sub(summary.Expenses)

	if uc.cache != nil && uc.cacheTTL > 0 {
		if data, err := json.Marshal(summary); err == nil {
			if err := uc.cache.Set(ctx, key, data, uc.cacheTTL); err != nil {
				logger.FromContext(ctx, uc.logger).Warn().Err(err).Str("key", key).Msg("failed to cache summary")
			}
		}
	}

	return summary, nil
}

func (uc *AccountingUseCase) cachedSummary(ctx context.Context, key string) *domain.AccountingSummary {
	if uc.cache == nil || uc.cacheTTL <= 0 {
		return nil
	}

	data, err := uc.cache.Get(ctx, key)
	if err != nil {
		logger.FromContext(ctx, uc.logger).Warn().Err(err).Str("key", key).Msg("summary cache read failed")
		return nil
	}

	result := "miss"
	defer func() {
		if uc.metrics != nil {
			uc.metrics.SummaryCache.WithLabelValues(result).Inc()
		}
	}()

	if data == nil {
		return nil
	}

	var summary domain.AccountingSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil
	}

	result = "hit"
	return &summary
}
