package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

const recordColumns = `id, number, type, category, amount, description,
	invoice_id, expense_id, payment_id, reverses_number, performed_by, recorded_at`

// AccountingRepository implements usecase.AccountingRepository. Records are insert only.
type AccountingRepository struct {
	db DB
}

// NewAccountingRepository creates a new AccountingRepository.
func NewAccountingRepository(db DB) *AccountingRepository {
	return &AccountingRepository{db: db}
}

// Create appends a record within a transaction.
func (r *AccountingRepository) Create(ctx context.Context, tx usecase.Transaction, record *domain.AccountingRecord) error {
	pgTx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	_, err = pgTx.Exec(ctx, `
		INSERT INTO accounting_records (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		record.ID, record.Number, string(record.Type), record.Category, record.Amount, record.Description,
		record.InvoiceID, record.ExpenseID, record.PaymentID, record.ReversesNumber,
		record.PerformedBy, record.RecordedAt,
	)

	return translate(err, nil)
}

// GetByInvoice returns the records linked to an invoice in booking order.
func (r *AccountingRepository) GetByInvoice(ctx context.Context, invoiceID string) ([]*domain.AccountingRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+recordColumns+` FROM accounting_records
		WHERE invoice_id = $1 ORDER BY recorded_at, number`, invoiceID)
	if err != nil {
		return nil, err
	}

	return collectRecords(rows)
}

// List returns records, newest first.
func (r *AccountingRepository) List(ctx context.Context, filter domain.RecordFilter) ([]*domain.AccountingRecord, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("recorded_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("recorded_at < $%d", len(args)))
	}

	query := `SELECT ` + recordColumns + ` FROM accounting_records`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY recorded_at DESC, number DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return collectRecords(rows)
}

// Totals sums record amounts by type over [from, to).
func (r *AccountingRepository) Totals(ctx context.Context, from, to time.Time) (map[domain.RecordType]decimal.Decimal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT type, COALESCE(SUM(amount), 0) FROM accounting_records
		WHERE recorded_at >= $1 AND recorded_at < $2
		GROUP BY type`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := map[domain.RecordType]decimal.Decimal{
		domain.RecordTypeIncome:  decimal.Zero,
		domain.RecordTypeExpense: decimal.Zero,
		domain.RecordTypePayment: decimal.Zero,
	}
	for rows.Next() {
		var (
			kind string
			sum  decimal.Decimal
		)
		if err := rows.Scan(&kind, &sum); err != nil {
			return nil, err
		}
		totals[domain.RecordType(kind)] = sum
	}

	return totals, rows.Err()
}

func collectRecords(rows pgx.Rows) ([]*domain.AccountingRecord, error) {
	defer rows.Close()

	var records []*domain.AccountingRecord
	for rows.Next() {
		var (
			rec  domain.AccountingRecord
			kind string
		)
		if err := rows.Scan(
			&rec.ID, &rec.Number, &kind, &rec.Category, &rec.Amount, &rec.Description,
			&rec.InvoiceID, &rec.ExpenseID, &rec.PaymentID, &rec.ReversesNumber,
			&rec.PerformedBy, &rec.RecordedAt,
		); err != nil {
			return nil, err
		}
		rec.Type = domain.RecordType(kind)
		records = append(records, &rec)
	}

	return records, rows.Err()
}

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	db DB
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db DB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, tx usecase.Transaction, expense *domain.Expense) error {
	pgTx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	_, err = pgTx.Exec(ctx, `
		INSERT INTO expenses (id, category, amount, description, supplier, paid_at, recorded_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		expense.ID, expense.Category, expense.Amount, expense.Description, expense.Supplier,
		expense.PaidAt, expense.RecordedBy, expense.CreatedAt,
	)

	return err
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*domain.Expense, error) {
	var e domain.Expense
	err := r.db.QueryRow(ctx, `
		SELECT id, category, amount, description, supplier, paid_at, recorded_by, created_at
		FROM expenses WHERE id = $1`, id,
	).Scan(&e.ID, &e.Category, &e.Amount, &e.Description, &e.Supplier, &e.PaidAt, &e.RecordedBy, &e.CreatedAt)
	if err != nil {
		return nil, translate(err, domain.ErrExpenseNotFound)
	}

	return &e, nil
}

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	db DB
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, tx usecase.Transaction, payment *domain.Payment) error {
	pgTx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	_, err = pgTx.Exec(ctx, `
		INSERT INTO payments (id, invoice_id, amount, method, reference, received_by, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		payment.ID, payment.InvoiceID, payment.Amount, string(payment.Method),
		payment.Reference, payment.ReceivedBy, payment.ReceivedAt,
	)

	return err
}

func (r *PaymentRepository) ListByInvoice(ctx context.Context, invoiceID string) ([]*domain.Payment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, invoice_id, amount, method, reference, received_by, received_at
		FROM payments WHERE invoice_id = $1 ORDER BY received_at, id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		var (
			p      domain.Payment
			method string
		)
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &method, &p.Reference, &p.ReceivedBy, &p.ReceivedAt); err != nil {
			return nil, err
		}
		p.Method = domain.PaymentMethod(method)
		payments = append(payments, &p)
	}

	return payments, rows.Err()
}
