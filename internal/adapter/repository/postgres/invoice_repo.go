package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

const invoiceColumns = `id, number, customer_id, job_id, status, subtotal, tax_rate, tax_amount,
	total, amount_paid, notes, issued_at, due_at, created_by, created_at, updated_at`

// InvoiceRepository implements usecase.InvoiceRepository.
type InvoiceRepository struct {
	db DB
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(db DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create inserts the invoice header and its items in line order.
func (r *InvoiceRepository) Create(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice) error {
	pgTx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	_, err = pgTx.Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		invoice.ID, invoice.Number, invoice.CustomerID, invoice.JobID, string(invoice.Status),
		invoice.Subtotal, invoice.TaxRate, invoice.TaxAmount, invoice.Total, invoice.AmountPaid,
		invoice.Notes, invoice.IssuedAt, invoice.DueAt, invoice.CreatedBy, invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		return translate(err, nil)
	}

	for i, item := range invoice.Items {
		_, err = pgTx.Exec(ctx, `
			INSERT INTO invoice_items (id, invoice_id, position, kind, description, part_id, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			item.ID, invoice.ID, i, string(item.Kind), item.Description, item.PartID,
			item.Quantity, item.UnitPrice, item.LineTotal,
		)
		if err != nil {
			return fmt.Errorf("insert item %d: %w", i, err)
		}
	}

	return nil
}

// GetByID retrieves an invoice with its items.
func (r *InvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	invoice, err := scanInvoice(r.db.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, domain.ErrInvoiceNotFound)
	}

	if invoice.Items, err = r.loadItems(ctx, r.db, invoice.ID); err != nil {
		return nil, err
	}

	return invoice, nil
}

// GetByIDForUpdate retrieves an invoice with a FOR UPDATE lock on its header row.
func (r *InvoiceRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Invoice, error) {
	pgTx, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	invoice, err := scanInvoice(pgTx.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, translate(err, domain.ErrInvoiceNotFound)
	}

	if invoice.Items, err = r.loadItems(ctx, pgTx, invoice.ID); err != nil {
		return nil, err
	}

	return invoice, nil
}

// UpdateStatus stores the invoice's status and paid amount.
func (r *InvoiceRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, invoice *domain.Invoice) error {
	pgTx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	tag, err := pgTx.Exec(ctx, `
		UPDATE invoices SET status = $2, amount_paid = $3, updated_at = $4
		WHERE id = $1`,
		invoice.ID, string(invoice.Status), invoice.AmountPaid, invoice.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvoiceNotFound
	}

	return nil
}

// List retrieves invoices, newest number first. Items are not loaded.
func (r *InvoiceRepository) List(ctx context.Context, filter domain.InvoiceFilter) ([]*domain.Invoice, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", len(args)))
	}

	query := `SELECT ` + invoiceColumns + ` FROM invoices`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY number DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*domain.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}

	return invoices, rows.Err()
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *InvoiceRepository) loadItems(ctx context.Context, q querier, invoiceID string) ([]domain.InvoiceItem, error) {
	rows, err := q.Query(ctx, `
		SELECT id, invoice_id, kind, description, part_id, quantity, unit_price, line_total
		FROM invoice_items WHERE invoice_id = $1 ORDER BY position`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("load invoice items: %w", err)
	}
	defer rows.Close()

	var items []domain.InvoiceItem
	for rows.Next() {
		var (
			item domain.InvoiceItem
			kind string
		)
		if err := rows.Scan(&item.ID, &item.InvoiceID, &kind, &item.Description, &item.PartID,
			&item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return nil, err
		}
		item.Kind = domain.InvoiceItemKind(kind)
		items = append(items, item)
	}

	return items, rows.Err()
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var (
		invoice domain.Invoice
		status  string
	)
	err := row.Scan(
		&invoice.ID, &invoice.Number, &invoice.CustomerID, &invoice.JobID, &status,
		&invoice.Subtotal, &invoice.TaxRate, &invoice.TaxAmount, &invoice.Total, &invoice.AmountPaid,
		&invoice.Notes, &invoice.IssuedAt, &invoice.DueAt, &invoice.CreatedBy, &invoice.CreatedAt, &invoice.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	invoice.Status = domain.InvoiceStatus(status)
	return &invoice, nil
}
