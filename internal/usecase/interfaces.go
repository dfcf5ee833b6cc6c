package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gtservice/gtledger/internal/domain"
)

// PartRepository defines data access for parts.
type PartRepository interface {
	Create(ctx context.Context, tx Transaction, part *domain.Part) error
	GetByID(ctx context.Context, id string) (*domain.Part, error)
	GetByCode(ctx context.Context, code string) (*domain.Part, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Part, error)
	Update(ctx context.Context, tx Transaction, part *domain.Part) error
	List(ctx context.Context, limit, offset int) ([]*domain.Part, error)
}

// MovementRepository defines data access for the stock ledger. There is no
// update or delete: corrections are new movements.
type MovementRepository interface {
	Create(ctx context.Context, tx Transaction, movement *domain.StockMovement) error
	GetByNumber(ctx context.Context, number string) (*domain.StockMovement, error)
	ListByPart(ctx context.Context, partID string, limit, offset int) ([]*domain.StockMovement, error)
	// Totals reads the part's ledger summary inside tx.
	Totals(ctx context.Context, tx Transaction, partID string) (*domain.MovementTotals, error)
}

// SequenceRepository hands out year scoped document ordinals. Next must run in
// the caller's transaction so a rollback releases the number.
type SequenceRepository interface {
	Next(ctx context.Context, tx Transaction, prefix string, year int) (int64, error)
}

// AlertRepository defines data access for stock alerts.
type AlertRepository interface {
	// GetOpenForUpdate returns the unread alert for a part, or nil when there is none.
	GetOpenForUpdate(ctx context.Context, tx Transaction, partID string) (*domain.StockAlert, error)
	Create(ctx context.Context, tx Transaction, alert *domain.StockAlert) error
	Update(ctx context.Context, tx Transaction, alert *domain.StockAlert) error
	GetByID(ctx context.Context, id string) (*domain.StockAlert, error)
	MarkRead(ctx context.Context, id, readBy string, readAt time.Time) (*domain.StockAlert, error)
	List(ctx context.Context, filter domain.AlertFilter) ([]*domain.StockAlert, error)
}

// InvoiceRepository defines data access for invoices and their items.
type InvoiceRepository interface {
	Create(ctx context.Context, tx Transaction, invoice *domain.Invoice) error
	GetByID(ctx context.Context, id string) (*domain.Invoice, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Invoice, error)
	UpdateStatus(ctx context.Context, tx Transaction, invoice *domain.Invoice) error
	List(ctx context.Context, filter domain.InvoiceFilter) ([]*domain.Invoice, error)
}

// AccountingRepository defines data access for accounting records.
type AccountingRepository interface {
	Create(ctx context.Context, tx Transaction, record *domain.AccountingRecord) error
	GetByInvoice(ctx context.Context, invoiceID string) ([]*domain.AccountingRecord, error)
	List(ctx context.Context, filter domain.RecordFilter) ([]*domain.AccountingRecord, error)
	Totals(ctx context.Context, from, to time.Time) (map[domain.RecordType]decimal.Decimal, error)
}

// ExpenseRepository defines data access for expenses.
type ExpenseRepository interface {
	Create(ctx context.Context, tx Transaction, expense *domain.Expense) error
	GetByID(ctx context.Context, id string) (*domain.Expense, error)
}

// PaymentRepository defines data access for invoice payments.
type PaymentRepository interface {
	Create(ctx context.Context, tx Transaction, payment *domain.Payment) error
	ListByInvoice(ctx context.Context, invoiceID string) ([]*domain.Payment, error)
}

// CustomerRepository defines data access for customers and their vehicles.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Customer, error)
	CreateVehicle(ctx context.Context, vehicle *domain.Vehicle) error
	GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error)
	ListVehicles(ctx context.Context, customerID string) ([]*domain.Vehicle, error)
}

// JobRepository defines data access for workshop jobs.
type JobRepository interface {
	Create(ctx context.Context, tx Transaction, job *domain.Job) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Job, error)
	UpdateStatus(ctx context.Context, tx Transaction, job *domain.Job) error
	List(ctx context.Context, filter domain.JobFilter) ([]*domain.Job, error)
}

// UserRepository defines data access for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmailForUpdate(ctx context.Context, tx Transaction, email string) (*domain.User, error)
	UpdateSecurity(ctx context.Context, tx Transaction, user *domain.User) error
	UpdateTOTP(ctx context.Context, user *domain.User) error
	SetActive(ctx context.Context, id string, active bool) error
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	GetByAggregate(ctx context.Context, aggregateType, aggregateID string, limit, offset int) ([]*domain.OutboxEvent, error)
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient store conflicts. Use cases never
// retry on their own; callers opt in.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations. Get returns (nil, nil) on a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
