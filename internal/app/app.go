// Package app wires repositories into use cases. The server and the CLI share it
// so both run exactly the same business rules.
package app

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/gtservice/gtledger/internal/adapter/repository/memory"
	postgresRepo "github.com/gtservice/gtledger/internal/adapter/repository/postgres"
	"github.com/gtservice/gtledger/internal/infrastructure/metrics"
	"github.com/gtservice/gtledger/internal/usecase"
)

// Repositories is one storage backend.
type Repositories struct {
	TxManager usecase.TransactionManager
	Parts     usecase.PartRepository
	Movements usecase.MovementRepository
	Alerts    usecase.AlertRepository
	Sequences usecase.SequenceRepository
	Invoices  usecase.InvoiceRepository
	Records   usecase.AccountingRepository
	Expenses  usecase.ExpenseRepository
	Payments  usecase.PaymentRepository
	Customers usecase.CustomerRepository
	Jobs      usecase.JobRepository
	Users     usecase.UserRepository
	Outbox    usecase.OutboxRepository
	Audit     usecase.AuditRepository
}

// MemoryRepositories keeps everything in process. Data is lost on exit.
func MemoryRepositories() Repositories {
	store := memory.NewStore()
	return Repositories{
		TxManager: memory.NewTxManager(store),
		Parts:     memory.NewPartRepository(store),
		Movements: memory.NewMovementRepository(store),
		Alerts:    memory.NewAlertRepository(store),
		Sequences: memory.NewSequenceRepository(store),
		Invoices:  memory.NewInvoiceRepository(store),
		Records:   memory.NewAccountingRepository(store),
		Expenses:  memory.NewExpenseRepository(store),
		Payments:  memory.NewPaymentRepository(store),
		Customers: memory.NewCustomerRepository(store),
		Jobs:      memory.NewJobRepository(store),
		Users:     memory.NewUserRepository(store),
		Outbox:    memory.NewOutboxRepository(store),
		Audit:     memory.NewAuditRepository(store),
	}
}

// PostgresRepositories builds every repository on db, usually a *pgxpool.Pool.
func PostgresRepositories(db postgresRepo.DB) Repositories {
	return Repositories{
		TxManager: postgresRepo.NewTxManager(db),
		Parts:     postgresRepo.NewPartRepository(db),
		Movements: postgresRepo.NewMovementRepository(db),
		Alerts:    postgresRepo.NewAlertRepository(db),
		Sequences: postgresRepo.NewSequenceRepository(),
		Invoices:  postgresRepo.NewInvoiceRepository(db),
		Records:   postgresRepo.NewAccountingRepository(db),
		Expenses:  postgresRepo.NewExpenseRepository(db),
		Payments:  postgresRepo.NewPaymentRepository(db),
		Customers: postgresRepo.NewCustomerRepository(db),
		Jobs:      postgresRepo.NewJobRepository(db),
		Users:     postgresRepo.NewUserRepository(db),
		Outbox:    postgresRepo.NewOutboxRepository(db),
		Audit:     postgresRepo.NewAuditRepository(db),
	}
}

// Options are the knobs use cases take from configuration.
type Options struct {
	TaxRate         decimal.Decimal
	InvoiceDueDays  int
	SummaryCache    usecase.Cache
	SummaryCacheTTL time.Duration
	Auth            usecase.AuthSettings
	Tokens          usecase.TokenIssuer
	OTP             usecase.OTPProvider
	IDs             usecase.IDGenerator
	Metrics         *metrics.Metrics
	Logger          zerolog.Logger
}

// Services holds the use cases.
type Services struct {
	Stock          *usecase.StockUseCase
	Invoices       *usecase.InvoiceUseCase
	Accounting     *usecase.AccountingUseCase
	Customers      *usecase.CustomerUseCase
	Jobs           *usecase.JobUseCase
	Auth           *usecase.AuthUseCase
	Reconciliation *usecase.ReconciliationUseCase
}

// NewServices builds every use case on repos.
func NewServices(repos Repositories, opts Options) *Services {
	ids := opts.IDs
	if ids == nil {
		ids = postgresRepo.NewULIDGenerator()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	log := opts.Logger

	stock := usecase.NewStockUseCase(repos.TxManager, repos.Parts, repos.Movements, repos.Alerts,
		repos.Sequences, repos.Outbox, repos.Audit, ids, m, log)

	return &Services{
		Stock: stock,
		Invoices: usecase.NewInvoiceUseCase(repos.TxManager, repos.Invoices, repos.Records, repos.Sequences,
			repos.Outbox, repos.Audit, ids,
			usecase.InvoiceSettings{
				TaxRate:      opts.TaxRate,
				DueDays:      opts.InvoiceDueDays,
				SummaryCache: opts.SummaryCache,
			}, m, log),
		Accounting: usecase.NewAccountingUseCase(repos.TxManager, repos.Records, repos.Expenses, repos.Payments,
			repos.Invoices, repos.Sequences, repos.Outbox, repos.Audit, ids,
			opts.SummaryCache, opts.SummaryCacheTTL, m, log),
		Customers: usecase.NewCustomerUseCase(repos.Customers, ids),
		Jobs: usecase.NewJobUseCase(repos.TxManager, repos.Jobs, repos.Customers, repos.Sequences,
			repos.Outbox, repos.Audit, stock, ids, m, log),
		Auth: usecase.NewAuthUseCase(repos.TxManager, repos.Users, repos.Audit, opts.Tokens, opts.OTP,
			ids, opts.Auth, m, log),
		Reconciliation: usecase.NewReconciliationUseCase(repos.TxManager, repos.Parts, repos.Movements),
	}
}
