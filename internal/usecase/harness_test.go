package usecase_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/gtservice/gtledger/internal/adapter/repository/memory"
	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/infrastructure/metrics"
	"github.com/gtservice/gtledger/internal/usecase"
)

type sequentialIDs struct {
	n atomic.Int64
}

func (g *sequentialIDs) Generate() string {
	return fmt.Sprintf("id-%06d", g.n.Add(1))
}

// harness wires every use case onto one memory store.
type harness struct {
	store     *memory.Store
	txManager *memory.TxManager
	parts     *memory.PartRepository
	movements *memory.MovementRepository
	alerts    *memory.AlertRepository
	sequences *memory.SequenceRepository
	invoices  *memory.InvoiceRepository
	records   *memory.AccountingRepository
	expenses  *memory.ExpenseRepository
	payments  *memory.PaymentRepository
	customers *memory.CustomerRepository
	jobs      *memory.JobRepository
	users     *memory.UserRepository
	outbox    *memory.OutboxRepository
	audit     *memory.AuditRepository
	metrics   *metrics.Metrics

	stock      *usecase.StockUseCase
	invoice    *usecase.InvoiceUseCase
	accounting *usecase.AccountingUseCase
	crm        *usecase.CustomerUseCase
	job        *usecase.JobUseCase
	reconcile  *usecase.ReconciliationUseCase
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := memory.NewStore()
	h := &harness{
		store:     store,
		txManager: memory.NewTxManager(store),
		parts:     memory.NewPartRepository(store),
		movements: memory.NewMovementRepository(store),
		alerts:    memory.NewAlertRepository(store),
		sequences: memory.NewSequenceRepository(store),
		invoices:  memory.NewInvoiceRepository(store),
		records:   memory.NewAccountingRepository(store),
		expenses:  memory.NewExpenseRepository(store),
		payments:  memory.NewPaymentRepository(store),
		customers: memory.NewCustomerRepository(store),
		jobs:      memory.NewJobRepository(store),
		users:     memory.NewUserRepository(store),
		outbox:    memory.NewOutboxRepository(store),
		audit:     memory.NewAuditRepository(store),
		metrics:   metrics.NewWithRegistry(prometheus.NewRegistry()),
	}

	ids := &sequentialIDs{}
	log := zerolog.Nop()

	h.stock = usecase.NewStockUseCase(h.txManager, h.parts, h.movements, h.alerts, h.sequences, h.outbox, h.audit, ids, h.metrics, log)
	h.invoice = usecase.NewInvoiceUseCase(h.txManager, h.invoices, h.records, h.sequences, h.outbox, h.audit, ids,
		usecase.InvoiceSettings{TaxRate: decimal.RequireFromString("0.12")}, h.metrics, log)
	h.accounting = usecase.NewAccountingUseCase(h.txManager, h.records, h.expenses, h.payments, h.invoices, h.sequences,
		h.outbox, h.audit, ids, nil, 0, h.metrics, log)
	h.crm = usecase.NewCustomerUseCase(h.customers, ids)
	h.job = usecase.NewJobUseCase(h.txManager, h.jobs, h.customers, h.sequences, h.outbox, h.audit, h.stock, ids, h.metrics, log)
	h.reconcile = usecase.NewReconciliationUseCase(h.txManager, h.parts, h.movements)

	return h
}

func (h *harness) createPart(t *testing.T, code string, qty, low int64) *domain.Part {
	t.Helper()

	result, err := h.stock.CreatePart(context.Background(), usecase.CreatePartInput{
		Code:            code,
		Name:            "Brake pad set",
		UnitCost:        decimal.RequireFromString("25.00"),
		LowThreshold:    low,
		InitialQuantity: qty,
	})
	require.NoError(t, err)
	return result.Part
}

func (h *harness) move(ctx context.Context, partID string, delta int64, reason domain.MovementReason) (*usecase.MovementResult, error) {
	return h.stock.RecordMovement(ctx, usecase.RecordMovementInput{
		PartID: partID,
		Delta:  delta,
		Reason: reason,
	})
}

func (h *harness) outboxTypes(t *testing.T, aggregateType, aggregateID string) []string {
	t.Helper()

	events, err := h.outbox.GetByAggregate(context.Background(), aggregateType, aggregateID, 100, 0)
	require.NoError(t, err)

	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.EventType)
	}
	return types
}

func currentYear() int {
	return time.Now().UTC().Year()
}
