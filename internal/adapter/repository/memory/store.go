// Package memory keeps the whole ledger in process. Write transactions are
// serialized and work on a private copy of the data that replaces the shared
// copy on commit, so readers only ever see committed state.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

var (
	errTxClosed  = errors.New("memory: transaction already closed")
	errForeignTx = errors.New("memory: transaction belongs to another store")
	errOpenAlert = errors.New("memory: part already has an open alert")
)

type sequenceKey struct {
	prefix string
	year   int
}

type state struct {
	parts     map[string]domain.Part
	partCodes map[string]string
	movements []domain.StockMovement
	sequences map[sequenceKey]int64
	alerts    map[string]domain.StockAlert
	invoices  map[string]domain.Invoice
	records   []domain.AccountingRecord
	expenses  map[string]domain.Expense
	payments  []domain.Payment
	customers map[string]domain.Customer
	vehicles  map[string]domain.Vehicle
	jobs      map[string]domain.Job
	users     map[string]domain.User
	outbox    []domain.OutboxEvent
	audit     []domain.AuditLog
}

func newState() *state {
	return &state{
		parts:     make(map[string]domain.Part),
		partCodes: make(map[string]string),
		sequences: make(map[sequenceKey]int64),
		alerts:    make(map[string]domain.StockAlert),
		invoices:  make(map[string]domain.Invoice),
		expenses:  make(map[string]domain.Expense),
		customers: make(map[string]domain.Customer),
		vehicles:  make(map[string]domain.Vehicle),
		jobs:      make(map[string]domain.Job),
		users:     make(map[string]domain.User),
	}
}

func (s *state) clone() *state {
	return &state{
		parts:     cloneMap(s.parts),
		partCodes: cloneMap(s.partCodes),
		movements: append([]domain.StockMovement(nil), s.movements...),
		sequences: cloneMap(s.sequences),
		alerts:    cloneMap(s.alerts),
		invoices:  cloneMap(s.invoices),
		records:   append([]domain.AccountingRecord(nil), s.records...),
		expenses:  cloneMap(s.expenses),
		payments:  append([]domain.Payment(nil), s.payments...),
		customers: cloneMap(s.customers),
		vehicles:  cloneMap(s.vehicles),
		jobs:      cloneMap(s.jobs),
		users:     cloneMap(s.users),
		outbox:    append([]domain.OutboxEvent(nil), s.outbox...),
		audit:     append([]domain.AuditLog(nil), s.audit...),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store is the shared in-memory database behind every memory repository.
// At most one write transaction runs at a time; reads see the last commit
// and never block on it.
type Store struct {
	writer chan struct{}

	mu   sync.RWMutex
	data *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		writer: make(chan struct{}, 1),
		data:   newState(),
	}
}

// Tx is a memory transaction.
type Tx struct {
	store *Store
	work  *state
	done  bool
}

// TxManager begins memory transactions.
type TxManager struct {
	store *Store
}

// NewTxManager creates a transaction manager for store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin waits for the writer slot, or for ctx to end.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	select {
	case m.store.writer <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	m.store.mu.RLock()
	work := m.store.data.clone()
	m.store.mu.RUnlock()

	return &Tx{store: m.store, work: work}, nil
}

// Commit publishes the transaction's working copy.
func (t *Tx) Commit(_ context.Context) error {
	if t.done {
		return errTxClosed
	}
	t.done = true

	t.store.mu.Lock()
	t.store.data = t.work
	t.store.mu.Unlock()

	t.work = nil
	<-t.store.writer
	return nil
}

// Rollback discards the working copy. Rolling back a finished transaction is
// a no-op.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.work = nil
	<-t.store.writer
	return nil
}

// write runs fn against tx's working copy. Only the goroutine holding the
// writer slot reaches it, so no lock is taken.
func (s *Store) write(tx usecase.Transaction, fn func(*state) error) error {
	memTx, ok := tx.(*Tx)
	if !ok || memTx.store != s {
		return errForeignTx
	}
	if memTx.done {
		return errTxClosed
	}
	return fn(memTx.work)
}

// autocommit runs a single write outside any caller transaction. A failing
// fn leaves the committed data untouched.
func (s *Store) autocommit(ctx context.Context, fn func(*state) error) error {
	select {
	case s.writer <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.writer }()

	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()

	if err := fn(work); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = work
	s.mu.Unlock()
	return nil
}

func (s *Store) read(fn func(*state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func sortedValues[K comparable, V any](m map[K]V, less func(a, b *V) bool) []*V {
	out := make([]*V, 0, len(m))
	for _, v := range m {
		out = append(out, &v)
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
