package usecase

import (
	"context"
	"time"

	"github.com/gtservice/gtledger/internal/domain"
)

// inTransaction runs fn inside one transaction bounded by
// DefaultTransactionTimeout. Any error from fn, or from commit, rolls
// everything back; nothing fn wrote survives a failure.
func inTransaction[T any](
	ctx context.Context,
	txManager TransactionManager,
	op string,
	fn func(txCtx context.Context, tx Transaction) (T, error),
) (T, error) {
	var zero T

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := txManager.Begin(txCtx)
	if err != nil {
		return zero, domain.NewPersistenceError(op+": begin", err)
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	result, err := fn(txCtx, tx)
	if err != nil {
		return zero, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return zero, domain.NewPersistenceError(op+": commit", err)
	}

	return result, nil
}

// appendNumbered is the shared shape of every numbered, append-only document:
// reserve the next ordinal for the document type's (prefix, year) scope, build
// the row around the formatted number and insert it, all on tx.
func appendNumbered[T any](
	ctx context.Context,
	tx Transaction,
	sequences SequenceRepository,
	doc domain.DocumentType,
	at time.Time,
	build func(number string) *T,
	insert func(ctx context.Context, tx Transaction, row *T) error,
) (*T, error) {
	year := domain.SequenceYear(at)

	ordinal, err := sequences.Next(ctx, tx, doc.Prefix, year)
	if err != nil {
		return nil, domain.NewPersistenceError("reserve "+doc.Prefix+" number", err)
	}

	row := build(doc.Format(year, ordinal))

	if err := insert(ctx, tx, row); err != nil {
		return nil, domain.NewPersistenceError("insert "+doc.Prefix+" document", err)
	}

	return row, nil
}

// writeOutbox appends events on tx.
func writeOutbox(ctx context.Context, tx Transaction, repo OutboxRepository, events ...*domain.OutboxEvent) error {
	if repo == nil {
		return nil
	}
	for _, event := range events {
		if err := repo.Create(ctx, tx, event); err != nil {
			return domain.NewPersistenceError("write outbox event "+event.EventType, err)
		}
	}
	return nil
}

// writeAudit appends an audit row on tx when auditing is configured.
func writeAudit(ctx context.Context, tx Transaction, repo AuditRepository, log *domain.AuditLog) error {
	if repo == nil {
		return nil
	}
	if err := repo.CreateTx(ctx, tx, log); err != nil {
		return domain.NewPersistenceError("write audit log", err)
	}
	return nil
}
