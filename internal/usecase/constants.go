package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// MaxMovementQuantity bounds a single stock movement in either direction
	MaxMovementQuantity = 1_000_000

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultInvoiceDueDays is the payment term for new invoices
	DefaultInvoiceDueDays = 30
)
