package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/gtservice/gtledger/internal/domain"
)

// ReconciliationUseCase checks stored part quantities against the movement ledger.
type ReconciliationUseCase struct {
	txManager    TransactionManager
	partRepo     PartRepository
	movementRepo MovementRepository
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(txManager TransactionManager, partRepo PartRepository, movementRepo MovementRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		txManager:    txManager,
		partRepo:     partRepo,
		movementRepo: movementRepo,
	}
}

// ReconciliationResult represents the result of a reconciliation check
type ReconciliationResult struct {
	PartID            string
	PartCode          string
	RecordedQuantity  int64
	CalculatedBalance int64
	Difference        int64
	MovementCount     int64
	LastBalanceAfter  *int64
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcilePart compares a part's quantity with the sum of its movement
// deltas and with the balance recorded on its latest movement. The part row
// is locked while its ledger is read, so a movement cannot commit in between.
func (uc *ReconciliationUseCase) ReconcilePart(ctx context.Context, partID string) (*ReconciliationResult, error) {
	return inTransaction(ctx, uc.txManager, "reconcile part", func(txCtx context.Context, tx Transaction) (*ReconciliationResult, error) {
		part, err := uc.partRepo.GetByIDForUpdate(txCtx, tx, partID)
		if err != nil {
			return nil, domain.NewPersistenceError("lock part", err)
		}

		totals, err := uc.movementRepo.Totals(txCtx, tx, part.ID)
		if err != nil {
			return nil, domain.NewPersistenceError("sum movement deltas", err)
		}

		result := &ReconciliationResult{
			PartID:            part.ID,
			PartCode:          part.Code,
			RecordedQuantity:  part.Quantity,
			CalculatedBalance: totals.Sum,
			Difference:        part.Quantity - totals.Sum,
			MovementCount:     totals.Count,
			LastBalanceAfter:  totals.LastBalanceAfter,
			LastChecked:       time.Now().UTC(),
		}
		result.IsReconciled = result.Difference == 0 &&
			(result.LastBalanceAfter == nil || *result.LastBalanceAfter == part.Quantity)

		return result, nil
	})
}

// ReconcileAllParts reconciles every part, page by page.
func (uc *ReconciliationUseCase) ReconcileAllParts(ctx context.Context) ([]*ReconciliationResult, error) {
	var results []*ReconciliationResult

	for offset := 0; ; offset += domain.MaxPageSize {
		parts, err := uc.partRepo.List(ctx, domain.MaxPageSize, offset)
		if err != nil {
			return nil, domain.NewPersistenceError("list parts", err)
		}

		for _, part := range parts {
			result, err := uc.ReconcilePart(ctx, part.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to reconcile part %s: %w", part.Code, err)
			}
			results = append(results, result)
		}

		if len(parts) < domain.MaxPageSize {
			break
		}
	}

	return results, nil
}

// ReconciliationReport represents a full reconciliation report
type ReconciliationReport struct {
	TotalParts      int
	ReconciledParts int
	Discrepancies   []*ReconciliationResult
	CheckedAt       time.Time
}

// Consistent reports whether no discrepancies were found.
func (r *ReconciliationReport) Consistent() bool {
	return len(r.Discrepancies) == 0
}

// GenerateReconciliationReport generates a report over every part
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	results, err := uc.ReconcileAllParts(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconciliationReport{
		TotalParts:    len(results),
		Discrepancies: make([]*ReconciliationResult, 0),
		CheckedAt:     time.Now().UTC(),
	}

	for _, result := range results {
		if result.IsReconciled {
			report.ReconciledParts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}
	}

	return report, nil
}
