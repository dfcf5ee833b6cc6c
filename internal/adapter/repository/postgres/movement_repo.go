package postgres

import (
	"context"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/infrastructure/postgres/generated"
	"github.com/gtservice/gtledger/internal/usecase"
)

// MovementRepository implements usecase.MovementRepository. Rows are insert only.
type MovementRepository struct {
	queries *generated.Queries
}

// NewMovementRepository creates a new MovementRepository.
func NewMovementRepository(pool DB) *MovementRepository {
	return &MovementRepository{queries: generated.New(pool)}
}

// Create appends a movement within a transaction.
func (r *MovementRepository) Create(ctx context.Context, tx usecase.Transaction, m *domain.StockMovement) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	err = queries.CreateMovement(ctx, generated.CreateMovementParams{
		ID:             m.ID,
		Number:         m.Number,
		PartID:         m.PartID,
		Reason:         string(m.Reason),
		Delta:          m.Delta,
		BalanceBefore:  m.BalanceBefore,
		BalanceAfter:   m.BalanceAfter,
		UnitCost:       m.UnitCost,
		TotalValue:     m.TotalValue,
		Notes:          m.Notes,
		JobID:          m.JobID,
		CorrectsNumber: m.CorrectsNumber,
		PerformedBy:    m.PerformedBy,
		CreatedAt:      m.CreatedAt,
	})

	return translate(err, nil)
}

// GetByNumber retrieves a movement by its document number.
func (r *MovementRepository) GetByNumber(ctx context.Context, number string) (*domain.StockMovement, error) {
	row, err := r.queries.GetMovementByNumber(ctx, number)
	if err != nil {
		return nil, translate(err, domain.ErrMovementNotFound)
	}

	return rowToMovement(row), nil
}

// ListByPart retrieves a part's movements, newest first.
func (r *MovementRepository) ListByPart(ctx context.Context, partID string, limit, offset int) ([]*domain.StockMovement, error) {
	rows, err := r.queries.ListMovementsByPart(ctx, generated.ListMovementsByPartParams{
		PartID: partID,
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	movements := make([]*domain.StockMovement, 0, len(rows))
	for _, row := range rows {
		movements = append(movements, rowToMovement(row))
	}

	return movements, nil
}

// Totals sums a part's movement deltas and reads its newest balance in one
// statement on tx.
func (r *MovementRepository) Totals(ctx context.Context, tx usecase.Transaction, partID string) (*domain.MovementTotals, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.SumMovementDeltas(ctx, partID)
	if err != nil {
		return nil, err
	}

	return &domain.MovementTotals{
		Sum:              row.Total,
		Count:            row.Movements,
		LastBalanceAfter: row.LastBalanceAfter,
	}, nil
}

func rowToMovement(row generated.StockMovement) *domain.StockMovement {
	return &domain.StockMovement{
		ID:             row.ID,
		Number:         row.Number,
		PartID:         row.PartID,
		Reason:         domain.MovementReason(row.Reason),
		Delta:          row.Delta,
		BalanceBefore:  row.BalanceBefore,
		BalanceAfter:   row.BalanceAfter,
		UnitCost:       row.UnitCost,
		TotalValue:     row.TotalValue,
		Notes:          row.Notes,
		JobID:          row.JobID,
		CorrectsNumber: row.CorrectsNumber,
		PerformedBy:    row.PerformedBy,
		CreatedAt:      row.CreatedAt,
	}
}
