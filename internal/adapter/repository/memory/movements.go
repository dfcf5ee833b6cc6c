package memory

import (
	"context"
	"sort"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

// MovementRepository implements usecase.MovementRepository.
type MovementRepository struct {
	store *Store
}

// NewMovementRepository creates a new MovementRepository.
func NewMovementRepository(store *Store) *MovementRepository {
	return &MovementRepository{store: store}
}

// Create appends a movement. Numbers are unique.
func (r *MovementRepository) Create(_ context.Context, tx usecase.Transaction, movement *domain.StockMovement) error {
	return r.store.write(tx, func(s *state) error {
		for i := range s.movements {
			if s.movements[i].Number == movement.Number {
				return domain.ErrDuplicateSequence
			}
		}
		s.movements = append(s.movements, *movement)
		return nil
	})
}

// GetByNumber finds a movement by its document number.
func (r *MovementRepository) GetByNumber(_ context.Context, number string) (*domain.StockMovement, error) {
	var movement *domain.StockMovement
	_ = r.store.read(func(s *state) error {
		for i := range s.movements {
			if s.movements[i].Number == number {
				m := s.movements[i]
				movement = &m
				break
			}
		}
		return nil
	})
	if movement == nil {
		return nil, domain.ErrMovementNotFound
	}
	return movement, nil
}

// ListByPart returns a part's movements, newest first.
func (r *MovementRepository) ListByPart(_ context.Context, partID string, limit, offset int) ([]*domain.StockMovement, error) {
	var movements []*domain.StockMovement
	_ = r.store.read(func(s *state) error {
		for i := len(s.movements) - 1; i >= 0; i-- {
			if s.movements[i].PartID == partID {
				m := s.movements[i]
				movements = append(movements, &m)
			}
		}
		return nil
	})
	sort.SliceStable(movements, func(i, j int) bool {
		return movements[i].CreatedAt.After(movements[j].CreatedAt)
	})
	return page(movements, limit, offset), nil
}

// Totals sums a part's movement deltas as seen by tx. Movements are appended
// in commit order, so the last match is the newest.
func (r *MovementRepository) Totals(_ context.Context, tx usecase.Transaction, partID string) (*domain.MovementTotals, error) {
	totals := &domain.MovementTotals{}
	err := r.store.write(tx, func(s *state) error {
		for i := range s.movements {
			if s.movements[i].PartID == partID {
				totals.Sum += s.movements[i].Delta
				totals.Count++
				after := s.movements[i].BalanceAfter
				totals.LastBalanceAfter = &after
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return totals, nil
}
