package memory

import (
	"context"

	"github.com/gtservice/gtledger/internal/usecase"
)

// SequenceRepository implements usecase.SequenceRepository.
type SequenceRepository struct {
	store *Store
}

// NewSequenceRepository creates a new SequenceRepository.
func NewSequenceRepository(store *Store) *SequenceRepository {
	return &SequenceRepository{store: store}
}

// Next increments the (prefix, year) counter on tx. A rollback restores it.
func (r *SequenceRepository) Next(_ context.Context, tx usecase.Transaction, prefix string, year int) (int64, error) {
	var next int64
	err := r.store.write(tx, func(s *state) error {
		key := sequenceKey{prefix: prefix, year: year}
		s.sequences[key]++
		next = s.sequences[key]
		return nil
	})
	return next, err
}
