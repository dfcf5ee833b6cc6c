package postgres

import (
	"context"

	"github.com/gtservice/gtledger/internal/infrastructure/postgres/generated"
	"github.com/gtservice/gtledger/internal/usecase"
)

// SequenceRepository implements usecase.SequenceRepository on the
// document_sequences counter rows.
type SequenceRepository struct{}

// NewSequenceRepository creates a new SequenceRepository.
func NewSequenceRepository() *SequenceRepository {
	return &SequenceRepository{}
}

// Next increments the (prefix, year) counter inside tx and returns the new
// value. The upsert keeps the row locked until tx ends, so concurrent callers
// on the same scope queue behind each other and a rollback gives the number back.
func (r *SequenceRepository) Next(ctx context.Context, tx usecase.Transaction, prefix string, year int) (int64, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return 0, err
	}

	return queries.NextSequenceValue(ctx, generated.NextSequenceValueParams{
		Prefix: prefix,
		Year:   int32(year),
	})
}
