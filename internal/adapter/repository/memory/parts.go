package memory

import (
	"context"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

// PartRepository implements usecase.PartRepository.
type PartRepository struct {
	store *Store
}

// NewPartRepository creates a new PartRepository.
func NewPartRepository(store *Store) *PartRepository {
	return &PartRepository{store: store}
}

// Create inserts a part. Codes are unique.
func (r *PartRepository) Create(_ context.Context, tx usecase.Transaction, part *domain.Part) error {
	return r.store.write(tx, func(s *state) error {
		if _, taken := s.partCodes[part.Code]; taken {
			return domain.ErrDuplicatePartCode
		}
		s.parts[part.ID] = *part
		s.partCodes[part.Code] = part.ID
		return nil
	})
}

// GetByID returns a copy of the part.
func (r *PartRepository) GetByID(_ context.Context, id string) (*domain.Part, error) {
	var part domain.Part
	err := r.store.read(func(s *state) error {
		p, ok := s.parts[id]
		if !ok {
			return domain.ErrPartNotFound
		}
		part = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &part, nil
}

// GetByCode looks a part up by its normalized code.
func (r *PartRepository) GetByCode(ctx context.Context, code string) (*domain.Part, error) {
	var id string
	err := r.store.read(func(s *state) error {
		found, ok := s.partCodes[domain.NormalizePartCode(code)]
		if !ok {
			return domain.ErrPartNotFound
		}
		id = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByIDForUpdate returns a copy the caller may mutate before Update. The
// writer slot held by tx stands in for the row lock.
func (r *PartRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Part, error) {
	var part domain.Part
	err := r.store.write(tx, func(s *state) error {
		p, ok := s.parts[id]
		if !ok {
			return domain.ErrPartNotFound
		}
		part = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &part, nil
}

// Update stores the part's balance fields.
func (r *PartRepository) Update(_ context.Context, tx usecase.Transaction, part *domain.Part) error {
	return r.store.write(tx, func(s *state) error {
		if _, ok := s.parts[part.ID]; !ok {
			return domain.ErrPartNotFound
		}
		s.parts[part.ID] = *part
		return nil
	})
}

// List returns parts ordered by code.
func (r *PartRepository) List(_ context.Context, limit, offset int) ([]*domain.Part, error) {
	var parts []*domain.Part
	_ = r.store.read(func(s *state) error {
		parts = sortedValues(s.parts, func(a, b *domain.Part) bool { return a.Code < b.Code })
		return nil
	})
	return page(parts, limit, offset), nil
}
