package postgres

import (
	"context"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/infrastructure/postgres/generated"
	"github.com/gtservice/gtledger/internal/usecase"
)

// PartRepository implements usecase.PartRepository.
type PartRepository struct {
	queries *generated.Queries
}

// NewPartRepository creates a new PartRepository.
func NewPartRepository(pool DB) *PartRepository {
	return &PartRepository{queries: generated.New(pool)}
}

// Create inserts a part.
func (r *PartRepository) Create(ctx context.Context, tx usecase.Transaction, part *domain.Part) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	err = queries.CreatePart(ctx, generated.CreatePartParams{
		ID:           part.ID,
		Code:         part.Code,
		Name:         part.Name,
		Quantity:     part.Quantity,
		UnitCost:     part.UnitCost,
		TotalValue:   part.TotalValue,
		LowThreshold: part.LowThreshold,
		StockLevel:   string(part.StockLevel),
		Version:      part.Version,
		CreatedAt:    part.CreatedAt,
		UpdatedAt:    part.UpdatedAt,
	})

	return translate(err, nil)
}

// GetByID retrieves a part by ID.
func (r *PartRepository) GetByID(ctx context.Context, id string) (*domain.Part, error) {
	row, err := r.queries.GetPartByID(ctx, id)
	if err != nil {
		return nil, translate(err, domain.ErrPartNotFound)
	}

	return rowToPart(row), nil
}

// GetByCode retrieves a part by its normalized code.
func (r *PartRepository) GetByCode(ctx context.Context, code string) (*domain.Part, error) {
	row, err := r.queries.GetPartByCode(ctx, domain.NormalizePartCode(code))
	if err != nil {
		return nil, translate(err, domain.ErrPartNotFound)
	}

	return rowToPart(row), nil
}

// GetByIDForUpdate retrieves a part by ID with a FOR UPDATE lock held until tx ends.
func (r *PartRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Part, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetPartByIDForUpdate(ctx, id)
	if err != nil {
		return nil, translate(err, domain.ErrPartNotFound)
	}

	return rowToPart(row), nil
}

// Update stores the part's balance fields.
func (r *PartRepository) Update(ctx context.Context, tx usecase.Transaction, part *domain.Part) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	rows, err := queries.UpdatePartStock(ctx, generated.UpdatePartStockParams{
		ID:         part.ID,
		Quantity:   part.Quantity,
		UnitCost:   part.UnitCost,
		TotalValue: part.TotalValue,
		StockLevel: string(part.StockLevel),
		Version:    part.Version,
		UpdatedAt:  part.UpdatedAt,
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrPartNotFound
	}

	return nil
}

// List retrieves parts ordered by code.
func (r *PartRepository) List(ctx context.Context, limit, offset int) ([]*domain.Part, error) {
	rows, err := r.queries.ListParts(ctx, generated.ListPartsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	parts := make([]*domain.Part, 0, len(rows))
	for _, row := range rows {
		parts = append(parts, rowToPart(row))
	}

	return parts, nil
}

func rowToPart(row generated.Part) *domain.Part {
	return &domain.Part{
		ID:           row.ID,
		Code:         row.Code,
		Name:         row.Name,
		Quantity:     row.Quantity,
		UnitCost:     row.UnitCost,
		TotalValue:   row.TotalValue,
		LowThreshold: row.LowThreshold,
		StockLevel:   domain.StockLevel(row.StockLevel),
		Version:      row.Version,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
