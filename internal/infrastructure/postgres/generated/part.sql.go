package generated

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const createPart = `-- name: CreatePart :exec
INSERT INTO parts (id, code, name, quantity, unit_cost, total_value, low_threshold, stock_level, version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

type CreatePartParams struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Quantity     int64           `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalValue   decimal.Decimal `json:"total_value"`
	LowThreshold int64           `json:"low_threshold"`
	StockLevel   string          `json:"stock_level"`
	Version      int64           `json:"version"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (q *Queries) CreatePart(ctx context.Context, arg CreatePartParams) error {
	_, err := q.db.Exec(ctx, createPart,
		arg.ID,
		arg.Code,
		arg.Name,
		arg.Quantity,
		arg.UnitCost,
		arg.TotalValue,
		arg.LowThreshold,
		arg.StockLevel,
		arg.Version,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getPartByCode = `-- name: GetPartByCode :one
SELECT id, code, name, quantity, unit_cost, total_value, low_threshold, stock_level, version, created_at, updated_at FROM parts WHERE code = $1
`

func (q *Queries) GetPartByCode(ctx context.Context, code string) (Part, error) {
	row := q.db.QueryRow(ctx, getPartByCode, code)
	var i Part
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.Name,
		&i.Quantity,
		&i.UnitCost,
		&i.TotalValue,
		&i.LowThreshold,
		&i.StockLevel,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getPartByID = `-- name: GetPartByID :one
SELECT id, code, name, quantity, unit_cost, total_value, low_threshold, stock_level, version, created_at, updated_at FROM parts WHERE id = $1
`

func (q *Queries) GetPartByID(ctx context.Context, id string) (Part, error) {
	row := q.db.QueryRow(ctx, getPartByID, id)
	var i Part
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.Name,
		&i.Quantity,
		&i.UnitCost,
		&i.TotalValue,
		&i.LowThreshold,
		&i.StockLevel,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getPartByIDForUpdate = `-- name: GetPartByIDForUpdate :one
SELECT id, code, name, quantity, unit_cost, total_value, low_threshold, stock_level, version, created_at, updated_at FROM parts WHERE id = $1 FOR UPDATE
`

func (q *Queries) GetPartByIDForUpdate(ctx context.Context, id string) (Part, error) {
	row := q.db.QueryRow(ctx, getPartByIDForUpdate, id)
	var i Part
	err := row.Scan(
		&i.ID,
		&i.Code,
		&i.Name,
		&i.Quantity,
		&i.UnitCost,
		&i.TotalValue,
		&i.LowThreshold,
		&i.StockLevel,
		&i.Version,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listParts = `-- name: ListParts :many
SELECT id, code, name, quantity, unit_cost, total_value, low_threshold, stock_level, version, created_at, updated_at FROM parts
ORDER BY code
LIMIT $1 OFFSET $2
`

type ListPartsParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListParts(ctx context.Context, arg ListPartsParams) ([]Part, error) {
	rows, err := q.db.Query(ctx, listParts, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Part
	for rows.Next() {
		var i Part
		if err := rows.Scan(
			&i.ID,
			&i.Code,
			&i.Name,
			&i.Quantity,
			&i.UnitCost,
			&i.TotalValue,
			&i.LowThreshold,
			&i.StockLevel,
			&i.Version,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updatePartStock = `-- name: UpdatePartStock :execrows
UPDATE parts
SET quantity = $2, unit_cost = $3, total_value = $4, stock_level = $5, version = $6, updated_at = $7
WHERE id = $1
`

type UpdatePartStockParams struct {
	ID         string          `json:"id"`
	Quantity   int64           `json:"quantity"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	TotalValue decimal.Decimal `json:"total_value"`
	StockLevel string          `json:"stock_level"`
	Version    int64           `json:"version"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (q *Queries) UpdatePartStock(ctx context.Context, arg UpdatePartStockParams) (int64, error) {
	result, err := q.db.Exec(ctx, updatePartStock,
		arg.ID,
		arg.Quantity,
		arg.UnitCost,
		arg.TotalValue,
		arg.StockLevel,
		arg.Version,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
