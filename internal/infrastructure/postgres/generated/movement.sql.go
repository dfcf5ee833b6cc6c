package generated

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const createMovement = `-- name: CreateMovement :exec
INSERT INTO stock_movements (id, number, part_id, reason, delta, balance_before, balance_after, unit_cost, total_value, notes, job_id, corrects_number, performed_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
`

type CreateMovementParams struct {
	ID             string          `json:"id"`
	Number         string          `json:"number"`
	PartID         string          `json:"part_id"`
	Reason         string          `json:"reason"`
	Delta          int64           `json:"delta"`
	BalanceBefore  int64           `json:"balance_before"`
	BalanceAfter   int64           `json:"balance_after"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	TotalValue     decimal.Decimal `json:"total_value"`
	Notes          string          `json:"notes"`
	JobID          *string         `json:"job_id"`
	CorrectsNumber *string         `json:"corrects_number"`
	PerformedBy    string          `json:"performed_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (q *Queries) CreateMovement(ctx context.Context, arg CreateMovementParams) error {
	_, err := q.db.Exec(ctx, createMovement,
		arg.ID,
		arg.Number,
		arg.PartID,
		arg.Reason,
		arg.Delta,
		arg.BalanceBefore,
		arg.BalanceAfter,
		arg.UnitCost,
		arg.TotalValue,
		arg.Notes,
		arg.JobID,
		arg.CorrectsNumber,
		arg.PerformedBy,
		arg.CreatedAt,
	)
	return err
}

const getMovementByNumber = `-- name: GetMovementByNumber :one
SELECT id, number, part_id, reason, delta, balance_before, balance_after, unit_cost, total_value, notes, job_id, corrects_number, performed_by, created_at
FROM stock_movements WHERE number = $1
`

func (q *Queries) GetMovementByNumber(ctx context.Context, number string) (StockMovement, error) {
	row := q.db.QueryRow(ctx, getMovementByNumber, number)
	var i StockMovement
	err := row.Scan(
		&i.ID,
		&i.Number,
		&i.PartID,
		&i.Reason,
		&i.Delta,
		&i.BalanceBefore,
		&i.BalanceAfter,
		&i.UnitCost,
		&i.TotalValue,
		&i.Notes,
		&i.JobID,
		&i.CorrectsNumber,
		&i.PerformedBy,
		&i.CreatedAt,
	)
	return i, err
}

const listMovementsByPart = `-- name: ListMovementsByPart :many
SELECT id, number, part_id, reason, delta, balance_before, balance_after, unit_cost, total_value, notes, job_id, corrects_number, performed_by, created_at
FROM stock_movements
WHERE part_id = $1
ORDER BY created_at DESC, number DESC
LIMIT $2 OFFSET $3
`

type ListMovementsByPartParams struct {
	PartID string `json:"part_id"`
	Limit  int32  `json:"limit"`
	Offset int32  `json:"offset"`
}

func (q *Queries) ListMovementsByPart(ctx context.Context, arg ListMovementsByPartParams) ([]StockMovement, error) {
	rows, err := q.db.Query(ctx, listMovementsByPart, arg.PartID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []StockMovement
	for rows.Next() {
		var i StockMovement
		if err := rows.Scan(
			&i.ID,
			&i.Number,
			&i.PartID,
			&i.Reason,
			&i.Delta,
			&i.BalanceBefore,
			&i.BalanceAfter,
			&i.UnitCost,
			&i.TotalValue,
			&i.Notes,
			&i.JobID,
			&i.CorrectsNumber,
			&i.PerformedBy,
			&i.CreatedAt,
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

const sumMovementDeltas = `-- name: SumMovementDeltas :one
SELECT COALESCE(SUM(delta), 0)::BIGINT AS total, COUNT(*) AS movements,
       (SELECT m.balance_after FROM stock_movements m
        WHERE m.part_id = $1 ORDER BY m.created_at DESC, m.number DESC LIMIT 1) AS last_balance_after
FROM stock_movements WHERE part_id = $1
`

type SumMovementDeltasRow struct {
	Total            int64  `json:"total"`
	Movements        int64  `json:"movements"`
	LastBalanceAfter *int64 `json:"last_balance_after"`
}

func (q *Queries) SumMovementDeltas(ctx context.Context, partID string) (SumMovementDeltasRow, error) {
	row := q.db.QueryRow(ctx, sumMovementDeltas, partID)
	var i SumMovementDeltasRow
	err := row.Scan(&i.Total, &i.Movements, &i.LastBalanceAfter)
	return i, err
}
