package generated

import (
	"context"
	"time"
)

const createAlert = `-- name: CreateAlert :exec
INSERT INTO stock_alerts (id, part_id, severity, message, balance, low_threshold, is_read, read_by, read_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

type CreateAlertParams struct {
	ID           string     `json:"id"`
	PartID       string     `json:"part_id"`
	Severity     string     `json:"severity"`
	Message      string     `json:"message"`
	Balance      int64      `json:"balance"`
	LowThreshold int64      `json:"low_threshold"`
	IsRead       bool       `json:"is_read"`
	ReadBy       string     `json:"read_by"`
	ReadAt       *time.Time `json:"read_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (q *Queries) CreateAlert(ctx context.Context, arg CreateAlertParams) error {
	_, err := q.db.Exec(ctx, createAlert,
		arg.ID,
		arg.PartID,
		arg.Severity,
		arg.Message,
		arg.Balance,
		arg.LowThreshold,
		arg.IsRead,
		arg.ReadBy,
		arg.ReadAt,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getAlertByID = `-- name: GetAlertByID :one
SELECT id, part_id, severity, message, balance, low_threshold, is_read, read_by, read_at, created_at, updated_at
FROM stock_alerts WHERE id = $1
`

func (q *Queries) GetAlertByID(ctx context.Context, id string) (StockAlert, error) {
	row := q.db.QueryRow(ctx, getAlertByID, id)
	var i StockAlert
	err := row.Scan(
		&i.ID,
		&i.PartID,
		&i.Severity,
		&i.Message,
		&i.Balance,
		&i.LowThreshold,
		&i.IsRead,
		&i.ReadBy,
		&i.ReadAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getOpenAlertForUpdate = `-- name: GetOpenAlertForUpdate :one
SELECT id, part_id, severity, message, balance, low_threshold, is_read, read_by, read_at, created_at, updated_at
FROM stock_alerts WHERE part_id = $1 AND NOT is_read FOR UPDATE
`

func (q *Queries) GetOpenAlertForUpdate(ctx context.Context, partID string) (StockAlert, error) {
	row := q.db.QueryRow(ctx, getOpenAlertForUpdate, partID)
	var i StockAlert
	err := row.Scan(
		&i.ID,
		&i.PartID,
		&i.Severity,
		&i.Message,
		&i.Balance,
		&i.LowThreshold,
		&i.IsRead,
		&i.ReadBy,
		&i.ReadAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listAlerts = `-- name: ListAlerts :many
SELECT id, part_id, severity, message, balance, low_threshold, is_read, read_by, read_at, created_at, updated_at
FROM stock_alerts
WHERE ($1::TEXT = '' OR part_id = $1)
  AND (NOT $2::BOOLEAN OR NOT is_read)
ORDER BY updated_at DESC
LIMIT $3 OFFSET $4
`

type ListAlertsParams struct {
	PartID     string `json:"part_id"`
	UnreadOnly bool   `json:"unread_only"`
	RowLimit   int32  `json:"row_limit"`
	RowOffset  int32  `json:"row_offset"`
}

func (q *Queries) ListAlerts(ctx context.Context, arg ListAlertsParams) ([]StockAlert, error) {
	rows, err := q.db.Query(ctx, listAlerts,
		arg.PartID,
		arg.UnreadOnly,
		arg.RowLimit,
		arg.RowOffset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []StockAlert
	for rows.Next() {
		var i StockAlert
		if err := rows.Scan(
			&i.ID,
			&i.PartID,
			&i.Severity,
			&i.Message,
			&i.Balance,
			&i.LowThreshold,
			&i.IsRead,
			&i.ReadBy,
			&i.ReadAt,
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

const markAlertRead = `-- name: MarkAlertRead :execrows
UPDATE stock_alerts
SET is_read = TRUE, read_by = $2, read_at = $3, updated_at = $3
WHERE id = $1 AND NOT is_read
`

type MarkAlertReadParams struct {
	ID     string     `json:"id"`
	ReadBy string     `json:"read_by"`
	ReadAt *time.Time `json:"read_at"`
}

func (q *Queries) MarkAlertRead(ctx context.Context, arg MarkAlertReadParams) (int64, error) {
	result, err := q.db.Exec(ctx, markAlertRead, arg.ID, arg.ReadBy, arg.ReadAt)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const refreshAlert = `-- name: RefreshAlert :execrows
UPDATE stock_alerts
SET severity = $2, message = $3, balance = $4, low_threshold = $5, updated_at = $6
WHERE id = $1
`

type RefreshAlertParams struct {
	ID           string    `json:"id"`
	Severity     string    `json:"severity"`
	Message      string    `json:"message"`
	Balance      int64     `json:"balance"`
	LowThreshold int64     `json:"low_threshold"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (q *Queries) RefreshAlert(ctx context.Context, arg RefreshAlertParams) (int64, error) {
	result, err := q.db.Exec(ctx, refreshAlert,
		arg.ID,
		arg.Severity,
		arg.Message,
		arg.Balance,
		arg.LowThreshold,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
