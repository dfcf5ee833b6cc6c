package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/infrastructure/postgres/generated"
	"github.com/gtservice/gtledger/internal/usecase"
)

// AlertRepository implements usecase.AlertRepository.
type AlertRepository struct {
	queries *generated.Queries
}

// NewAlertRepository creates a new AlertRepository.
func NewAlertRepository(pool DB) *AlertRepository {
	return &AlertRepository{queries: generated.New(pool)}
}

// GetOpenForUpdate locks and returns the part's unread alert, or nil when there is none.
func (r *AlertRepository) GetOpenForUpdate(ctx context.Context, tx usecase.Transaction, partID string) (*domain.StockAlert, error) {
	queries, err := txQueries(tx)
	if err != nil {
		return nil, err
	}

	row, err := queries.GetOpenAlertForUpdate(ctx, partID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return rowToAlert(row), nil
}

// Create inserts an alert. The partial unique index rejects a second unread alert for a part.
func (r *AlertRepository) Create(ctx context.Context, tx usecase.Transaction, alert *domain.StockAlert) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	return queries.CreateAlert(ctx, generated.CreateAlertParams{
		ID:           alert.ID,
		PartID:       alert.PartID,
		Severity:     string(alert.Severity),
		Message:      alert.Message,
		Balance:      alert.Balance,
		LowThreshold: alert.LowThreshold,
		IsRead:       alert.IsRead,
		ReadBy:       alert.ReadBy,
		ReadAt:       alert.ReadAt,
		CreatedAt:    alert.CreatedAt,
		UpdatedAt:    alert.UpdatedAt,
	})
}

// Update stores a refreshed alert.
func (r *AlertRepository) Update(ctx context.Context, tx usecase.Transaction, alert *domain.StockAlert) error {
	queries, err := txQueries(tx)
	if err != nil {
		return err
	}

	rows, err := queries.RefreshAlert(ctx, generated.RefreshAlertParams{
		ID:           alert.ID,
		Severity:     string(alert.Severity),
		Message:      alert.Message,
		Balance:      alert.Balance,
		LowThreshold: alert.LowThreshold,
		UpdatedAt:    alert.UpdatedAt,
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrAlertNotFound
	}

	return nil
}

// GetByID retrieves an alert by ID.
func (r *AlertRepository) GetByID(ctx context.Context, id string) (*domain.StockAlert, error) {
	row, err := r.queries.GetAlertByID(ctx, id)
	if err != nil {
		return nil, translate(err, domain.ErrAlertNotFound)
	}

	return rowToAlert(row), nil
}

// MarkRead acknowledges an alert. An already read alert is returned unchanged.
func (r *AlertRepository) MarkRead(ctx context.Context, id, readBy string, readAt time.Time) (*domain.StockAlert, error) {
	if _, err := r.queries.MarkAlertRead(ctx, generated.MarkAlertReadParams{
		ID:     id,
		ReadBy: readBy,
		ReadAt: &readAt,
	}); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

// List retrieves alerts, most recently updated first.
func (r *AlertRepository) List(ctx context.Context, filter domain.AlertFilter) ([]*domain.StockAlert, error) {
	rows, err := r.queries.ListAlerts(ctx, generated.ListAlertsParams{
		PartID:     filter.PartID,
		UnreadOnly: filter.UnreadOnly,
		RowLimit:   int32(filter.Limit),
		RowOffset:  int32(filter.Offset),
	})
	if err != nil {
		return nil, err
	}

	alerts := make([]*domain.StockAlert, 0, len(rows))
	for _, row := range rows {
		alerts = append(alerts, rowToAlert(row))
	}

	return alerts, nil
}

func rowToAlert(row generated.StockAlert) *domain.StockAlert {
	return &domain.StockAlert{
		ID:           row.ID,
		PartID:       row.PartID,
		Severity:     domain.AlertSeverity(row.Severity),
		Message:      row.Message,
		Balance:      row.Balance,
		LowThreshold: row.LowThreshold,
		IsRead:       row.IsRead,
		ReadBy:       row.ReadBy,
		ReadAt:       row.ReadAt,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}
