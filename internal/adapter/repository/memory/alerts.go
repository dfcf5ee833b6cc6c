package memory

import (
	"context"
	"time"

	"github.com/gtservice/gtledger/internal/domain"
	"github.com/gtservice/gtledger/internal/usecase"
)

// AlertRepository implements usecase.AlertRepository.
type AlertRepository struct {
	store *Store
}

// NewAlertRepository creates a new AlertRepository.
func NewAlertRepository(store *Store) *AlertRepository {
	return &AlertRepository{store: store}
}

// GetOpenForUpdate returns the part's unread alert, or nil.
func (r *AlertRepository) GetOpenForUpdate(_ context.Context, tx usecase.Transaction, partID string) (*domain.StockAlert, error) {
	var open *domain.StockAlert
	err := r.store.write(tx, func(s *state) error {
		for _, a := range s.alerts {
			if a.PartID == partID && !a.IsRead {
				open = &a
				return nil
			}
		}
		return nil
	})
	return open, err
}

// Create inserts an alert. A part has at most one unread alert.
func (r *AlertRepository) Create(_ context.Context, tx usecase.Transaction, alert *domain.StockAlert) error {
	return r.store.write(tx, func(s *state) error {
		for _, a := range s.alerts {
			if a.PartID == alert.PartID && !a.IsRead {
				return errOpenAlert
			}
		}
		s.alerts[alert.ID] = *alert
		return nil
	})
}

// Update stores a refreshed alert.
func (r *AlertRepository) Update(_ context.Context, tx usecase.Transaction, alert *domain.StockAlert) error {
	return r.store.write(tx, func(s *state) error {
		if _, ok := s.alerts[alert.ID]; !ok {
			return domain.ErrAlertNotFound
		}
		s.alerts[alert.ID] = *alert
		return nil
	})
}

// GetByID returns a copy of the alert.
func (r *AlertRepository) GetByID(_ context.Context, id string) (*domain.StockAlert, error) {
	var alert domain.StockAlert
	err := r.store.read(func(s *state) error {
		a, ok := s.alerts[id]
		if !ok {
			return domain.ErrAlertNotFound
		}
		alert = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// MarkRead acknowledges an alert. An already read alert is returned unchanged.
func (r *AlertRepository) MarkRead(ctx context.Context, id, readBy string, readAt time.Time) (*domain.StockAlert, error) {
	var alert domain.StockAlert
	err := r.store.autocommit(ctx, func(s *state) error {
		a, ok := s.alerts[id]
		if !ok {
			return domain.ErrAlertNotFound
		}
		if !a.IsRead {
			a.IsRead = true
			a.ReadBy = readBy
			a.ReadAt = &readAt
			a.UpdatedAt = readAt
			s.alerts[id] = a
		}
		alert = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &alert, nil
}

// List returns alerts, newest first.
func (r *AlertRepository) List(_ context.Context, filter domain.AlertFilter) ([]*domain.StockAlert, error) {
	var alerts []*domain.StockAlert
	_ = r.store.read(func(s *state) error {
		all := sortedValues(s.alerts, func(a, b *domain.StockAlert) bool { return a.UpdatedAt.After(b.UpdatedAt) })
		for _, a := range all {
			if filter.PartID != "" && a.PartID != filter.PartID {
				continue
			}
			if filter.UnreadOnly && a.IsRead {
				continue
			}
			alerts = append(alerts, a)
		}
		return nil
	})
	return page(alerts, filter.Limit, filter.Offset), nil
}
